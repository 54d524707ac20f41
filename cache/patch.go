package cache

// Patch is a speculative change to one entry. Apply receives the entry's
// current data and returns the replacement; it must not mutate its argument,
// because the previous value is kept for rollback.
type Patch struct {
	Key   Key
	Apply func(data interface{}) interface{}
}

// Mutation couples a network write with the cache bookkeeping around it:
// an optional optimistic patch applied before the call, tag invalidation on
// success and an exact rollback on failure.
type Mutation struct {
	Run         func() error
	Invalidates []Tag
	Optimistic  *Patch
}

// Mutate runs the mutation. On failure the optimistic patch is undone and
// the cache is byte-for-byte back where it started; on success the patch is
// kept (later reconciled by a server event) and the declared tags are
// invalidated.
func (s *Store) Mutate(m Mutation) error {
	var undo func()
	if m.Optimistic != nil {
		undo = s.applyPatch(*m.Optimistic)
	}

	if err := m.Run(); err != nil {
		if undo != nil {
			undo()
		}
		return err
	}

	if len(m.Invalidates) > 0 {
		s.InvalidateTags(m.Invalidates)
	}
	return nil
}

// ApplyPatch applies a patch with no rollback, for server-pushed state that
// is already authoritative (realtime message delivery).
func (s *Store) ApplyPatch(p Patch) {
	s.applyPatch(p)
}

// applyPatch applies the patch and returns the inverse operation: restoring
// the snapshot taken before the patch. Patching an entry that holds no data
// is a no-op with a no-op inverse.
func (s *Store) applyPatch(p Patch) func() {
	s.mu.Lock()
	ent, ok := s.entries[p.Key]
	if !ok || !ent.hasData {
		s.mu.Unlock()
		return func() {}
	}
	snapshot := ent.data
	ent.data = p.Apply(ent.data)
	for sub := range ent.subscribers {
		sub.offer(ent.data)
	}
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		current, ok := s.entries[p.Key]
		if !ok {
			return
		}
		current.data = snapshot
		for sub := range current.subscribers {
			sub.offer(snapshot)
		}
	}
}
