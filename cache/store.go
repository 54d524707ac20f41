package cache

import (
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// DefaultGCGrace is how long a cache entry with no subscribers is kept
// before it is dropped.
const DefaultGCGrace = 60 * time.Second

var ErrUnknownEntry = errors.New("cache: unknown entry")

// Tag labels cached entries for bulk invalidation. An empty Id is the list
// tag for the whole resource type.
type Tag struct {
	Type string
	Id   string
}

func ListTag(resourceType string) Tag {
	return Tag{Type: resourceType}
}

func ItemTag(resourceType string, id string) Tag {
	return Tag{Type: resourceType, Id: id}
}

// Key identifies one cache entry: an endpoint plus its serialized arguments.
type Key struct {
	Endpoint string
	Args     string
}

// Endpoint declares how a resource is fetched and which tags its entries
// carry. One Endpoint per REST resource; the registry package holds the
// actual table.
type Endpoint struct {
	Name     string
	Fetch    func(args string) (interface{}, error)
	Provides func(args string) []Tag
}

type entry struct {
	endpoint    Endpoint
	args        string
	tags        []Tag
	data        interface{}
	hasData     bool
	stale       bool
	subscribers map[*Subscription]struct{}
	gcTimer     *time.Timer
}

func (e *entry) carries(tag Tag) bool {
	for _, candidate := range e.tags {
		if candidate == tag {
			return true
		}
	}
	return false
}

// Store is the query cache: one entry per (endpoint, args), shared between
// concurrent subscribers, invalidated by tags and garbage-collected after a
// grace period once the last subscriber leaves.
type Store struct {
	GCGrace time.Duration

	mu      sync.Mutex
	entries map[Key]*entry
	group   singleflight.Group
}

func New() *Store {
	return &Store{entries: make(map[Key]*entry)}
}

// Subscription observes one cache entry. Updates delivers the latest data
// after every cache write; a slow consumer only ever misses intermediate
// states, never the final one.
type Subscription struct {
	key     Key
	store   *Store
	updates chan interface{}
	once    sync.Once
}

func (s *Subscription) Key() Key {
	return s.key
}

func (s *Subscription) Updates() <-chan interface{} {
	return s.updates
}

// Close detaches the subscription. The entry survives for the grace period
// so a quickly returning screen finds its data still warm.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.store.unsubscribe(s)
	})
}

// latest-wins delivery into the 1-slot channel.
func (s *Subscription) offer(data interface{}) {
	for {
		select {
		case s.updates <- data:
			return
		default:
		}
		select {
		case <-s.updates:
		default:
		}
	}
}

// Subscribe attaches to the entry for (endpoint, args), fetching it when it
// is missing or stale. Concurrent subscribers to the same key share a single
// network call. The returned data is the entry's current state.
func (s *Store) Subscribe(endpoint Endpoint, args string) (*Subscription, interface{}, error) {
	key := Key{Endpoint: endpoint.Name, Args: args}

	s.mu.Lock()
	ent := s.ensureEntry(key, endpoint, args)
	sub := &Subscription{key: key, store: s, updates: make(chan interface{}, 1)}
	ent.subscribers[sub] = struct{}{}
	if ent.gcTimer != nil {
		ent.gcTimer.Stop()
		ent.gcTimer = nil
	}
	fresh := ent.hasData && !ent.stale
	data := ent.data
	s.mu.Unlock()

	if fresh {
		return sub, data, nil
	}
	data, err := s.fetch(key)
	if err != nil {
		sub.Close()
		return nil, nil, err
	}
	return sub, data, nil
}

// Peek returns the entry's current data without subscribing.
func (s *Store) Peek(key Key) (interface{}, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ent, ok := s.entries[key]
	if !ok || !ent.hasData {
		return nil, false
	}
	return ent.data, true
}

// InvalidateTags marks every entry carrying one of the tags as stale and
// refetches, in the background, only those with at least one active
// subscriber. Unsubscribed entries stay stale until someone needs them.
func (s *Store) InvalidateTags(tags []Tag) {
	s.mu.Lock()
	var refetch []Key
	for key, ent := range s.entries {
		for _, tag := range tags {
			if !ent.carries(tag) {
				continue
			}
			ent.stale = true
			if len(ent.subscribers) > 0 {
				refetch = append(refetch, key)
			}
			break
		}
	}
	s.mu.Unlock()

	for _, key := range refetch {
		key := key
		go func() {
			if _, err := s.fetch(key); err != nil {
				logrus.WithError(err).
					WithField("endpoint", key.Endpoint).
					WithField("args", key.Args).
					Warningln("Background refetch failed.")
			}
		}()
	}
}

func (s *Store) ensureEntry(key Key, endpoint Endpoint, args string) *entry {
	ent, ok := s.entries[key]
	if ok {
		return ent
	}
	var tags []Tag
	if endpoint.Provides != nil {
		tags = endpoint.Provides(args)
	}
	ent = &entry{
		endpoint:    endpoint,
		args:        args,
		tags:        tags,
		subscribers: make(map[*Subscription]struct{}),
	}
	s.entries[key] = ent
	return ent
}

// fetch runs the entry's network call, de-duplicated per key so simultaneous
// callers share one request and its result.
func (s *Store) fetch(key Key) (interface{}, error) {
	data, err, _ := s.group.Do(key.Endpoint+"\x00"+key.Args, func() (interface{}, error) {
		s.mu.Lock()
		ent, ok := s.entries[key]
		if !ok {
			s.mu.Unlock()
			return nil, ErrUnknownEntry
		}
		fetch := ent.endpoint.Fetch
		args := ent.args
		s.mu.Unlock()

		fetched, err := fetch(args)
		if err != nil {
			return nil, err
		}
		s.write(key, fetched)
		return fetched, nil
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

// write installs data and wakes subscribers. Cache writes land in the order
// their operations resolve.
func (s *Store) write(key Key, data interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ent, ok := s.entries[key]
	if !ok {
		return
	}
	ent.data = data
	ent.hasData = true
	ent.stale = false
	for sub := range ent.subscribers {
		sub.offer(data)
	}
}

func (s *Store) unsubscribe(sub *Subscription) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ent, ok := s.entries[sub.key]
	if !ok {
		return
	}
	delete(ent.subscribers, sub)
	if len(ent.subscribers) > 0 {
		return
	}

	grace := s.GCGrace
	if grace <= 0 {
		grace = DefaultGCGrace
	}
	key := sub.key
	ent.gcTimer = time.AfterFunc(grace, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		current, ok := s.entries[key]
		if ok && len(current.subscribers) == 0 {
			delete(s.entries, key)
		}
	})
}
