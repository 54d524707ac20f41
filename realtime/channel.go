package realtime

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	EventNotification = "notification"
	EventNewMessage   = "new_message"

	eventJoin  = "join"
	roomPrefix = "user_"
)

// Envelope is the wire frame of the realtime channel.
type Envelope struct {
	Event string          `json:"event"`
	Room  string          `json:"room,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type Handler = func(data json.RawMessage)

// Channel is the one socket connection of the application session. It is
// constructed once and passed around explicitly; UpdateAuth swaps
// credentials in place. With a token present it keeps itself connected,
// rejoining one room per user-identifier alias after every (re)connect.
// Detaching handlers leaves the connection open; only UpdateAuth with an
// empty token (logout) or Close disconnects.
type Channel struct {
	Url string

	mu       sync.Mutex
	token    string
	aliases  []string
	conn     *websocket.Conn
	handlers map[string]map[int]Handler
	nextId   int
	running  bool
	closed   bool
}

func New(url string) *Channel {
	return &Channel{
		Url:      url,
		handlers: make(map[string]map[int]Handler),
	}
}

// UpdateAuth stores the credentials the channel connects with. A non-empty
// token starts the connect loop if it is not running; an empty token drops
// the connection and holds the channel inert until the next login.
func (c *Channel) UpdateAuth(token string, aliases []string) {
	c.mu.Lock()
	c.token = token
	c.aliases = append([]string(nil), aliases...)
	start := token != "" && !c.running && !c.closed
	if start {
		c.running = true
	}
	conn := c.conn
	c.mu.Unlock()

	if token == "" && conn != nil {
		conn.Close()
	}
	if start {
		go c.run()
	}
}

// On registers a handler for a pushed event and returns its detach function.
func (c *Channel) On(event string, handler Handler) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextId
	c.nextId++
	if c.handlers[event] == nil {
		c.handlers[event] = make(map[int]Handler)
	}
	c.handlers[event][id] = handler
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.handlers[event], id)
	}
}

func (c *Channel) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

// Close tears the channel down for good.
func (c *Channel) Close() {
	c.mu.Lock()
	c.closed = true
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()
	if conn != nil {
		conn.Close()
	}
}

func (c *Channel) run() {
	schedule := backoff.NewExponentialBackOff()
	schedule.MaxElapsedTime = 0

	for {
		c.mu.Lock()
		if c.closed || c.token == "" {
			c.running = false
			c.mu.Unlock()
			return
		}
		token := c.token
		aliases := append([]string(nil), c.aliases...)
		c.mu.Unlock()

		header := http.Header{}
		header.Set("Authorization", "Bearer "+token)
		conn, _, err := websocket.DefaultDialer.Dial(c.Url, header)
		if err != nil {
			wait := schedule.NextBackOff()
			logrus.WithError(err).
				WithField("retry_in", wait).
				Warningln("Realtime dial failed.")
			time.Sleep(wait)
			continue
		}

		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			conn.Close()
			return
		}
		c.conn = conn
		c.mu.Unlock()
		schedule.Reset()

		if err := joinRooms(conn, aliases); err != nil {
			logrus.WithError(err).Warningln("Room join failed.")
			conn.Close()
		} else {
			logrus.WithField("rooms", len(aliases)).Infoln("Realtime channel connected.")
			c.readLoop(conn)
		}

		c.mu.Lock()
		c.conn = nil
		c.mu.Unlock()
		time.Sleep(schedule.NextBackOff())
	}
}

// joinRooms subscribes to one room per alias. The backend names the user id
// inconsistently across contexts, so every alias gets its own room rather
// than guessing which one is canonical.
func joinRooms(conn *websocket.Conn, aliases []string) error {
	for _, alias := range aliases {
		err := conn.WriteJSON(Envelope{Event: eventJoin, Room: roomPrefix + alias})
		if err != nil {
			return err
		}
	}
	return nil
}

func (c *Channel) readLoop(conn *websocket.Conn) {
	for {
		var env Envelope
		if err := conn.ReadJSON(&env); err != nil {
			logrus.WithError(err).Debugln("Realtime read ended.")
			return
		}
		c.dispatch(env)
	}
}

func (c *Channel) dispatch(env Envelope) {
	c.mu.Lock()
	handlers := make([]Handler, 0, len(c.handlers[env.Event]))
	for _, handler := range c.handlers[env.Event] {
		handlers = append(handlers, handler)
	}
	c.mu.Unlock()

	for _, handler := range handlers {
		handler(env.Data)
	}
}
