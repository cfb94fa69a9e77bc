// Package observer streams tile and path events to websocket clients.
package observer

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/samdwyer/terrainwalk/internal/world"
)

const (
	clientBuffer = 256
	writeTimeout = 5 * time.Second
	readTimeout  = 60 * time.Second
)

type client struct {
	id  uint64
	out chan []byte
}

// Hub is a simulation backend that fans events out to connected observers.
// Backend calls never block: a client that cannot keep up loses messages.
type Hub struct {
	runID     string
	seed      int64
	tileWidth int
	log       *log.Logger

	upgrader websocket.Upgrader
	nextID   atomic.Uint64
	dropped  atomic.Uint64

	mu       sync.Mutex
	clients  map[uint64]*client
	tiles    []world.TileCoordinate
	lastPath []byte
	seq      uint64
	closed   bool
}

// NewHub creates a hub for one run.
func NewHub(runID string, seed int64, tileWidth int, logger *log.Logger) *Hub {
	if logger == nil {
		logger = log.New(log.Writer(), "[observer] ", log.LstdFlags)
	}
	return &Hub{
		runID:     runID,
		seed:      seed,
		tileWidth: tileWidth,
		log:       logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		clients: make(map[uint64]*client),
	}
}

func (h *Hub) OnTileCreated(tile *world.Tile) any {
	lo, hi := heightRange(tile)
	msg, _ := json.Marshal(TileMsg{
		Type:      "tile",
		Event:     TileCreated,
		Tile:      tile.Coord,
		Samples:   len(tile.Samples),
		MinHeight: lo,
		MaxHeight: hi,
	})

	h.mu.Lock()
	defer h.mu.Unlock()
	h.tiles = append(h.tiles, tile.Coord)
	h.broadcastLocked(msg)
	return tile.Coord
}

func (h *Hub) OnTileDisposed(handle any) {
	coord, ok := handle.(world.TileCoordinate)
	if !ok {
		return
	}
	msg, _ := json.Marshal(TileMsg{Type: "tile", Event: TileDisposed, Tile: coord})

	h.mu.Lock()
	defer h.mu.Unlock()
	for i, c := range h.tiles {
		if c == coord {
			h.tiles = append(h.tiles[:i], h.tiles[i+1:]...)
			break
		}
	}
	h.broadcastLocked(msg)
}

func (h *Hub) PublishPath(curve []world.Vec3) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.seq++
	msg, _ := json.Marshal(PathMsg{Type: "path", Seq: h.seq, Points: points(curve)})
	h.lastPath = msg
	h.broadcastLocked(msg)
}

func (h *Hub) broadcastLocked(msg []byte) {
	for _, c := range h.clients {
		select {
		case c.out <- msg:
		default:
			h.dropped.Add(1)
		}
	}
}

// Clients returns the number of connected observers.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Dropped returns how many messages were discarded for slow clients.
func (h *Hub) Dropped() uint64 { return h.dropped.Load() }

// join registers a client and queues its hello and the latest path.
func (h *Hub) join() (*client, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, false
	}

	c := &client{id: h.nextID.Add(1), out: make(chan []byte, clientBuffer)}
	tiles := make([]world.TileCoordinate, len(h.tiles))
	copy(tiles, h.tiles)
	hello, _ := json.Marshal(HelloMsg{
		Type:            "hello",
		ProtocolVersion: ProtocolVersion,
		RunID:           h.runID,
		Seed:            h.seed,
		TileWidth:       h.tileWidth,
		Tiles:           tiles,
	})
	c.out <- hello
	if h.lastPath != nil {
		c.out <- h.lastPath
	}
	h.clients[c.id] = c
	return c, true
}

func (h *Hub) leave(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c.id]; ok {
		delete(h.clients, c.id)
		close(c.out)
	}
}

// Close disconnects every client and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for id, c := range h.clients {
		delete(h.clients, id)
		close(c.out)
	}
}

// Handler upgrades requests to websocket observer sessions.
func (h *Hub) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := h.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		c, ok := h.join()
		if !ok {
			_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"), time.Now().Add(time.Second))
			return
		}
		h.log.Printf("observer %d connected from %s", c.id, r.RemoteAddr)

		// Observers only listen; reading detects the peer going away.
		gone := make(chan struct{})
		go func() {
			defer close(gone)
			for {
				_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		defer func() {
			h.leave(c)
			h.log.Printf("observer %d disconnected", c.id)
		}()
		for {
			select {
			case <-gone:
				return
			case b, ok := <-c.out:
				if !ok {
					_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"), time.Now().Add(time.Second))
					return
				}
				_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
				if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
					return
				}
			}
		}
	}
}
