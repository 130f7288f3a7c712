package http

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/blelem/acfscope/render"
	"github.com/blelem/acfscope/session"
)

// frame is one view and its heatmap; they are always written together.
type frame struct {
	view viewMsg
	png  []byte
}

type client struct {
	conn *websocket.Conn

	mu      sync.Mutex
	latest  *frame // newest frame not yet written
	lastSeq uint64
	queued  bool

	wake chan struct{}
	errs chan interface{}
	done chan struct{}
}

func newClient(conn *websocket.Conn) *client {
	return &client{
		conn: conn,
		wake: make(chan struct{}, 1),
		errs: make(chan interface{}, 4),
		done: make(chan struct{}),
	}
}

// push replaces any pending frame with f unless f is not newer than the
// last frame queued.
func (c *client) push(f *frame) {
	c.mu.Lock()
	if c.queued && f.view.Seq <= c.lastSeq {
		c.mu.Unlock()
		return
	}
	c.latest, c.lastSeq, c.queued = f, f.view.Seq, true
	c.mu.Unlock()
	select {
	case c.wake <- struct{}{}:
	default:
	}
}

func (c *client) pushError(err error) {
	select {
	case c.errs <- map[string]string{"type": "error", "error": err.Error()}:
	default:
	}
}

func (c *client) writeFrame() error {
	c.mu.Lock()
	f := c.latest
	c.latest = nil
	c.mu.Unlock()
	if f == nil {
		return nil
	}
	if err := c.conn.WriteJSON(f.view); err != nil {
		return err
	}
	if f.png == nil {
		return nil
	}
	return c.conn.WriteMessage(websocket.BinaryMessage, f.png)
}

// writePump sends frames (view JSON then heatmap PNG) and error messages.
func (c *client) writePump() {
	defer c.conn.Close()
	for {
		select {
		case <-c.wake:
			if err := c.writeFrame(); err != nil {
				return
			}
		case msg := <-c.errs:
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-c.done:
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}

// hub pushes every session change to the connected dashboards.
type hub struct {
	s        *session.Session
	cm       render.Colormap
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*client]bool
}

func newHub(s *session.Session, cm render.Colormap) *hub {
	h := &hub{
		s:  s,
		cm: cm,
		upgrader: websocket.Upgrader{
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 65536,
		},
		clients: make(map[*client]bool),
	}
	s.OnChange(h.broadcast)
	return h
}

func (h *hub) frame(v session.View) *frame {
	f := &frame{view: newViewMsg(h.s.Grid(), v)}
	var buf bytes.Buffer
	if err := render.EncodePNG(&buf, v.Surface, h.cm, surfaceScale); err != nil {
		log.Println("encode surface:", err)
		return f
	}
	f.png = buf.Bytes()
	return f
}

func (h *hub) broadcast(v session.View) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if len(h.clients) == 0 {
		return
	}
	f := h.frame(v)
	for c := range h.clients {
		c.push(f)
	}
}

type controlMsg struct {
	Type   string          `json:"type"`
	Params *session.Params `json:"params,omitempty"`
	Freq   float64         `json:"freq"`
	Code   float64         `json:"code"`
}

func (h *hub) handleControl(c *client, msg []byte) {
	var ctl controlMsg
	if err := json.Unmarshal(msg, &ctl); err != nil {
		log.Println("bad control message:", err)
		return
	}
	switch ctl.Type {
	case "params":
		if ctl.Params == nil {
			return
		}
		if err := h.s.SetParams(*ctl.Params); err != nil {
			c.pushError(err)
		}
	case "crosshair":
		h.s.MoveCrosshair(ctl.Freq, ctl.Code)
	default:
		log.Printf("unknown control message type %q", ctl.Type)
	}
}

func (h *hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("upgrade:", err)
		return
	}
	log.Println("client connected", conn.RemoteAddr())

	c := newClient(conn)
	h.mu.Lock()
	h.clients[c] = true
	h.mu.Unlock()
	// Snapshot after registering: any change after this point is broadcast,
	// and push discards whichever of the two is older.
	c.push(h.frame(h.s.View()))

	go c.writePump()

	defer func() {
		h.mu.Lock()
		delete(h.clients, c)
		h.mu.Unlock()
		close(c.done)
		log.Println("client disconnected", conn.RemoteAddr())
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		h.handleControl(c, msg)
	}
}
