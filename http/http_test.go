package http

import (
	"bytes"
	"encoding/json"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/blelem/acfscope/acf"
	"github.com/blelem/acfscope/render"
	"github.com/blelem/acfscope/session"
)

func newTestServer(t *testing.T) (*httptest.Server, *session.Session) {
	g, err := acf.MakeGrid(150, 1.5, 50)
	if err != nil {
		t.Fatal(err)
	}
	s, err := session.New(g, session.DefaultParams, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	ts := httptest.NewServer(NewHandler(s, render.Turbo))
	t.Cleanup(ts.Close)
	return ts, s
}

func decodeView(t *testing.T, r io.Reader) viewMsg {
	var v viewMsg
	if err := json.NewDecoder(r).Decode(&v); err != nil {
		t.Fatal(err)
	}
	return v
}

func postJSON(t *testing.T, url string, v interface{}) *http.Response {
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(b))
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func TestIndex(t *testing.T) {
	ts, _ := newTestServer(t)
	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d: %s", resp.StatusCode, b)
	}
	for _, want := range []string{`id="tp"`, `id="phase"`, "surface.png", "/ws"} {
		if !strings.Contains(string(b), want) {
			t.Errorf("index page missing %q", want)
		}
	}
	resp, err = http.Get(ts.URL + "/nope")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown path status %d", resp.StatusCode)
	}
}

func TestViewAPI(t *testing.T) {
	ts, s := newTestServer(t)
	resp, err := http.Get(ts.URL + "/api/view")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	v := decodeView(t, resp.Body)
	if v.Grid.Resolution != 50 || v.Grid.FreqMax != 150 {
		t.Fatalf("grid %+v", v.Grid)
	}
	if v.Params != session.DefaultParams {
		t.Fatalf("params %+v", v.Params)
	}
	if len(v.Slices.Freq) != 50 || len(v.Slices.Code) != 50 {
		t.Fatal("bad slice lengths")
	}
	sv := s.View()
	if v.Slices.Value != sv.Surface.At(sv.Crosshair.CodeIdx, sv.Crosshair.FreqIdx) {
		t.Fatal("crosshair value mismatch")
	}
}

func TestParamsAPI(t *testing.T) {
	ts, s := newTestServer(t)
	p := session.DefaultParams
	p.IntegrationTime = 50e-3
	p.Multipath.Strength = 0.25
	resp := postJSON(t, ts.URL+"/api/params", p)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	if v := decodeView(t, resp.Body); v.Params != p {
		t.Fatalf("response params %+v", v.Params)
	}
	if s.Params() != p {
		t.Fatal("session params not updated")
	}
	get, err := http.Get(ts.URL + "/api/params")
	if err != nil {
		t.Fatal(err)
	}
	var got session.Params
	err = json.NewDecoder(get.Body).Decode(&got)
	get.Body.Close()
	if err != nil || got != p {
		t.Fatalf("GET params = %+v, %v", got, err)
	}

	bad := p
	bad.Multipath.FreqOffset = 1000
	resp = postJSON(t, ts.URL+"/api/params", bad)
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("out of range status %d", resp.StatusCode)
	}
	resp, err = http.Post(ts.URL+"/api/params", "application/json", strings.NewReader("{"))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("malformed status %d", resp.StatusCode)
	}
	if s.Params() != p {
		t.Fatal("rejected params applied")
	}
}

func TestCrosshairAPI(t *testing.T) {
	ts, s := newTestServer(t)
	resp := postJSON(t, ts.URL+"/api/crosshair", crosshairMsg{Freq: 20, Code: 0.5})
	defer resp.Body.Close()
	v := decodeView(t, resp.Body)
	g := s.Grid()
	fi, ci := acf.Resolve(20, 0.5, g.Freq, g.Code)
	if v.Crosshair.FreqIdx != fi || v.Crosshair.CodeIdx != ci {
		t.Fatalf("crosshair %+v, want (%d, %d)", v.Crosshair, fi, ci)
	}
	get, err := http.Get(ts.URL + "/api/crosshair")
	if err != nil {
		t.Fatal(err)
	}
	get.Body.Close()
	if get.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("GET crosshair status %d", get.StatusCode)
	}
}

func TestImages(t *testing.T) {
	ts, _ := newTestServer(t)
	for _, path := range []string{"/surface.png", "/gaussian.png", "/gaussian.png?mean=3&sigma=0.5"} {
		resp, err := http.Get(ts.URL + path)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := png.Decode(resp.Body); err != nil {
			t.Errorf("%s: %v", path, err)
		}
		resp.Body.Close()
	}
	for _, path := range []string{"/gaussian.png?sigma=0", "/gaussian.png?mean=x"} {
		resp, err := http.Get(ts.URL + path)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("%s: status %d", path, resp.StatusCode)
		}
	}
}

func readView(t *testing.T, c *websocket.Conn) viewMsg {
	for {
		mt, b, err := c.ReadMessage()
		if err != nil {
			t.Fatal(err)
		}
		if mt != websocket.TextMessage {
			continue
		}
		var v viewMsg
		if err := json.Unmarshal(b, &v); err != nil {
			t.Fatal(err)
		}
		return v
	}
}

func TestWebsocket(t *testing.T) {
	ts, _ := newTestServer(t)
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	c, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	c.SetReadDeadline(time.Now().Add(10 * time.Second))

	// Initial state: view then heatmap.
	v0 := readView(t, c)
	mt, b, err := c.ReadMessage()
	if err != nil {
		t.Fatal(err)
	}
	if mt != websocket.BinaryMessage {
		t.Fatalf("message type %d, want binary", mt)
	}
	if _, err := png.Decode(bytes.NewReader(b)); err != nil {
		t.Fatal(err)
	}

	// Changes made over HTTP are pushed.
	resp := postJSON(t, ts.URL+"/api/crosshair", crosshairMsg{Freq: -100, Code: -1})
	resp.Body.Close()
	v1 := readView(t, c)
	if v1.Seq <= v0.Seq || v1.Crosshair.Freq != -100 {
		t.Fatalf("pushed view %+v", v1.Crosshair)
	}

	// Changes made over the socket are pushed back.
	p := session.DefaultParams
	p.Multipath.Phase = 1
	if err := c.WriteJSON(controlMsg{Type: "params", Params: &p}); err != nil {
		t.Fatal(err)
	}
	if v2 := readView(t, c); v2.Params != p {
		t.Fatalf("pushed params %+v", v2.Params)
	}

	p.IntegrationTime = 1
	if err := c.WriteJSON(controlMsg{Type: "params", Params: &p}); err != nil {
		t.Fatal(err)
	}
	for {
		mt, b, err := c.ReadMessage()
		if err != nil {
			t.Fatal(err)
		}
		if mt != websocket.TextMessage {
			continue
		}
		if !strings.Contains(string(b), `"type":"error"`) {
			t.Fatalf("expected error message, got %s", b)
		}
		break
	}
}

func TestClientKeepsNewestFrame(t *testing.T) {
	c := newClient(nil)
	c.push(&frame{view: viewMsg{Seq: 3}})
	c.push(&frame{view: viewMsg{Seq: 5}})
	c.push(&frame{view: viewMsg{Seq: 4}})
	c.push(&frame{view: viewMsg{Seq: 5}})
	if c.latest == nil || c.latest.view.Seq != 5 {
		t.Fatalf("pending frame %+v, want seq 5", c.latest)
	}
	if len(c.wake) != 1 {
		t.Fatalf("wake queued %d times, want 1", len(c.wake))
	}
}

func TestWebsocketConcurrentParams(t *testing.T) {
	ts, s := newTestServer(t)
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	c, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	c.SetReadDeadline(time.Now().Add(20 * time.Second))
	last := readView(t, c).Seq
	if mt, _, err := c.ReadMessage(); err != nil || mt != websocket.BinaryMessage {
		t.Fatalf("initial view not followed by its heatmap: %v", err)
	}

	var wg sync.WaitGroup
	for i := 1; i <= 6; i++ {
		p := session.DefaultParams
		p.Multipath.Strength = float64(i) / 10
		wg.Add(1)
		go func() {
			defer wg.Done()
			b, _ := json.Marshal(p)
			resp, err := http.Post(ts.URL+"/api/params", "application/json", bytes.NewReader(b))
			if err != nil {
				t.Error(err)
				return
			}
			resp.Body.Close()
		}()
	}
	wg.Wait()
	final := s.View()

	// Views arrive in order, each followed by its own heatmap, and the last
	// one is the session's current state.
	for last != final.Seq {
		mt, b, err := c.ReadMessage()
		if err != nil {
			t.Fatalf("last pushed seq %d, want %d: %v", last, final.Seq, err)
		}
		if mt != websocket.TextMessage {
			t.Fatal("heatmap without a view")
		}
		var v viewMsg
		if err := json.Unmarshal(b, &v); err != nil {
			t.Fatal(err)
		}
		if v.Seq <= last {
			t.Fatalf("seq %d pushed after %d", v.Seq, last)
		}
		last = v.Seq
		if mt, _, err = c.ReadMessage(); err != nil || mt != websocket.BinaryMessage {
			t.Fatalf("view %d not followed by its heatmap: %v", v.Seq, err)
		}
		if last == final.Seq && v.Params != final.Params {
			t.Fatalf("final pushed params %+v, want %+v", v.Params, final.Params)
		}
	}
}
