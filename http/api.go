package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"gonum.org/v1/plot/vg"

	"github.com/blelem/acfscope/acf"
	"github.com/blelem/acfscope/render"
	"github.com/blelem/acfscope/session"
)

type gridInfo struct {
	FreqMax    float64 `json:"freq_max"`
	CodeMax    float64 `json:"code_max"`
	Resolution int     `json:"resolution"`
}

// viewMsg is the JSON form of a session view.
type viewMsg struct {
	Type      string         `json:"type"`
	Seq       uint64         `json:"seq"`
	Grid      gridInfo       `json:"grid"`
	Params    session.Params `json:"params"`
	Crosshair acf.Crosshair  `json:"crosshair"`
	Slices    acf.Slices     `json:"slices"`
	Peak      acf.Peak       `json:"peak"`
	PeakFreq  float64        `json:"peak_freq"`
	PeakCode  float64        `json:"peak_code"`
}

func newViewMsg(g *acf.Grid, v session.View) viewMsg {
	return viewMsg{
		Type:      "view",
		Seq:       v.Seq,
		Grid:      gridInfo{g.FreqMax(), g.CodeMax(), len(g.Freq)},
		Params:    v.Params,
		Crosshair: v.Crosshair,
		Slices:    v.Slices,
		Peak:      v.Peak,
		PeakFreq:  g.Freq[v.Peak.FreqIdx],
		PeakCode:  g.Code[v.Peak.CodeIdx],
	}
}

type crosshairMsg struct {
	Freq float64 `json:"freq"`
	Code float64 `json:"code"`
}

type apiHandler struct {
	s  *session.Session
	cm render.Colormap
}

func (h *apiHandler) writeView(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	js, err := json.Marshal(newViewMsg(h.s.Grid(), h.s.View()))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Write(js)
}

func (h *apiHandler) handleView(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	h.writeView(w)
}

func (h *apiHandler) handleParams(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		js, err := json.Marshal(h.s.Params())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(js)
	case http.MethodPost:
		b, err := io.ReadAll(r.Body)
		defer r.Body.Close()
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		var p session.Params
		if err := json.Unmarshal(b, &p); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := h.s.SetParams(p); err != nil {
			code := http.StatusInternalServerError
			if errors.Is(err, session.ErrOutOfRange) {
				code = http.StatusBadRequest
			}
			http.Error(w, err.Error(), code)
			return
		}
		h.writeView(w)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *apiHandler) handleCrosshair(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	b, err := io.ReadAll(r.Body)
	defer r.Body.Close()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var msg crosshairMsg
	if err := json.Unmarshal(b, &msg); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.s.MoveCrosshair(msg.Freq, msg.Code)
	h.writeView(w)
}

func (h *apiHandler) handleSurface(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	if err := render.EncodePNG(w, h.s.View().Surface, h.cm, surfaceScale); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func queryFloat(r *http.Request, key string, def float64) (float64, error) {
	s := r.URL.Query().Get(key)
	if len(s) == 0 {
		return def, nil
	}
	return strconv.ParseFloat(s, 64)
}

func (h *apiHandler) handleGaussian(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	g := render.DefaultGaussian
	var err error
	if g.Mean, err = queryFloat(r, "mean", g.Mean); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if g.Sigma, err = queryFloat(r, "sigma", g.Sigma); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if _, err := g.Curve(nil); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	if err := render.WriteGaussianPNG(w, g, 5*vg.Inch, 3*vg.Inch); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
