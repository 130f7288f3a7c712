package session

import (
	"sync"

	"gonum.org/v1/gonum/mat"

	"github.com/blelem/acfscope/acf"
)

// View is a consistent snapshot of a session. Surface must not be modified.
type View struct {
	Seq       uint64        `json:"seq"`
	Params    Params        `json:"params"`
	Crosshair acf.Crosshair `json:"crosshair"`
	Slices    acf.Slices    `json:"slices"`
	Peak      acf.Peak      `json:"peak"`
	Surface   *mat.Dense    `json:"-"`
}

// Session owns the dashboard state and its derived values:
//
//	params    -> surface, peak
//	surface   -> slices
//	crosshair -> slices
//
// Derived values are recomputed lazily on View and only when an input
// they depend on has changed.
type Session struct {
	grid *acf.Grid

	mu        sync.Mutex
	seq       uint64
	params    Params
	crosshair acf.Crosshair

	surface *mat.Dense // nil when stale
	peak    acf.Peak
	slices  *acf.Slices // nil when stale

	listeners []func(View)

	// surfaceEvals counts surface recomputations.
	surfaceEvals int
}

// New starts a session with the crosshair at (freq, code).
func New(grid *acf.Grid, p Params, freq, code float64) (*Session, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Session{
		grid:      grid,
		params:    p,
		crosshair: grid.NewCrosshair(freq, code),
	}, nil
}

func (s *Session) Grid() *acf.Grid { return s.grid }

// OnChange registers fn to be called with a fresh view after every change.
// Listeners run outside the session lock on the goroutine that made the
// change, so concurrent changes may be delivered out of order; compare
// View.Seq to keep the newest.
func (s *Session) OnChange(fn func(View)) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

func (s *Session) Params() Params {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.params
}

func (s *Session) Crosshair() acf.Crosshair {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.crosshair
}

// SetParams replaces the surface inputs. Setting identical params is a no-op.
func (s *Session) SetParams(p Params) error {
	if err := p.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	s.setParams(p)
	return nil
}

// Update applies fn to a copy of the current params and sets the result.
// fn runs with the session locked and must not call back into it.
func (s *Session) Update(fn func(*Params)) error {
	s.mu.Lock()
	p := s.params
	fn(&p)
	if err := p.Validate(); err != nil {
		s.mu.Unlock()
		return err
	}
	s.setParams(p)
	return nil
}

// setParams is called with mu held and releases it.
func (s *Session) setParams(p Params) {
	if p == s.params {
		s.mu.Unlock()
		return
	}
	s.params = p
	s.surface, s.slices = nil, nil
	s.changed()
}

// MoveCrosshair places the crosshair at (freq, code) and re-resolves its
// grid indices. The surface is kept.
func (s *Session) MoveCrosshair(freq, code float64) {
	s.mu.Lock()
	if freq == s.crosshair.Freq && code == s.crosshair.Code {
		s.mu.Unlock()
		return
	}
	s.crosshair = s.grid.NewCrosshair(freq, code)
	s.slices = nil
	s.changed()
}

// View recomputes whatever is stale and returns a snapshot.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view()
}

// changed is called with mu held; it releases mu before notifying.
func (s *Session) changed() {
	s.seq++
	if len(s.listeners) == 0 {
		s.mu.Unlock()
		return
	}
	v := s.view()
	ls := append([]func(View){}, s.listeners...)
	s.mu.Unlock()
	for _, fn := range ls {
		fn(v)
	}
}

func (s *Session) view() View {
	if s.surface == nil {
		s.surface = s.grid.Surface(s.params.IntegrationTime, s.params.Multipath)
		s.peak = acf.FindPeak(s.surface)
		s.surfaceEvals++
	}
	if s.slices == nil {
		sl := acf.Slice(s.surface, s.crosshair.FreqIdx, s.crosshair.CodeIdx)
		s.slices = &sl
	}
	return View{
		Seq:       s.seq,
		Params:    s.params,
		Crosshair: s.crosshair,
		Slices:    *s.slices,
		Peak:      s.peak,
		Surface:   s.surface,
	}
}
