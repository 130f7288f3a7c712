package session

import (
	"errors"
	"fmt"
	"math"

	"github.com/blelem/acfscope/acf"
)

// ErrOutOfRange is returned for params outside their slider bounds.
var ErrOutOfRange = errors.New("parameter out of range")

// Bound is a closed interval a slider may move in.
type Bound struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Step float64 `json:"step"`
}

// Contains allows a little slack for unit conversions (s <-> ms).
func (b Bound) Contains(v float64) bool {
	slack := 1e-9 * (b.Max - b.Min)
	return v >= b.Min-slack && v <= b.Max+slack
}

// Slider ranges for the dashboard controls.
var (
	IntegrationTimeBound = Bound{Min: 10, Max: 100, Step: 1}
	StrengthBound        = Bound{Min: 0, Max: 1, Step: 0.01}
	FreqOffsetBound      = Bound{Min: 0, Max: 200, Step: 1}
	CodeOffsetBound      = Bound{Min: 0, Max: 1, Step: 0.1}
	PhaseBound           = Bound{Min: 0, Max: 2 * math.Pi, Step: 0.01}
)

// Params are the inputs the surface depends on.
type Params struct {
	// IntegrationTime is the coherent integration time in seconds.
	IntegrationTime float64       `json:"integration_time_s"`
	Multipath       acf.Multipath `json:"multipath"`
}

// DefaultParams: 10ms integration with an equal strength, opposite phase
// reflection 100Hz and half a chip away.
var DefaultParams = Params{
	IntegrationTime: 10e-3,
	Multipath: acf.Multipath{
		Strength:   1.0,
		FreqOffset: 100,
		CodeOffset: 0.5,
		Phase:      math.Pi,
	},
}

func (p Params) IntegrationTimeMs() float64 { return p.IntegrationTime * 1e3 }

func (p Params) Validate() error {
	check := func(name string, v float64, b Bound) error {
		if math.IsNaN(v) || !b.Contains(v) {
			return fmt.Errorf("%w: %s=%v not in [%v, %v]", ErrOutOfRange, name, v, b.Min, b.Max)
		}
		return nil
	}
	mp := p.Multipath
	for _, err := range []error{
		check("integration time [ms]", p.IntegrationTimeMs(), IntegrationTimeBound),
		check("multipath strength", mp.Strength, StrengthBound),
		check("multipath freq [Hz]", mp.FreqOffset, FreqOffsetBound),
		check("multipath code [chips]", mp.CodeOffset, CodeOffsetBound),
		check("multipath phase [rad]", mp.Phase, PhaseBound),
	} {
		if err != nil {
			return err
		}
	}
	return nil
}
