package reach

import "math"

// DefaultTolerance is the default band around a target reach (±10%).
const DefaultTolerance = 0.1

type BandStatus string

const (
	BandUnder  BandStatus = "under"
	BandInBand BandStatus = "in_band"
	BandOver   BandStatus = "over"
)

// Target is the audience size a selection of supporters should add up to.
type Target struct {
	Reach int `json:"reach"`
	Min   int `json:"min"`
	Max   int `json:"max"`
}

// NewTarget builds a Target around planned, floored at floor.
// A non-positive tolerance falls back to DefaultTolerance.
func NewTarget(planned int, tolerance float64, floor int) Target {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	r := planned
	if r < floor {
		r = floor
	}
	if r < 1 {
		r = 1
	}
	return Target{
		Reach: r,
		Min:   int(math.Round(float64(r) * (1 - tolerance))),
		Max:   int(math.Round(float64(r) * (1 + tolerance))),
	}
}

// Valid reports whether t describes a usable band.
func (t Target) Valid() bool {
	return t.Reach > 0 && t.Min >= 0 && t.Min <= t.Reach && t.Reach <= t.Max
}

func (t Target) Status(reach int) BandStatus {
	switch {
	case reach < t.Min:
		return BandUnder
	case reach > t.Max:
		return BandOver
	default:
		return BandInBand
	}
}
