package layout

import "errors"

// Sentinel errors returned by layout stages.
var (
	// ErrInvalidCanvas indicates a canvas with non-positive or unusably
	// small dimensions.
	ErrInvalidCanvas = errors.New("layout: invalid canvas dimensions")

	// ErrUnrankedGraph indicates a graph passed to a layout stage before
	// rank assignment.
	ErrUnrankedGraph = errors.New("layout: graph has no assigned ranks")

	// ErrUnknownDragNode indicates a drag request for a node not in the
	// simulation's graph.
	ErrUnknownDragNode = errors.New("layout: drag target not in graph")

	// ErrSimulationDone indicates a tick on a simulation that already
	// terminated.
	ErrSimulationDone = errors.New("layout: simulation already terminated")

	// ErrInvalidRelaxOptions indicates out-of-range relaxation settings.
	ErrInvalidRelaxOptions = errors.New("layout: invalid relaxation options")
)

// Default canvas dimensions, matching the typical host view.
const (
	DefaultWidth  = 800.0
	DefaultHeight = 600.0
)

const (
	// paddingFrac is the fraction of canvas width reserved on each side.
	// Samples spread across the remaining 80%.
	paddingFrac = 0.10

	// minSpacing is the minimum horizontal distance between node centers
	// in the same rank.
	minSpacing = 15.0

	sampleRadius   = 8.0
	nodeRadius     = 7.0
	combinedRadius = 10.0
)

// Canvas describes the drawing area layout targets. Rank 0 (the sample
// layer) maps to the bottom edge, the highest rank to the top, both inset
// by the vertical padding.
type Canvas struct {
	Width  float64
	Height float64
}

// DefaultCanvas returns an 800x600 canvas.
func DefaultCanvas() Canvas {
	return Canvas{Width: DefaultWidth, Height: DefaultHeight}
}

// Validate checks that the canvas can hold at least one node.
func (c Canvas) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return ErrInvalidCanvas
	}
	if c.Width < 4*sampleRadius || c.Height < 4*sampleRadius {
		return ErrInvalidCanvas
	}
	return nil
}

// PadX returns the horizontal padding in pixels.
func (c Canvas) PadX() float64 { return c.Width * paddingFrac }

// PadY returns the vertical padding in pixels.
func (c Canvas) PadY() float64 { return c.Height * paddingFrac }

// UsableWidth returns the width available between the two paddings.
func (c Canvas) UsableWidth() float64 { return c.Width - 2*c.PadX() }

// RankY maps a rank to its vertical pixel coordinate. Rank 0 sits at the
// bottom inset, maxRank at the top inset. A single-rank graph centers
// vertically.
func (c Canvas) RankY(rank, maxRank int) float64 {
	if maxRank <= 0 {
		return c.Height / 2
	}
	usable := c.Height - 2*c.PadY()
	return c.Height - c.PadY() - float64(rank)*usable/float64(maxRank)
}

// ClampX restricts x to the padded horizontal area.
func (c Canvas) ClampX(x float64) float64 {
	if lo := c.PadX(); x < lo {
		return lo
	}
	if hi := c.Width - c.PadX(); x > hi {
		return hi
	}
	return x
}
