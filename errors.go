package textemboss

import "fmt"

// A CombineError reports that one placement's boolean combination failed
// for the direct attempt and, if it ran, the voxel-solidified retry.
// It is not fatal to the overall embedding: the orchestrator moves on to
// the next placement candidate.
type CombineError struct {
	Op BoolOp

	// Direct is the error from combining the original operands.
	Direct error

	// Voxel is the error from the voxel-solidified retry, or nil if the
	// fallback was disabled.
	Voxel error
}

func (c *CombineError) Error() string {
	if c.Voxel == nil {
		return fmt.Sprintf("boolean %s failed (voxel fallback disabled): %v", c.Op, c.Direct)
	}
	return fmt.Sprintf("boolean %s failed directly (%v) and after voxel solidification (%v)",
		c.Op, c.Direct, c.Voxel)
}

func (c *CombineError) Unwrap() error {
	return c.Direct
}

// A PlacementExhaustedError is returned when the placement budget is spent
// without producing a combined mesh, either because no candidate patch fit
// the text footprint or because every fitting candidate failed to combine.
type PlacementExhaustedError struct {
	// Tries is the full placement budget that was consumed.
	Tries int

	// LastWidth and LastHeight are the patch extents measured at the most
	// recent candidate, for diagnostics.
	LastWidth  float64
	LastHeight float64

	// LastCombine holds the most recent combination failure, or nil if no
	// candidate ever passed the fit test.
	LastCombine error
}

func (p *PlacementExhaustedError) Error() string {
	msg := fmt.Sprintf("no usable placement after %d tries (last patch %.4gx%.4g)",
		p.Tries, p.LastWidth, p.LastHeight)
	if p.LastCombine != nil {
		msg += fmt.Sprintf("; last combination error: %v", p.LastCombine)
	}
	return msg
}

func (p *PlacementExhaustedError) Unwrap() error {
	return p.LastCombine
}
