package bramble

import "fmt"

// MaskMode selects how a masking object clips its subtree. The object's own
// draw output is the stencil; its descendants are drawn only where the
// stencil was drawn (MaskIntersect) or only where it was not (MaskSubtract).
type MaskMode uint8

const (
	MaskNone MaskMode = iota
	MaskIntersect
	MaskSubtract
)

func (m MaskMode) String() string {
	switch m {
	case MaskNone:
		return "none"
	case MaskIntersect:
		return "intersect"
	case MaskSubtract:
		return "subtract"
	default:
		return fmt.Sprintf("MaskMode(%d)", uint8(m))
	}
}

func validMaskMode(m MaskMode) bool {
	return m <= MaskSubtract
}

// ParseMaskMode resolves "intersect", "subtract", or "none".
func ParseMaskMode(s string) (MaskMode, error) {
	switch s {
	case "", "none":
		return MaskNone, nil
	case "intersect":
		return MaskIntersect, nil
	case "subtract":
		return MaskSubtract, nil
	}
	return MaskNone, fmt.Errorf("%w: %q", ErrUnknownMaskMode, s)
}

// SetMask makes the object mask its subtree. MaskNone clears the mask.
func (o *GameObject) SetMask(mode MaskMode) error {
	if !validMaskMode(mode) {
		return fmt.Errorf("%w: %d", ErrUnknownMaskMode, mode)
	}
	o.mask = mode
	return nil
}

// Mask returns the object's mask mode.
func (o *GameObject) Mask() MaskMode {
	return o.mask
}
