package object

// Transform describes how one object can be derived from another.
type Transform int

// The transforms are listed in the order they are tested.
const (
	TransformNone Transform = iota
	TransformDuplicate
	TransformMirrorX
	TransformMirrorY
	TransformRotate90CW
	TransformRotate90CCW
	TransformRotate180
)

var transformNames = [...]string{
	TransformNone:        "none",
	TransformDuplicate:   "duplicate",
	TransformMirrorX:     "horizontal mirror",
	TransformMirrorY:     "vertical mirror",
	TransformRotate90CW:  "90° clockwise rotation",
	TransformRotate90CCW: "90° counter-clockwise rotation",
	TransformRotate180:   "180° rotation",
}

func (t Transform) String() string {
	if t < 0 || int(t) >= len(transformNames) {
		return "unknown"
	}
	return transformNames[t]
}

// source returns the coordinates in the original that must match (x, y) in
// the candidate for the transform to apply.
func (t Transform) source(x, y, w, h int) (int, int) {
	switch t {
	case TransformMirrorX:
		return w - 1 - x, y
	case TransformMirrorY:
		return x, h - 1 - y
	case TransformRotate90CW:
		return h - 1 - y, x
	case TransformRotate90CCW:
		return y, w - 1 - x
	case TransformRotate180:
		return w - 1 - x, h - 1 - y
	}
	return x, y
}

// Is reports whether candidate is the original with transform t applied.
// Objects of different sizes never match and rotations by 90° only apply to
// square objects.
func (t Transform) Is(candidate, original *Object) bool {
	w, h := candidate.Width, candidate.Height
	if w != original.Width || h != original.Height {
		return false
	}

	switch t {
	case TransformNone:
		return false
	case TransformRotate90CW, TransformRotate90CCW:
		if w != h {
			return false
		}
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			sx, sy := t.source(x, y, w, h)
			if candidate.At(x, y) != original.At(sx, sy) {
				return false
			}
		}
	}

	return true
}

// Classify returns the first transform that derives candidate from
// original, or TransformNone if candidate is distinct.
func Classify(candidate, original *Object) Transform {
	for t := TransformDuplicate; t <= TransformRotate180; t++ {
		if t.Is(candidate, original) {
			return t
		}
	}
	return TransformNone
}
