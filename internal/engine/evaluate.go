package engine

import (
	"fmt"
	"sort"

	"github.com/inamate/inamate/canvas-go/internal/document"
)

// PropertyOverrides holds interpolated values keyed by property.
type PropertyOverrides map[document.Property]float64

// EvaluateTimeline evaluates all tracks at the given frame, keyed by layer
// node ID. Tracks without keyframes are skipped.
func EvaluateTimeline(tl *document.Timeline, frame int) map[string]PropertyOverrides {
	result := make(map[string]PropertyOverrides)
	if tl == nil {
		return result
	}

	for i := range tl.Tracks {
		track := &tl.Tracks[i]
		value, ok := interpolateTrack(track, frame)
		if !ok {
			continue
		}
		if result[track.NodeID] == nil {
			result[track.NodeID] = make(PropertyOverrides)
		}
		result[track.NodeID][track.Property] = value
	}

	return result
}

// interpolateTrack evaluates a single track at the given frame.
func interpolateTrack(track *document.Track, frame int) (float64, bool) {
	if len(track.Keys) == 0 {
		return 0, false
	}

	keyframes := make([]document.Keyframe, len(track.Keys))
	copy(keyframes, track.Keys)
	sort.SliceStable(keyframes, func(i, j int) bool {
		return keyframes[i].Frame < keyframes[j].Frame
	})

	// Find surrounding keyframes
	var prev, next *document.Keyframe
	for i := range keyframes {
		if keyframes[i].Frame <= frame {
			prev = &keyframes[i]
		}
		if keyframes[i].Frame >= frame && next == nil {
			next = &keyframes[i]
		}
	}

	switch {
	case prev == nil:
		// Before first keyframe
		return next.Value, true
	case next == nil:
		// After last keyframe, hold
		return prev.Value, true
	case prev.Frame == next.Frame:
		return prev.Value, true
	}

	t := float64(frame-prev.Frame) / float64(next.Frame-prev.Frame)
	t = applyEasing(t, prev.Easing)
	return prev.Value + (next.Value-prev.Value)*t, true
}

// applyEasing applies an easing function to interpolation factor t (0-1).
func applyEasing(t float64, easing document.EasingType) float64 {
	switch easing {
	case document.EasingEaseIn:
		return t * t

	case document.EasingEaseOut:
		return t * (2 - t)

	case document.EasingEaseInOut:
		if t < 0.5 {
			return 2 * t * t
		}
		return -1 + (4-2*t)*t

	case document.EasingCubicIn:
		return t * t * t

	case document.EasingCubicOut:
		t2 := 1 - t
		return 1 - t2*t2*t2

	case document.EasingCubicInOut:
		if t < 0.5 {
			return 4 * t * t * t
		}
		t2 := -2*t + 2
		return 1 - t2*t2*t2/2

	case document.EasingBounceOut:
		return bounceOut(t)

	default: // linear
		return t
	}
}

// bounceOut implements the standard 4-segment parabolic bounce curve.
func bounceOut(t float64) float64 {
	n1 := 7.5625
	d1 := 2.75
	if t < 1/d1 {
		return n1 * t * t
	} else if t < 2/d1 {
		t -= 1.5 / d1
		return n1*t*t + 0.75
	} else if t < 2.5/d1 {
		t -= 2.25 / d1
		return n1*t*t + 0.9375
	} else {
		t -= 2.625 / d1
		return n1*t*t + 0.984375
	}
}

// ApplyOverrides pushes evaluated values into the scene's layers through
// SetTransform. Components without an override keep their current value.
func ApplyOverrides(sc *Scene, overrides map[string]PropertyOverrides) error {
	for nodeID, props := range overrides {
		l, ok := sc.Layer(nodeID)
		if !ok {
			continue
		}
		if err := l.SetTransform(overrideOptions(l, props)...); err != nil {
			return fmt.Errorf("animate layer %s: %w", nodeID, err)
		}
	}
	return nil
}

func overrideOptions(l *Layer, props PropertyOverrides) []TransformOption {
	pos, scale := l.Pos(), l.Scale()
	var opts []TransformOption

	if v, ok := props[document.PropPosX]; ok {
		pos.X = v
	}
	if v, ok := props[document.PropPosY]; ok {
		pos.Y = v
	}
	if v, ok := props[document.PropScaleX]; ok {
		scale.X = v
	}
	if v, ok := props[document.PropScaleY]; ok {
		scale.Y = v
	}
	if v, ok := props[document.PropRot]; ok {
		opts = append(opts, WithAngle(v))
	}
	return append(opts, WithPos(pos), WithScale(scale))
}
