package polyline

import "github.com/kanbang/cesium/render"

// DefaultUsageDecay is the number of consecutive quiet computations after
// which a frequently updated property is classified static again.
const DefaultUsageDecay = 30

// usageTracker classifies each property as StaticDraw or StreamDraw from
// the number of mutations observed between computations.
type usageTracker struct {
	decay  int
	counts [numProperties]int
	quiet  [numProperties]int
	usage  [numProperties]render.BufferUsage
}

func newUsageTracker(decay int) usageTracker {
	return usageTracker{decay: max(1, decay)}
}

func (u *usageTracker) record(p Property) { u.counts[p]++ }

// compute reclassifies every property and resets the counters. A property
// mutated since the last call becomes StreamDraw at once; it returns to
// StaticDraw only after decay quiet calls in a row. It reports whether any
// classification changed.
func (u *usageTracker) compute() bool {
	changed := false
	for p := range u.counts {
		if u.counts[p] > 0 {
			u.quiet[p] = 0
			if u.usage[p] != render.StreamDraw {
				u.usage[p] = render.StreamDraw
				changed = true
			}
		} else {
			u.quiet[p]++
			if u.usage[p] == render.StreamDraw && u.quiet[p] >= u.decay {
				u.usage[p] = render.StaticDraw
				changed = true
			}
		}
		u.counts[p] = 0
	}
	return changed
}
