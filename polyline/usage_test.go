package polyline

import (
	"testing"

	"github.com/kanbang/cesium/render"
)

func TestUsageTrackerClassifies(t *testing.T) {
	u := newUsageTracker(DefaultUsageDecay)
	if u.compute() {
		t.Error("quiet tracker should not change")
	}

	u.record(PropertyColor)
	if !u.compute() {
		t.Error("first mutation should flip the classification")
	}
	for p := Property(0); p < numProperties; p++ {
		want := render.StaticDraw
		if p == PropertyColor {
			want = render.StreamDraw
		}
		if u.usage[p] != want {
			t.Errorf("%v usage = %v, want %v", p, u.usage[p], want)
		}
	}

	u.record(PropertyColor)
	if u.compute() {
		t.Error("repeated mutation should not flip again")
	}
}

func TestUsageTrackerDecay(t *testing.T) {
	u := newUsageTracker(3)
	u.record(PropertyPositions)
	u.compute()

	for i := 1; i < 3; i++ {
		if u.compute() {
			t.Fatalf("flipped after %d quiet computations, want 3", i)
		}
		if u.usage[PropertyPositions] != render.StreamDraw {
			t.Fatalf("usage reverted after %d quiet computations", i)
		}
	}
	if !u.compute() {
		t.Fatal("third quiet computation should flip back")
	}
	if u.usage[PropertyPositions] != render.StaticDraw {
		t.Error("usage should be StaticDraw after decay")
	}
}

func TestUsageTrackerQuietResetByMutation(t *testing.T) {
	u := newUsageTracker(2)
	u.record(PropertyWidth)
	u.compute()
	u.compute() // quiet 1

	u.record(PropertyWidth)
	u.compute() // quiet reset
	if u.compute() {
		t.Error("quiet streak should restart after a mutation")
	}
	if !u.compute() {
		t.Error("second quiet computation of the new streak should flip")
	}
}

func TestUsageTrackerMinimumDecay(t *testing.T) {
	u := newUsageTracker(0)
	if u.decay != 1 {
		t.Errorf("decay = %d, want 1", u.decay)
	}
	u.record(PropertyShow)
	u.compute()
	if !u.compute() || u.usage[PropertyShow] != render.StaticDraw {
		t.Error("decay 1 should revert after one quiet computation")
	}
}

func TestCountersResetEachComputation(t *testing.T) {
	u := newUsageTracker(1)
	u.record(PropertyOutlineColor)
	u.compute()
	if u.counts[PropertyOutlineColor] != 0 {
		t.Error("counters must reset on every computation")
	}
}
