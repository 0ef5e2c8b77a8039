package layout

import (
	"context"
	"math"
	"testing"

	"github.com/matzehuels/taskweb/pkg/dag/transform"
	"github.com/matzehuels/taskweb/pkg/force"
)

// fakeSim records what the configurator asks of the simulation.
type fakeSim struct {
	forces  map[string]force.Force
	order   []string
	alpha   float64
	target  float64
	reheats int
}

func newFakeSim() *fakeSim { return &fakeSim{forces: map[string]force.Force{}} }

func (f *fakeSim) AddForce(name string, fc force.Force) {
	if _, ok := f.forces[name]; !ok {
		f.order = append(f.order, name)
	}
	f.forces[name] = fc
}
func (f *fakeSim) Tick() []force.Position                 { return nil }
func (f *fakeSim) Reheat(alpha float64)                   { f.alpha = alpha; f.reheats++ }
func (f *fakeSim) SetAlphaTarget(t float64)               { f.target = t }
func (f *fakeSim) Alpha() float64                         { return f.alpha }
func (f *fakeSim) Pin(string, float64, float64)           {}
func (f *fakeSim) Unpin(string)                           {}
func (f *fakeSim) Position(string) (force.Position, bool) { return force.Position{}, false }

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.ChartWidth() != 650 {
		t.Errorf("ChartWidth() = %v, want 650", cfg.ChartWidth())
	}
	if cfg.ChartHeight() != 1000 {
		t.Errorf("ChartHeight() = %v, want 1000", cfg.ChartHeight())
	}
}

func TestVerticalSpacing(t *testing.T) {
	tests := []struct {
		name   string
		levels transform.Levels
		want   float64
	}{
		{"empty", transform.Levels{}, 500},
		{"flat", transform.Levels{"a": 0, "b": 0}, 500},
		{"two levels", transform.Levels{"a": 0, "b": 1}, 1000.0 / 3},
		{"deep", transform.Levels{"a": 0, "b": 1, "c": 8}, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(DefaultConfig(), tt.levels)
			if got := c.VerticalSpacing(); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("VerticalSpacing() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTargetY(t *testing.T) {
	levels := transform.Levels{"A": 0, "B": 1, "D": 1, "C": 2}
	c := New(DefaultConfig(), levels)

	spacing := 1000.0 / 4
	for id, lvl := range levels {
		if got, want := c.TargetY(id), float64(lvl+1)*spacing; got != want {
			t.Errorf("TargetY(%s) = %v, want %v", id, got, want)
		}
	}
	if got := c.TargetY("unknown"); got != spacing {
		t.Errorf("TargetY(unknown) = %v, want %v", got, spacing)
	}
	if c.TargetX() != 325 {
		t.Errorf("TargetX() = %v, want 325", c.TargetX())
	}
}

func TestApply(t *testing.T) {
	c := New(DefaultConfig(), transform.Levels{"a": 0, "b": 1})
	sim := newFakeSim()
	c.Apply(sim, []force.Edge{{Source: 0, Target: 1}})

	want := []string{ForceLink, ForceCharge, ForceX, ForceY}
	if len(sim.order) != len(want) {
		t.Fatalf("forces = %v, want %v", sim.order, want)
	}
	for i := range want {
		if sim.order[i] != want[i] {
			t.Errorf("force %d = %s, want %s", i, sim.order[i], want[i])
		}
	}

	if l := sim.forces[ForceLink].(*force.Link); l.Distance() != 100 {
		t.Errorf("link distance = %v, want 100", l.Distance())
	}
	if m := sim.forces[ForceCharge].(*force.ManyBody); m.Strength() != -500 {
		t.Errorf("charge strength = %v, want -500", m.Strength())
	}
	if x := sim.forces[ForceX].(*force.X); x.Strength() != 0.1 || x.Target("a") != 325 {
		t.Errorf("x force = strength %v target %v", x.Strength(), x.Target("a"))
	}
	y := sim.forces[ForceY].(*force.Y)
	if y.Strength() != 0.3 || y.Target("b") != 2*1000.0/3 {
		t.Errorf("y force = strength %v target %v", y.Strength(), y.Target("b"))
	}
}

func TestResetLayout(t *testing.T) {
	levels := transform.Levels{"a": 0, "b": 1}
	c := New(DefaultConfig(), levels)
	sim := newFakeSim()
	c.Apply(sim, nil)
	before := sim.forces[ForceY]
	sim.alpha = 0.01

	c.ResetLayout(sim)

	if sim.alpha != 1 || sim.reheats != 1 {
		t.Errorf("alpha = %v after %d reheats, want 1 after 1", sim.alpha, sim.reheats)
	}
	if sim.forces[ForceY] == before {
		t.Error("y force was not reinstalled")
	}
	if len(levels) != 2 || levels["b"] != 1 {
		t.Errorf("levels changed: %v", levels)
	}
}

func TestApply_SettlesByLevel(t *testing.T) {
	levels := transform.Levels{"root": 0, "mid": 1, "leaf": 2}
	c := New(DefaultConfig(), levels)
	sim := force.New([]string{"root", "mid", "leaf"})
	c.Apply(sim, []force.Edge{{Source: 0, Target: 1}, {Source: 1, Target: 2}})
	if _, err := sim.Run(context.Background(), 0); err != nil {
		t.Fatal(err)
	}

	root, _ := sim.Position("root")
	mid, _ := sim.Position("mid")
	leaf, _ := sim.Position("leaf")
	if !(root.Y < mid.Y && mid.Y < leaf.Y) {
		t.Errorf("y order root=%v mid=%v leaf=%v, want increasing", root.Y, mid.Y, leaf.Y)
	}
}
