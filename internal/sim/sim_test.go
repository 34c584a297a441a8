package sim

import (
	"math/rand/v2"
	"testing"

	"github.com/fairyhunter13/warehouse-inventory-monitor/internal/store"
)

func fixedRNG() *rand.Rand { return rand.New(rand.NewPCG(1, 2)) }

func TestTickDecrementsWithinRange(t *testing.T) {
	l := store.New([]store.Entry{{Product: "Tomatoes", Weight: 50}, {Product: "Apples", Weight: 35}})
	c := New(0.3, 0.9, fixedRNG())
	c.Tick(l)
	for _, e := range l.Snapshot() {
		var start float64
		switch e.Product {
		case "Tomatoes":
			start = 50
		case "Apples":
			start = 35
		}
		d := start - e.Weight
		if d < 0.3 || d > 0.9 {
			t.Fatalf("%s decrement %.3f out of range", e.Product, d)
		}
	}
}

func TestWeightNeverNegative(t *testing.T) {
	l := store.New([]store.Entry{{Product: "Figs", Weight: 2}})
	c := New(0.3, 0.9, fixedRNG())
	for i := 0; i < 1000; i++ {
		c.Tick(l)
	}
	w, _ := l.Get("Figs")
	if w < 0 {
		t.Fatalf("negative weight %v", w)
	}
	if w != 0 {
		t.Fatalf("expected depletion to 0, got %v", w)
	}
}

func TestDeterministicWithSameSeed(t *testing.T) {
	mk := func() float64 {
		l := store.New([]store.Entry{{Product: "Kale", Weight: 20}})
		c := New(0.3, 0.9, rand.New(rand.NewPCG(7, 7)))
		for i := 0; i < 5; i++ {
			c.Tick(l)
		}
		w, _ := l.Get("Kale")
		return w
	}
	if mk() != mk() {
		t.Fatalf("expected identical trajectories for identical seeds")
	}
}
