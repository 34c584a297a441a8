package store

import (
	"errors"
	"testing"
)

func seed() []Entry {
	return []Entry{
		{Product: "Tomatoes", Weight: 50},
		{Product: "Cucumbers", Weight: 40},
		{Product: "Apples", Weight: 35},
		{Product: "Bananas", Weight: 30},
	}
}

func TestLedgerGetAdjust(t *testing.T) {
	l := New(seed())
	w, err := l.Get("Tomatoes")
	if err != nil || w != 50 {
		t.Fatalf("get: %v %v", w, err)
	}
	w, err = l.Adjust("Tomatoes", -0.5)
	if err != nil || w != 49.5 {
		t.Fatalf("adjust: %v %v", w, err)
	}
	w, err = l.Adjust("Tomatoes", 10)
	if err != nil || w != 59.5 {
		t.Fatalf("adjust up: %v %v", w, err)
	}
}

func TestLedgerClampsAtZero(t *testing.T) {
	l := New([]Entry{{Product: "Figs", Weight: 1}})
	w, err := l.Adjust("Figs", -5)
	if err != nil || w != 0 {
		t.Fatalf("expected clamp to 0, got %v %v", w, err)
	}
	w, _ = l.Get("Figs")
	if w != 0 {
		t.Fatalf("expected stored 0, got %v", w)
	}
}

func TestLedgerUnknownProduct(t *testing.T) {
	l := New(seed())
	if _, err := l.Get("Durian"); !errors.Is(err, ErrUnknownProduct) {
		t.Fatalf("get err: %v", err)
	}
	if _, err := l.Adjust("Durian", 1); !errors.Is(err, ErrUnknownProduct) {
		t.Fatalf("adjust err: %v", err)
	}
}

func TestLedgerSnapshotOrderStable(t *testing.T) {
	l := New(seed())
	_, _ = l.Adjust("Bananas", -3)
	_, _ = l.Adjust("Apples", 2)
	want := []string{"Tomatoes", "Cucumbers", "Apples", "Bananas"}
	snap := l.Snapshot()
	if len(snap) != len(want) {
		t.Fatalf("len: %d", len(snap))
	}
	for i, e := range snap {
		if e.Product != want[i] {
			t.Fatalf("order[%d]: got %s want %s", i, e.Product, want[i])
		}
	}
	if snap[3].Weight != 27 || snap[2].Weight != 37 {
		t.Fatalf("weights: %+v", snap)
	}
}

func TestLedgerDuplicateSeedKeepsFirst(t *testing.T) {
	l := New([]Entry{{Product: "Kale", Weight: 5}, {Product: "Kale", Weight: 9}})
	w, _ := l.Get("Kale")
	if w != 5 {
		t.Fatalf("expected 5, got %v", w)
	}
	if len(l.Products()) != 1 {
		t.Fatalf("expected one product")
	}
}
