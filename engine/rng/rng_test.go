package rng

import "testing"

func TestRNG_SameSeedSameSequence(t *testing.T) {
	a := New(42)
	b := New(42)

	for i := 0; i < 50; i++ {
		if x, y := a.Choose(7), b.Choose(7); x != y {
			t.Fatalf("draw %d: got %d and %d from same seed", i, x, y)
		}
	}
}

func TestRNG_ChooseRange(t *testing.T) {
	r := New(99)
	seen := map[int]bool{}

	for i := 0; i < 2000; i++ {
		v := r.Choose(5)
		if v < 0 || v >= 5 {
			t.Fatalf("Choose(5) out of range: %d", v)
		}
		seen[v] = true
	}
	if len(seen) != 5 {
		t.Errorf("expected all 5 values to appear, saw %v", seen)
	}
}

func TestRNG_RollRange(t *testing.T) {
	r := New(7)
	for i := 0; i < 1000; i++ {
		if v := r.Roll(6); v < 1 || v > 6 {
			t.Fatalf("Roll(6) out of range: %d", v)
		}
	}
	if v := r.Roll(1); v != 1 {
		t.Errorf("Roll(1) = %d, want 1", v)
	}
}

func TestRNG_WeightedSelect_Skews(t *testing.T) {
	r := New(12345)
	counts := [3]int{}

	for i := 0; i < 10000; i++ {
		counts[r.WeightedSelect([]int{70, 20, 10})]++
	}

	if counts[0] < 6000 || counts[0] > 8000 {
		t.Errorf("expected ~7000 for weight 70, got %d", counts[0])
	}
	if counts[2] < 200 || counts[2] > 1800 {
		t.Errorf("expected ~1000 for weight 10, got %d", counts[2])
	}
}

func TestRNG_PositionCountsEveryDraw(t *testing.T) {
	r := New(42)
	r.Choose(7)
	r.Roll(6)
	r.WeightedSelect([]int{1, 1})

	if r.Position() != 3 {
		t.Fatalf("Position() = %d, want 3", r.Position())
	}
	if r.Seed() != 42 {
		t.Errorf("Seed() = %d, want 42", r.Seed())
	}
}

func TestRNG_RestoreContinuesSequence(t *testing.T) {
	r := New(2024)
	for i := 0; i < 37; i++ {
		r.Choose(7)
	}
	var want [10]int
	for i := range want {
		want[i] = r.Choose(7)
	}

	restored := Restore(2024, 37)
	if restored.Position() != 37 {
		t.Fatalf("restored Position() = %d, want 37", restored.Position())
	}
	for i, w := range want {
		if got := restored.Choose(7); got != w {
			t.Fatalf("draw %d after restore: got %d, want %d", i, got, w)
		}
	}
}

func TestRNG_DifferentSeedsDiverge(t *testing.T) {
	a := New(1)
	b := New(2)

	for i := 0; i < 20; i++ {
		if a.Roll(100) != b.Roll(100) {
			return
		}
	}
	t.Error("expected different seeds to produce different draws")
}
