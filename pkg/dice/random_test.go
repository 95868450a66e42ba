package dice

import (
	"sync"
	"testing"
)

func TestSeededSourceRange(t *testing.T) {
	src := NewSeededSource(1)
	seen := make(map[int]bool)
	for range 1000 {
		v := src.IntN(6)
		if v < 0 || v >= 6 {
			t.Fatalf("IntN(6) returned %d", v)
		}
		seen[v] = true
	}
	if len(seen) != 6 {
		t.Errorf("expected every face over 1000 draws, saw %v", seen)
	}
}

func TestLockedSourceConcurrent(t *testing.T) {
	ev := NewEvaluator(&Options{Source: Locked(NewSeededSource(5))})

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				res, err := ev.Roll("2d6")
				if err != nil {
					t.Errorf("roll error: %v", err)
					return
				}
				if res.Value < 2 || res.Value > 12 {
					t.Errorf("2d6 out of range: %v", res.Value)
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestNewSeed(t *testing.T) {
	a, err := NewSeed()
	if err != nil {
		t.Fatalf("NewSeed: %v", err)
	}
	b, err := NewSeed()
	if err != nil {
		t.Fatalf("NewSeed: %v", err)
	}
	if a == b {
		t.Errorf("two seeds collided: %d", a)
	}
}
