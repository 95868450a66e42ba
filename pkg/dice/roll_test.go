package dice

import (
	"testing"
)

func TestRollModifiers(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		faces   []int
		value   float32
		display string
	}{
		{"plain", "3d6", []int{2, 4, 5}, 11, "3d6 (2, 4, 5)"},
		{"bold extremes", "1d20 + 5", []int{20}, 25, "1d20 (**20**) + 5"},
		{"zero dice", "0d6", []int{1}, 0, "0d6 ()"},
		{"keep highest", "4d6kh3", []int{3, 5, 1, 6}, 14, "4d6kh3 (3, 5, ~~**1**~~, **6**)"},
		{"keep highest ties", "3d6kh1", []int{4, 4, 4}, 4, "3d6kh1 (~~4~~, ~~4~~, 4)"},
		{"keep literal", "4d6k3", []int{3, 3, 5, 1}, 6, "4d6k3 (3, 3, ~~5~~, ~~**1**~~)"},
		{"keep greater", "4d6k>4", []int{5, 4, 6, 1}, 11, "4d6k>4 (5, ~~4~~, **6**, ~~**1**~~)"},
		{"drop less", "4d6p<3", []int{1, 2, 3, 4}, 7, "4d6p<3 (~~**1**~~, ~~2~~, 3, 4)"},
		{"drop lowest", "4d6pl1", []int{3, 5, 1, 6}, 14, "4d6pl1 (3, 5, ~~**1**~~, **6**)"},
		{"keep union", "6d6kh1kl1", []int{2, 4, 6, 1, 3, 5}, 7, "6d6kh1kl1 (~~2~~, ~~4~~, **6**, **1**, ~~3~~, ~~5~~)"},
		{"keep then drop", "5d6kh3pl1", []int{2, 4, 6, 1, 3}, 10, "5d6kh3pl1 (~~2~~, 4, **6**, ~~**1**~~, ~~3~~)"},
		{"minimum", "3d6mi3", []int{1, 4, 2}, 10, "3d6mi3 (1 -> 3, 4, 2 -> 3)"},
		{"maximum", "2d6ma3", []int{5, 2}, 5, "2d6ma3 (5 -> 3, 2)"},
		{"minimum after keep", "4d6kh3mi2", []int{1, 1, 5, 6}, 13, "4d6kh3mi2 (~~**1**~~, 1 -> 2, 5, **6**)"},
		{"explode", "2d6e6", []int{6, 2, 3}, 11, "2d6e6 (**6!**, 3, 2)"},
		{"explode chain", "1d6e6", []int{6, 6, 2}, 14, "1d6e6 (**6!**, **6!**, 2)"},
		{"explode greater", "2d6e>4", []int{5, 1, 6, 3}, 15, "2d6e>4 (5!, **6!**, 3, **1**)"},
		{"explode less", "1d6e<2", []int{1, 4}, 5, "1d6e<2 (**1!**, 4)"},
		{"explode then keep", "3d6e6kh2", []int{6, 2, 3, 1}, 9, "3d6e6kh2 (**6!**, ~~**1**~~, ~~2~~, 3)"},
		{"drop then explode", "3d6pl1e1", []int{1, 5, 4}, 9, "3d6pl1e1 (~~**1**~~, 5, 4)"},
		{"signed count", "+2d4", []int{1, 3}, 4, "2d4 (**1**, 3)"},
		{"dice in arithmetic", "2d6 * 2 - 1", []int{3, 4}, 13, "2d6 (3, 4) * 2 - 1"},
		{"zero keep", "3d6k0", []int{2, 3, 4}, 0, "3d6k0 (~~2~~, ~~3~~, ~~4~~)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := newSeqEvaluator(tt.faces...).Roll(tt.input)
			if err != nil {
				t.Fatalf("roll %q: %v", tt.input, err)
			}
			if got.Value != tt.value {
				t.Errorf("got value %v, want %v", got.Value, tt.value)
			}
			if got.Display != tt.display {
				t.Errorf("got display %q, want %q", got.Display, tt.display)
			}
		})
	}
}

func TestRollRange(t *testing.T) {
	ev := NewEvaluator(&Options{Source: NewSeededSource(42)})
	for range 500 {
		got, err := ev.Roll("3d6")
		if err != nil {
			t.Fatalf("roll error: %v", err)
		}
		if got.Value < 3 || got.Value > 18 {
			t.Fatalf("3d6 out of range: %v", got.Value)
		}
	}
}

func TestSeededSourceReproducible(t *testing.T) {
	a := NewEvaluator(&Options{Source: NewSeededSource(7)})
	b := NewEvaluator(&Options{Source: NewSeededSource(7)})
	for range 20 {
		ra, err := a.Roll("4d6kh3e6")
		if err != nil {
			t.Fatalf("roll error: %v", err)
		}
		rb, err := b.Roll("4d6kh3e6")
		if err != nil {
			t.Fatalf("roll error: %v", err)
		}
		if ra != rb {
			t.Fatalf("same seed diverged: %+v vs %+v", ra, rb)
		}
	}
}

func TestKeepHighestMatchesDropLowest(t *testing.T) {
	src := NewSeededSource(99)
	for n := 1; n <= 8; n++ {
		for k := 0; k <= n; k++ {
			base := make([]dieRoll, n)
			for i := range base {
				v := src.IntN(4) + 1
				base[i] = dieRoll{value: v, kept: true}
			}
			keep := append([]dieRoll(nil), base...)
			drop := append([]dieRoll(nil), base...)

			applySelection(keep, []appliedModifier{{kind: ModKeep, sel: SelectHighest, value: k}}, true)
			applySelection(drop, []appliedModifier{{kind: ModDrop, sel: SelectLowest, value: n - k}}, false)

			kept := 0
			for i := range base {
				if keep[i].kept != drop[i].kept {
					t.Fatalf("n=%d k=%d die %d: kh kept=%v, pl kept=%v", n, k, i, keep[i].kept, drop[i].kept)
				}
				if keep[i].kept {
					kept++
				}
			}
			if kept != k {
				t.Fatalf("n=%d k=%d: kept %d dice", n, k, kept)
			}
		}
	}
}

func TestClampIdempotent(t *testing.T) {
	ev := newSeqEvaluator(1, 6, 3)
	once, err := ev.Roll("3d6mi2")
	if err != nil {
		t.Fatal(err)
	}
	ev = newSeqEvaluator(1, 6, 3)
	twice, err := ev.Roll("3d6mi2mi2")
	if err != nil {
		t.Fatal(err)
	}
	if once.Value != twice.Value {
		t.Fatalf("mi2 then mi2 changed total: %v vs %v", once.Value, twice.Value)
	}
}

func TestReduceSelection(t *testing.T) {
	s := reduceSelection([]appliedModifier{
		{sel: SelectHighest, value: 1},
		{sel: SelectHighest, value: 3},
		{sel: SelectLowest, value: 2},
		{sel: SelectGreaterThan, value: 5},
		{sel: SelectGreaterThan, value: 4},
		{sel: SelectLessThan, value: 2},
		{sel: SelectLessThan, value: 3},
		{sel: SelectLiteral, value: 1},
		{sel: SelectLiteral, value: 6},
	})

	if s.highest != 3 || s.lowest != 2 || s.greater != 4 || s.less != 3 {
		t.Fatalf("got %+v", s)
	}
	if !s.literal[1] || !s.literal[6] || len(s.literal) != 2 {
		t.Fatalf("got literals %v", s.literal)
	}
}

func TestGroupModifiers(t *testing.T) {
	mods := []appliedModifier{
		{kind: ModKeep, sel: SelectHighest, value: 1},
		{kind: ModKeep, sel: SelectLowest, value: 1},
		{kind: ModDrop, sel: SelectLiteral, value: 3},
		{kind: ModExplode, sel: SelectLiteral, value: 6},
		{kind: ModKeep, sel: SelectGreaterThan, value: 2},
		{kind: ModMinimum, sel: SelectLiteral, value: 2},
		{kind: ModMinimum, sel: SelectLiteral, value: 3},
	}
	groups := groupModifiers(mods)

	want := []struct {
		kind groupKind
		n    int
	}{
		{groupKeep, 2},
		{groupDrop, 1},
		{groupPerDie, 1},
		{groupKeep, 1},
		{groupPerDie, 1},
		{groupPerDie, 1},
	}
	if len(groups) != len(want) {
		t.Fatalf("got %d groups, want %d", len(groups), len(want))
	}
	for i, w := range want {
		if groups[i].kind != w.kind || len(groups[i].mods) != w.n {
			t.Errorf("group %d: got kind %d with %d mods, want kind %d with %d", i, groups[i].kind, len(groups[i].mods), w.kind, w.n)
		}
	}
}
