package outcome

import "testing"

func TestNew_ThresholdClassification(t *testing.T) {
	cases := []struct {
		dice [3]int
		want Category
	}{
		{[3]int{1, 1, 1}, Xiu},
		{[3]int{4, 3, 3}, Xiu},
		{[3]int{5, 3, 3}, Tai},
		{[3]int{6, 6, 6}, Tai},
	}
	for _, tc := range cases {
		r := New(1, tc.dice, SideUnknown)
		if r.Category != tc.want {
			t.Errorf("dice %v: expected %s, got %s", tc.dice, tc.want, r.Category)
		}
		if r.Total != tc.dice[0]+tc.dice[1]+tc.dice[2] {
			t.Errorf("dice %v: wrong total %d", tc.dice, r.Total)
		}
	}
}

func TestNew_SideOverridesThreshold(t *testing.T) {
	r := New(7, [3]int{1, 1, 1}, SideTai)
	if r.Category != Tai {
		t.Fatalf("expected explicit side to win, got %s", r.Category)
	}
	r = New(8, [3]int{6, 6, 6}, SideXiu)
	if r.Category != Xiu {
		t.Fatalf("expected explicit side to win, got %s", r.Category)
	}
}

func TestSymbols(t *testing.T) {
	h := []Record{
		New(1, [3]int{6, 6, 6}, SideUnknown),
		New(2, [3]int{1, 1, 1}, SideUnknown),
		New(3, [3]int{1, 1, 1}, SideUnknown),
	}
	if got := Symbols(h); got != "txx" {
		t.Fatalf("expected txx, got %q", got)
	}
	if got := Symbols(nil); got != "" {
		t.Fatalf("expected empty string, got %q", got)
	}
}

func TestLast(t *testing.T) {
	h := []Record{{Session: 1}, {Session: 2}, {Session: 3}}
	if got := Last(h, 2); len(got) != 2 || got[0].Session != 2 {
		t.Fatalf("unexpected tail %+v", got)
	}
	if got := Last(h, 10); len(got) != 3 {
		t.Fatalf("expected whole history, got %d", len(got))
	}
	if got := Last(h, 0); len(got) != 0 {
		t.Fatalf("expected empty tail, got %d", len(got))
	}
}

func TestOpposite(t *testing.T) {
	if Tai.Opposite() != Xiu || Xiu.Opposite() != Tai {
		t.Fatal("opposite is not an involution")
	}
}

func TestFromSymbols(t *testing.T) {
	h := FromSymbols(100, "tx T-x")
	if len(h) != 4 {
		t.Fatalf("expected 4 records, got %d", len(h))
	}
	if h[0].Session != 100 || h[3].Session != 103 {
		t.Fatalf("unexpected sessions %d..%d", h[0].Session, h[3].Session)
	}
	if Symbols(h) != "txtx" {
		t.Fatalf("round trip mismatch: %q", Symbols(h))
	}
}
