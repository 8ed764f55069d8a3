package geometry

import "testing"

func TestContainsEdges(t *testing.T) {
	b := NewBounds(10, 10, 100, 50)

	cases := []struct {
		name string
		p    Point
		want bool
	}{
		{"inside", Point{50, 30}, true},
		{"top_left_corner", Point{10, 10}, true},
		{"right_edge_exclusive", Point{110, 30}, false},
		{"bottom_edge_exclusive", Point{50, 60}, false},
		{"outside_left", Point{9, 30}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := b.Contains(tc.p); got != tc.want {
				t.Fatalf("Contains(%v) = %v, want %v", tc.p, got, tc.want)
			}
		})
	}
}

func TestInset(t *testing.T) {
	b := NewBounds(0, 0, 100, 80)
	got := b.Inset(10)
	want := NewBounds(10, 10, 80, 60)
	if got != want {
		t.Fatalf("Inset(10) = %v, want %v", got, want)
	}
}

func TestInsetNeverNegative(t *testing.T) {
	b := NewBounds(0, 0, 10, 10)
	got := b.Inset(20)
	if got.Width != 0 || got.Height != 0 {
		t.Fatalf("oversized inset should clamp to zero size, got %v", got)
	}
}

func TestCenter(t *testing.T) {
	b := NewBounds(0, 0, 100, 50)
	if c := b.Center(); c.X != 50 || c.Y != 25 {
		t.Fatalf("Center() = %v, want (50,25)", c)
	}
}

func TestIntersects(t *testing.T) {
	a := NewBounds(0, 0, 100, 100)
	if !a.Intersects(NewBounds(50, 50, 100, 100)) {
		t.Fatal("overlapping rectangles should intersect")
	}
	if a.Intersects(NewBounds(100, 0, 10, 10)) {
		t.Fatal("edge-adjacent rectangles should not intersect")
	}
}
