package layout

import "testing"

func TestSegmentsIntersect(t *testing.T) {
	tests := []struct {
		name           string
		a1, a2, b1, b2 Point
		want           bool
	}{
		{
			name: "crossing diagonals",
			a1:   Point{0, 0}, a2: Point{10, 10},
			b1: Point{0, 10}, b2: Point{10, 0},
			want: true,
		},
		{
			name: "parallel horizontals",
			a1:   Point{0, 0}, a2: Point{10, 0},
			b1: Point{0, 5}, b2: Point{10, 5},
			want: false,
		},
		{
			name: "collinear overlapping treated as non-intersecting",
			a1:   Point{0, 0}, a2: Point{10, 0},
			b1: Point{5, 0}, b2: Point{15, 0},
			want: false,
		},
		{
			name: "disjoint",
			a1:   Point{0, 0}, a2: Point{1, 1},
			b1: Point{5, 5}, b2: Point{6, 4},
			want: false,
		},
		{
			name: "touching at endpoint",
			a1:   Point{0, 0}, a2: Point{5, 5},
			b1: Point{5, 5}, b2: Point{10, 0},
			want: true,
		},
		{
			name: "orthogonal cross",
			a1:   Point{5, 0}, a2: Point{5, 10},
			b1: Point{0, 5}, b2: Point{10, 5},
			want: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SegmentsIntersect(tt.a1, tt.a2, tt.b1, tt.b2); got != tt.want {
				t.Errorf("SegmentsIntersect() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPathsIntersect_SkipsSharedEndpoints(t *testing.T) {
	// Two bent paths fanning out from the same source must not count
	// their meeting point as a crossing.
	a := Path{{100, 100}, {50, 100}, {50, 200}}
	b := Path{{100, 100}, {150, 100}, {150, 200}}
	if got := pathsIntersect(a, b); got != 0 {
		t.Errorf("pathsIntersect(shared source) = %d, want 0", got)
	}
}

func TestPathsIntersect_CountsCrossings(t *testing.T) {
	// A horizontal-first path crossing a vertical segment.
	a := Path{{0, 50}, {100, 50}, {100, 0}}
	b := Path{{50, 0}, {50, 100}}
	if got := pathsIntersect(a, b); got != 1 {
		t.Errorf("pathsIntersect() = %d, want 1", got)
	}
}
