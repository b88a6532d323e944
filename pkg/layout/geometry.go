package layout

import "math"

// Point is a 2D pixel coordinate.
type Point struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// Path is a polyline through two or more points. Routed edges carry at
// most one bend, so paths hold either two or three points.
type Path []Point

// parallelEps bounds the determinant below which two segments are treated
// as parallel and therefore non-intersecting.
const parallelEps = 1e-9

// SegmentsIntersect reports whether the closed segments a1-a2 and b1-b2
// intersect, solved in parametric form. Parallel and near-parallel
// segments never intersect, even when collinear and overlapping, which is
// the useful answer for crossing counts over orthogonal paths sharing a
// grid line.
func SegmentsIntersect(a1, a2, b1, b2 Point) bool {
	dax := a2.X - a1.X
	day := a2.Y - a1.Y
	dbx := b2.X - b1.X
	dby := b2.Y - b1.Y

	det := dax*dby - day*dbx
	if math.Abs(det) < parallelEps {
		return false
	}

	t := ((b1.X-a1.X)*dby - (b1.Y-a1.Y)*dbx) / det
	u := ((b1.X-a1.X)*day - (b1.Y-a1.Y)*dax) / det
	return t >= 0 && t <= 1 && u >= 0 && u <= 1
}

// pathsIntersect counts segment intersections between two polylines,
// skipping pairs that share an endpoint (edges meeting at a node do not
// cross there).
func pathsIntersect(a, b Path) int {
	count := 0
	for i := 0; i+1 < len(a); i++ {
		for j := 0; j+1 < len(b); j++ {
			if sharesEndpoint(a[i], a[i+1], b[j], b[j+1]) {
				continue
			}
			if SegmentsIntersect(a[i], a[i+1], b[j], b[j+1]) {
				count++
			}
		}
	}
	return count
}

func sharesEndpoint(a1, a2, b1, b2 Point) bool {
	return a1 == b1 || a1 == b2 || a2 == b1 || a2 == b2
}
