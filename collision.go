package game

// The collision engine is a stateless predicate over the room's polygon
// set. A player's collision volume is the offset rectangle described in
// constants.go, sampled at its center and the four edge midpoints; a
// polygon contains the player when it contains any sample point. That is
// deliberately over-eager: grazing a hazard counts as touching it.

// moveVerdict is the classification of a candidate position.
type moveVerdict int

const (
	moveClear moveVerdict = iota
	moveBlocked
	moveFinished
	moveFatal
)

// samplePoints returns the five probe points for a nominal position.
func samplePoints(x, y float64) [5]Point {
	left := x + playerOffsetX
	top := y + playerOffsetY
	cx := left + playerWidth/2
	cy := top + playerHeight/2
	return [5]Point{
		{cx, cy},
		{cx, top},
		{cx, top + playerHeight},
		{left, cy},
		{left + playerWidth, cy},
	}
}

// pointInPolygon ray-casts horizontally using the even-odd rule. The
// epsilon in the denominator avoids division by zero on horizontal edges.
func pointInPolygon(points []Point, x, y float64) bool {
	if len(points) < 3 {
		return false
	}
	inside := false
	j := len(points) - 1
	for i := 0; i < len(points); i++ {
		pi, pj := points[i], points[j]
		if (pi.Y > y) != (pj.Y > y) &&
			x < (pj.X-pi.X)*(y-pi.Y)/(pj.Y-pi.Y+edgeEpsilon)+pi.X {
			inside = !inside
		}
		j = i
	}
	return inside
}

// polygonHit reports whether the polygon contains any sample point of the
// player rectangle at the nominal position.
func polygonHit(poly *Polygon, x, y float64) bool {
	for _, pt := range samplePoints(x, y) {
		if pointInPolygon(poly.Points, pt.X, pt.Y) {
			return true
		}
	}
	return false
}

// classifyMove resolves a candidate position against the polygon set.
// Precedence: any boundary hit blocks the move outright, then the finish
// marker, then lethal polygons. Checks short-circuit on the first match;
// the returned polygon is the one that decided the verdict.
func classifyMove(polygons []Polygon, x, y float64) (moveVerdict, *Polygon) {
	for i := range polygons {
		poly := &polygons[i]
		if poly.Type != PolygonBoundary {
			continue
		}
		if polygonHit(poly, x, y) {
			return moveBlocked, poly
		}
	}
	for i := range polygons {
		poly := &polygons[i]
		if poly.Name != FinishMarker {
			continue
		}
		if polygonHit(poly, x, y) {
			return moveFinished, poly
		}
	}
	for i := range polygons {
		poly := &polygons[i]
		if !poly.fatal() {
			continue
		}
		if polygonHit(poly, x, y) {
			return moveFatal, poly
		}
	}
	return moveClear, nil
}

// lethalAt reports the first polygon that would kill a player standing at
// the given committed position. Used when a trap arms under someone.
func lethalAt(polygons []Polygon, x, y float64) *Polygon {
	for i := range polygons {
		poly := &polygons[i]
		if !poly.fatal() {
			continue
		}
		if polygonHit(poly, x, y) {
			return poly
		}
	}
	return nil
}
