package game

import "testing"

func TestPointInPolygon(t *testing.T) {
	square := rectPoints(0, 0, 100, 100)
	triangle := []Point{{0, 0}, {100, 0}, {0, 100}}

	cases := []struct {
		name   string
		points []Point
		x, y   float64
		want   bool
	}{
		{name: "square center", points: square, x: 50, y: 50, want: true},
		{name: "square outside left", points: square, x: -10, y: 50, want: false},
		{name: "square outside below", points: square, x: 50, y: 150, want: false},
		{name: "triangle inside", points: triangle, x: 20, y: 20, want: true},
		{name: "triangle outside hypotenuse", points: triangle, x: 80, y: 80, want: false},
		{name: "degenerate two points", points: []Point{{0, 0}, {100, 0}}, x: 50, y: 0, want: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := pointInPolygon(tc.points, tc.x, tc.y); got != tc.want {
				t.Fatalf("pointInPolygon(%v,%v) = %v, want %v", tc.x, tc.y, got, tc.want)
			}
		})
	}
}

func TestPointInPolygonHorizontalEdges(t *testing.T) {
	// A rectangle probes horizontal edges where the ray-cast denominator
	// would be zero without the epsilon; the interior must still resolve.
	square := rectPoints(0, 0, 100, 100)
	if !pointInPolygon(square, 50, 1) {
		t.Fatal("point just inside the top edge should be inside")
	}
	if pointInPolygon(square, 50, -1) {
		t.Fatal("point just above the top edge should be outside")
	}
}

func TestSamplePoints(t *testing.T) {
	pts := samplePoints(100, 200)
	want := [5]Point{
		{100, 200},
		{100, 184},
		{100, 216},
		{84, 200},
		{116, 200},
	}
	if pts != want {
		t.Fatalf("samplePoints(100,200) = %v, want %v", pts, want)
	}
}

func TestPolygonHitEdgeProbes(t *testing.T) {
	// Only the player's right edge midpoint reaches the polygon; the
	// center stays outside. Grazing still counts as a hit.
	poly := rectPolygon(PolygonLava, "pit", 110, 190, 150, 210)
	if !polygonHit(&poly, 100, 200) {
		t.Fatal("right edge midpoint at x=116 should hit the polygon")
	}
	if polygonHit(&poly, 80, 200) {
		t.Fatal("player fully left of the polygon should not hit")
	}
}

func TestClassifyMove(t *testing.T) {
	polygons := testLevel().Polygons

	cases := []struct {
		name string
		x, y float64
		want moveVerdict
	}{
		{name: "open floor", x: 100, y: 100, want: moveClear},
		{name: "wall", x: 230, y: 100, want: moveBlocked},
		{name: "lava", x: 100, y: 230, want: moveFatal},
		{name: "inactive trap", x: 350, y: 100, want: moveClear},
		{name: "finish zone", x: 550, y: 100, want: moveFinished},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, _ := classifyMove(polygons, tc.x, tc.y)
			if got != tc.want {
				t.Fatalf("classifyMove(%v,%v) = %v, want %v", tc.x, tc.y, got, tc.want)
			}
		})
	}
}

func TestClassifyMoveActiveTrap(t *testing.T) {
	polygons := testLevel().Polygons
	for i := range polygons {
		if polygons[i].Type == PolygonTrap {
			polygons[i].IsActive = true
		}
	}
	verdict, poly := classifyMove(polygons, 350, 100)
	if verdict != moveFatal {
		t.Fatalf("active trap verdict = %v, want moveFatal", verdict)
	}
	if poly == nil || poly.Name != "spike1" {
		t.Fatalf("deciding polygon = %+v, want trap spike1", poly)
	}
	if got := poly.deathReason(); got != "trap" {
		t.Fatalf("deathReason = %q, want %q", got, "trap")
	}
}

func TestClassifyMoveBoundaryBeatsHazard(t *testing.T) {
	// Overlapping boundary and lava: boundary wins, nothing dies.
	polygons := []Polygon{
		rectPolygon(PolygonLava, "pit", 0, 0, 100, 100),
		rectPolygon(PolygonBoundary, "wall", 0, 0, 100, 100),
	}
	verdict, poly := classifyMove(polygons, 50, 50)
	if verdict != moveBlocked {
		t.Fatalf("verdict = %v, want moveBlocked", verdict)
	}
	if poly == nil || poly.Type != PolygonBoundary {
		t.Fatalf("deciding polygon = %+v, want the boundary", poly)
	}
}

func TestClassifyMoveFinishBeatsHazard(t *testing.T) {
	polygons := []Polygon{
		rectPolygon(PolygonSpike, "spikes", 0, 0, 100, 100),
		rectPolygon("zone", FinishMarker, 0, 0, 100, 100),
	}
	verdict, _ := classifyMove(polygons, 50, 50)
	if verdict != moveFinished {
		t.Fatalf("verdict = %v, want moveFinished", verdict)
	}
}

func TestLethalAt(t *testing.T) {
	polygons := testLevel().Polygons
	if poly := lethalAt(polygons, 350, 100); poly != nil {
		t.Fatalf("inactive trap should not be lethal, got %+v", poly)
	}
	for i := range polygons {
		if polygons[i].Name == "spike1" {
			polygons[i].IsActive = true
		}
	}
	poly := lethalAt(polygons, 350, 100)
	if poly == nil || poly.Name != "spike1" {
		t.Fatalf("lethalAt = %+v, want armed trap spike1", poly)
	}
	if lethalAt(polygons, 100, 100) != nil {
		t.Fatal("spawn area should never be lethal")
	}
}

func TestClonePolygonsResetsTrapState(t *testing.T) {
	src := testLevel().Polygons
	src[2].IsActive = true

	cloned := clonePolygons(src)
	if len(cloned) != len(src) {
		t.Fatalf("clone length = %d, want %d", len(cloned), len(src))
	}
	for i, poly := range cloned {
		if poly.IsActive {
			t.Fatalf("polygon %d: clone kept IsActive", i)
		}
	}
	cloned[0].Points[0].X = -999
	if src[0].Points[0].X == -999 {
		t.Fatal("clone shares point storage with the source")
	}
}
