package geo

import (
	"testing"

	"github.com/paulmach/orb"
)

func TestRectangleBounds_ClosedRing(t *testing.T) {
	poly := RectangleBounds(NewPoint(60.5, 25.5), NewPoint(59.9, 24.5))

	if len(poly) != 1 {
		t.Fatalf("expected single ring, got %d", len(poly))
	}
	ring := poly[0]
	if len(ring) != 5 {
		t.Fatalf("expected 5 vertices, got %d", len(ring))
	}
	if ring[0] != ring[4] {
		t.Fatalf("ring not closed: first=%v last=%v", ring[0], ring[4])
	}
}

func TestRectangleBounds_ContainsInteriorPoints(t *testing.T) {
	// Rectángulo que cubre Helsinki
	poly := RectangleBounds(NewPoint(60.5, 25.5), NewPoint(59.9, 24.5))

	inside := []orb.Point{
		NewPoint(60.2, 24.9), // Helsinki
		NewPoint(60.0, 25.0),
		NewPoint(60.49, 25.49),
	}
	for _, p := range inside {
		if !Contains(poly, p) {
			t.Fatalf("expected point %v inside bounds", p)
		}
	}

	outside := []orb.Point{
		NewPoint(61.0, 24.9),  // al norte
		NewPoint(60.2, 26.0),  // al este
		NewPoint(-33.4, -70.6), // Santiago
	}
	for _, p := range outside {
		if Contains(poly, p) {
			t.Fatalf("expected point %v outside bounds", p)
		}
	}
}

func TestRectangleBounds_DegenerateRectangle(t *testing.T) {
	// Esquinas iguales: debe producir anillo válido sin panic.
	corner := NewPoint(60.2, 24.9)
	poly := RectangleBounds(corner, corner)

	if len(poly) != 1 || len(poly[0]) != 5 {
		t.Fatalf("degenerate rectangle produced invalid polygon: %v", poly)
	}
	if poly[0][0] != poly[0][4] {
		t.Fatalf("degenerate ring not closed")
	}
	// No exigimos contains del propio vértice, solo que la query no explote.
	_ = Contains(poly, corner)
}

func TestPointOrdering(t *testing.T) {
	p := NewPoint(60.2, 24.9)
	if Lat(p) != 60.2 || Lng(p) != 24.9 {
		t.Fatalf("point ordering broken: lat=%v lng=%v", Lat(p), Lng(p))
	}
}
