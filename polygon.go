package game

// PolygonType classifies how a level polygon interacts with players.
type PolygonType string

const (
	PolygonBoundary PolygonType = "boundary"
	PolygonLava     PolygonType = "lava"
	PolygonSpike    PolygonType = "spike"
	PolygonTrap     PolygonType = "trap"
	PolygonSpawn    PolygonType = "spawn"
)

// Point is a polygon vertex in level coordinates.
type Point struct {
	X float64 `json:"x" jsonschema:"title=X coordinate"`
	Y float64 `json:"y" jsonschema:"title=Y coordinate"`
}

// Polygon models one region of a level. Timer and IsActive are only
// meaningful for trap polygons; IsActive is runtime state that toggles
// on while the trap is armed and off again when it auto-disarms.
//
// The type is shared with the level-schema generator so the JSON contract
// for level files stays machine-readable.
type Polygon struct {
	Type     PolygonType `json:"type" jsonschema:"title=Polygon kind,description=One of boundary lava spike trap spawn or a client-defined decoration"`
	Name     string      `json:"name,omitempty" jsonschema:"description=Optional identifier; the polygon named finish marks the level exit and traps are armed by name"`
	Points   []Point     `json:"points" jsonschema:"description=Ordered vertex list"`
	Timer    float64     `json:"timer,omitempty" jsonschema:"description=Trap arm duration in seconds"`
	IsActive bool        `json:"isActive,omitempty" jsonschema:"-"`
}

// fatal reports whether touching this polygon kills a player right now.
func (p *Polygon) fatal() bool {
	switch p.Type {
	case PolygonLava, PolygonSpike:
		return true
	case PolygonTrap:
		return p.IsActive
	default:
		return false
	}
}

// deathReason names the hazard kind for death broadcasts.
func (p *Polygon) deathReason() string {
	return string(p.Type)
}

// clonePolygons deep-copies a polygon set so per-room trap state never
// leaks into the shared level definition.
func clonePolygons(src []Polygon) []Polygon {
	if len(src) == 0 {
		return nil
	}
	out := make([]Polygon, len(src))
	for i, poly := range src {
		out[i] = poly
		out[i].Points = append([]Point(nil), poly.Points...)
		out[i].IsActive = false
	}
	return out
}
