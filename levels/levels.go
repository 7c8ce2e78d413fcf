// Package levels loads level definitions from disk and serves them as
// the map-metadata collaborator the room engine consumes.
package levels

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	game "github.com/nastosinka/oops-trap-sub000"
)

// Document is the on-disk shape of one level file. It is shared with the
// schema generator (cmd/mapschema) so the JSON contract stays
// machine-readable for validation and editor tooling.
type Document struct {
	ID        string         `json:"id" jsonschema:"title=Map id,pattern=^[a-z0-9\\-]+$,description=Identifier the lobby references"`
	Name      string         `json:"name,omitempty" jsonschema:"description=Display name"`
	Durations map[string]int `json:"durations" jsonschema:"title=Countdown seconds by difficulty,description=Total countdown duration in seconds keyed by difficulty"`
	Polygons  []game.Polygon `json:"polygons" jsonschema:"description=Ordered polygon set; later polygons draw over earlier ones on the client"`
}

// Provider serves levels loaded once at startup. Lookups after Load are
// read-only and safe for concurrent use.
type Provider struct {
	levels map[string]game.LevelData
}

// Load reads every *.json file in dir. A directory with no level files
// is an error: a server without levels can never start a room.
func Load(dir string) (*Provider, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read levels dir: %w", err)
	}

	p := &Provider{levels: make(map[string]game.LevelData)}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		doc, err := readDocument(path)
		if err != nil {
			return nil, fmt.Errorf("level %s: %w", entry.Name(), err)
		}
		if _, dup := p.levels[doc.ID]; dup {
			return nil, fmt.Errorf("level %s: duplicate map id %q", entry.Name(), doc.ID)
		}
		p.levels[doc.ID] = toLevelData(doc)
	}
	if len(p.levels) == 0 {
		return nil, fmt.Errorf("no level files in %s", dir)
	}
	return p, nil
}

// Level satisfies game.LevelProvider.
func (p *Provider) Level(mapID string) (game.LevelData, error) {
	level, ok := p.levels[mapID]
	if !ok {
		return game.LevelData{}, fmt.Errorf("unknown map %q", mapID)
	}
	return level, nil
}

// MapIDs lists the loaded maps, for diagnostics.
func (p *Provider) MapIDs() []string {
	ids := make([]string, 0, len(p.levels))
	for id := range p.levels {
		ids = append(ids, id)
	}
	return ids
}

func readDocument(path string) (Document, error) {
	var doc Document
	data, err := os.ReadFile(path)
	if err != nil {
		return doc, err
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return doc, fmt.Errorf("parse: %w", err)
	}
	return doc, validate(doc)
}

func validate(doc Document) error {
	if doc.ID == "" {
		return fmt.Errorf("missing map id")
	}
	if len(doc.Durations) == 0 {
		return fmt.Errorf("missing durations")
	}
	for difficulty, secs := range doc.Durations {
		if secs <= 0 {
			return fmt.Errorf("difficulty %q: non-positive duration %d", difficulty, secs)
		}
	}
	spawns := 0
	for i, poly := range doc.Polygons {
		if len(poly.Points) < 3 {
			return fmt.Errorf("polygon %d: needs at least 3 points", i)
		}
		if poly.Type == game.PolygonSpawn {
			spawns++
		}
		if poly.Type == game.PolygonTrap {
			if poly.Name == "" {
				return fmt.Errorf("polygon %d: trap without a name", i)
			}
			if poly.Timer <= 0 {
				return fmt.Errorf("polygon %d: trap %q without a positive timer", i, poly.Name)
			}
		}
	}
	if spawns != 1 {
		return fmt.Errorf("expected exactly one spawn polygon, found %d", spawns)
	}
	return nil
}

func toLevelData(doc Document) game.LevelData {
	data := game.LevelData{
		MapID:     doc.ID,
		Durations: doc.Durations,
		Polygons:  doc.Polygons,
	}
	for _, poly := range doc.Polygons {
		if poly.Type == game.PolygonSpawn {
			data.Spawn = centroid(poly.Points)
			break
		}
	}
	return data
}

// centroid is the vertex average, good enough for convex spawn zones.
func centroid(points []game.Point) game.Point {
	var c game.Point
	if len(points) == 0 {
		return c
	}
	for _, pt := range points {
		c.X += pt.X
		c.Y += pt.Y
	}
	c.X /= float64(len(points))
	c.Y /= float64(len(points))
	return c
}
