// Package catalog loads the static list of study spots. A Catalog is built
// once at startup and never modified afterwards.
package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ratemystudyspots/studyspots/internal/domain"
)

//go:embed data/study-spots.json
var defaultCatalog []byte

// document is the on-disk shape of a catalog file.
type document struct {
	StudySpaces []domain.StudySpot `json:"study_spaces" yaml:"study_spaces"`
}

// Catalog is an immutable, ordered set of study spots indexed by spot key.
type Catalog struct {
	spots []domain.StudySpot
	index map[string]int
}

// New builds a catalog from spots, keeping their order. It fails when two
// spots derive the same key, since a key must address exactly one spot.
func New(spots []domain.StudySpot) (*Catalog, error) {
	c := &Catalog{
		spots: make([]domain.StudySpot, len(spots)),
		index: make(map[string]int, len(spots)),
	}
	copy(c.spots, spots)

	for i, s := range c.spots {
		key := s.Key()
		if strings.Trim(key, "-") == "" {
			return nil, fmt.Errorf("catalog entry %d: building and room number are empty", i)
		}
		if prev, ok := c.index[key]; ok {
			return nil, fmt.Errorf("catalog entries %d and %d share spot key %q", prev, i, key)
		}
		c.index[key] = i
	}
	return c, nil
}

// Default returns the catalog embedded in the binary.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog, FormatJSON)
}

// Catalog file formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Load reads a catalog file. The format is chosen from the file extension:
// .yaml and .yml are YAML, everything else is JSON. An empty path loads the
// embedded catalog.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog %s: %w", path, err)
	}

	format := FormatJSON
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		format = FormatYAML
	}

	c, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("loading catalog %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes catalog data in the given format.
func Parse(data []byte, format string) (*Catalog, error) {
	var doc document
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("decoding yaml catalog: %w", err)
		}
	case FormatJSON:
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("decoding json catalog: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported catalog format %q", format)
	}
	return New(doc.StudySpaces)
}

// Spots returns the spots in catalog order. The returned slice is a copy.
func (c *Catalog) Spots() []domain.StudySpot {
	out := make([]domain.StudySpot, len(c.spots))
	copy(out, c.spots)
	return out
}

// Lookup returns the spot with the given key.
func (c *Catalog) Lookup(key string) (domain.StudySpot, bool) {
	i, ok := c.index[key]
	if !ok {
		return domain.StudySpot{}, false
	}
	return c.spots[i], true
}

// Contains reports whether key addresses a catalog spot.
func (c *Catalog) Contains(key string) bool {
	_, ok := c.index[key]
	return ok
}

// Len returns the number of spots.
func (c *Catalog) Len() int {
	return len(c.spots)
}
