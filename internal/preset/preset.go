// Package preset holds the static city and category tables used to build
// search requests. Tables are loaded once and never mutated.
package preset

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/mahmoudd2003/list/internal/apperr"
)

//go:embed presets.yaml
var defaultPresets []byte

// City is a search area: a circle around a center point plus the region
// code that steers the remote API's locale bias.
type City struct {
	Key          string  `yaml:"key" json:"key"`
	Latitude     float64 `yaml:"lat" json:"latitude"`
	Longitude    float64 `yaml:"lng" json:"longitude"`
	RadiusMeters float64 `yaml:"radius" json:"radius_meters"`
	RegionCode   string  `yaml:"region_code" json:"region_code"`
	Name         string  `yaml:"name" json:"name"`
}

// Category maps a category key to its display label.
type Category struct {
	Key   string `yaml:"key" json:"key"`
	Label string `yaml:"label" json:"label"`
}

type file struct {
	Cities     []City     `yaml:"cities"`
	Categories []Category `yaml:"categories"`
}

// Registry is an immutable lookup table of cities and categories.
type Registry struct {
	cities     map[string]City
	categories map[string]Category
}

// Default returns the registry built from the embedded preset table.
func Default() (*Registry, error) {
	return Parse(defaultPresets)
}

// Load reads a preset table from path. An empty path yields the defaults.
func Load(path string) (*Registry, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "preset: read %s", path)
	}
	return Parse(data)
}

// Parse builds a registry from YAML.
func Parse(data []byte) (*Registry, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, eris.Wrap(err, "preset: parse")
	}

	r := &Registry{
		cities:     make(map[string]City, len(f.Cities)),
		categories: make(map[string]Category, len(f.Categories)),
	}
	for _, c := range f.Cities {
		key := normalizeKey(c.Key)
		if key == "" {
			return nil, eris.New("preset: city with empty key")
		}
		if c.RadiusMeters <= 0 {
			return nil, eris.Errorf("preset: city %s has no radius", key)
		}
		if len(c.RegionCode) != 2 {
			return nil, eris.Errorf("preset: city %s has invalid region code %q", key, c.RegionCode)
		}
		c.Key = key
		c.RegionCode = strings.ToUpper(c.RegionCode)
		r.cities[key] = c
	}
	for _, c := range f.Categories {
		key := normalizeKey(c.Key)
		if key == "" {
			return nil, eris.New("preset: category with empty key")
		}
		c.Key = key
		r.categories[key] = c
	}
	return r, nil
}

// City looks up a city by key, case-insensitively.
func (r *Registry) City(key string) (City, error) {
	c, ok := r.cities[normalizeKey(key)]
	if !ok {
		return City{}, apperr.NewConfigError("city", "unsupported city %q", key)
	}
	return c, nil
}

// Category looks up a category by key, case-insensitively.
func (r *Registry) Category(key string) (Category, error) {
	c, ok := r.categories[normalizeKey(key)]
	if !ok {
		return Category{}, apperr.NewConfigError("category", "unsupported category %q", key)
	}
	return c, nil
}

// Cities returns all cities sorted by key.
func (r *Registry) Cities() []City {
	out := make([]City, 0, len(r.cities))
	for _, c := range r.cities {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Categories returns all categories sorted by key.
func (r *Registry) Categories() []Category {
	out := make([]Category, 0, len(r.categories))
	for _, c := range r.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// BuildQuery returns the default search query for a category in a city.
func (r *Registry) BuildQuery(categoryKey, cityKey string) (string, error) {
	cat, err := r.Category(categoryKey)
	if err != nil {
		return "", err
	}
	city, err := r.City(cityKey)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("أفضل مطاعم %s في %s", cat.Label, city.Name), nil
}

func normalizeKey(k string) string {
	return strings.ToLower(strings.TrimSpace(k))
}
