package models

import (
	"sort"
	"strings"
)

type Coordinates struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lon float64 `json:"lon" yaml:"lon"`
}

// Catalog holds the supported crop/state pairs and state coordinates.
// It is built once at startup and never modified.
type Catalog struct {
	crops  map[string][]string
	coords map[string]Coordinates
}

// NewCatalog copies the given maps into an immutable catalog.
func NewCatalog(crops map[string][]string, coords map[string]Coordinates) *Catalog {
	c := &Catalog{
		crops:  make(map[string][]string, len(crops)),
		coords: make(map[string]Coordinates, len(coords)),
	}
	for crop, states := range crops {
		c.crops[crop] = append([]string(nil), states...)
	}
	for state, co := range coords {
		c.coords[state] = co
	}
	return c
}

// DefaultCatalog returns the built-in crop list and state capitals.
func DefaultCatalog() *Catalog {
	return NewCatalog(
		map[string][]string{
			"Wheat":     {"Uttar Pradesh", "Punjab", "Madhya Pradesh"},
			"Paddy":     {"West Bengal", "Punjab", "Uttar Pradesh"},
			"Sugarcane": {"Uttar Pradesh", "Maharashtra"},
			"Maize":     {"Madhya Pradesh", "Uttar Pradesh"},
			"Arhar":     {"Maharashtra", "Madhya Pradesh", "Uttar Pradesh"},
			"Moong":     {"Rajasthan", "Madhya Pradesh"},
			"Cotton":    {"Gujarat", "Maharashtra", "Punjab"},
			"Mustard":   {"Rajasthan", "Madhya Pradesh"},
		},
		map[string]Coordinates{
			"Uttar Pradesh":  {Lat: 26.8467, Lon: 80.9462}, // Lucknow
			"Punjab":         {Lat: 30.7333, Lon: 76.7794}, // Chandigarh
			"Madhya Pradesh": {Lat: 23.2599, Lon: 77.4126}, // Bhopal
			"West Bengal":    {Lat: 22.5726, Lon: 88.3639}, // Kolkata
			"Maharashtra":    {Lat: 19.0760, Lon: 72.8777}, // Mumbai
			"Rajasthan":      {Lat: 26.9124, Lon: 75.7873}, // Jaipur
			"Gujarat":        {Lat: 23.0225, Lon: 72.5714}, // Ahmedabad
		},
	)
}

// Crops returns the crop names sorted alphabetically.
func (c *Catalog) Crops() []string {
	out := make([]string, 0, len(c.crops))
	for crop := range c.crops {
		out = append(out, crop)
	}
	sort.Strings(out)
	return out
}

// States returns the states of a crop matched case-insensitively, and the canonical crop name.
func (c *Catalog) States(crop string) (string, []string, bool) {
	for name, states := range c.crops {
		if strings.EqualFold(name, crop) {
			return name, append([]string(nil), states...), true
		}
	}
	return "", nil, false
}

// Coordinates looks up a state's coordinates case-insensitively.
func (c *Catalog) Coordinates(state string) (Coordinates, bool) {
	if co, ok := c.coords[state]; ok {
		return co, true
	}
	for name, co := range c.coords {
		if strings.EqualFold(name, state) {
			return co, true
		}
	}
	return Coordinates{}, false
}

// Pair is a supported crop/state combination.
type Pair struct {
	Crop  string `json:"crop"`
	State string `json:"state"`
}

// Pairs lists every supported combination ordered by crop name.
func (c *Catalog) Pairs() []Pair {
	out := make([]Pair, 0)
	for _, crop := range c.Crops() {
		for _, state := range c.crops[crop] {
			out = append(out, Pair{Crop: crop, State: state})
		}
	}
	return out
}

// Supports reports whether the crop/state pair is listed.
func (c *Catalog) Supports(crop, state string) bool {
	_, states, ok := c.States(crop)
	if !ok {
		return false
	}
	for _, s := range states {
		if strings.EqualFold(s, state) {
			return true
		}
	}
	return false
}
