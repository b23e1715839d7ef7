package hook

import "sort"

// Catalog is a named group of statically declared interception intents,
// handed to Registry.RegisterCatalog at startup.
type Catalog struct {
	Name        string
	Descriptors []Descriptor
}

// Enabled returns the enabled descriptors in installation order:
// descending priority, declaration order breaking ties
// (first-registered-wins).
func (c Catalog) Enabled() []Descriptor {
	out := make([]Descriptor, 0, len(c.Descriptors))
	for _, d := range c.Descriptors {
		if d.Enabled {
			out = append(out, d)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority > out[j].Priority
	})
	return out
}

// CatalogFailure records one descriptor that failed to register.
type CatalogFailure struct {
	Target string
	Err    error
}

// CatalogResult aggregates a catalog registration. Partial success is
// expected; callers inspect Failures rather than receiving an error.
type CatalogResult struct {
	Catalog    string
	Registered int
	Total      int
	Failures   []CatalogFailure
}

// AllRegistered reports whether every enabled descriptor installed.
func (r CatalogResult) AllRegistered() bool {
	return r.Registered == r.Total
}
