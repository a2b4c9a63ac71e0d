package qfilter

import "math"

// PageRequest is a 1-based page number and a page size. Zero values mean the
// query string did not declare them.
type PageRequest struct {
	Number int
	Size   int
}

// Skip is the number of records before the first one of the page. It
// saturates at math.MaxInt.
func (p PageRequest) Skip() int {
	if p.Number < 1 || p.Size < 1 {
		return 0
	}
	if !p.fits() {
		return math.MaxInt
	}
	return (p.Number - 1) * p.Size
}

// fits reports whether the page's offset is representable as an int.
func (p PageRequest) fits() bool {
	return p.Size < 1 || p.Number-1 <= math.MaxInt/p.Size
}

// PageDefaults is the schema-level configuration consumed by the engine.
type PageDefaults struct {
	DefaultPageSize   int    `mapstructure:"default_page_size"`
	MaxPageSize       int    `mapstructure:"max_page_size"`
	DefaultOrderField string `mapstructure:"default_order_field"`
}

// DefaultPageDefaults are used when a caller passes the zero PageDefaults.
var DefaultPageDefaults = PageDefaults{
	DefaultPageSize:   20,
	MaxPageSize:       100,
	DefaultOrderField: "Name",
}

// Apply fills in and clamps a declared page request: a missing size becomes
// the default, a size above the maximum becomes the maximum and a missing
// page becomes the first.
func (d PageDefaults) Apply(p PageRequest) PageRequest {
	d = d.orDefault()
	if p.Size <= 0 {
		p.Size = d.DefaultPageSize
	}
	if p.Size > d.MaxPageSize {
		p.Size = d.MaxPageSize
	}
	if p.Number < 1 {
		p.Number = 1
	}
	return p
}

func (d PageDefaults) orDefault() PageDefaults {
	if d.DefaultPageSize <= 0 {
		d.DefaultPageSize = DefaultPageDefaults.DefaultPageSize
	}
	if d.MaxPageSize <= 0 {
		d.MaxPageSize = DefaultPageDefaults.MaxPageSize
	}
	if d.DefaultPageSize > d.MaxPageSize {
		d.DefaultPageSize = d.MaxPageSize
	}
	if d.DefaultOrderField == "" {
		d.DefaultOrderField = DefaultPageDefaults.DefaultOrderField
	}
	return d
}
