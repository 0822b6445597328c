// Package floorplan defines the input model of the slicing engine: modules
// with fixed rectangles, their net membership, and the design that groups
// them.
//
// A [Design] is what the module-list reader produces and what the builder
// consumes. Module identity is the 1-based position in the input unless the
// loader supplies a name.
package floorplan

import (
	"slices"
	"strconv"

	"github.com/matzehuels/floorplanner/pkg/errors"
	"github.com/matzehuels/floorplanner/pkg/geometry"
)

// Sign marks a module's net membership and polarity.
type Sign uint8

const (
	SignNone Sign = iota // not a net member
	SignPos              // net member, "+"
	SignNeg              // net member, "-"
)

// String returns the persisted form of the sign: "+", "-" or "".
func (s Sign) String() string {
	switch s {
	case SignPos:
		return "+"
	case SignNeg:
		return "-"
	}
	return ""
}

// IsNet reports whether the sign marks a net member.
func (s Sign) IsNet() bool { return s != SignNone }

// ParseSign converts "+", "-" or "" to a Sign.
func ParseSign(s string) (Sign, error) {
	switch s {
	case "":
		return SignNone, nil
	case "+":
		return SignPos, nil
	case "-":
		return SignNeg, nil
	}
	return SignNone, errors.New(errors.ErrCodeInvalidFormat, "invalid sign %q", s)
}

// Module is a fixed-size rectangular block placed at an absolute position.
type Module struct {
	ID   string
	Rect geometry.Rect
	Sign Sign
}

// IsNet reports whether the module belongs to the net.
func (m Module) IsNet() bool { return m.Sign.IsNet() }

// Design is an ordered module list.
type Design struct {
	Modules []Module
}

// NewDesign validates modules and returns a design holding them. Modules
// without an ID are named after their 1-based position.
func NewDesign(modules []Module) (*Design, error) {
	d := &Design{Modules: make([]Module, len(modules))}
	copy(d.Modules, modules)
	for i := range d.Modules {
		if d.Modules[i].ID == "" {
			d.Modules[i].ID = strconv.Itoa(i + 1)
		}
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// Validate checks that module IDs are unique and well-formed and that every
// rectangle has a positive size.
func (d *Design) Validate() error {
	seen := make(map[string]struct{}, len(d.Modules))
	for _, m := range d.Modules {
		if err := errors.ValidateModuleID(m.ID); err != nil {
			return err
		}
		if _, dup := seen[m.ID]; dup {
			return errors.New(errors.ErrCodeInvalidInput, "duplicate module id %q", m.ID)
		}
		seen[m.ID] = struct{}{}
		if m.Rect.Width <= 0 || m.Rect.Height <= 0 {
			return errors.New(errors.ErrCodeInvalidInput, "module %q has non-positive size %gx%g",
				m.ID, m.Rect.Width, m.Rect.Height)
		}
	}
	return nil
}

// Len returns the number of modules.
func (d *Design) Len() int { return len(d.Modules) }

// Lookup returns the module with the given ID.
func (d *Design) Lookup(id string) (Module, bool) {
	i := slices.IndexFunc(d.Modules, func(m Module) bool { return m.ID == id })
	if i < 0 {
		return Module{}, false
	}
	return d.Modules[i], true
}

// NetIDs returns the IDs of all net members in input order.
func (d *Design) NetIDs() []string {
	var ids []string
	for _, m := range d.Modules {
		if m.IsNet() {
			ids = append(ids, m.ID)
		}
	}
	return ids
}

// Net returns the net members as a set keyed by module ID.
func (d *Design) Net() map[string]bool {
	net := make(map[string]bool)
	for _, m := range d.Modules {
		if m.IsNet() {
			net[m.ID] = true
		}
	}
	return net
}

// IDs returns all module IDs in input order.
func (d *Design) IDs() []string {
	ids := make([]string, len(d.Modules))
	for i, m := range d.Modules {
		ids[i] = m.ID
	}
	return ids
}

// Bounds returns the bounding rectangle of all modules.
func (d *Design) Bounds() geometry.Rect {
	rects := make([]geometry.Rect, len(d.Modules))
	for i, m := range d.Modules {
		rects[i] = m.Rect
	}
	return geometry.Bounds(rects)
}

// Area returns the summed area of all modules.
func (d *Design) Area() float64 {
	var a float64
	for _, m := range d.Modules {
		a += m.Rect.Area()
	}
	return a
}

// WithRects returns a copy of d whose module rectangles are replaced by the
// given ones. IDs missing from rects keep their current rectangle.
func (d *Design) WithRects(rects map[string]geometry.Rect) *Design {
	out := &Design{Modules: slices.Clone(d.Modules)}
	for i, m := range out.Modules {
		if r, ok := rects[m.ID]; ok {
			out.Modules[i].Rect = r
		}
	}
	return out
}
