package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/floorplanner/pkg/errors"
	"github.com/matzehuels/floorplanner/pkg/floorplan"
	"github.com/matzehuels/floorplanner/pkg/geometry"
	"github.com/matzehuels/floorplanner/pkg/slicing"
)

// Layout is the serializable snapshot of a slicing tree: the modules at
// their current positions plus the cuts that separate them.
type Layout struct {
	X       float64        `json:"x"`
	Y       float64        `json:"y"`
	Width   float64        `json:"width"`
	Height  float64        `json:"height"`
	Shape   string         `json:"shape"`
	Modules []LayoutModule `json:"modules"`
	Cuts    []LayoutCut    `json:"cuts,omitempty"`
	Center  *Point         `json:"net_center,omitempty"` // weighted center of the net members
	Target  *Point         `json:"target,omitempty"`
}

// LayoutModule is a module within a [Layout].
type LayoutModule struct {
	ID     string  `json:"id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Net    bool    `json:"net,omitempty"`
	Sign   string  `json:"sign,omitempty"`
}

// LayoutCut is an internal node of the tree within a [Layout].
type LayoutCut struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	Split   string  `json:"split"`
	At      float64 `json:"at"`
	Depth   int     `json:"depth"`
	Swapped bool    `json:"swapped,omitempty"`
}

// Point is a JSON-friendly [geometry.Point].
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NewPoint converts a geometry point.
func NewPoint(p geometry.Point) *Point { return &Point{X: p.X, Y: p.Y} }

// Geometry converts p back to a geometry point.
func (p Point) Geometry() geometry.Point { return geometry.Pt(p.X, p.Y) }

// NewLayout snapshots tree. Modules appear in tree order and cuts in
// pre-order. The net center is filled in when any module is a net member.
func NewLayout(tree *slicing.Tree) Layout {
	b := tree.Bounds()
	l := Layout{X: b.X, Y: b.Y, Width: b.Width, Height: b.Height, Shape: tree.String()}

	net := make(map[string]bool)
	for _, m := range tree.Leaves() {
		if m.IsNet() {
			net[m.ID] = true
		}
		l.Modules = append(l.Modules, LayoutModule{
			ID:     m.ID,
			X:      m.Rect.X,
			Y:      m.Rect.Y,
			Width:  m.Rect.Width,
			Height: m.Rect.Height,
			Net:    m.IsNet(),
			Sign:   m.Sign.String(),
		})
	}
	if c, ok := tree.NetCenter(net); ok {
		l.Center = NewPoint(c)
	}
	for _, c := range tree.Diagnostics() {
		l.Cuts = append(l.Cuts, LayoutCut{
			X:       c.Rect.X,
			Y:       c.Rect.Y,
			Width:   c.Rect.Width,
			Height:  c.Rect.Height,
			Split:   c.Split.String(),
			At:      c.At,
			Depth:   c.Depth,
			Swapped: c.Swapped,
		})
	}
	return l
}

// Bounds returns the rectangle covered by the layout.
func (l Layout) Bounds() geometry.Rect { return geometry.R(l.X, l.Y, l.Width, l.Height) }

// FloorplanModules converts the layout's modules back to the floorplan model.
func (l Layout) FloorplanModules() ([]floorplan.Module, error) {
	out := make([]floorplan.Module, len(l.Modules))
	for i, m := range l.Modules {
		sign, err := floorplan.ParseSign(m.Sign)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "module %q", m.ID)
		}
		if m.Net && sign == floorplan.SignNone {
			sign = floorplan.SignPos
		}
		out[i] = floorplan.Module{ID: m.ID, Rect: geometry.R(m.X, m.Y, m.Width, m.Height), Sign: sign}
	}
	return out, nil
}

// Design converts the layout's modules into a validated design.
func (l Layout) Design() (*floorplan.Design, error) {
	mods, err := l.FloorplanModules()
	if err != nil {
		return nil, err
	}
	return floorplan.NewDesign(mods)
}

// Tree rebuilds a slicing tree from the layout's module positions. The
// result has the same leaf positions as the tree the layout was taken from.
func (l Layout) Tree() (*slicing.Tree, error) {
	mods, err := l.FloorplanModules()
	if err != nil {
		return nil, err
	}
	return slicing.Build(mods)
}

// WriteLayout encodes l as indented JSON.
func WriteLayout(w io.Writer, l Layout) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(l); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// MarshalLayout returns l as indented JSON.
func MarshalLayout(l Layout) ([]byte, error) {
	data, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	return append(data, '\n'), nil
}

// ReadLayout decodes a JSON layout from r. ReadLayout does not close r.
func ReadLayout(r io.Reader) (Layout, error) {
	var l Layout
	if err := json.NewDecoder(r).Decode(&l); err != nil {
		return Layout{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode layout")
	}
	return l, nil
}

// UnmarshalLayout decodes a JSON layout held in data.
func UnmarshalLayout(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode layout")
	}
	return l, nil
}

// ImportLayout reads a JSON layout file at path.
func ImportLayout(path string) (Layout, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return Layout{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "layout %s", path)
	}
	if err != nil {
		return Layout{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadLayout(f)
}

// ExportLayout writes l to a JSON file at path.
// This is a convenience wrapper around [WriteLayout] for file-based output.
func ExportLayout(l Layout, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteLayout(f, l); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
