package io

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/floorplanner/pkg/errors"
	"github.com/matzehuels/floorplanner/pkg/geometry"
	"github.com/matzehuels/floorplanner/pkg/slicing"
)

func gridTree(t *testing.T) *slicing.Tree {
	t.Helper()
	d, err := ParseModules(gridText)
	if err != nil {
		t.Fatalf("ParseModules: %v", err)
	}
	tree, err := slicing.Build(d.Modules)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return tree
}

func TestNewLayout(t *testing.T) {
	l := NewLayout(gridTree(t))

	if got := l.Bounds(); got != geometry.R(0, 0, 4, 4) {
		t.Errorf("Bounds() = %v, want [0 0 4 4]", got)
	}
	if l.Shape != "V(H(1,3),H(2,4))" {
		t.Errorf("Shape = %q, want V(H(1,3),H(2,4))", l.Shape)
	}
	if len(l.Modules) != 4 {
		t.Fatalf("got %d modules, want 4", len(l.Modules))
	}
	if len(l.Cuts) != 3 {
		t.Fatalf("got %d cuts, want 3", len(l.Cuts))
	}
	if c := l.Cuts[0]; c.Split != "V" || c.Depth != 0 || c.Width != 4 {
		t.Errorf("root cut = %+v, want V at depth 0 spanning width 4", c)
	}

	nets := 0
	for _, m := range l.Modules {
		if m.Net {
			nets++
			if m.Sign == "" {
				t.Errorf("net module %s has no sign", m.ID)
			}
		}
	}
	if nets != 2 {
		t.Errorf("net modules = %d, want 2", nets)
	}
}

func TestLayoutRoundTrip(t *testing.T) {
	tree := gridTree(t)
	if _, err := tree.ApplyNetMigration(map[string]bool{"4": true}, geometry.Pt(0, 0)); err != nil {
		t.Fatalf("ApplyNetMigration: %v", err)
	}
	l := NewLayout(tree)
	l.Target = NewPoint(geometry.Pt(0, 0))

	var buf bytes.Buffer
	if err := WriteLayout(&buf, l); err != nil {
		t.Fatalf("WriteLayout: %v", err)
	}
	if !strings.Contains(buf.String(), `"swapped": true`) {
		t.Error("encoded layout should flag swapped cuts")
	}

	back, err := ReadLayout(&buf)
	if err != nil {
		t.Fatalf("ReadLayout: %v", err)
	}
	if back.Shape != l.Shape || len(back.Modules) != len(l.Modules) {
		t.Errorf("round trip = %+v, want %+v", back, l)
	}
	if back.Target == nil || back.Target.Geometry() != geometry.Pt(0, 0) {
		t.Errorf("Target = %v, want (0, 0)", back.Target)
	}

	rebuilt, err := back.Tree()
	if err != nil {
		t.Fatalf("Tree(): %v", err)
	}
	for _, m := range tree.Leaves() {
		got, ok := rebuilt.Rect(m.ID)
		if !ok {
			t.Errorf("rebuilt tree is missing module %s", m.ID)
			continue
		}
		if got != m.Rect {
			t.Errorf("rebuilt Rect(%s) = %v, want %v", m.ID, got, m.Rect)
		}
	}
}

func TestLayoutDesignKeepsSigns(t *testing.T) {
	l := NewLayout(gridTree(t))

	d, err := l.Design()
	if err != nil {
		t.Fatalf("Design(): %v", err)
	}
	net := d.Net()
	if !net["2"] || !net["3"] || len(net) != 2 {
		t.Errorf("Net() = %v, want {2, 3}", net)
	}
}

func TestLayoutErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		code errors.Code
	}{
		{"not json", "modules", errors.ErrCodeInvalidFormat},
		{"wrong type", `{"modules": 3}`, errors.ErrCodeInvalidFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalLayout([]byte(tt.data))
			if !errors.Is(err, tt.code) {
				t.Errorf("UnmarshalLayout() error = %v, want %v", err, tt.code)
			}
		})
	}

	t.Run("bad sign", func(t *testing.T) {
		l := Layout{Modules: []LayoutModule{{ID: "1", Width: 1, Height: 1, Sign: "*"}}}
		if _, err := l.Tree(); !errors.Is(err, errors.ErrCodeInvalidFormat) {
			t.Errorf("Tree() error = %v, want INVALID_FORMAT", err)
		}
	})
}

func TestImportExportLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layout.json")
	l := NewLayout(gridTree(t))

	if err := ExportLayout(l, path); err != nil {
		t.Fatalf("ExportLayout: %v", err)
	}
	back, err := ImportLayout(path)
	if err != nil {
		t.Fatalf("ImportLayout: %v", err)
	}
	if back.Shape != l.Shape {
		t.Errorf("Shape = %q, want %q", back.Shape, l.Shape)
	}

	if _, err := ImportLayout(path + ".missing"); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("ImportLayout(missing) error = %v, want FILE_NOT_FOUND", err)
	}
}
