package slicing

import (
	"strings"
	"testing"

	"github.com/matzehuels/floorplanner/pkg/floorplan"
	"github.com/matzehuels/floorplanner/pkg/geometry"
)

func TestToDOT(t *testing.T) {
	tree := mustBuild(t, grid())

	dot := tree.ToDOT()

	if !strings.HasPrefix(dot, "digraph SlicingTree {") {
		t.Error("ToDOT() should start with 'digraph SlicingTree {'")
	}
	if !strings.HasSuffix(strings.TrimSpace(dot), "}") {
		t.Error("ToDOT() should end with '}'")
	}

	expected := []string{
		"rankdir=TB",
		"arrowhead=none",
		`label="V"`,
		`label="H"`,
		`label="bottom"`,
		`label="right"`,
		`label="1\n2x2"`,
		`label="4\n2x2"`,
	}
	for _, exp := range expected {
		if !strings.Contains(dot, exp) {
			t.Errorf("ToDOT() missing %q", exp)
		}
	}
	if strings.Contains(dot, "darkorange") {
		t.Error("fresh tree should not mark swapped cuts")
	}
}

func TestToDOTMarksSwapsAndNet(t *testing.T) {
	mods := grid()
	mods[2].Sign = floorplan.SignPos
	tree := mustBuild(t, mods)
	if _, err := tree.ReduceDistance("3", "2"); err != nil {
		t.Fatalf("ReduceDistance: %v", err)
	}

	dot := tree.ToDOT()
	if got := strings.Count(dot, "darkorange"); got != 1 {
		t.Errorf("swapped cuts in DOT = %d, want 1", got)
	}
	if got := strings.Count(dot, "lightblue"); got != 1 {
		t.Errorf("net members in DOT = %d, want 1", got)
	}
}

func TestToDOTSingleLeaf(t *testing.T) {
	tree := mustBuild(t, modules(geometry.R(0, 0, 3, 1)))

	dot := tree.ToDOT()
	if !strings.Contains(dot, "shape=box") {
		t.Error("ToDOT() leaf node should have box shape")
	}
	if strings.Contains(dot, "->") {
		t.Error("single leaf should have no edges")
	}
}
