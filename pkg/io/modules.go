package io

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/matzehuels/floorplanner/pkg/errors"
	"github.com/matzehuels/floorplanner/pkg/floorplan"
	"github.com/matzehuels/floorplanner/pkg/geometry"
	"github.com/matzehuels/floorplanner/pkg/slicing"
)

var (
	moduleLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `[ \t\r]+`},
		{Name: "Number", Pattern: `\d+\.?\d*|\.\d+`},
		{Name: "Sign", Pattern: `[+-]`},
	})

	lineParser = participle.MustBuild[moduleLine](
		participle.Lexer(moduleLexer),
		participle.Elide("Whitespace"),
	)
)

// moduleLine is one line of the module list: "x y width height [sign]".
type moduleLine struct {
	X      float64 `parser:"@Number"`
	Y      float64 `parser:"@Number"`
	Width  float64 `parser:"@Number"`
	Height float64 `parser:"@Number"`
	Sign   string  `parser:"@Sign?"`
}

// ReadModules decodes a module list from r.
//
// Each non-blank line describes one module as four non-negative decimal
// numbers followed by an optional sign:
//
//	0 0 2 2 +
//	2 0 2 2
//	0 2 4 1 -
//
// The numbers are x, y, width and height of the module's rectangle with y
// growing upward. A "+" or "-" marks the module as a net member with that
// polarity. Modules are named after their 1-based position among the
// non-blank lines.
//
// ReadModules returns an INVALID_FORMAT error naming the offending line
// for any line that does not match, and the validation errors of
// [floorplan.NewDesign] for duplicate or degenerate modules. ReadModules
// does not close r.
func ReadModules(r io.Reader) (*floorplan.Design, error) {
	var modules []floorplan.Module
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		line, err := lineParser.ParseString("", text)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "line %d: expected \"x y width height [+|-]\"", lineNo)
		}
		sign, err := floorplan.ParseSign(line.Sign)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "line %d", lineNo)
		}
		modules = append(modules, floorplan.Module{
			ID:   strconv.Itoa(len(modules) + 1),
			Rect: geometry.R(line.X, line.Y, line.Width, line.Height),
			Sign: sign,
		})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return floorplan.NewDesign(modules)
}

// ParseModules decodes a module list held in a string. See [ReadModules].
func ParseModules(s string) (*floorplan.Design, error) {
	return ReadModules(strings.NewReader(s))
}

// ImportModules reads the module list file at path. A missing file is
// reported as FILE_NOT_FOUND.
func ImportModules(path string) (*floorplan.Design, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "module list %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadModules(f)
}

// WriteModules encodes modules in the module list format, one per line in
// the given order. Numbers are written in their shortest exact decimal
// form; net members carry their sign.
func WriteModules(w io.Writer, modules []floorplan.Module) error {
	bw := bufio.NewWriter(w)
	for _, m := range modules {
		r := m.Rect
		line := strings.Join([]string{
			formatNumber(r.X), formatNumber(r.Y), formatNumber(r.Width), formatNumber(r.Height),
		}, " ")
		if m.Sign.IsNet() {
			line += " " + m.Sign.String()
		}
		if _, err := bw.WriteString(line + "\n"); err != nil {
			return fmt.Errorf("write: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

// WriteFloorplan writes the tree's modules at their current positions in
// tree order (left subtree first).
func WriteFloorplan(w io.Writer, tree *slicing.Tree) error {
	return WriteModules(w, tree.Leaves())
}

// ExportFloorplan writes the tree's modules to a file at path.
// This is a convenience wrapper around [WriteFloorplan] for file-based output.
func ExportFloorplan(tree *slicing.Tree, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteFloorplan(f, tree); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
