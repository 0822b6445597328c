// Package fonts resolves the typeface used for floorplan labels.
//
// No font is embedded in the binary. [Default] looks for a common sans-serif
// family among the installed system fonts and caches the result; [Load]
// reads an explicit TTF/OTF file.
package fonts

import (
	"fmt"
	"sync"

	"github.com/tdewolff/canvas"
)

// FamilyName is the name given to loaded font families.
const FamilyName = "floorplanner"

// SystemFonts lists the system fonts tried by [Default], in order.
var SystemFonts = []string{
	"DejaVu Sans",
	"Liberation Sans",
	"Helvetica",
	"Arial",
	"Noto Sans",
	"sans-serif",
}

// Cache for the system family (resolved once on first access).
var (
	defaultFamily *canvas.FontFamily
	defaultErr    error
	defaultOnce   sync.Once
)

// Default returns the first of [SystemFonts] found on this machine.
// The lookup runs once; later calls return the same family or error.
func Default() (*canvas.FontFamily, error) {
	defaultOnce.Do(func() {
		family := canvas.NewFontFamily(FamilyName)
		for _, name := range SystemFonts {
			if err := family.LoadSystemFont(name, canvas.FontRegular); err == nil {
				defaultFamily = family
				return
			}
		}
		defaultErr = fmt.Errorf("no system font found (tried %v)", SystemFonts)
	})
	return defaultFamily, defaultErr
}

// Load reads a font family from the TTF or OTF file at path.
func Load(path string) (*canvas.FontFamily, error) {
	family := canvas.NewFontFamily(FamilyName)
	if err := family.LoadFontFile(path, canvas.FontRegular); err != nil {
		return nil, fmt.Errorf("load font %s: %w", path, err)
	}
	return family, nil
}
