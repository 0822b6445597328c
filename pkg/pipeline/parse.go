package pipeline

import (
	"bytes"
	"strings"

	"github.com/matzehuels/floorplanner/pkg/cache"
	"github.com/matzehuels/floorplanner/pkg/floorplan"
	pkgio "github.com/matzehuels/floorplanner/pkg/io"
)

// Parse reads the design named by opts: the pre-parsed Design, the module
// list file at Path, or the module list text in Modules.
func Parse(opts Options) (*floorplan.Design, error) {
	switch {
	case opts.Design != nil:
		if err := opts.Design.Validate(); err != nil {
			return nil, err
		}
		return opts.Design, nil
	case opts.Path != "":
		return pkgio.ImportModules(opts.Path)
	default:
		return pkgio.ParseModules(opts.Modules)
	}
}

// DesignHash returns the content hash of d: its module list text plus the
// module IDs, so renamed modules hash differently.
func DesignHash(d *floorplan.Design) string {
	var buf bytes.Buffer
	_ = pkgio.WriteModules(&buf, d.Modules)
	buf.WriteString("#" + strings.Join(d.IDs(), ","))
	return cache.Hash(buf.Bytes())
}

// source names the module source in logs and hooks.
func source(opts Options) string {
	switch {
	case opts.Design != nil:
		return "design"
	case opts.Path != "":
		return opts.Path
	default:
		return "inline"
	}
}
