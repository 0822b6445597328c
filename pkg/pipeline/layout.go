package pipeline

import (
	"sort"

	"github.com/matzehuels/floorplanner/pkg/errors"
	"github.com/matzehuels/floorplanner/pkg/floorplan"
	"github.com/matzehuels/floorplanner/pkg/geometry"
	pkgio "github.com/matzehuels/floorplanner/pkg/io"
	"github.com/matzehuels/floorplanner/pkg/slicing"
)

// Optimize runs opts.Operation on tree and verifies the tree afterwards.
// OpBuild leaves the tree unchanged.
func Optimize(tree *slicing.Tree, design *floorplan.Design, opts Options) (OptimizeInfo, error) {
	info := OptimizeInfo{Operation: opts.Operation}

	switch opts.Operation {
	case OpBuild:
		return info, nil

	case OpMigrate:
		net := MigrationNet(design, opts)
		target := opts.Target()
		if c, ok := tree.NetCenter(net); ok {
			info.CenterBefore = pkgio.NewPoint(c)
			info.DistanceBefore = geometry.Distance(c, target)
		}
		res, err := tree.ApplyNetMigration(net, target)
		if err != nil {
			return info, err
		}
		info.Swaps = res.Swaps
		if c, ok := tree.NetCenter(net); ok {
			info.CenterAfter = pkgio.NewPoint(c)
			info.DistanceAfter = geometry.Distance(c, target)
		}

	case OpReduce:
		a, b, err := ReducePair(design, opts)
		if err != nil {
			return info, err
		}
		info.Pair = []string{a, b}
		info.DistanceBefore = pairDistance(tree, a, b)
		res, err := tree.ReduceDistance(a, b)
		if err != nil {
			return info, err
		}
		info.Swaps = res.Swaps
		info.DistanceAfter = pairDistance(tree, a, b)

	default:
		return info, ValidateOperation(opts.Operation)
	}

	if err := tree.Check(); err != nil {
		return info, errors.Wrap(errors.ErrCodeInternal, err, "%s left an inconsistent tree", opts.Operation)
	}
	return info, nil
}

// MigrationNet returns the net to migrate: opts.Net when given, otherwise
// every signed module of the design.
func MigrationNet(design *floorplan.Design, opts Options) map[string]bool {
	if len(opts.Net) == 0 {
		return design.Net()
	}
	net := make(map[string]bool, len(opts.Net))
	for _, id := range opts.Net {
		net[id] = true
	}
	return net
}

// ReducePair returns the two modules to bring together: opts.A and opts.B
// when given, otherwise the design's net when it has exactly two members.
func ReducePair(design *floorplan.Design, opts Options) (string, string, error) {
	if opts.A != "" || opts.B != "" {
		if err := errors.ValidatePair(opts.A, opts.B); err != nil {
			return "", "", err
		}
		return opts.A, opts.B, nil
	}
	ids := design.NetIDs()
	if len(ids) != 2 {
		return "", "", errors.New(errors.ErrCodeInvalidInput,
			"reduce needs two modules: name a pair or mark exactly two modules with + or - (found %d)", len(ids))
	}
	return ids[0], ids[1], nil
}

func pairDistance(tree *slicing.Tree, a, b string) float64 {
	ra, okA := tree.Rect(a)
	rb, okB := tree.Rect(b)
	if !okA || !okB {
		return 0
	}
	return geometry.Distance(ra.Center(), rb.Center())
}

func sortedIDs(net map[string]bool) []string {
	ids := make([]string, 0, len(net))
	for id, in := range net {
		if in {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}
