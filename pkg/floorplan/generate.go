package floorplan

import (
	"math/rand/v2"
	"strconv"

	"github.com/matzehuels/floorplanner/pkg/errors"
	"github.com/matzehuels/floorplanner/pkg/geometry"
)

// GenerateOptions configures [Generate].
type GenerateOptions struct {
	Width   int // chip width in grid units
	Height  int // chip height in grid units
	NetSize int // number of modules flagged as net members
}

var defaultGenerateOpts = GenerateOptions{
	Width:   24,
	Height:  16,
	NetSize: 2,
}

// Generate produces a random sliceable design of n modules by recursively
// cutting a Width x Height chip at integer positions. The result is
// deterministic for a given seed. Modules are returned in shuffled order so
// the builder sees an unordered list; IDs follow that order.
func Generate(n int, seed uint64, opts *GenerateOptions) (*Design, error) {
	if opts == nil {
		opts = &defaultGenerateOpts
	}
	if n < 1 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "module count must be positive, got %d", n)
	}
	if opts.Width < 1 || opts.Height < 1 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "chip size must be positive, got %dx%d", opts.Width, opts.Height)
	}
	if n > opts.Width*opts.Height {
		return nil, errors.New(errors.ErrCodeInvalidInput, "%d modules do not fit a %dx%d grid", n, opts.Width, opts.Height)
	}

	rng := rand.New(rand.NewPCG(seed, seed^0xdeadbeef))
	rects := []geometry.Rect{geometry.R(0, 0, float64(opts.Width), float64(opts.Height))}

	for len(rects) < n {
		var splittable []int
		for i, r := range rects {
			if r.Width >= 2 || r.Height >= 2 {
				splittable = append(splittable, i)
			}
		}
		i := splittable[rng.IntN(len(splittable))]
		a, b := cut(rects[i], rng)
		rects[i] = a
		rects = append(rects, b)
	}

	rng.Shuffle(len(rects), func(i, j int) { rects[i], rects[j] = rects[j], rects[i] })

	netSize := max(0, min(opts.NetSize, n))
	net := rng.Perm(n)[:netSize]
	modules := make([]Module, n)
	for i, r := range rects {
		modules[i] = Module{ID: strconv.Itoa(i + 1), Rect: r}
	}
	for k, i := range net {
		if k%2 == 0 {
			modules[i].Sign = SignPos
		} else {
			modules[i].Sign = SignNeg
		}
	}
	return &Design{Modules: modules}, nil
}

// cut splits r at a random integer offset along a random admissible axis.
func cut(r geometry.Rect, rng *rand.Rand) (geometry.Rect, geometry.Rect) {
	vertical := r.Width >= 2
	if r.Width >= 2 && r.Height >= 2 {
		vertical = rng.IntN(2) == 0
	}
	if vertical {
		at := float64(rng.IntN(int(r.Width)-1) + 1)
		return geometry.R(r.X, r.Y, at, r.Height), geometry.R(r.X+at, r.Y, r.Width-at, r.Height)
	}
	at := float64(rng.IntN(int(r.Height)-1) + 1)
	return geometry.R(r.X, r.Y, r.Width, at), geometry.R(r.X, r.Y+at, r.Width, r.Height-at)
}
