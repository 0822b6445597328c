package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/floorplanner/pkg/errors"
)

// stdoutPath writes a single artifact to standard output.
const stdoutPath = "-"

// artifactWriteParams describes where rendered artifacts go.
type artifactWriteParams struct {
	artifacts map[string][]byte
	formats   []string
	input     string // source file; names the outputs when output is empty
	output    string // file (single format), base path (several) or "-"
	suffix    string // inserted before the extension of derived names
	cacheHit  bool
}

// artifactPaths returns the output path of every format.
//
// A single format with an explicit output is written to exactly that path.
// Otherwise each format gets <base>.<format>, where base is the output with
// its extension removed or, without output, the input with its extension
// replaced by the suffix.
func artifactPaths(p artifactWriteParams) (map[string]string, error) {
	paths := make(map[string]string, len(p.formats))
	if p.output != "" && len(p.formats) == 1 {
		paths[p.formats[0]] = p.output
		return paths, nil
	}
	if p.output == stdoutPath {
		return nil, errors.New(errors.ErrCodeInvalidInput, "cannot write %d formats to stdout", len(p.formats))
	}

	base := strings.TrimSuffix(p.output, filepath.Ext(p.output))
	if base == "" {
		base = strings.TrimSuffix(p.input, filepath.Ext(p.input))
		if p.suffix != "" {
			base += "." + p.suffix
		}
	}
	for _, f := range p.formats {
		paths[f] = base + "." + f
	}
	return paths, nil
}

// writeArtifacts writes each artifact to its path and lists the files.
func writeArtifacts(p artifactWriteParams) error {
	paths, err := artifactPaths(p)
	if err != nil {
		return err
	}
	for _, f := range p.formats {
		data, ok := p.artifacts[f]
		if !ok {
			return fmt.Errorf("no %s artifact was rendered", f)
		}
		path := paths[f]
		if path == stdoutPath {
			if _, err := os.Stdout.Write(data); err != nil {
				return fmt.Errorf("write stdout: %w", err)
			}
			continue
		}
		if err := errors.ValidatePath(path); err != nil {
			return err
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(path)
	}
	if p.cacheHit {
		printDetail("artifacts served from cache")
	}
	return nil
}
