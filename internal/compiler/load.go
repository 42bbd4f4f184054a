package compiler

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/bmatcuk/doublestar/v4"

	"github.com/roach88/dasha/internal/system"
)

// LoadMode controls how errors are handled while loading definitions.
type LoadMode int

const (
	// LoadModeFailFast stops on the first error encountered.
	LoadModeFailFast LoadMode = iota
	// LoadModeCollectAll collects all errors before returning.
	LoadModeCollectAll
)

// LoadResult holds the definitions compiled from a set of files.
type LoadResult struct {
	Definitions []*system.Definition
	Files       []string
}

// FindCUEFiles returns every .cue file under dir, recursively, sorted.
func FindCUEFiles(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", dir)
	}
	matches, err := doublestar.Glob(os.DirFS(dir), "**/*.cue", doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("glob error: %w", err)
	}
	files := make([]string, len(matches))
	for i, m := range matches {
		files[i] = filepath.Join(dir, filepath.FromSlash(m))
	}
	sort.Strings(files)
	return files, nil
}

// LoadDir compiles every definitions file under dir.
func LoadDir(dir string, mode LoadMode) (*LoadResult, []error) {
	files, err := FindCUEFiles(dir)
	if err != nil {
		return nil, []error{err}
	}
	return LoadFiles(files, mode)
}

// LoadFiles compiles the given files. Each file is evaluated on its own;
// a system id may be declared only once across all files.
func LoadFiles(files []string, mode LoadMode) (*LoadResult, []error) {
	var errs []error
	ctx := cuecontext.New()
	result := &LoadResult{Files: files}
	seen := make(map[system.ID]string)

	for _, path := range files {
		src, err := os.ReadFile(path)
		if err != nil {
			errs = append(errs, err)
			if mode == LoadModeFailFast {
				return result, errs
			}
			continue
		}
		defs, fileErrs := CompileSource(ctx, path, src)
		for _, def := range defs {
			if prev, dup := seen[def.ID]; dup {
				fileErrs = append(fileErrs, &CompileError{
					Code:    ErrInvalidValue,
					Field:   "system." + string(def.ID),
					Message: fmt.Sprintf("%s: already declared in %s", path, prev),
				})
				continue
			}
			seen[def.ID] = path
			result.Definitions = append(result.Definitions, def)
		}
		errs = append(errs, fileErrs...)
		if len(errs) > 0 && mode == LoadModeFailFast {
			return result, errs[:1]
		}
	}
	return result, errs
}

// CompileSource compiles every system declared in one CUE source.
// Definitions that compile are returned alongside the errors of those
// that do not.
func CompileSource(ctx *cue.Context, filename string, src []byte) ([]*system.Definition, []error) {
	v := ctx.CompileBytes(src, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, []error{formatCUEError(err, "cue")}
	}
	systems := v.LookupPath(cue.ParsePath("system"))
	if !systems.Exists() {
		return nil, nil
	}
	iter, err := systems.Fields()
	if err != nil {
		return nil, []error{formatCUEError(err, "system")}
	}

	var (
		defs []*system.Definition
		errs []error
	)
	for iter.Next() {
		def, err := CompileSystem(iter.Value())
		if err != nil {
			errs = append(errs, err)
			continue
		}
		defs = append(defs, def)
	}
	return defs, errs
}

// Register adds defs to reg, stopping at the first rejection.
func Register(reg *system.Registry, defs []*system.Definition) error {
	for _, def := range defs {
		if err := reg.Register(def); err != nil {
			return err
		}
	}
	return nil
}
