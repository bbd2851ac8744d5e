package compiler

import (
	"cmp"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/roach88/statecore/internal/ir"
	"github.com/roach88/statecore/internal/reducer"
	"github.com/roach88/statecore/internal/store"
)

// LoadMode controls how errors are handled during spec loading.
type LoadMode int

const (
	// LoadModeFailFast stops on the first error encountered.
	LoadModeFailFast LoadMode = iota
	// LoadModeCollectAll collects all errors before returning.
	LoadModeCollectAll
)

// ErrNoSlices is returned when a spec source declares no slices.
var ErrNoSlices = errors.New("no slices declared")

// Bundle is a compiled set of slices.
type Bundle struct {
	Slices []*SliceSpec // sorted by name
	Files  []string
	Value  cue.Value // unified CUE value of all files
}

// Slice returns the named slice.
func (b *Bundle) Slice(name string) (*SliceSpec, bool) {
	for _, s := range b.Slices {
		if s.Name == name {
			return s, true
		}
	}
	return nil, false
}

// Reducers returns one reducer per slice, keyed by slice name.
func (b *Bundle) Reducers() map[string]store.Reducer[any] {
	out := make(map[string]store.Reducer[any], len(b.Slices))
	for _, s := range b.Slices {
		out[s.Name] = s.Reducer()
	}
	return out
}

// Reducer combines every slice into a root reducer.
func (b *Bundle) Reducer() (store.Reducer[reducer.State], error) {
	return reducer.Combine(b.Reducers())
}

// IR returns the canonical IR form of the bundle.
func (b *Bundle) IR() ir.IRObject {
	obj := make(ir.IRObject, len(b.Slices))
	for _, s := range b.Slices {
		obj[s.Name] = s.IR()
	}
	return obj
}

// Hash returns the content hash of the compiled slices. Two bundles that
// compile to the same slices have the same hash regardless of file layout.
func (b *Bundle) Hash() (string, error) {
	return ir.SpecHash(b.IR())
}

// LoadDir compiles every .cue file under dir (recursively) into a Bundle.
//
// In LoadModeFailFast loading stops at the first slice that fails to
// compile or validate. In LoadModeCollectAll every slice is compiled and
// validated and all errors are returned; the Bundle then holds only the
// slices without errors.
func LoadDir(dir string, mode LoadMode) (*Bundle, []error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, []error{fmt.Errorf("specs directory: %w", err)}
	}
	if !info.IsDir() {
		return nil, []error{fmt.Errorf("not a directory: %s", dir)}
	}

	files, err := FindCUEFiles(dir)
	if err != nil {
		return nil, []error{fmt.Errorf("scanning %s: %w", dir, err)}
	}
	if len(files) == 0 {
		return nil, []error{fmt.Errorf("no CUE files found in %s", dir)}
	}

	ctx := cuecontext.New()
	var value cue.Value
	for i, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, []error{fmt.Errorf("reading %s: %w", path, err)}
		}
		v := ctx.CompileBytes(data, cue.Filename(path))
		if err := v.Err(); err != nil {
			return nil, []error{formatCUEError(err)}
		}
		if i == 0 {
			value = v
		} else {
			value = value.Unify(v)
		}
	}

	bundle, errs := compileValue(value, mode)
	if bundle != nil {
		bundle.Files = files
	}
	return bundle, errs
}

// CompileSource compiles CUE source text into a Bundle, failing fast.
// filename is used for error positions.
func CompileSource(src, filename string) (*Bundle, error) {
	ctx := cuecontext.New()
	v := ctx.CompileString(src, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	bundle, errs := compileValue(v, LoadModeFailFast)
	if len(errs) > 0 {
		return nil, errs[0]
	}
	bundle.Files = []string{filename}
	return bundle, nil
}

func compileValue(value cue.Value, mode LoadMode) (*Bundle, []error) {
	if err := value.Err(); err != nil {
		return nil, []error{formatCUEError(err)}
	}

	bundle := &Bundle{Value: value}
	var errs []error

	slicesVal := value.LookupPath(cue.ParsePath("slice"))
	if !slicesVal.Exists() {
		return nil, []error{ErrNoSlices}
	}

	iter, err := slicesVal.Fields()
	if err != nil {
		return nil, []error{formatCUEError(err)}
	}

	for iter.Next() {
		spec, err := CompileSlice(iter.Value())
		if err != nil {
			errs = append(errs, err)
			if mode == LoadModeFailFast {
				return bundle, errs
			}
			continue
		}
		if spec.Name == "" {
			spec.Name = label(iter)
		}

		if verrs := Validate(spec); len(verrs) > 0 {
			for _, verr := range verrs {
				errs = append(errs, verr)
			}
			if mode == LoadModeFailFast {
				return bundle, errs
			}
			continue
		}
		bundle.Slices = append(bundle.Slices, spec)
	}

	if len(bundle.Slices) == 0 && len(errs) == 0 {
		return nil, []error{ErrNoSlices}
	}

	slices.SortFunc(bundle.Slices, func(a, b *SliceSpec) int {
		return cmp.Compare(a.Name, b.Name)
	})
	return bundle, errs
}

// FindCUEFiles walks the directory and returns all .cue file paths in
// lexical order.
func FindCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	slices.Sort(files)
	return files, err
}
