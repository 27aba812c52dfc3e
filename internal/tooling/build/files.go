package build

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/conduit-lang/roundtrip/internal/compiler/parser"
)

// OutputPath returns the generated file for input: "point.go" becomes
// "point_roundtrip.go" and "shapes.yml" becomes "shapes_roundtrip.go".
func OutputPath(input, suffix string) string {
	if suffix == "" {
		suffix = DefaultOutputSuffix
	}
	ext := filepath.Ext(input)
	return strings.TrimSuffix(input, ext) + suffix
}

// IsGenerated reports whether path is an output of this tool.
func IsGenerated(path, suffix string) bool {
	if suffix == "" {
		suffix = DefaultOutputSuffix
	}
	return strings.HasSuffix(path, suffix)
}

// IsInput reports whether path is a file generation reads: Go sources other
// than tests and generated outputs, and shape files.
func IsInput(path, suffix string) bool {
	if parser.IsShapeFile(path) {
		return true
	}
	return strings.HasSuffix(path, ".go") &&
		!strings.HasSuffix(path, "_test.go") &&
		!IsGenerated(path, suffix)
}

// FindInputs walks dir for Go sources, skipping hidden directories, vendor
// and testdata. Shape files are only read when named explicitly. Paths are
// returned sorted.
func FindInputs(dir, suffix string) ([]string, error) {
	var inputs []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if path != dir && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") ||
				name == "vendor" || name == "testdata") {
				return filepath.SkipDir
			}
			return nil
		}
		if IsInput(path, suffix) && !parser.IsShapeFile(path) {
			inputs = append(inputs, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(inputs)
	return inputs, nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
