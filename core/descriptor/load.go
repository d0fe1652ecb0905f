package descriptor

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"source-resolver/core/blob"

	"gopkg.in/yaml.v3"
)

// ErrInvalid is returned when a descriptor cannot be parsed.
var ErrInvalid = errors.New("invalid source descriptor")

// Load reads and parses a descriptor file. A relative local rootPath is
// resolved against the directory holding the file.
func Load(path string) (*Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read descriptor %s: %w", path, err)
	}
	src, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if kind, err := src.Storage.Kind(); err == nil && kind == blob.KindLocal &&
		src.Storage.RootPath != "" && !filepath.IsAbs(src.Storage.RootPath) {
		src.Storage.RootPath = filepath.Join(filepath.Dir(path), src.Storage.RootPath)
	}
	return src, nil
}

// Parse parses YAML data into a Source.
func Parse(data []byte) (*Source, error) {
	var src Source
	if err := yaml.Unmarshal(data, &src); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if strings.TrimSpace(src.Name) == "" {
		return nil, fmt.Errorf("%w: 'name' is required", ErrInvalid)
	}
	if len(src.Readers) == 0 {
		return nil, fmt.Errorf("%w: at least one reader is required", ErrInvalid)
	}
	return &src, nil
}

// LoadDir loads every *.yaml and *.yml file in dir, sorted by file name.
// Source names must be unique.
func LoadDir(dir string) ([]*Source, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read descriptor directory %s: %w", dir, err)
	}
	var names []string
	for _, e := range entries {
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if e.Type().IsRegular() && (ext == ".yaml" || ext == ".yml") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	out := make([]*Source, 0, len(names))
	seen := make(map[string]string, len(names))
	for _, n := range names {
		src, err := Load(filepath.Join(dir, n))
		if err != nil {
			return nil, err
		}
		if prev, ok := seen[src.Name]; ok {
			return nil, fmt.Errorf("%w: source %q is defined in both %s and %s", ErrInvalid, src.Name, prev, n)
		}
		seen[src.Name] = n
		out = append(out, src)
	}
	return out, nil
}
