package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"promptbench/internal/common/fsutil"
	"promptbench/pkg/types"
)

// LoadDir scans a directory for *.gguf files and builds a model catalog from
// filenames. ID is the full filename; Path is the absolute file path.
func LoadDir(dir string) ([]types.Model, error) {
	abs, err := fsutil.ResolveDir(dir)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}
	var models []types.Model
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(strings.ToLower(name), ".gguf") {
			continue
		}
		m := types.Model{ID: name, Name: name, Path: filepath.Join(abs, name), Quant: quantFromName(name)}
		if info, err := e.Info(); err == nil {
			m.SizeBytes = info.Size()
		}
		models = append(models, m)
	}
	sort.Slice(models, func(i, j int) bool { return models[i].ID < models[j].ID })
	return models, nil
}

var quantPattern = regexp.MustCompile(`^(I?Q[0-9][0-9A-Z_]*|F16|F32|BF16)$`)

// quantFromName picks the quantization tag out of names like
// "llama-3.1-8b.Q4_K_M.gguf". Returns "" when none is recognizable.
func quantFromName(name string) string {
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	fields := strings.FieldsFunc(stem, func(r rune) bool { return r == '.' || r == '-' })
	for i := len(fields) - 1; i >= 0; i-- {
		if f := strings.ToUpper(fields[i]); quantPattern.MatchString(f) {
			return f
		}
	}
	return ""
}
