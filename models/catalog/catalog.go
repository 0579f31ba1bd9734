// Package catalog collects the bundled systems: the Go models plus the YAML
// systems embedded from systems/.
package catalog

import (
	"embed"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/rfielding/spmm-learner/models/expr"
	"github.com/rfielding/spmm-learner/models/palindrome"
	"github.com/rfielding/spmm-learner/models/random"
	"github.com/rfielding/spmm-learner/spmm"
)

//go:embed systems/*.yaml
var systemFiles embed.FS

// All returns every bundled system sorted by name.
func All() ([]spmm.Spec, error) {
	specs := []spmm.Spec{
		palindrome.Model{},
		expr.Model{},
		random.Model{Config: random.DefaultConfig()},
	}

	entries, err := systemFiles.ReadDir("systems")
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		data, err := systemFiles.ReadFile(path.Join("systems", e.Name()))
		if err != nil {
			return nil, err
		}
		f, err := spmm.ParseSystemYAML(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", e.Name(), err)
		}
		specs = append(specs, spmm.YAMLSpec{File: f})
	}

	sort.Slice(specs, func(i, j int) bool { return specs[i].Name() < specs[j].Name() })
	return specs, nil
}

// Lookup finds a bundled system by name.
func Lookup(name string) (spmm.Spec, error) {
	specs, err := All()
	if err != nil {
		return nil, err
	}
	for _, s := range specs {
		if s.Name() == name {
			return s, nil
		}
	}
	return nil, fmt.Errorf("unknown model %q (see `spmm models`)", name)
}

// Resolve accepts a bundled name or a path to a YAML system file.
func Resolve(nameOrPath string) (spmm.Spec, error) {
	if strings.HasSuffix(nameOrPath, ".yaml") || strings.HasSuffix(nameOrPath, ".yml") {
		f, err := spmm.LoadSystemFile(nameOrPath)
		if err != nil {
			return nil, err
		}
		return spmm.YAMLSpec{File: f}, nil
	}
	return Lookup(nameOrPath)
}

// RandomSpecs returns one random system per seed.
func RandomSpecs(seeds []uint64, procedures, internals, size int) []spmm.Spec {
	specs := make([]spmm.Spec, 0, len(seeds))
	for _, seed := range seeds {
		specs = append(specs, random.Model{Config: random.Config{
			Seed:       seed,
			Procedures: procedures,
			Internals:  internals,
			Size:       size,
		}})
	}
	return specs
}
