package main

import (
	"fmt"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/hotswap-dev/hotswap"
)

// hotswapctl manifest.toml key mapping to a redefinition batch.
type fileConfig struct {
	PreferredStrategy string       `toml:"preferred_strategy"`
	Verbose           bool         `toml:"verbose"`
	Units             []unitConfig `toml:"units"`
}

type unitConfig struct {
	Name  string `toml:"name"`
	Load  string `toml:"load"`
	Patch string `toml:"patch"`
}

type manifest struct {
	Preferred hotswap.StrategyID
	Verbose   bool
	Units     []unitConfig
}

// loadManifest reads the TOML manifest and resolves blob paths relative to
// the manifest's directory.
func loadManifest(path string) (manifest, error) {
	var raw fileConfig
	if _, err := toml.DecodeFile(path, &raw); err != nil {
		return manifest{}, fmt.Errorf("load manifest: %w", err)
	}

	preferred, err := parseStrategy(raw.PreferredStrategy)
	if err != nil {
		return manifest{}, err
	}

	if len(raw.Units) == 0 {
		return manifest{}, fmt.Errorf("manifest %s: no units", path)
	}

	base := filepath.Dir(path)
	for i, u := range raw.Units {
		if u.Name == "" {
			return manifest{}, fmt.Errorf("manifest %s: unit %d has no name", path, i)
		}
		if u.Load == "" || u.Patch == "" {
			return manifest{}, fmt.Errorf("manifest %s: unit %q needs load and patch blobs", path, u.Name)
		}
		if !filepath.IsAbs(u.Load) {
			raw.Units[i].Load = filepath.Join(base, u.Load)
		}
		if !filepath.IsAbs(u.Patch) {
			raw.Units[i].Patch = filepath.Join(base, u.Patch)
		}
	}

	return manifest{
		Preferred: preferred,
		Verbose:   raw.Verbose,
		Units:     raw.Units,
	}, nil
}

func parseStrategy(name string) (hotswap.StrategyID, error) {
	switch name {
	case "", "auto":
		return hotswap.StrategyAuto, nil
	case "direct":
		return hotswap.StrategyDirect, nil
	case "constpool":
		return hotswap.StrategyConstantPool, nil
	case "structure":
		return hotswap.StrategyStructure, nil
	case "rawmemory":
		return hotswap.StrategyRawMemory, nil
	case "fallback":
		return hotswap.StrategyFallback, nil
	default:
		return hotswap.StrategyAuto, fmt.Errorf("unknown strategy %q", name)
	}
}
