package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/hotswap-dev/hotswap"
)

func main() {
	configPath := flag.String("config", "hotswap.toml", "redefinition manifest")
	capsOnly := flag.Bool("caps", false, "print strategy availability and exit")
	flag.Parse()

	if err := run(*configPath, *capsOnly); err != nil {
		fmt.Fprintf(os.Stderr, "hotswapctl: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, capsOnly bool) error {
	access, err := hotswap.Bootstrap()
	if err != nil {
		return err
	}

	if capsOnly {
		fmt.Print(hotswap.New(access).Capabilities().String())
		return nil
	}

	m, err := loadManifest(configPath)
	if err != nil {
		return err
	}

	logger := zerolog.Nop()
	if m.Verbose {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
			Level(zerolog.DebugLevel).
			With().Timestamp().Logger()
	}

	r := hotswap.New(access, hotswap.WithLogger(logger))

	reqs := make([]hotswap.Request, 0, len(m.Units))
	for _, u := range m.Units {
		current, err := os.ReadFile(u.Load)
		if err != nil {
			return fmt.Errorf("unit %q: %w", u.Name, err)
		}
		patch, err := os.ReadFile(u.Patch)
		if err != nil {
			return fmt.Errorf("unit %q: %w", u.Name, err)
		}

		h, err := access.RawDefine(u.Name, current)
		if err != nil {
			return fmt.Errorf("unit %q: %w", u.Name, err)
		}
		reqs = append(reqs, hotswap.Request{Target: h, Code: patch})
	}

	res := r.RedefineWith(reqs, m.Preferred)
	fmt.Print(res.Report())

	if m.Verbose {
		for i, req := range reqs {
			asm, err := access.DescribeUnit(req.Target)
			if err != nil {
				logger.Debug().Err(err).Str("unit", m.Units[i].Name).Msg("disassembly unavailable")
				continue
			}
			fmt.Fprintf(os.Stderr, "unit %s:\n%s", m.Units[i].Name, asm)
		}
	}

	if pending := r.PendingIntents(); len(pending) > 0 {
		fmt.Printf("%d unit(s) journaled for deferred redefinition\n", len(pending))
	}

	if !res.Success {
		return fmt.Errorf("redefinition failed for %d of %d units", res.Processed-res.Succeeded, res.Processed)
	}
	return nil
}
