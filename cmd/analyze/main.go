package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/joseph-ayodele/skogsprospekt/internal/analysis"
	"github.com/joseph-ayodele/skogsprospekt/internal/common"
	"github.com/joseph-ayodele/skogsprospekt/internal/entity"
	"github.com/joseph-ayodele/skogsprospekt/internal/logging"
)

// analyze <base.json> [names...] runs analyzers over a saved property record.
func main() {
	cfg := common.LoadConfig()
	logger := slog.New(logging.NewHandler(os.Stderr, cfg.Log.Format, logging.ParseLevel(cfg.Log.Level)))
	slog.SetDefault(logger)

	if len(os.Args) < 2 {
		logger.Error("usage", "cmd", "analyze <base.json> [names...]")
		os.Exit(2)
	}

	raw, err := os.ReadFile(os.Args[1])
	if err != nil {
		logger.Error("read base data", "path", os.Args[1], "error", err)
		os.Exit(1)
	}
	rec, err := entity.DecodeRecord(raw)
	if err != nil {
		logger.Error("decode base data", "path", os.Args[1], "error", err)
		os.Exit(1)
	}
	for _, w := range rec.Warnings() {
		logger.Warn("base data", "warning", w)
	}

	reg := analysis.DefaultRegistry()
	names := os.Args[2:]
	if len(names) == 0 {
		names = reg.Names()
	}

	var opts analysis.Options
	if cfg.Analysis.PresetsFile != "" {
		if opts, err = analysis.LoadPresets(cfg.Analysis.PresetsFile); err != nil {
			logger.Error("load presets", "error", err)
			os.Exit(1)
		}
	}

	out := reg.RunAll(names, rec, opts)
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
