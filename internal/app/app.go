// Package app assembles the collaborators shared by the binaries.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/joseph-ayodele/skogsprospekt/internal/analysis"
	"github.com/joseph-ayodele/skogsprospekt/internal/common"
	"github.com/joseph-ayodele/skogsprospekt/internal/events"
	"github.com/joseph-ayodele/skogsprospekt/internal/extract"
	"github.com/joseph-ayodele/skogsprospekt/internal/llm"
	"github.com/joseph-ayodele/skogsprospekt/internal/llm/gemini"
	"github.com/joseph-ayodele/skogsprospekt/internal/llm/openai"
	"github.com/joseph-ayodele/skogsprospekt/internal/pdftext"
	processor "github.com/joseph-ayodele/skogsprospekt/internal/pipeline"
	parse "github.com/joseph-ayodele/skogsprospekt/internal/pipeline/parsefields"
	"github.com/joseph-ayodele/skogsprospekt/internal/pipeline/textextract"
	"github.com/joseph-ayodele/skogsprospekt/internal/repository"
)

// NewExtractor picks the LLM provider from cfg.
func NewExtractor(ctx context.Context, cfg common.LLMConfig, logger *slog.Logger) (llm.PropertyExtractor, error) {
	switch cfg.Provider {
	case "", "openai":
		return openai.NewClient(openai.Config{
			APIKey:          cfg.APIKey,
			BaseURL:         cfg.BaseURL,
			Model:           cfg.Model,
			API:             cfg.API,
			Temperature:     cfg.Temperature,
			MaxOutputTokens: cfg.MaxOutputTokens,
			Timeout:         cfg.Timeout,
		}, logger), nil
	case "gemini":
		return gemini.NewClient(ctx, gemini.Config{
			APIKey:      cfg.GeminiAPIKey,
			Model:       cfg.GeminiModel,
			Temperature: cfg.Temperature,
			Timeout:     cfg.Timeout,
		}, logger)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}

// NewTextExtractor returns nil when server side extraction is switched off.
func NewTextExtractor(cfg common.PDFTextConfig, logger *slog.Logger) extract.TextExtractor {
	if cfg.Mode == pdftext.ModeOff {
		return nil
	}
	x := pdftext.NewExtractor(pdftext.Config{
		Mode:      cfg.Mode,
		Pdftotext: cfg.PdftotextPath,
		MaxChars:  cfg.MaxChars,
	}, logger)
	return extract.NewPDFTextAdapter(x, logger)
}

// NewProcessor wires the /process pipeline. sink may be nil.
func NewProcessor(cfg *common.Config, blobs repository.BlobRepository, fe llm.PropertyExtractor, sink processor.EventSink, logger *slog.Logger) (*processor.Processor, error) {
	text := textextract.NewPipeline(NewTextExtractor(cfg.PDFText, logger), logger)
	p := processor.NewProcessor(logger, blobs, text, parse.NewPipeline(logger, fe), analysis.DefaultRegistry())
	p.DefaultModel = cfg.LLM.Model
	if cfg.LLM.Provider == "gemini" {
		p.DefaultModel = cfg.LLM.GeminiModel
	}
	if sink != nil {
		p.Events = sink
	}

	if cfg.Analysis.PresetsFile != "" {
		presets, err := analysis.LoadPresets(cfg.Analysis.PresetsFile)
		if err != nil {
			return nil, fmt.Errorf("load presets: %w", err)
		}
		p.Presets = presets
		logger.Info("analysis.presets.loaded", "file", cfg.Analysis.PresetsFile)
	}
	return p, nil
}

// NewPublisher dials AMQP when a URL is configured, else returns a no-op publisher.
func NewPublisher(cfg common.EventsConfig, logger *slog.Logger) (events.Publisher, error) {
	if cfg.AMQPURL == "" {
		return events.NoopPublisher{Logger: logger}, nil
	}
	pub, err := events.DialAMQP(events.AMQPConfig{
		URL:        cfg.AMQPURL,
		Exchange:   cfg.Exchange,
		RoutingKey: cfg.RoutingKey,
	}, logger)
	if err != nil {
		return nil, err
	}
	return pub, nil
}
