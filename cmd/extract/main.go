package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joseph-ayodele/skogsprospekt/internal/app"
	"github.com/joseph-ayodele/skogsprospekt/internal/common"
	"github.com/joseph-ayodele/skogsprospekt/internal/entity"
	"github.com/joseph-ayodele/skogsprospekt/internal/logging"
	parse "github.com/joseph-ayodele/skogsprospekt/internal/pipeline/parsefields"
	"github.com/joseph-ayodele/skogsprospekt/internal/pipeline/textextract"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		model      = flag.String("model", "", "model override")
		pagesStr   = flag.String("pages", "", "comma separated 1-based pages, e.g. 1,2,5")
		sliceBytes = flag.Int("slice-bytes", 0, "bytes sent when no text layer is found")
		textOnly   = flag.Bool("text-only", false, "print the extracted text and exit")
	)
	flag.Parse()
	if flag.NArg() != 1 {
		printError("usage: extract [flags] <file.pdf>\n")
		os.Exit(2)
	}
	path := flag.Arg(0)

	pages, err := parsePages(*pagesStr)
	if err != nil {
		printError("Error: invalid --pages: %v\n", err)
		os.Exit(2)
	}

	cfg := common.LoadConfig()
	logger := slog.New(logging.NewHandler(os.Stderr, cfg.Log.Format, logging.ParseLevel(cfg.Log.Level)))
	slog.SetDefault(logger)

	data, err := os.ReadFile(path)
	if err != nil {
		logger.Error("read pdf", "path", path, "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	text := textextract.NewPipeline(app.NewTextExtractor(cfg.PDFText, logger), logger)
	payload, err := text.Run(ctx, textextract.Input{
		Blob:       &entity.Blob{Key: filepath.Base(path), Data: data, Size: int64(len(data))},
		Pages:      pages,
		SliceBytes: *sliceBytes,
	})
	if err != nil {
		logger.Error("prepare payload", "error", err)
		os.Exit(1)
	}
	if *textOnly {
		if payload.Text == "" {
			logger.Error("no text layer", "source", payload.Source)
			os.Exit(1)
		}
		fmt.Println(payload.Text)
		return
	}

	fe, err := app.NewExtractor(ctx, cfg.LLM, logger)
	if err != nil {
		logger.Error("init extractor", "error", err)
		os.Exit(1)
	}
	m := *model
	if m == "" {
		m = cfg.LLM.Model
	}

	start := time.Now()
	rec, _, err := parse.NewPipeline(logger, fe).Run(ctx, m, filepath.Base(path), pages, payload)
	if err != nil {
		logger.Error("extraction failed", "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		os.Exit(1)
	}
	logger.Info("extraction ok", "source", payload.Source, "model", m, "elapsed_ms", time.Since(start).Milliseconds())

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rec); err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}
}

func parsePages(s string) ([]int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var pages []int
	for _, part := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 1 {
			return nil, fmt.Errorf("bad page %q", part)
		}
		pages = append(pages, n)
	}
	return pages, nil
}
