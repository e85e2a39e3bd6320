// Package pdftext pulls the text layer out of prospectus PDFs so the model can
// read text instead of a base64 slice.
package pdftext

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

// Modes.
const (
	ModeAuto      = "auto"
	ModeNative    = "native"
	ModePdftotext = "pdftotext"
	ModeOff       = "off"
)

// Methods reported in Result.
const (
	MethodNative    = "native"
	MethodPdftotext = "pdftotext"
	MethodNone      = "none"
)

// minLetters is how many letters a text layer needs before it counts as present.
const minLetters = 200

var ErrNoTextLayer = errors.New("pdf has no usable text layer")

type Config struct {
	Mode      string // auto | native | pdftotext | off
	Pdftotext string // binary name or absolute path; if empty -> "pdftotext"
	MaxChars  int    // 0 = no limit
}

type Result struct {
	Text      string
	Pages     int
	Method    string
	Truncated bool
	Duration  time.Duration
	Warnings  []string
}

type Extractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Mode == "" {
		cfg.Mode = ModeAuto
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	return &Extractor{cfg: cfg, runner: execRunner{log: logger}, logger: logger}
}

// WithRunner replaces the command runner.
func (e *Extractor) WithRunner(r Runner) *Extractor {
	e.runner = r
	return e
}

// Extract returns the text of the requested 1-based pages, or of every page
// when pages is empty. ErrNoTextLayer means the caller should fall back to
// sending the PDF bytes.
func (e *Extractor) Extract(ctx context.Context, data []byte, pages []int) (Result, error) {
	start := time.Now()
	res := Result{Method: MethodNone}
	var err error

	switch e.cfg.Mode {
	case ModeOff:
		return res, ErrNoTextLayer
	case ModeNative:
		res, err = e.native(data, pages)
	case ModePdftotext:
		res, err = e.pdftotext(ctx, data, pages)
	default:
		res, err = e.native(data, pages)
		if err != nil || !hasTextLayer(res.Text) {
			e.logger.Debug("pdftext.native.insufficient", "error", err, "chars", len(res.Text))
			fallback, ferr := e.pdftotext(ctx, data, pages)
			if ferr == nil {
				fallback.Warnings = append(res.Warnings, fallback.Warnings...)
				res, err = fallback, nil
			} else if err == nil {
				res.Warnings = append(res.Warnings, ferr.Error())
			}
		}
	}
	res.Duration = time.Since(start)
	if err != nil {
		e.logger.Warn("pdftext.extract.failed", "mode", e.cfg.Mode, "error", err, "elapsed_ms", res.Duration.Milliseconds())
		return res, err
	}
	res.Text = Normalize(res.Text)
	if !hasTextLayer(res.Text) {
		return res, ErrNoTextLayer
	}

	if e.cfg.MaxChars > 0 && utf8.RuneCountInString(res.Text) > e.cfg.MaxChars {
		res.Text = string([]rune(res.Text)[:e.cfg.MaxChars])
		res.Truncated = true
	}
	e.logger.Info("pdftext.extract.ok",
		"method", res.Method,
		"pages", res.Pages,
		"chars", len(res.Text),
		"truncated", res.Truncated,
		"elapsed_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}

func (e *Extractor) native(data []byte, pages []int) (res Result, err error) {
	res.Method = MethodNative
	defer func() {
		// the reader panics on some malformed xref tables
		if p := recover(); p != nil {
			err = fmt.Errorf("read pdf: %v", p)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return res, fmt.Errorf("open pdf: %w", err)
	}
	total := r.NumPage()
	res.Pages = total

	var b strings.Builder
	for _, n := range selectPages(total, pages) {
		page := r.Page(n)
		if page.V.IsNull() {
			continue
		}
		txt, perr := page.GetPlainText(nil)
		if perr != nil {
			res.Warnings = append(res.Warnings, fmt.Sprintf("page %d: %v", n, perr))
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\f\n")
		}
		b.WriteString(txt)
	}
	res.Text = b.String()
	return res, nil
}

func (e *Extractor) pdftotext(ctx context.Context, data []byte, pages []int) (Result, error) {
	res := Result{Method: MethodPdftotext}

	f, err := os.CreateTemp("", "skog-pdf-*.pdf")
	if err != nil {
		return res, err
	}
	defer func() { _ = os.Remove(f.Name()) }()
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return res, fmt.Errorf("write temp pdf: %w", err)
	}
	if err := f.Close(); err != nil {
		return res, err
	}

	// pdftotext -layout -enc UTF-8 -eol unix <path> -
	out, errb, err := e.runner.Run(ctx, e.cfg.Pdftotext, "-layout", "-enc", "UTF-8", "-eol", "unix", f.Name(), "-")
	if err != nil {
		return res, fmt.Errorf("pdftotext: %w: %s", err, truncate(string(errb), 512))
	}

	// a form feed separates pages
	all := strings.Split(strings.TrimRight(string(out), "\f"), "\f")
	res.Pages = len(all)
	selected := make([]string, 0, len(all))
	for _, n := range selectPages(len(all), pages) {
		selected = append(selected, all[n-1])
	}
	res.Text = strings.Join(selected, "\n\f\n")
	return res, nil
}

// selectPages keeps the in-range pages in request order, or all pages.
func selectPages(total int, pages []int) []int {
	if len(pages) == 0 {
		out := make([]int, total)
		for i := range out {
			out[i] = i + 1
		}
		return out
	}
	out := make([]int, 0, len(pages))
	seen := map[int]bool{}
	for _, p := range pages {
		if p >= 1 && p <= total && !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}

func hasTextLayer(s string) bool {
	n := 0
	for _, r := range s {
		if unicode.IsLetter(r) {
			n++
			if n >= minLetters {
				return true
			}
		}
	}
	return false
}
