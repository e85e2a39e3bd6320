package export

import (
	"bytes"
	"fmt"
	"html"
	"strconv"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var markdown = goldmark.New(goldmark.WithExtensions(extension.Table))

// Markdown renders the report as GitHub flavoured Markdown.
func (s *Service) Markdown(r Report) string {
	var b strings.Builder
	title := r.Key
	if r.Data != nil {
		if r.Data.Fastighetsbeteckning != nil {
			title = *r.Data.Fastighetsbeteckning
		} else if r.Data.Fastighet != nil {
			title = *r.Data.Fastighet
		}
	}
	fmt.Fprintf(&b, "# %s\n\n", escapeCell(title))
	fmt.Fprintf(&b, "Fil: `%s` · modell: `%s` · källa: `%s`\n\n", r.Key, r.Model, r.Source)

	if r.Data != nil {
		b.WriteString("## Grunddata\n\n| Fält | Värde |\n|---|---|\n")
		for _, leaf := range Flatten(r.Data) {
			if leaf.Value == nil {
				continue
			}
			fmt.Fprintf(&b, "| %s | %s |\n", leaf.Path, escapeCell(formatValue(leaf.Value)))
		}
		b.WriteString("\n")
	}

	for _, name := range sortedNames(r.Analyses) {
		res := r.Analyses[name]
		fmt.Fprintf(&b, "## %s\n\n", name)
		if !res.OK {
			fmt.Fprintf(&b, "Ej beräknad: `%s`\n\n", res.Error)
			continue
		}
		b.WriteString("| Nyckeltal | Värde |\n|---|---|\n")
		for _, leaf := range Flatten(res.Output) {
			fmt.Fprintf(&b, "| %s | %s |\n", leaf.Path, escapeCell(formatValue(leaf.Value)))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// HTML renders Markdown(r) into a standalone page.
func (s *Service) HTML(r Report) ([]byte, error) {
	start := time.Now()
	var body bytes.Buffer
	if err := markdown.Convert([]byte(s.Markdown(r)), &body); err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}

	var out bytes.Buffer
	out.WriteString("<!doctype html>\n<html lang=\"sv\"><head><meta charset=\"utf-8\"><title>")
	out.WriteString(html.EscapeString(r.Key))
	out.WriteString("</title></head><body>\n")
	out.Write(body.Bytes())
	out.WriteString("</body></html>\n")

	s.logger.Info("export.html.ok", "key", r.Key, "bytes", out.Len(), "elapsed_ms", time.Since(start).Milliseconds())
	return out.Bytes(), nil
}

func formatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return "–"
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		if t {
			return "ja"
		}
		return "nej"
	default:
		return fmt.Sprint(t)
	}
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
