package llm

import (
	"encoding/base64"
	"encoding/json"
	"strconv"
	"strings"
)

const focusHint = `FOKUSERA PÅ AVSNITT OCH TABELLER MED:
- "Sammanställning över fastigheten" (och 1–2 sidor efter),
- virkesförråd (m³sk), m³sk/ha, bonitet (m³sk/ha/år), tillväxt,
- huggningsklasser (S1, S2, G1, G2, K1, K2) i m³sk,
- arealfördelning (skogsmark, inägomark, impediment),
- prisidé/prisförväntan (SEK), taxeringsvärde (SEK),
- byggnader (om de finns).
IGNORERA brödtext, bilder, kartor, visningsinfo.`

// BuildSystemPrompt is the extractor instruction with the schema and focus hints.
func BuildSystemPrompt(req ExtractRequest) string {
	var b strings.Builder
	b.WriteString("Du är en extraktor. Returnera ENBART giltig JSON som matchar följande JSON Schema.\n")
	b.WriteString("Sätt null där uppgift saknas. Inga förklaringar, inga markdown-block, inga extra fält.\n")
	b.WriteString("Ange tal utan enheter och tusentalsavgränsare.\n\n")
	b.WriteString("JSON_SCHEMA:\n")
	b.WriteString(mustJSON(BuildPropertyJSONSchema()))
	b.WriteString("\n\nINSTRUKTIONER:\n")
	b.WriteString(focusHint)
	if note := pageNote(req.Pages); note != "" {
		b.WriteString("\n")
		b.WriteString(note)
	}
	return b.String()
}

// BuildUserPrompt packages the prospectus text, or the base64 slice when no text exists.
func BuildUserPrompt(req ExtractRequest) string {
	var b strings.Builder
	if name := strings.TrimSpace(req.FilenameHint); name != "" {
		b.WriteString("Filnamn: ")
		b.WriteString(name)
		b.WriteString("\n\n")
	}
	if req.HasText() {
		b.WriteString("Detta är text extraherad ur ett svenskt skogsprospekt (PDF).\n\n")
		b.WriteString(req.Text)
		return b.String()
	}
	b.WriteString("Detta är en base64-slice av ett svenskt skogsprospekt (PDF). Fokusera på tabeller och sammanställningar enligt schema.\n\n")
	b.WriteString("PDF_base64:\n")
	b.WriteString(base64.StdEncoding.EncodeToString(req.PDFSlice))
	return b.String()
}

// BuildPrompt joins system and user parts into the single input the responses API takes.
func BuildPrompt(req ExtractRequest) string {
	return "SYSTEM:\n" + BuildSystemPrompt(req) + "\n\nUSER:\n" + BuildUserPrompt(req)
}

func pageNote(pages []int) string {
	if len(pages) == 0 {
		return ""
	}
	s := make([]string, len(pages))
	for i, p := range pages {
		s[i] = strconv.Itoa(p)
	}
	return "Använd i första hand siffror från sidorna: " + strings.Join(s, ", ") + "."
}

func mustJSON(v any) string {
	b, _ := json.Marshal(v)
	return string(b)
}
