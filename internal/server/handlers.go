package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/skogsprospekt/constants"
	"github.com/joseph-ayodele/skogsprospekt/internal/analysis"
	"github.com/joseph-ayodele/skogsprospekt/internal/common"
	"github.com/joseph-ayodele/skogsprospekt/internal/entity"
	"github.com/joseph-ayodele/skogsprospekt/internal/export"
	processor "github.com/joseph-ayodele/skogsprospekt/internal/pipeline"
)

const maxJSONBody = 4 << 20

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "ok")
}

type uploadResponse struct {
	OK  bool   `json:"ok"`
	Key string `json:"key"`
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if !constants.IsPDFContentType(r.Header.Get("Content-Type")) {
		writeJSONError(w, http.StatusBadRequest, "Skicka application/pdf")
		return
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxUpload))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSONError(w, http.StatusRequestEntityTooLarge, "File too large")
			return
		}
		writeJSONError(w, http.StatusBadRequest, "Could not read body")
		return
	}
	if len(body) == 0 {
		writeJSONError(w, http.StatusBadRequest, "Skicka application/pdf")
		return
	}

	key := constants.UploadKey(uuid.NewString())
	if _, err := s.blobs.Put(r.Context(), key, constants.ContentTypePDF, body); err != nil {
		writeError(w, r, err)
		return
	}
	common.LoggerFromContext(r.Context()).Info("upload.stored", "key", key, "size", len(body))
	writeJSON(w, http.StatusOK, uploadResponse{OK: true, Key: key})
}

func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	var req processor.ProcessRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := s.proc.Process(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	switch strings.ToLower(r.URL.Query().Get("format")) {
	case "", "json":
		writeJSON(w, http.StatusOK, res)
	case "xlsx":
		b, err := s.export.XLSX(reportFor(res))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeAttachment(w, constants.ContentTypeXLSX, res.Key, "xlsx", b)
	case "html":
		b, err := s.export.HTML(reportFor(res))
		if err != nil {
			writeError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", constants.ContentTypeHTML)
		_, _ = w.Write(b)
	default:
		writeJSONError(w, http.StatusBadRequest, "Unknown format")
	}
}

type analyzeRequest struct {
	BaseData json.RawMessage `json:"base_data"`
	Analyses []string        `json:"analyses"`
	Options  map[string]any  `json:"options"`
}

type analyzeResponse struct {
	OK       bool                       `json:"ok"`
	Data     *entity.PropertyRecord     `json:"data"`
	Analyses map[string]analysis.Result `json:"analyses"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if len(req.BaseData) == 0 || string(req.BaseData) == "null" {
		writeJSONError(w, http.StatusBadRequest, "Saknar 'base_data'")
		return
	}
	rec, err := entity.DecodeRecord(req.BaseData)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Ogiltig 'base_data'")
		return
	}

	var out map[string]analysis.Result
	if s.proc != nil {
		out = s.proc.Analyze(rec, req.Analyses, req.Options)
	} else {
		out = s.registry.RunAll(req.Analyses, rec, analysis.ParseOptions(req.Options))
	}
	writeJSON(w, http.StatusOK, analyzeResponse{OK: true, Data: rec, Analyses: out})
}

func (s *Server) handleAnalyzers(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "analyzers": s.registry.Names()})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "*")
	if key == "" || common.BlobKey("key", key) != nil {
		writeJSONError(w, http.StatusNotFound, "Not found")
		return
	}
	blob, err := s.blobs.Get(r.Context(), key)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			writeJSONError(w, http.StatusNotFound, "Not found")
			return
		}
		writeError(w, r, err)
		return
	}
	ct := blob.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	w.Header().Set("Content-Type", ct)
	_, _ = w.Write(blob.Data)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return common.InvalidInputError("Tom begäran")
		}
		return common.InvalidInputErrorf("Ogiltig JSON: %v", err)
	}
	return nil
}

func reportFor(res *processor.ProcessResult) export.Report {
	return export.Report{
		Key:      res.Key,
		Model:    res.Model,
		Source:   res.Source,
		Data:     res.Data,
		Analyses: res.Analyses,
	}
}

func writeAttachment(w http.ResponseWriter, contentType, key, ext string, b []byte) {
	name := strings.TrimSuffix(key[strings.LastIndex(key, "/")+1:], ".pdf")
	if name == "" {
		name = "rapport"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+"."+ext+`"`)
	_, _ = w.Write(b)
}
