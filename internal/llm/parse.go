package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/joseph-ayodele/skogsprospekt/internal/entity"
)

// ErrSchemaValidation wraps schema failures that survived the lenient pass.
var ErrSchemaValidation = errors.New("schema validation failed")

// ParseStats reports which recovery steps were needed.
type ParseStats struct {
	Recovered bool
	Changes   []string
	Dropped   []string
}

// ParsePropertyContent turns model content into a validated record. When the
// content holds no JSON object, the raw provider response is scanned for an
// escaped one instead. The returned bytes are the normalized document.
func ParsePropertyContent(content string, raw []byte, logger *slog.Logger) (*entity.PropertyRecord, []byte, ParseStats, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var stats ParseStats

	m, err := DecodeObject(content)
	if err != nil {
		m, err = RecoverInnerJSON(raw)
		if err != nil {
			return nil, nil, stats, fmt.Errorf("decode model content: %w", err)
		}
		stats.Recovered = true
		logger.Warn("llm.extract.recovered_from_raw", "raw_bytes", len(raw))
	}

	stats.Changes = NormalizePropertyMap(m, logger)
	doc, err := json.Marshal(m)
	if err != nil {
		return nil, nil, stats, fmt.Errorf("encode normalized: %w", err)
	}

	if vErr := ValidateProperty(doc); vErr != nil {
		stats.Dropped = SanitizeOptionalFields(m)
		doc, err = json.Marshal(m)
		if err != nil {
			return nil, nil, stats, fmt.Errorf("encode sanitized: %w", err)
		}
		if vErr2 := ValidateProperty(doc); vErr2 != nil {
			logger.Error("llm.extract.schema_validation_failed", "error", vErr2, "content", string(doc))
			return nil, doc, stats, fmt.Errorf("%w: %v", ErrSchemaValidation, vErr2)
		}
		logger.Warn("llm.extract.lenient_sanitize_applied", "dropped", stats.Dropped, "first_error", vErr.Error())
	}

	return entity.RecordFromMap(m), doc, stats, nil
}
