package constants

import (
	"bytes"
	"strings"
)

// Content types served and accepted by the API.
const (
	ContentTypePDF  = "application/pdf"
	ContentTypeJSON = "application/json"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypeHTML = "text/html; charset=utf-8"
)

// UploadPrefix is where uploaded prospectuses are stored.
const UploadPrefix = "uploads/"

// AllowedExtensions holds the file extensions directory ingestion picks up.
var AllowedExtensions = map[string]struct{}{
	"pdf": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// IsPDFContentType accepts application/pdf with or without parameters.
func IsPDFContentType(ct string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(ct)), ContentTypePDF)
}

// HasPDFMagic reports whether data starts with the %PDF- header.
func HasPDFMagic(data []byte) bool {
	return bytes.HasPrefix(data, []byte("%PDF-"))
}

// UploadKey is the storage key for an upload id.
func UploadKey(id string) string {
	return UploadPrefix + id + ".pdf"
}
