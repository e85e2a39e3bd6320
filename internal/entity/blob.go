package entity

import "time"

// Blob is a stored upload. Keys are opaque relative paths such as uploads/<uuid>.pdf.
type Blob struct {
	Key         string
	ContentType string
	Size        int64
	SHA256      string // lowercase hex
	Data        []byte
	CreatedAt   time.Time
}
