package blob

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("blob not found")

// Metadata preserves the original upload attributes of flat files so the
// retrieval API can serve them back faithfully.
type Metadata struct {
	FileName    string
	ContentType string
}

// Store is the opaque content store for raw payloads and rendered files.
// Delete is idempotent: removing a key that was never written is not an error,
// which lets archival clear rendered outputs that may not exist.
type Store interface {
	Put(ctx context.Context, key string, data []byte, meta Metadata) error
	Get(ctx context.Context, key string) ([]byte, Metadata, error)
	Delete(ctx context.Context, key string) error
}

// Key scheme: everything belonging to an artefact hangs off its ID so
// archival can enumerate what to remove without a listing operation.
func PayloadKey(artefactID string) string {
	return "artefact:" + artefactID + ":payload"
}

func RenderedHTMLKey(artefactID string) string {
	return "artefact:" + artefactID + ":html"
}

func SpreadsheetKey(artefactID string) string {
	return "artefact:" + artefactID + ":spreadsheet"
}
