// Package store persists dashboard state between sessions: the saved
// FilterState of each domain and the history of accepted uploads.
package store

import (
	"context"

	"github.com/sells-group/sheetmetrics/internal/model"
)

// Store is the persistence collaborator of a dashboard session.
type Store interface {
	// Filter state
	SaveFilterState(ctx context.Context, domain model.Domain, fs model.FilterState) error
	// LoadFilterState returns nil, nil when nothing was saved for the domain.
	LoadFilterState(ctx context.Context, domain model.Domain) (*model.FilterState, error)

	// Uploads
	RecordUpload(ctx context.Context, meta model.UploadMetadata) (*model.UploadMetadata, error)
	LatestUpload(ctx context.Context, domain model.Domain) (*model.UploadMetadata, error)
	ListUploads(ctx context.Context, domain model.Domain, limit int) ([]model.UploadMetadata, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
