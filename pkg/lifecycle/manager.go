package lifecycle

import (
	"context"
	"time"

	"github.com/opencourt/platform/pkg/blob"
	"github.com/opencourt/platform/pkg/common/logger"
	"github.com/opencourt/platform/pkg/common/models"
	"github.com/opencourt/platform/pkg/location"
	"github.com/opencourt/platform/pkg/observability/metrics"
	"github.com/opencourt/platform/pkg/publication"
)

// Store covers the repository operations the lifecycle sweep needs.
type Store interface {
	FindExpired(ctx context.Context, now time.Time) ([]publication.Artefact, error)
	MarkArchived(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*publication.Artefact, error)
	Delete(ctx context.Context, id string) error
}

// Manager retires artefacts. Archiving keeps the row for audit but removes it
// from every read path; deletion removes the row and its stored content.
type Manager struct {
	store    Store
	blobs    blob.Store
	notifier publication.Notifier
}

func NewManager(store Store, blobs blob.Store, notifier publication.Notifier) *Manager {
	return &Manager{store: store, blobs: blobs, notifier: notifier}
}

// ArchiveExpired archives every artefact whose display window has closed at
// the given instant and reports how many it retired. One failing artefact
// does not stop the sweep.
func (m *Manager) ArchiveExpired(ctx context.Context, now time.Time) (int, error) {
	expired, err := m.store.FindExpired(ctx, now)
	if err != nil {
		return 0, err
	}

	archived := 0
	for _, artefact := range expired {
		if err := m.archive(ctx, artefact.ID); err != nil {
			logger.Log.WithError(err).WithField("artefact_id", artefact.ID).Error("failed to archive expired artefact")
			continue
		}
		archived++
	}
	if archived > 0 {
		logger.Log.WithField("count", archived).Info("archived expired artefacts")
	}
	return archived, nil
}

// ArchiveByID archives a single artefact on operator request.
func (m *Manager) ArchiveByID(ctx context.Context, id, requester string) error {
	if err := m.archive(ctx, id); err != nil {
		return err
	}
	logger.Log.WithFields(map[string]interface{}{
		"artefact_id": id,
		"requester":   requester,
	}).Info("artefact archived by operator")
	return nil
}

// archive drops the stored content and then flips the row out of every read
// path. The row itself survives for audit. Blobs go first: a row marked
// archived leaves the expiry scan, so flipping it before the deletes succeed
// would orphan its content on failure. Blob deletes are idempotent, so the
// next sweep converges.
func (m *Manager) archive(ctx context.Context, id string) error {
	if err := m.deleteBlobs(ctx, id); err != nil {
		return err
	}
	if err := m.store.MarkArchived(ctx, id); err != nil {
		return err
	}
	metrics.IncArtefactsArchived()
	return nil
}

func (m *Manager) deleteBlobs(ctx context.Context, id string) error {
	for _, key := range []string{blob.PayloadKey(id), blob.RenderedHTMLKey(id), blob.SpreadsheetKey(id)} {
		if err := m.blobs.Delete(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

// DeleteByID removes an artefact, its stored payload and any rendered
// outputs, then announces the removal so subscribers can drop it too.
func (m *Manager) DeleteByID(ctx context.Context, id, requester string) error {
	artefact, err := m.store.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := m.deleteBlobs(ctx, id); err != nil {
		return err
	}

	if err := m.store.Delete(ctx, id); err != nil {
		return err
	}
	logger.Log.WithFields(map[string]interface{}{
		"artefact_id": id,
		"requester":   requester,
	}).Info("artefact deleted by operator")

	if !location.IsNoMatch(artefact.LocationID) {
		event := models.PublicationEvent{
			Type:        models.EventArtefactDeleted,
			ArtefactID:  artefact.ID,
			ListType:    string(artefact.ListType),
			LocationID:  artefact.LocationID,
			ContentDate: artefact.ContentDate,
			Sensitivity: string(artefact.Sensitivity),
		}
		if err := m.notifier.PublishEvent(ctx, event); err != nil {
			metrics.IncEventPublishFailures()
			logger.Log.WithError(err).WithField("artefact_id", id).Error("failed to announce artefact deletion")
		}
	}
	return nil
}

// RunSweeper archives expired artefacts on a fixed interval until the context
// is cancelled.
func (m *Manager) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if _, err := m.ArchiveExpired(ctx, now.UTC()); err != nil {
				logger.Log.WithError(err).Error("expiry sweep failed")
			}
		}
	}
}
