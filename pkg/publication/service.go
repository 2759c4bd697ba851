package publication

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/opencourt/platform/pkg/blob"
	"github.com/opencourt/platform/pkg/common/logger"
	"github.com/opencourt/platform/pkg/common/models"
	"github.com/opencourt/platform/pkg/location"
	"github.com/opencourt/platform/pkg/observability/metrics"
)

// Store is the slice of the repository the service needs; interface-driven so
// the upsert logic is testable without Postgres.
type Store interface {
	FindByDedupKey(ctx context.Context, locationID string, contentDate time.Time, language Language, listType ListType, provenance string) (*Artefact, error)
	Upsert(ctx context.Context, artefact *Artefact) error
	Get(ctx context.Context, id string) (*Artefact, error)
	FindByLocation(ctx context.Context, locationID string, now time.Time) ([]Artefact, error)
	SearchCases(ctx context.Context, term string, now time.Time) ([]Artefact, error)
	FindNoMatch(ctx context.Context) ([]Artefact, error)
}

// Notifier publishes artefact lifecycle events to the subscription feed.
type Notifier interface {
	PublishEvent(ctx context.Context, event models.PublicationEvent) error
}

// blobPutAttempts bounds the retry on the blob boundary; business logic is
// never re-run.
const blobPutAttempts = 3

type Service struct {
	store    Store
	blobs    blob.Store
	notifier Notifier
	search   *SearchTable
}

func NewService(store Store, blobs blob.Store, notifier Notifier, search *SearchTable) *Service {
	return &Service{
		store:    store,
		blobs:    blobs,
		notifier: notifier,
		search:   search,
	}
}

// Ingest stores a JSON list payload under the dedup key derived from the
// validated headers. Re-submission of the same key updates the existing
// artefact in place: the original artefactID and creation time survive, the
// content and dates are overwritten. That "republish = update" semantic is
// what lets a source system re-send a corrected list for the same day.
func (s *Service) Ingest(ctx context.Context, headers HeaderGroup, ref location.Ref, payload []byte) (*Artefact, error) {
	var parsed map[string]interface{}
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return nil, malformedField("payload", "request body is not valid JSON")
	}

	artefact := s.buildArtefact(headers, ref)
	artefact.Search = s.search.Extract(headers.ListType, parsed)
	artefact.PayloadSize = int64(len(payload))

	return s.persist(ctx, artefact, ref, payload, blob.Metadata{ContentType: "application/json"})
}

// IngestFlatFile stores a binary upload (PDF and friends). The original
// filename and content type are preserved so retrieval can serve the file
// back as uploaded; the search map is fixed to the submitting court.
func (s *Service) IngestFlatFile(ctx context.Context, headers HeaderGroup, ref location.Ref, data []byte, fileName, contentType string) (*Artefact, error) {
	artefact := s.buildArtefact(headers, ref)
	artefact.IsFlatFile = true
	artefact.FileName = fileName
	artefact.ContentType = contentType
	artefact.Search = FlatFileSearch(headers.CourtID)
	artefact.PayloadSize = int64(len(data))

	return s.persist(ctx, artefact, ref, data, blob.Metadata{FileName: fileName, ContentType: contentType})
}

func (s *Service) buildArtefact(headers HeaderGroup, ref location.Ref) *Artefact {
	return &Artefact{
		ID:               uuid.New().String(),
		Provenance:       headers.Provenance,
		SourceArtefactID: headers.SourceArtefactID,
		Type:             headers.Type,
		Sensitivity:      headers.Sensitivity,
		Language:         headers.Language,
		DisplayFrom:      headers.DisplayFrom,
		DisplayTo:        headers.DisplayTo,
		ListType:         headers.ListType,
		LocationID:       ref.Encode(),
		ContentDate:      headers.ContentDate,
	}
}

func (s *Service) persist(ctx context.Context, artefact *Artefact, ref location.Ref, payload []byte, meta blob.Metadata) (*Artefact, error) {
	// Reuse identity when the dedup key already holds a live artefact. The
	// database's partial unique index keeps concurrent first submissions
	// from both inserting.
	existing, err := s.store.FindByDedupKey(ctx, artefact.LocationID, artefact.ContentDate,
		artefact.Language, artefact.ListType, artefact.Provenance)
	if err == nil {
		artefact.ID = existing.ID
		artefact.CreatedAt = existing.CreatedAt
	} else if err != ErrNotFound {
		return nil, err
	}
	artefact.PayloadKey = blob.PayloadKey(artefact.ID)

	if err := s.store.Upsert(ctx, artefact); err != nil {
		return nil, err
	}

	// Re-read the row: if a concurrent ingestion won the insert race, the
	// conflict clause updated its row and our generated ID never landed.
	stored, err := s.store.FindByDedupKey(ctx, artefact.LocationID, artefact.ContentDate,
		artefact.Language, artefact.ListType, artefact.Provenance)
	if err != nil {
		return nil, err
	}

	if err := s.putBlob(ctx, blob.PayloadKey(stored.ID), payload, meta); err != nil {
		return nil, err
	}

	metrics.IncArtefactsIngested(string(stored.ListType))

	if !ref.IsResolved() {
		// No-match artefacts are stored and reportable but never rendered
		// or announced to subscribers.
		metrics.IncNoMatchArtefacts()
		logger.Log.WithFields(map[string]interface{}{
			"artefact_id": stored.ID,
			"court_id":    ref.ExternalID(),
			"provenance":  stored.Provenance,
		}).Info("artefact stored with unresolved location")
		return stored, nil
	}

	event := models.PublicationEvent{
		Type:        models.EventArtefactAvailable,
		ArtefactID:  stored.ID,
		ListType:    string(stored.ListType),
		LocationID:  stored.LocationID,
		ContentDate: stored.ContentDate,
		Sensitivity: string(stored.Sensitivity),
	}
	if err := s.notifier.PublishEvent(ctx, event); err != nil {
		// The artefact is committed; announcement is best-effort and the
		// render path has its own retry via the consumer group.
		metrics.IncEventPublishFailures()
		logger.Log.WithError(err).WithField("artefact_id", stored.ID).Error("failed to announce artefact")
	}

	return stored, nil
}

func (s *Service) putBlob(ctx context.Context, key string, data []byte, meta blob.Metadata) error {
	var err error
	for attempt := 1; attempt <= blobPutAttempts; attempt++ {
		if err = s.blobs.Put(ctx, key, data, meta); err == nil {
			return nil
		}
		logger.Log.WithError(err).WithFields(map[string]interface{}{
			"key":     key,
			"attempt": attempt,
		}).Warn("blob write failed")
	}
	return err
}

func (s *Service) Get(ctx context.Context, id string) (*Artefact, error) {
	return s.store.Get(ctx, id)
}

// GetPayload fetches the stored raw payload for an artefact.
func (s *Service) GetPayload(ctx context.Context, artefact *Artefact) ([]byte, blob.Metadata, error) {
	return s.blobs.Get(ctx, artefact.PayloadKey)
}

func (s *Service) ByLocation(ctx context.Context, locationID string, now time.Time) ([]Artefact, error) {
	return s.store.FindByLocation(ctx, locationID, now)
}

func (s *Service) Search(ctx context.Context, term string, now time.Time) ([]Artefact, error) {
	return s.store.SearchCases(ctx, term, now)
}

func (s *Service) NoMatch(ctx context.Context) ([]Artefact, error) {
	return s.store.FindNoMatch(ctx)
}
