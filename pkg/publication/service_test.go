package publication

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/opencourt/platform/pkg/blob"
	"github.com/opencourt/platform/pkg/common/models"
	"github.com/opencourt/platform/pkg/location"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore keys live artefacts by dedup tuple, mimicking the partial unique
// index without a database.
type fakeStore struct {
	byKey map[string]*Artefact
	byID  map[string]*Artefact
}

func newFakeStore() *fakeStore {
	return &fakeStore{byKey: map[string]*Artefact{}, byID: map[string]*Artefact{}}
}

func dedupKey(locationID string, contentDate time.Time, language Language, listType ListType, provenance string) string {
	return locationID + "|" + contentDate.Format(time.RFC3339) + "|" + string(language) + "|" + string(listType) + "|" + provenance
}

func (s *fakeStore) FindByDedupKey(_ context.Context, locationID string, contentDate time.Time, language Language, listType ListType, provenance string) (*Artefact, error) {
	if a, ok := s.byKey[dedupKey(locationID, contentDate, language, listType, provenance)]; ok {
		copied := *a
		return &copied, nil
	}
	return nil, ErrNotFound
}

func (s *fakeStore) Upsert(_ context.Context, artefact *Artefact) error {
	key := dedupKey(artefact.LocationID, artefact.ContentDate, artefact.Language, artefact.ListType, artefact.Provenance)
	if existing, ok := s.byKey[key]; ok {
		// Conflict path: id, created_at and payload_key stay as inserted.
		artefact.ID = existing.ID
		artefact.CreatedAt = existing.CreatedAt
		artefact.PayloadKey = existing.PayloadKey
	}
	copied := *artefact
	s.byKey[key] = &copied
	s.byID[copied.ID] = &copied
	return nil
}

func (s *fakeStore) Get(_ context.Context, id string) (*Artefact, error) {
	if a, ok := s.byID[id]; ok && !a.Archived {
		copied := *a
		return &copied, nil
	}
	return nil, ErrNotFound
}

func (s *fakeStore) FindByLocation(_ context.Context, locationID string, now time.Time) ([]Artefact, error) {
	var out []Artefact
	for _, a := range s.byID {
		if a.LocationID == locationID && a.DisplayableAt(now) {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (s *fakeStore) SearchCases(context.Context, string, time.Time) ([]Artefact, error) {
	return nil, nil
}

func (s *fakeStore) FindNoMatch(context.Context) ([]Artefact, error) {
	var out []Artefact
	for _, a := range s.byID {
		if location.IsNoMatch(a.LocationID) {
			out = append(out, *a)
		}
	}
	return out, nil
}

type fakeNotifier struct {
	events []models.PublicationEvent
	err    error
}

func (n *fakeNotifier) PublishEvent(_ context.Context, event models.PublicationEvent) error {
	if n.err != nil {
		return n.err
	}
	n.events = append(n.events, event)
	return nil
}

func testHeaders() HeaderGroup {
	from := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 3, 17, 0, 0, 0, time.UTC)
	return HeaderGroup{
		Provenance:  "LIST_ASSIST",
		Type:        TypeList,
		Sensitivity: SensitivityPublic,
		Language:    LanguageEnglish,
		DisplayFrom: &from,
		DisplayTo:   &to,
		ListType:    CrownDailyList,
		CourtID:     "7001",
		ContentDate: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
	}
}

func newTestService() (*Service, *fakeStore, *blob.MemoryStore, *fakeNotifier) {
	store := newFakeStore()
	blobs := blob.NewMemoryStore()
	notifier := &fakeNotifier{}
	return NewService(store, blobs, notifier, DefaultSearchTable()), store, blobs, notifier
}

func TestIngestStoresArtefactAndNotifies(t *testing.T) {
	svc, _, blobs, notifier := newTestService()

	payload := []byte(`{"courtLists": []}`)
	artefact, err := svc.Ingest(context.Background(), testHeaders(), location.ResolvedRef("loc-1"), payload)
	require.NoError(t, err)

	assert.NotEmpty(t, artefact.ID)
	assert.Equal(t, "loc-1", artefact.LocationID)
	assert.Equal(t, int64(len(payload)), artefact.PayloadSize)

	data, meta, err := blobs.Get(context.Background(), blob.PayloadKey(artefact.ID))
	require.NoError(t, err)
	assert.Equal(t, payload, data)
	assert.Equal(t, "application/json", meta.ContentType)

	require.Len(t, notifier.events, 1)
	event := notifier.events[0]
	assert.Equal(t, models.EventArtefactAvailable, event.Type)
	assert.Equal(t, artefact.ID, event.ArtefactID)
	assert.Equal(t, "CROWN_DAILY_LIST", event.ListType)
}

func TestIngestRejectsMalformedJSON(t *testing.T) {
	svc, _, _, notifier := newTestService()

	_, err := svc.Ingest(context.Background(), testHeaders(), location.ResolvedRef("loc-1"), []byte("{not json"))
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
	assert.Empty(t, notifier.events)
}

func TestIngestIsIdempotentOnDedupKey(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	first, err := svc.Ingest(ctx, testHeaders(), location.ResolvedRef("loc-1"), []byte(`{"v": 1}`))
	require.NoError(t, err)

	headers := testHeaders()
	laterFrom := headers.DisplayFrom.Add(time.Hour)
	headers.DisplayFrom = &laterFrom
	second, err := svc.Ingest(ctx, headers, location.ResolvedRef("loc-1"), []byte(`{"v": 2}`))
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID, "resubmission keeps the artefact ID")
	assert.Equal(t, first.CreatedAt, second.CreatedAt, "resubmission keeps creation time")
	assert.Equal(t, int64(8), second.PayloadSize, "content is overwritten")
	require.NotNil(t, second.DisplayFrom)
	assert.True(t, second.DisplayFrom.Equal(laterFrom), "new display window is retained")
}

// racingStore inserts a competing artefact after the initial dedup lookup
// misses, so the caller's upsert lands on the conflict path.
type racingStore struct {
	*fakeStore
	winnerID string
	raced    bool
}

func (s *racingStore) FindByDedupKey(ctx context.Context, locationID string, contentDate time.Time, language Language, listType ListType, provenance string) (*Artefact, error) {
	if !s.raced {
		s.raced = true
		winner := &Artefact{
			ID:          s.winnerID,
			Provenance:  provenance,
			Language:    language,
			ListType:    listType,
			LocationID:  locationID,
			ContentDate: contentDate,
			PayloadKey:  blob.PayloadKey(s.winnerID),
			CreatedAt:   time.Now().UTC(),
		}
		if err := s.fakeStore.Upsert(ctx, winner); err != nil {
			return nil, err
		}
		return nil, ErrNotFound
	}
	return s.fakeStore.FindByDedupKey(ctx, locationID, contentDate, language, listType, provenance)
}

func TestIngestConcurrentInsertKeepsPayloadReadable(t *testing.T) {
	store := &racingStore{fakeStore: newFakeStore(), winnerID: "winner-id"}
	blobs := blob.NewMemoryStore()
	svc := NewService(store, blobs, &fakeNotifier{}, DefaultSearchTable())

	payload := []byte(`{"v": 2}`)
	artefact, err := svc.Ingest(context.Background(), testHeaders(), location.ResolvedRef("loc-1"), payload)
	require.NoError(t, err)

	assert.Equal(t, "winner-id", artefact.ID, "losing request adopts the committed identity")
	assert.Equal(t, blob.PayloadKey(artefact.ID), artefact.PayloadKey)

	data, _, err := svc.GetPayload(context.Background(), artefact)
	require.NoError(t, err, "payload key must point at a stored blob")
	assert.Equal(t, payload, data)
}

func TestIngestDifferentContentDateCreatesNewArtefact(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	first, err := svc.Ingest(ctx, testHeaders(), location.ResolvedRef("loc-1"), []byte(`{}`))
	require.NoError(t, err)

	headers := testHeaders()
	headers.ContentDate = headers.ContentDate.AddDate(0, 0, 1)
	second, err := svc.Ingest(ctx, headers, location.ResolvedRef("loc-1"), []byte(`{}`))
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
}

func TestIngestNoMatchSkipsNotification(t *testing.T) {
	svc, store, blobs, notifier := newTestService()

	artefact, err := svc.Ingest(context.Background(), testHeaders(), location.UnresolvedRef("7001"), []byte(`{}`))
	require.NoError(t, err)

	assert.Equal(t, "NoMatch7001", artefact.LocationID)
	assert.Empty(t, notifier.events, "unresolved artefacts are not announced")
	assert.Equal(t, 1, blobs.Len(), "payload is still stored")

	noMatch, err := store.FindNoMatch(context.Background())
	require.NoError(t, err)
	require.Len(t, noMatch, 1)
	assert.Equal(t, artefact.ID, noMatch[0].ID)
}

func TestIngestSurvivesNotifierFailure(t *testing.T) {
	svc, _, _, notifier := newTestService()
	notifier.err = errors.New("broker down")

	artefact, err := svc.Ingest(context.Background(), testHeaders(), location.ResolvedRef("loc-1"), []byte(`{}`))
	require.NoError(t, err, "announcement is best-effort")
	assert.NotEmpty(t, artefact.ID)
}

func TestIngestFlatFilePreservesFileMetadata(t *testing.T) {
	svc, _, blobs, _ := newTestService()

	data := []byte("%PDF-1.7 ...")
	artefact, err := svc.IngestFlatFile(context.Background(), testHeaders(), location.ResolvedRef("loc-1"),
		data, "list.pdf", "application/pdf")
	require.NoError(t, err)

	assert.True(t, artefact.IsFlatFile)
	assert.Equal(t, "list.pdf", artefact.FileName)
	assert.Equal(t, "application/pdf", artefact.ContentType)
	assert.Equal(t, map[string]interface{}{"location-id": []interface{}{"7001"}}, map[string]interface{}(artefact.Search))

	stored, meta, err := blobs.Get(context.Background(), blob.PayloadKey(artefact.ID))
	require.NoError(t, err)
	assert.Equal(t, data, stored)
	assert.Equal(t, "list.pdf", meta.FileName)
	assert.Equal(t, "application/pdf", meta.ContentType)
}

func TestIngestBuildsSearchMap(t *testing.T) {
	svc, _, _, _ := newTestService()

	payload := []byte(`{"courtLists": [{"courtHouse": {"courtRoom": [{"session": [{"sittings": [{"hearing": [{"case": [{"caseNumber": "T20267001", "caseName": "Rex v Doe"}]}]}]}]}]}}]}`)
	artefact, err := svc.Ingest(context.Background(), testHeaders(), location.ResolvedRef("loc-1"), payload)
	require.NoError(t, err)

	numbers, ok := artefact.Search["case-number"]
	require.True(t, ok)
	assert.Equal(t, []interface{}{"T20267001"}, numbers)
	names, ok := artefact.Search["case-name"]
	require.True(t, ok)
	assert.Equal(t, []interface{}{"Rex v Doe"}, names)
}
