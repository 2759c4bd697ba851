package publication

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/opencourt/platform/pkg/authorization"
	"github.com/opencourt/platform/pkg/blob"
	"github.com/opencourt/platform/pkg/location"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAdminKey = "test-admin-key"

type staticLookup struct {
	locations map[string]location.Location
}

func (s *staticLookup) FindByProvenanceRef(_ context.Context, _, courtID, _ string) ([]location.Location, error) {
	if loc, ok := s.locations[courtID]; ok {
		return []location.Location{loc}, nil
	}
	return nil, nil
}

type staticClearance struct {
	authorized bool
}

func (s *staticClearance) Authorized(context.Context, string, string, string) (bool, error) {
	return s.authorized, nil
}

func newTestRouter(t *testing.T, authorized bool) (*mux.Router, *blob.MemoryStore) {
	t.Helper()

	store := newFakeStore()
	blobs := blob.NewMemoryStore()
	svc := NewService(store, blobs, &fakeNotifier{}, DefaultSearchTable())

	resolver := location.NewResolver(&staticLookup{locations: map[string]location.Location{
		"7001": {ID: "loc-1", Name: "Central Crown Court"},
	}})
	gate := authorization.NewGate(&staticClearance{authorized: authorized})

	handler := NewHTTPHandler(svc, resolver, gate, testAdminKey, 1<<20)
	router := mux.NewRouter()
	handler.Register(router.PathPrefix("/api/v1").Subrouter())
	return router, blobs
}

func ingestRequest(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/publications", bytes.NewBufferString(body))
	req.Header.Set(HeaderProvenance, "LIST_ASSIST")
	req.Header.Set(HeaderType, "LIST")
	req.Header.Set(HeaderListType, "CROWN_DAILY_LIST")
	req.Header.Set(HeaderCourtID, "7001")
	req.Header.Set(HeaderContentDate, "2026-03-02")
	req.Header.Set(HeaderLanguage, "ENGLISH")
	// window straddling any realistic test run, since read paths use time.Now
	req.Header.Set(HeaderDisplayFrom, "2020-01-01T00:00:00Z")
	req.Header.Set(HeaderDisplayTo, "2099-01-01T00:00:00Z")
	return req
}

func doIngest(t *testing.T, router *mux.Router, body string) Artefact {
	t.Helper()
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, ingestRequest(body))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var artefact Artefact
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &artefact))
	return artefact
}

func TestHandleIngest(t *testing.T) {
	router, blobs := newTestRouter(t, false)

	artefact := doIngest(t, router, `{"courtLists": []}`)
	assert.NotEmpty(t, artefact.ID)
	assert.Equal(t, "loc-1", artefact.LocationID)

	_, _, err := blobs.Get(context.Background(), blob.PayloadKey(artefact.ID))
	assert.NoError(t, err)

	// resubmission of the same dedup key keeps the artefact ID
	again := doIngest(t, router, `{"courtLists": [], "v": 2}`)
	assert.Equal(t, artefact.ID, again.ID)
}

func TestHandleIngestValidationFailure(t *testing.T) {
	router, _ := newTestRouter(t, false)

	req := ingestRequest(`{}`)
	req.Header.Del(HeaderCourtID)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var resp struct {
		Error string `json:"error"`
		Field string `json:"field"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, HeaderCourtID, resp.Field)
	assert.Contains(t, resp.Error, HeaderCourtID)
}

func TestHandleIngestMalformedBody(t *testing.T) {
	router, _ := newTestRouter(t, false)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, ingestRequest(`{broken`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleIngestFlatFile(t *testing.T) {
	router, _ := newTestRouter(t, false)

	var form bytes.Buffer
	writer := multipart.NewWriter(&form)
	part, err := writer.CreateFormFile("file", "list.pdf")
	require.NoError(t, err)
	_, err = part.Write([]byte("%PDF-1.7"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/publications/file", &form)
	for name, values := range ingestRequest("").Header {
		req.Header[name] = values
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var artefact Artefact
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &artefact))
	assert.True(t, artefact.IsFlatFile)
	assert.Equal(t, "list.pdf", artefact.FileName)

	// the stored file is served back with its original name
	fileReq := httptest.NewRequest(http.MethodGet, "/api/v1/publications/"+artefact.ID+"/file", nil)
	fileRec := httptest.NewRecorder()
	router.ServeHTTP(fileRec, fileReq)
	require.Equal(t, http.StatusOK, fileRec.Code)
	assert.Equal(t, "%PDF-1.7", fileRec.Body.String())
	assert.Contains(t, fileRec.Header().Get("Content-Disposition"), "list.pdf")
}

func TestHandleGetAndPayload(t *testing.T) {
	router, _ := newTestRouter(t, false)
	artefact := doIngest(t, router, `{"courtLists": []}`)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/publications/"+artefact.ID, nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/publications/"+artefact.ID+"/payload", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"courtLists": []}`, rec.Body.String())
}

func TestHandleGetUnknownArtefact(t *testing.T) {
	router, _ := newTestRouter(t, false)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/publications/does-not-exist", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleGetMasksUnauthorizedAsNotFound(t *testing.T) {
	router, _ := newTestRouter(t, false)

	req := ingestRequest(`{"courtLists": []}`)
	req.Header.Set(HeaderSensitivity, "CLASSIFIED")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	var artefact Artefact
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &artefact))

	// anonymous caller: existence is not revealed
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/publications/"+artefact.ID, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// admin bypasses the gate
	adminReq := httptest.NewRequest(http.MethodGet, "/api/v1/publications/"+artefact.ID, nil)
	adminReq.Header.Set("x-admin", "true")
	adminReq.Header.Set("x-api-key", testAdminKey)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, adminReq)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandleByLocationFiltersRestricted(t *testing.T) {
	router, _ := newTestRouter(t, false)

	doIngest(t, router, `{"courtLists": []}`)

	restricted := ingestRequest(`{"courtLists": []}`)
	restricted.Header.Set(HeaderSensitivity, "CLASSIFIED")
	restricted.Header.Set(HeaderContentDate, "2026-03-03")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, restricted)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/publications/locations/loc-1", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var artefacts []Artefact
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &artefacts))
	require.Len(t, artefacts, 1, "the classified artefact is filtered out for anonymous callers")
	assert.Equal(t, SensitivityPublic, artefacts[0].Sensitivity)
}

func TestHandleNoMatchRequiresAdminKey(t *testing.T) {
	router, _ := newTestRouter(t, false)

	req := ingestRequest(`{"courtLists": []}`)
	req.Header.Set(HeaderCourtID, "9999") // unknown court
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/publications/no-match", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	adminReq := httptest.NewRequest(http.MethodGet, "/api/v1/publications/no-match", nil)
	adminReq.Header.Set("x-api-key", testAdminKey)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, adminReq)
	require.Equal(t, http.StatusOK, rec.Code)

	var artefacts []Artefact
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &artefacts))
	require.Len(t, artefacts, 1)
	assert.Equal(t, "NoMatch9999", artefacts[0].LocationID)
}
