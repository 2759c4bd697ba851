package render

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/opencourt/platform/pkg/blob"
	"github.com/opencourt/platform/pkg/common/logger"
	"github.com/opencourt/platform/pkg/common/models"
	"github.com/opencourt/platform/pkg/location"
	"github.com/opencourt/platform/pkg/observability/metrics"
	"github.com/opencourt/platform/pkg/publication"
)

// ArtefactGetter loads artefact metadata for an event.
type ArtefactGetter interface {
	Get(ctx context.Context, id string) (*publication.Artefact, error)
}

// LocationGetter resolves a location ID to its display details.
type LocationGetter interface {
	Get(ctx context.Context, id string) (*location.Location, error)
}

// Worker renders artefacts as their availability events arrive. Rendering is
// best-effort: a payload the converter cannot make sense of is logged and
// skipped, while storage errors are returned so the event is retried.
type Worker struct {
	artefacts ArtefactGetter
	locations LocationGetter
	blobs     blob.Store
	registry  *Registry
	resources *Resources
}

func NewWorker(artefacts ArtefactGetter, locations LocationGetter, blobs blob.Store, registry *Registry, resources *Resources) *Worker {
	return &Worker{
		artefacts: artefacts,
		locations: locations,
		blobs:     blobs,
		registry:  registry,
		resources: resources,
	}
}

// Handle is the event handler plugged into the feed consumer.
func (w *Worker) Handle(ctx context.Context, event models.PublicationEvent) error {
	if event.Type != models.EventArtefactAvailable {
		return nil
	}

	log := logger.Log.WithField("artefact_id", event.ArtefactID)

	artefact, err := w.artefacts.Get(ctx, event.ArtefactID)
	if errors.Is(err, publication.ErrNotFound) {
		// Deleted or archived between publish and consume; nothing to do.
		log.Info("artefact gone before rendering")
		return nil
	}
	if err != nil {
		return err
	}

	if artefact.IsFlatFile {
		return nil
	}

	converter, ok := w.registry.For(artefact.ListType)
	if !ok {
		metrics.IncArtefactsRendered("unsupported")
		return nil
	}

	data, _, err := w.blobs.Get(ctx, artefact.PayloadKey)
	if errors.Is(err, blob.ErrNotFound) {
		log.Info("payload gone before rendering")
		return nil
	}
	if err != nil {
		return err
	}
	var payload map[string]interface{}
	if err := json.Unmarshal(data, &payload); err != nil {
		metrics.IncArtefactsRendered("failed")
		log.WithError(err).Error("stored payload is not valid JSON")
		return nil
	}

	meta := w.metadata(ctx, artefact)
	labels := w.resources.For(string(artefact.Language))

	page, err := converter.Render(payload, meta, labels)
	if err != nil {
		metrics.IncArtefactsRendered("failed")
		log.WithError(err).Error("failed to render artefact")
		return nil
	}
	htmlMeta := blob.Metadata{ContentType: "text/html; charset=utf-8"}
	if err := w.blobs.Put(ctx, blob.RenderedHTMLKey(artefact.ID), []byte(page), htmlMeta); err != nil {
		return err
	}

	if sc, ok := converter.(SpreadsheetConverter); ok {
		sheet, err := sc.ToSpreadsheet(payload)
		if err != nil {
			metrics.IncArtefactsRendered("failed")
			log.WithError(err).Error("failed to build spreadsheet")
			return nil
		}
		sheetMeta := blob.Metadata{ContentType: "text/csv", FileName: artefact.ID + ".csv"}
		if err := w.blobs.Put(ctx, blob.SpreadsheetKey(artefact.ID), sheet, sheetMeta); err != nil {
			return err
		}
	}

	metrics.IncArtefactsRendered("rendered")
	log.WithField("list_type", artefact.ListType).Info("artefact rendered")
	return nil
}

// metadata assembles the page header fields. A missing location row degrades
// to a page without a venue heading rather than a failed render.
func (w *Worker) metadata(ctx context.Context, artefact *publication.Artefact) Metadata {
	meta := Metadata{
		"content-date": artefact.ContentDate.Format("2 January 2006"),
		"list-name":    listTitle(artefact.ListType),
	}
	if !artefact.UpdatedAt.IsZero() {
		meta["published-at"] = artefact.UpdatedAt.Format("2 January 2006 15:04")
	}

	ref := location.ParseRef(artefact.LocationID)
	if !ref.IsResolved() {
		return meta
	}
	loc, err := w.locations.Get(ctx, ref.ID())
	if err != nil {
		logger.Log.WithError(err).WithField("location_id", ref.ID()).Warn("location lookup failed during render")
		return meta
	}
	if artefact.Language == publication.LanguageWelsh && loc.WelshName != "" {
		meta["location-name"] = loc.WelshName
	} else {
		meta["location-name"] = loc.Name
	}
	return meta
}
