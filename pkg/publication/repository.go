package publication

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrNotFound = errors.New("artefact not found")

	// ErrConflict marks a storage conflict the upsert clause could not
	// absorb, typically a duplicate key outside the dedup index.
	ErrConflict = errors.New("artefact conflict")
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) AutoMigrate() error {
	return r.db.AutoMigrate(&Artefact{})
}

// FindByDedupKey returns the live artefact for a dedup tuple, if any.
func (r *Repository) FindByDedupKey(ctx context.Context, locationID string, contentDate time.Time, language Language, listType ListType, provenance string) (*Artefact, error) {
	var artefact Artefact
	result := r.db.WithContext(ctx).
		Where("location_id = ? AND content_date = ? AND language = ? AND list_type = ? AND provenance = ? AND archived = false",
			locationID, contentDate, language, listType, provenance).
		First(&artefact)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return &artefact, result.Error
}

// Upsert inserts the artefact or, when another row already holds the dedup
// key, overwrites that row's content while preserving its id and created_at.
// The conflict target is the partial unique index over the dedup key, so two
// concurrent ingestions of the same tuple serialize in the database instead
// of racing in application code. payload_key is deliberately absent from the
// update set: it is derived from the row's immutable id, and a losing
// concurrent insert carries a key from an id that never landed.
func (r *Repository) Upsert(ctx context.Context, artefact *Artefact) error {
	now := time.Now().UTC()
	if artefact.CreatedAt.IsZero() {
		artefact.CreatedAt = now
	}
	artefact.UpdatedAt = now

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "location_id"},
			{Name: "content_date"},
			{Name: "language"},
			{Name: "list_type"},
			{Name: "provenance"},
		},
		TargetWhere: clause.Where{Exprs: []clause.Expression{
			gorm.Expr("archived = false"),
		}},
		DoUpdates: clause.AssignmentColumns([]string{
			"source_artefact_id", "type", "sensitivity",
			"display_from", "display_to",
			"payload_size", "search",
			"is_flat_file", "file_name", "content_type",
			"updated_at",
		}),
	}).Create(artefact).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrConflict
	}
	return err
}

func (r *Repository) Get(ctx context.Context, id string) (*Artefact, error) {
	var artefact Artefact
	result := r.db.WithContext(ctx).First(&artefact, "id = ? AND archived = false", id)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return &artefact, result.Error
}

// FindByLocation returns non-archived artefacts currently inside their
// display window for a location.
func (r *Repository) FindByLocation(ctx context.Context, locationID string, now time.Time) ([]Artefact, error) {
	var artefacts []Artefact
	err := r.db.WithContext(ctx).
		Where("location_id = ? AND archived = false", locationID).
		Where("(display_from IS NULL OR display_from <= ?)", now).
		Where("(display_to IS NULL OR display_to >= ?)", now).
		Order("content_date desc").
		Find(&artefacts).Error
	return artefacts, err
}

// likeEscaper neutralizes LIKE metacharacters in user-supplied search terms
// so "%" and "_" match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// SearchCases matches the term against the payload-derived search index
// (case numbers, names, URNs). Postgres-specific: the JSONB map is unnested
// so the scan only sees extracted values, never the index's own keys.
func (r *Repository) SearchCases(ctx context.Context, term string, now time.Time) ([]Artefact, error) {
	var artefacts []Artefact
	err := r.db.WithContext(ctx).
		Where("archived = false").
		Where("(display_from IS NULL OR display_from <= ?)", now).
		Where("(display_to IS NULL OR display_to >= ?)", now).
		Where("EXISTS (SELECT 1 FROM jsonb_each(search) AS entry, jsonb_array_elements_text(entry.value) AS val WHERE val ILIKE ?)",
			"%"+likeEscaper.Replace(term)+"%").
		Order("content_date desc").
		Find(&artefacts).Error
	return artefacts, err
}

// FindNoMatch lists live artefacts whose court could not be resolved. Admin
// and reporting only.
func (r *Repository) FindNoMatch(ctx context.Context) ([]Artefact, error) {
	var artefacts []Artefact
	err := r.db.WithContext(ctx).
		Where("archived = false AND location_id LIKE ?", "NoMatch%").
		Order("created_at desc").
		Find(&artefacts).Error
	return artefacts, err
}

// FindExpired returns live artefacts past their display window: displayTo in
// the past, or no displayTo and a content date before the start of the
// current day (i.e. the implied end of day has passed).
func (r *Repository) FindExpired(ctx context.Context, now time.Time) ([]Artefact, error) {
	startOfDay := now.UTC().Truncate(24 * time.Hour)
	var artefacts []Artefact
	err := r.db.WithContext(ctx).
		Where("archived = false").
		Where("(display_to IS NOT NULL AND display_to < ?) OR (display_to IS NULL AND content_date < ?)", now, startOfDay).
		Find(&artefacts).Error
	return artefacts, err
}

func (r *Repository) MarkArchived(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Model(&Artefact{}).
		Where("id = ? AND archived = false", id).
		Updates(map[string]interface{}{
			"archived":   true,
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&Artefact{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
