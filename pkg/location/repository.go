package location

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrNotFound = errors.New("location not found")

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) AutoMigrate() error {
	return r.db.AutoMigrate(&Location{}, &CrossReference{})
}

func (r *Repository) Get(ctx context.Context, id string) (*Location, error) {
	var loc Location
	result := r.db.WithContext(ctx).Preload("CrossReferences").First(&loc, "id = ?", id)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return &loc, result.Error
}

// FindByProvenanceRef returns every location carrying a cross-reference for
// the given upstream identifier. More than one result is a reference-data
// integrity problem the resolver has to deal with.
func (r *Repository) FindByProvenanceRef(ctx context.Context, provenance, provenanceLocationID, provenanceLocationType string) ([]Location, error) {
	var locations []Location
	err := r.db.WithContext(ctx).
		Joins("JOIN location_cross_references xref ON xref.location_id = locations.id").
		Where("xref.provenance = ? AND xref.provenance_location_id = ? AND xref.provenance_location_type = ?",
			provenance, provenanceLocationID, provenanceLocationType).
		Preload("CrossReferences").
		Find(&locations).Error
	return locations, err
}

// Upsert writes a location and its cross-references, replacing any previous
// cross-reference set. Used by the bulk reference-data load and by tests.
func (r *Repository) Upsert(ctx context.Context, loc *Location) error {
	now := time.Now().UTC()
	if loc.CreatedAt.IsZero() {
		loc.CreatedAt = now
	}
	loc.UpdatedAt = now
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("location_id = ?", loc.ID).Delete(&CrossReference{}).Error; err != nil {
			return err
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).Create(loc).Error
	})
}

// Seed loads a batch of reference locations, typically at startup from an
// exported reference-data file.
func (r *Repository) Seed(ctx context.Context, locations []Location) error {
	for i := range locations {
		if err := r.Upsert(ctx, &locations[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *Repository) List(ctx context.Context) ([]Location, error) {
	var locations []Location
	err := r.db.WithContext(ctx).Preload("CrossReferences").Order("name").Find(&locations).Error
	return locations, err
}
