package publication

import (
	"time"

	"gorm.io/datatypes"
)

// Artefact is the persisted publication. At most one non-archived row exists
// per dedup key (location_id, content_date, language, list_type, provenance);
// the partial unique index enforces that under concurrent ingestion.
type Artefact struct {
	ID               string            `json:"artefact_id" gorm:"primaryKey;column:id"`
	Provenance       string            `json:"provenance" gorm:"column:provenance;uniqueIndex:idx_artefact_dedup,where:archived = false"`
	SourceArtefactID string            `json:"source_artefact_id,omitempty" gorm:"column:source_artefact_id"`
	Type             ArtefactType      `json:"type" gorm:"column:type"`
	Sensitivity      Sensitivity       `json:"sensitivity" gorm:"column:sensitivity"`
	Language         Language          `json:"language" gorm:"column:language;uniqueIndex:idx_artefact_dedup,where:archived = false"`
	DisplayFrom      *time.Time        `json:"display_from,omitempty" gorm:"column:display_from"`
	DisplayTo        *time.Time        `json:"display_to,omitempty" gorm:"column:display_to"`
	ListType         ListType          `json:"list_type" gorm:"column:list_type;uniqueIndex:idx_artefact_dedup,where:archived = false"`
	LocationID       string            `json:"location_id" gorm:"column:location_id;uniqueIndex:idx_artefact_dedup,where:archived = false;index"`
	ContentDate      time.Time         `json:"content_date" gorm:"column:content_date;uniqueIndex:idx_artefact_dedup,where:archived = false"`
	PayloadKey       string            `json:"-" gorm:"column:payload_key"`
	PayloadSize      int64             `json:"payload_size" gorm:"column:payload_size"`
	Search           datatypes.JSONMap `json:"search" gorm:"column:search"`
	IsFlatFile       bool              `json:"is_flat_file" gorm:"column:is_flat_file"`
	FileName         string            `json:"file_name,omitempty" gorm:"column:file_name"`
	ContentType      string            `json:"content_type,omitempty" gorm:"column:content_type"`
	CreatedAt        time.Time         `json:"created_at" gorm:"column:created_at"`
	UpdatedAt        time.Time         `json:"updated_at" gorm:"column:updated_at"`
	Archived         bool              `json:"archived" gorm:"column:archived;index"`
}

func (Artefact) TableName() string {
	return "artefacts"
}

// Visibility exposes the attributes the authorization gate filters on.
func (a Artefact) Visibility() (listType, sensitivity string) {
	return string(a.ListType), string(a.Sensitivity)
}

// DisplayableAt reports whether the artefact's display window covers the
// given instant. A missing displayFrom means "not yet published"; a missing
// displayTo means "no scheduled end".
func (a Artefact) DisplayableAt(now time.Time) bool {
	if a.Archived {
		return false
	}
	if a.DisplayFrom != nil && now.Before(*a.DisplayFrom) {
		return false
	}
	if a.DisplayTo != nil && now.After(*a.DisplayTo) {
		return false
	}
	return true
}

// ExpiredAt reports whether the artefact is past its display window at the
// given instant: displayTo in the past, or - when displayTo was never set -
// the implied end of day of the content date.
func (a Artefact) ExpiredAt(now time.Time) bool {
	if a.DisplayTo != nil {
		return a.DisplayTo.Before(now)
	}
	endOfDay := a.ContentDate.UTC().Truncate(24 * time.Hour).Add(24 * time.Hour)
	return !endOfDay.After(now)
}
