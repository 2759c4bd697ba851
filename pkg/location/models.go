package location

import (
	"time"

	"gorm.io/datatypes"
)

// Location types determine which kind of reference record a list type is
// published against. Venue lists hang off a single court building, regional
// lists off an administrative region, and national lists (e.g. single justice
// procedure) off the jurisdiction-wide record.
const (
	TypeVenue    = "VENUE"
	TypeRegion   = "REGION"
	TypeNational = "NATIONAL"
)

type Location struct {
	ID                string                      `json:"location_id" gorm:"primaryKey;column:id"`
	Name              string                      `json:"name" gorm:"column:name"`
	WelshName         string                      `json:"welsh_name" gorm:"column:welsh_name"`
	Regions           datatypes.JSONSlice[string] `json:"regions" gorm:"column:regions"`
	Jurisdictions     datatypes.JSONSlice[string] `json:"jurisdictions" gorm:"column:jurisdictions"`
	JurisdictionTypes datatypes.JSONSlice[string] `json:"jurisdiction_types" gorm:"column:jurisdiction_types"`
	LocationType      string                      `json:"location_type" gorm:"column:location_type"`
	CrossReferences   []CrossReference            `json:"cross_references" gorm:"foreignKey:LocationID"`
	CreatedAt         time.Time                   `json:"created_at" gorm:"column:created_at"`
	UpdatedAt         time.Time                   `json:"updated_at" gorm:"column:updated_at"`
}

func (Location) TableName() string {
	return "locations"
}

// CrossReference maps an upstream system's identifier for a court onto the
// internal location record. One location can carry several, one per source
// system that knows it.
type CrossReference struct {
	ID                     uint   `json:"-" gorm:"primaryKey;autoIncrement"`
	LocationID             string `json:"-" gorm:"column:location_id;index"`
	Provenance             string `json:"provenance" gorm:"column:provenance;index:idx_provenance_ref"`
	ProvenanceLocationID   string `json:"provenance_location_id" gorm:"column:provenance_location_id;index:idx_provenance_ref"`
	ProvenanceLocationType string `json:"provenance_location_type" gorm:"column:provenance_location_type;index:idx_provenance_ref"`
}

func (CrossReference) TableName() string {
	return "location_cross_references"
}
