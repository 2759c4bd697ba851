package models

import "time"

// Event bus models. The publication topic doubles as the subscription feed:
// downstream subscription services consume the same envelope.
const (
	EventArtefactAvailable = "artefact-available"
	EventArtefactDeleted   = "artefact-deleted"
)

type PublicationEvent struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"` // artefact-available, artefact-deleted
	ArtefactID  string    `json:"artefact_id"`
	ListType    string    `json:"list_type"`
	LocationID  string    `json:"location_id"`
	ContentDate time.Time `json:"content_date"`
	Sensitivity string    `json:"sensitivity"`
	Timestamp   time.Time `json:"timestamp"`
}

// Requester identifies the caller of a read endpoint. A nil *Requester means
// an anonymous caller; Admin is a capability granted by the admin API key, not
// a property of the user identity.
type Requester struct {
	UserID string
	Admin  bool
}
