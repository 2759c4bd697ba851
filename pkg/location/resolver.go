package location

import (
	"context"

	"github.com/opencourt/platform/pkg/common/logger"
)

// CrossRefLookup is the slice of the repository the resolver needs.
type CrossRefLookup interface {
	FindByProvenanceRef(ctx context.Context, provenance, provenanceLocationID, provenanceLocationType string) ([]Location, error)
}

type Resolver struct {
	lookup CrossRefLookup
}

func NewResolver(lookup CrossRefLookup) *Resolver {
	return &Resolver{lookup: lookup}
}

// Resolve maps an upstream (provenance, courtID) pair onto an internal
// location. Reference data lags the source systems, so a missing mapping is
// never an error: the artefact is accepted with an unresolved ref and picked
// up by reporting once the reference load catches up. An ambiguous mapping
// (several locations claiming the same upstream ID) is treated the same way,
// since guessing a winner could publish a list against the wrong court.
func (r *Resolver) Resolve(ctx context.Context, provenance, courtID, locationType string) Ref {
	matches, err := r.lookup.FindByProvenanceRef(ctx, provenance, courtID, locationType)
	if err != nil {
		logger.Log.WithError(err).WithFields(map[string]interface{}{
			"provenance": provenance,
			"court_id":   courtID,
		}).Error("location lookup failed")
		return UnresolvedRef(courtID)
	}

	switch len(matches) {
	case 1:
		return ResolvedRef(matches[0].ID)
	case 0:
		return UnresolvedRef(courtID)
	default:
		logger.Log.WithFields(map[string]interface{}{
			"provenance": provenance,
			"court_id":   courtID,
			"matches":    len(matches),
		}).Warn("ambiguous location cross-reference, treating as unresolved")
		return UnresolvedRef(courtID)
	}
}
