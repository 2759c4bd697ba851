package authorization

import (
	"context"

	"github.com/opencourt/platform/pkg/common/logger"
	"github.com/opencourt/platform/pkg/common/models"
)

// Clearance is the account-management collaborator that confirms a user may
// read a restricted list type.
type Clearance interface {
	Authorized(ctx context.Context, userID, listType, sensitivity string) (bool, error)
}

// Gate decides read visibility of stored artefacts. PUBLIC artefacts are open
// to everyone including anonymous callers; anything else needs a clearance
// check. The admin capability bypasses the gate entirely.
type Gate struct {
	checker Clearance
}

func NewGate(checker Clearance) *Gate {
	return &Gate{checker: checker}
}

func (g *Gate) IsVisible(ctx context.Context, listType, sensitivity string, requester *models.Requester) bool {
	if requester != nil && requester.Admin {
		return true
	}
	if sensitivity == "" || sensitivity == "PUBLIC" {
		return true
	}
	if requester == nil || requester.UserID == "" {
		return false
	}

	authorized, err := g.checker.Authorized(ctx, requester.UserID, listType, sensitivity)
	if err != nil {
		// Fail closed: an unreachable account service must not leak
		// restricted artefacts.
		logger.Log.WithError(err).WithFields(map[string]interface{}{
			"user_id":   requester.UserID,
			"list_type": listType,
		}).Error("clearance check failed")
		return false
	}
	return authorized
}

// Item is anything carrying the attributes the gate needs.
type Item interface {
	Visibility() (listType, sensitivity string)
}

// Filter returns the subset of items the requester may see, preserving order.
func Filter[T Item](ctx context.Context, g *Gate, requester *models.Requester, items []T) []T {
	visible := make([]T, 0, len(items))
	for _, item := range items {
		listType, sensitivity := item.Visibility()
		if g.IsVisible(ctx, listType, sensitivity, requester) {
			visible = append(visible, item)
		}
	}
	return visible
}
