package authorization

import (
	"context"
	"errors"
	"testing"

	"github.com/opencourt/platform/pkg/common/models"
	"github.com/stretchr/testify/assert"
)

type fakeClearance struct {
	authorized bool
	err        error
	calls      int
}

func (f *fakeClearance) Authorized(context.Context, string, string, string) (bool, error) {
	f.calls++
	return f.authorized, f.err
}

func TestPublicVisibleToAnonymous(t *testing.T) {
	checker := &fakeClearance{}
	gate := NewGate(checker)

	assert.True(t, gate.IsVisible(context.Background(), "CROWN_DAILY_LIST", "PUBLIC", nil))
	assert.True(t, gate.IsVisible(context.Background(), "CROWN_DAILY_LIST", "", nil))
	assert.Zero(t, checker.calls, "public artefacts never hit the account service")
}

func TestRestrictedInvisibleToAnonymous(t *testing.T) {
	gate := NewGate(&fakeClearance{authorized: true})

	assert.False(t, gate.IsVisible(context.Background(), "CROWN_DAILY_LIST", "CLASSIFIED", nil))
	assert.False(t, gate.IsVisible(context.Background(), "CROWN_DAILY_LIST", "PRIVATE", &models.Requester{}))
}

func TestRestrictedDelegatesToClearance(t *testing.T) {
	requester := &models.Requester{UserID: "user-1"}

	gate := NewGate(&fakeClearance{authorized: true})
	assert.True(t, gate.IsVisible(context.Background(), "CROWN_DAILY_LIST", "CLASSIFIED", requester))

	gate = NewGate(&fakeClearance{authorized: false})
	assert.False(t, gate.IsVisible(context.Background(), "CROWN_DAILY_LIST", "CLASSIFIED", requester))
}

func TestClearanceErrorFailsClosed(t *testing.T) {
	gate := NewGate(&fakeClearance{authorized: true, err: errors.New("account service down")})

	requester := &models.Requester{UserID: "user-1"}
	assert.False(t, gate.IsVisible(context.Background(), "CROWN_DAILY_LIST", "CLASSIFIED", requester))
}

func TestAdminBypassesGate(t *testing.T) {
	checker := &fakeClearance{}
	gate := NewGate(checker)

	admin := &models.Requester{UserID: "ops", Admin: true}
	assert.True(t, gate.IsVisible(context.Background(), "CROWN_DAILY_LIST", "CLASSIFIED", admin))
	assert.Zero(t, checker.calls)
}

type visibleItem struct {
	sensitivity string
}

func (v visibleItem) Visibility() (string, string) {
	return "CROWN_DAILY_LIST", v.sensitivity
}

func TestFilterKeepsOnlyVisible(t *testing.T) {
	gate := NewGate(&fakeClearance{authorized: false})

	items := []visibleItem{
		{sensitivity: "PUBLIC"},
		{sensitivity: "CLASSIFIED"},
		{sensitivity: "PUBLIC"},
	}
	visible := Filter(context.Background(), gate, &models.Requester{UserID: "user-1"}, items)
	assert.Len(t, visible, 2)
	for _, item := range visible {
		assert.Equal(t, "PUBLIC", item.sensitivity)
	}
}
