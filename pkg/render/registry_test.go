package render

import (
	"testing"

	"github.com/opencourt/platform/pkg/publication"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryKnownListTypes(t *testing.T) {
	registry := NewRegistry()

	c, ok := registry.For(publication.CrownDailyList)
	require.True(t, ok)
	_, isSpreadsheet := c.(SpreadsheetConverter)
	assert.True(t, isSpreadsheet)

	_, ok = registry.For(publication.SJPPublicList)
	assert.True(t, ok)
}

func TestRegistryUnsupportedListType(t *testing.T) {
	registry := NewRegistry()

	_, ok := registry.For(publication.FTTTaxWeeklyHearingList)
	assert.False(t, ok, "not-yet-onboarded list types are a valid miss, not an error")

	_, ok = registry.For(publication.ListType("NOT_A_LIST"))
	assert.False(t, ok)
}

func TestRegistrySupportedOnlyListsRegisteredTypes(t *testing.T) {
	registry := NewRegistry()
	for _, lt := range registry.Supported() {
		_, ok := registry.For(lt)
		assert.True(t, ok)
	}
}

func TestListTitle(t *testing.T) {
	assert.Equal(t, "Crown Daily List", listTitle(publication.CrownDailyList))
	assert.Equal(t, "SJP Public List", listTitle(publication.SJPPublicList))
	assert.Equal(t, "IAC Daily List", listTitle(publication.IACDailyList))
}
