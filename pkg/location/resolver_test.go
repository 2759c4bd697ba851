package location

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLookup struct {
	matches []Location
	err     error
}

func (f *fakeLookup) FindByProvenanceRef(context.Context, string, string, string) ([]Location, error) {
	return f.matches, f.err
}

func TestResolveSingleMatch(t *testing.T) {
	resolver := NewResolver(&fakeLookup{matches: []Location{{ID: "loc-1"}}})

	ref := resolver.Resolve(context.Background(), "LIST_ASSIST", "7001", TypeVenue)
	require.True(t, ref.IsResolved())
	assert.Equal(t, "loc-1", ref.ID())
	assert.Equal(t, "loc-1", ref.Encode())
}

func TestResolveNoMatch(t *testing.T) {
	resolver := NewResolver(&fakeLookup{})

	ref := resolver.Resolve(context.Background(), "LIST_ASSIST", "7001", TypeVenue)
	assert.False(t, ref.IsResolved())
	assert.Equal(t, "7001", ref.ExternalID())
	assert.Equal(t, "NoMatch7001", ref.Encode())
}

func TestResolveAmbiguousMatchIsUnresolved(t *testing.T) {
	resolver := NewResolver(&fakeLookup{matches: []Location{{ID: "loc-1"}, {ID: "loc-2"}}})

	ref := resolver.Resolve(context.Background(), "LIST_ASSIST", "7001", TypeVenue)
	assert.False(t, ref.IsResolved(), "a guess could publish against the wrong court")
}

func TestResolveLookupErrorIsUnresolved(t *testing.T) {
	resolver := NewResolver(&fakeLookup{err: errors.New("db down")})

	ref := resolver.Resolve(context.Background(), "LIST_ASSIST", "7001", TypeVenue)
	assert.False(t, ref.IsResolved())
	assert.Equal(t, "7001", ref.ExternalID())
}

func TestRefEncodeParseRoundTrip(t *testing.T) {
	resolved := ParseRef(ResolvedRef("loc-9").Encode())
	require.True(t, resolved.IsResolved())
	assert.Equal(t, "loc-9", resolved.ID())

	unresolved := ParseRef(UnresolvedRef("880").Encode())
	require.False(t, unresolved.IsResolved())
	assert.Equal(t, "880", unresolved.ExternalID())

	assert.True(t, IsNoMatch("NoMatch880"))
	assert.False(t, IsNoMatch("loc-9"))
}
