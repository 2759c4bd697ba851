package location

import "strings"

// noMatchPrefix is the wire/storage encoding of an unresolved location. It is
// kept for compatibility with downstream consumers; inside the codebase a Ref
// carries the resolved/unresolved distinction explicitly.
const noMatchPrefix = "NoMatch"

// Ref is the outcome of resolving an upstream court identifier: either an
// internal location ID or the original external ID when no reference record
// matched. Unresolved refs are a routing signal, not an error - artefacts for
// them are stored but skip rendering and subscription fan-out.
type Ref struct {
	id       string
	external string
	resolved bool
}

func ResolvedRef(id string) Ref {
	return Ref{id: id, resolved: true}
}

func UnresolvedRef(externalID string) Ref {
	return Ref{external: externalID}
}

func (r Ref) IsResolved() bool {
	return r.resolved
}

// ID returns the internal location ID, or the empty string for unresolved refs.
func (r Ref) ID() string {
	return r.id
}

// ExternalID returns the upstream court ID that failed to resolve.
func (r Ref) ExternalID() string {
	return r.external
}

// Encode produces the storage form: the location ID, or the legacy
// "NoMatch<courtID>" sentinel for unresolved refs.
func (r Ref) Encode() string {
	if r.resolved {
		return r.id
	}
	return noMatchPrefix + r.external
}

// ParseRef decodes a stored location ID back into a Ref.
func ParseRef(encoded string) Ref {
	if strings.HasPrefix(encoded, noMatchPrefix) {
		return UnresolvedRef(strings.TrimPrefix(encoded, noMatchPrefix))
	}
	return ResolvedRef(encoded)
}

// IsNoMatch reports whether a stored location ID is the no-match sentinel.
func IsNoMatch(encoded string) bool {
	return strings.HasPrefix(encoded, noMatchPrefix)
}
