package publication

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ValidationError reports exactly one offending header so the submitting
// system can self-diagnose. Kind distinguishes "you forgot it" from "we could
// not parse it".
type ValidationError struct {
	Field  string
	Kind   string // "missing" or "malformed"
	Detail string
}

const (
	errKindMissing   = "missing"
	errKindMalformed = "malformed"
)

func (e ValidationError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s header %s: %s", e.Kind, e.Field, e.Detail)
	}
	return fmt.Sprintf("%s header %s", e.Kind, e.Field)
}

func missingField(field string) ValidationError {
	return ValidationError{Field: field, Kind: errKindMissing}
}

func malformedField(field, detail string) ValidationError {
	return ValidationError{Field: field, Kind: errKindMalformed, Detail: detail}
}

func IsValidationError(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}

// acceptable timestamp layouts; upstream systems send either full timestamps
// or bare dates for content-date.
var timestampLayouts = []string{time.RFC3339, "2006-01-02"}

// Validate parses the raw header set into a HeaderGroup. Pure function of its
// input: no lookups, no side effects. On failure it returns a ValidationError
// naming a single header.
func Validate(h http.Header) (HeaderGroup, error) {
	var group HeaderGroup

	group.Provenance = strings.TrimSpace(h.Get(HeaderProvenance))
	if group.Provenance == "" {
		return group, missingField(HeaderProvenance)
	}
	group.SourceArtefactID = strings.TrimSpace(h.Get(HeaderSourceArtefactID))

	rawType := strings.TrimSpace(h.Get(HeaderType))
	if rawType == "" {
		return group, missingField(HeaderType)
	}
	group.Type = ArtefactType(strings.ToUpper(rawType))
	if !group.Type.Valid() {
		return group, malformedField(HeaderType, fmt.Sprintf("unknown artefact type %q", rawType))
	}

	rawListType := strings.TrimSpace(h.Get(HeaderListType))
	if rawListType == "" {
		return group, missingField(HeaderListType)
	}
	group.ListType = ListType(strings.ToUpper(rawListType))
	if !group.ListType.Valid() {
		return group, malformedField(HeaderListType, fmt.Sprintf("unknown list type %q", rawListType))
	}

	group.CourtID = strings.TrimSpace(h.Get(HeaderCourtID))
	if group.CourtID == "" {
		return group, missingField(HeaderCourtID)
	}

	rawContentDate := strings.TrimSpace(h.Get(HeaderContentDate))
	if rawContentDate == "" {
		return group, missingField(HeaderContentDate)
	}
	contentDate, err := parseTimestamp(rawContentDate)
	if err != nil {
		return group, malformedField(HeaderContentDate, err.Error())
	}
	group.ContentDate = contentDate

	rawLanguage := strings.TrimSpace(h.Get(HeaderLanguage))
	if rawLanguage == "" {
		return group, missingField(HeaderLanguage)
	}
	group.Language = Language(strings.ToUpper(rawLanguage))
	if !group.Language.Valid() {
		return group, malformedField(HeaderLanguage, fmt.Sprintf("unknown language %q", rawLanguage))
	}

	group.Sensitivity = SensitivityPublic
	if rawSensitivity := strings.TrimSpace(h.Get(HeaderSensitivity)); rawSensitivity != "" {
		group.Sensitivity = Sensitivity(strings.ToUpper(rawSensitivity))
		if !group.Sensitivity.Valid() {
			return group, malformedField(HeaderSensitivity, fmt.Sprintf("unknown sensitivity %q", rawSensitivity))
		}
	}

	if raw := strings.TrimSpace(h.Get(HeaderDisplayFrom)); raw != "" {
		from, err := parseTimestamp(raw)
		if err != nil {
			return group, malformedField(HeaderDisplayFrom, err.Error())
		}
		group.DisplayFrom = &from
	}
	if raw := strings.TrimSpace(h.Get(HeaderDisplayTo)); raw != "" {
		to, err := parseTimestamp(raw)
		if err != nil {
			return group, malformedField(HeaderDisplayTo, err.Error())
		}
		group.DisplayTo = &to
	}

	rule := typeRules[group.Type]
	if rule.requiresDisplayWindow {
		if group.DisplayFrom == nil {
			return group, missingField(HeaderDisplayFrom)
		}
		if group.DisplayTo == nil {
			return group, missingField(HeaderDisplayTo)
		}
	}
	if rule.defaultDisplayFromNow && group.DisplayFrom == nil {
		now := time.Now().UTC()
		group.DisplayFrom = &now
	}

	if group.DisplayFrom != nil && group.DisplayTo != nil && group.DisplayTo.Before(*group.DisplayFrom) {
		return group, malformedField(HeaderDisplayTo, "must not be before "+HeaderDisplayFrom)
	}

	return group, nil
}

func parseTimestamp(raw string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse %q as a timestamp", raw)
}
