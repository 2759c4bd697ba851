package render

// Metadata carries display attributes of the artefact being rendered
// (location name, content date, provenance) as opaque strings.
type Metadata map[string]string

// Bundle is a label->translated-string map for one language.
type Bundle map[string]string

// Field is one labelled value inside a summary row. Fields with empty values
// are omitted at build time, so a payload missing an optional attribute
// renders without it rather than failing.
type Field struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

type Row []Field

// Section groups case rows under an optional heading; an empty Name means
// the rows are flattened with no heading.
type Section struct {
	Name string `json:"name,omitempty"`
	Rows []Row  `json:"rows"`
}

type Summary struct {
	Sections []Section `json:"sections"`
}

// Converter turns a raw list payload into human-readable forms. Converters
// are pure functions of their inputs and hold no mutable state, so renders of
// independent artefacts can run concurrently.
type Converter interface {
	Summarize(payload map[string]interface{}) (Summary, error)
	Render(payload map[string]interface{}, meta Metadata, labels Bundle) (string, error)
}

// SpreadsheetConverter is implemented by converters whose list family also
// publishes a tabular download.
type SpreadsheetConverter interface {
	Converter
	ToSpreadsheet(payload map[string]interface{}) ([]byte, error)
}

func getString(v interface{}) string {
	s, _ := v.(string)
	return s
}

func getMap(v interface{}) map[string]interface{} {
	m, _ := v.(map[string]interface{})
	return m
}

func getSlice(v interface{}) []interface{} {
	s, _ := v.([]interface{})
	return s
}

func appendField(row Row, label, value string) Row {
	if value == "" {
		return row
	}
	return append(row, Field{Label: label, Value: value})
}
