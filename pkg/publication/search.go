package publication

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
	"gorm.io/datatypes"
)

// SearchPath names one extraction: values found at Path land in the search
// map under Key. Paths are slash-separated object keys with "*" iterating
// array elements.
type SearchPath struct {
	Key  string `yaml:"key" json:"key"`
	Path string `yaml:"path" json:"path"`
}

type searchTableFile struct {
	Lists map[string][]SearchPath `yaml:"lists"`
}

// SearchTable is the immutable per-list-type extraction configuration, built
// once at start-up and consumed read-only by every ingestion worker.
type SearchTable struct {
	paths map[ListType][]SearchPath
}

// LoadSearchTable reads the YAML extraction table, falling back to the
// compiled-in defaults when no path is configured.
func LoadSearchTable(path string) (*SearchTable, error) {
	if path == "" {
		return DefaultSearchTable(), nil
	}
	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return DefaultSearchTable(), err
	}

	var file searchTableFile
	if err := yaml.Unmarshal(content, &file); err != nil {
		return nil, err
	}
	if len(file.Lists) == 0 {
		return nil, fmt.Errorf("search table %s has no list entries", path)
	}

	table := &SearchTable{paths: make(map[ListType][]SearchPath, len(file.Lists))}
	for name, paths := range file.Lists {
		table.paths[ListType(strings.ToUpper(name))] = paths
	}
	return table, nil
}

// caseSearchPaths is the extraction set shared by the standard hearing-list
// payload structure.
var caseSearchPaths = []SearchPath{
	{Key: "case-number", Path: "courtLists/*/courtHouse/courtRoom/*/session/*/sittings/*/hearing/*/case/*/caseNumber"},
	{Key: "case-name", Path: "courtLists/*/courtHouse/courtRoom/*/session/*/sittings/*/hearing/*/case/*/caseName"},
	{Key: "case-urn", Path: "courtLists/*/courtHouse/courtRoom/*/session/*/sittings/*/hearing/*/case/*/caseUrn"},
}

// sjpSearchPaths covers the single justice procedure payload, which carries
// accused parties instead of the hearing-room hierarchy.
var sjpSearchPaths = []SearchPath{
	{Key: "case-urn", Path: "courtLists/*/cases/*/caseUrn"},
	{Key: "party-surname", Path: "courtLists/*/cases/*/party/*/individualDetails/individualSurname"},
	{Key: "organisation-name", Path: "courtLists/*/cases/*/party/*/organisationDetails/organisationName"},
}

func DefaultSearchTable() *SearchTable {
	table := &SearchTable{paths: make(map[ListType][]SearchPath)}
	for _, lt := range ListTypes() {
		switch lt {
		case SJPPublicList, SJPPressList, SJPDeltaPressList:
			table.paths[lt] = sjpSearchPaths
		default:
			table.paths[lt] = caseSearchPaths
		}
	}
	return table
}

// Extract builds the search map for a JSON payload. Unknown or absent paths
// are simply omitted; an empty result is valid.
func (t *SearchTable) Extract(listType ListType, payload map[string]interface{}) datatypes.JSONMap {
	search := datatypes.JSONMap{}
	for _, sp := range t.paths[listType] {
		values := extractPath(payload, strings.Split(sp.Path, "/"))
		if len(values) > 0 {
			search[sp.Key] = values
		}
	}
	return search
}

// FlatFileSearch is the fixed search map for non-JSON uploads, which only
// ever resolve by court.
func FlatFileSearch(courtID string) datatypes.JSONMap {
	return datatypes.JSONMap{"location-id": []interface{}{courtID}}
}

func extractPath(node interface{}, segments []string) []interface{} {
	if node == nil {
		return nil
	}
	if len(segments) == 0 {
		return scalarValue(node)
	}

	head, rest := segments[0], segments[1:]
	if head == "*" {
		list, ok := node.([]interface{})
		if !ok {
			return nil
		}
		var values []interface{}
		for _, item := range list {
			values = append(values, extractPath(item, rest)...)
		}
		return values
	}

	object, ok := node.(map[string]interface{})
	if !ok {
		return nil
	}
	return extractPath(object[head], rest)
}

func scalarValue(node interface{}) []interface{} {
	switch v := node.(type) {
	case string:
		if strings.TrimSpace(v) == "" {
			return nil
		}
		return []interface{}{v}
	case float64, int, int64, bool:
		return []interface{}{fmt.Sprint(v)}
	default:
		// objects and arrays at a leaf are a path misconfiguration; skip them
		return nil
	}
}
