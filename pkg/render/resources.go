package render

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Resources holds the per-language label bundles used by Render. Loaded once
// at start-up and consumed read-only.
type Resources struct {
	bundles map[string]Bundle
}

type resourcesFile struct {
	Languages map[string]map[string]string `yaml:"languages"`
}

func LoadResources(path string) (*Resources, error) {
	if path == "" {
		return DefaultResources(), nil
	}
	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return DefaultResources(), err
	}
	var file resourcesFile
	if err := yaml.Unmarshal(content, &file); err != nil {
		return nil, err
	}
	if len(file.Languages) == 0 {
		return nil, fmt.Errorf("resource bundle %s has no languages", path)
	}
	res := &Resources{bundles: make(map[string]Bundle, len(file.Languages))}
	for lang, labels := range file.Languages {
		res.bundles[strings.ToUpper(lang)] = labels
	}
	return res, nil
}

// For selects the bundle for an artefact language. Bilingual artefacts get
// joined "English / Welsh" labels, the convention used on bilingual court
// signage.
func (r *Resources) For(language string) Bundle {
	switch strings.ToUpper(language) {
	case "WELSH":
		if b, ok := r.bundles["WELSH"]; ok {
			return b
		}
	case "BILINGUAL":
		english, welsh := r.bundles["ENGLISH"], r.bundles["WELSH"]
		if len(welsh) == 0 {
			return english
		}
		merged := make(Bundle, len(english))
		for key, en := range english {
			if cy, ok := welsh[key]; ok && cy != en {
				merged[key] = en + " / " + cy
			} else {
				merged[key] = en
			}
		}
		return merged
	}
	return r.bundles["ENGLISH"]
}

func DefaultResources() *Resources {
	return &Resources{bundles: map[string]Bundle{
		"ENGLISH": {
			"list-for":     "List for",
			"published":    "Published",
			"venue":        "Venue",
			"courtroom":    "Courtroom",
			"sitting-at":   "Sitting at",
			"hearing-type": "Hearing type",
			"case-number":  "Case number",
			"case-name":    "Case name",
			"case-urn":     "Case reference",
			"defendant":    "Defendant",
			"prosecutor":   "Prosecuting authority",
			"offence":      "Offence",
			"bail-status":  "Bail status",
			"no-hearings":  "No hearings to display",
			"accused":      "Accused",
			"postcode":     "Postcode",
			"organisation": "Organisation",
		},
		"WELSH": {
			"list-for":     "Rhestr ar gyfer",
			"published":    "Cyhoeddwyd",
			"venue":        "Lleoliad",
			"courtroom":    "Ystafell y llys",
			"sitting-at":   "Yn eistedd am",
			"hearing-type": "Math o wrandawiad",
			"case-number":  "Rhif yr achos",
			"case-name":    "Enw'r achos",
			"case-urn":     "Cyfeirnod yr achos",
			"defendant":    "Diffynnydd",
			"prosecutor":   "Awdurdod erlyn",
			"offence":      "Trosedd",
			"bail-status":  "Statws mechnïaeth",
			"no-hearings":  "Dim gwrandawiadau i'w dangos",
			"accused":      "Cyhuddedig",
			"postcode":     "Cod post",
			"organisation": "Sefydliad",
		},
	}}
}
