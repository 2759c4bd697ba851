package render

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
)

type sjpEntry struct {
	Name         string
	Postcode     string
	Organisation string
	CaseURN      string
	Offence      string
	Prosecutor   string
}

// SJPConverter handles single justice procedure lists. The public edition
// shows only the accused's name, postcode, offence and prosecutor; the press
// edition additionally carries the case reference.
type SJPConverter struct {
	Press bool
}

func (c *SJPConverter) Summarize(payload map[string]interface{}) (Summary, error) {
	entries, err := collectSJPCases(payload)
	if err != nil {
		return Summary{}, err
	}
	rows := make([]Row, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, c.row(e, nil))
	}
	return Summary{Sections: []Section{{Rows: rows}}}, nil
}

func (c *SJPConverter) Render(payload map[string]interface{}, meta Metadata, labels Bundle) (string, error) {
	entries, err := collectSJPCases(payload)
	if err != nil {
		return "", err
	}
	rows := make([]Row, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, c.row(e, labels))
	}
	summary := Summary{Sections: []Section{{Rows: rows}}}
	title := meta["list-name"]
	if title == "" {
		title = labels["list-for"]
	}
	return renderPage(title, summary, meta, labels)
}

func (c *SJPConverter) ToSpreadsheet(payload map[string]interface{}) ([]byte, error) {
	entries, err := collectSJPCases(payload)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	header := []string{"Accused", "Postcode", "Offence", "Prosecuting authority"}
	if c.Press {
		header = append([]string{"Case reference"}, header...)
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, e := range entries {
		name := e.Name
		if name == "" {
			name = e.Organisation
		}
		record := []string{name, e.Postcode, e.Offence, e.Prosecutor}
		if c.Press {
			record = append([]string{e.CaseURN}, record...)
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func (c *SJPConverter) row(e sjpEntry, labels Bundle) Row {
	label := func(key, fallback string) string {
		if labels == nil {
			return fallback
		}
		if v, ok := labels[key]; ok {
			return v
		}
		return fallback
	}

	var row Row
	if c.Press {
		row = appendField(row, label("case-urn", "case-urn"), e.CaseURN)
	}
	row = appendField(row, label("accused", "accused"), e.Name)
	row = appendField(row, label("organisation", "organisation"), e.Organisation)
	row = appendField(row, label("postcode", "postcode"), e.Postcode)
	row = appendField(row, label("offence", "offence"), e.Offence)
	row = appendField(row, label("prosecutor", "prosecutor"), e.Prosecutor)
	return row
}

func collectSJPCases(payload map[string]interface{}) ([]sjpEntry, error) {
	if payload == nil {
		return nil, errors.New("nil payload")
	}
	courtLists := getSlice(payload["courtLists"])
	if courtLists == nil {
		return nil, fmt.Errorf("payload has no courtLists")
	}

	var entries []sjpEntry
	for _, cl := range courtLists {
		for _, ca := range getSlice(getMap(cl)["cases"]) {
			c := getMap(ca)
			entry := sjpEntry{
				CaseURN: getString(c["caseUrn"]),
			}
			for _, p := range getSlice(c["party"]) {
				party := getMap(p)
				if getString(party["partyRole"]) == "PROSECUTING_AUTHORITY" {
					entry.Prosecutor = partyName(party)
					continue
				}
				if individual := getMap(party["individualDetails"]); individual != nil {
					entry.Name = partyName(party)
					entry.Postcode = getString(getMap(individual["address"])["postcode"])
				} else if org := getMap(party["organisationDetails"]); org != nil {
					entry.Organisation = getString(org["organisationName"])
				}
			}
			if offences := getSlice(c["offence"]); len(offences) > 0 {
				entry.Offence = getString(getMap(offences[0])["offenceTitle"])
			}
			entries = append(entries, entry)
		}
	}
	return entries, nil
}
