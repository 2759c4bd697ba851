package render

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
)

// hearingEntry is one case flattened out of the court-list hierarchy
// (court house -> room -> session -> sitting -> hearing -> case).
type hearingEntry struct {
	CourtRoom   string
	SittingAt   string
	HearingType string
	CaseNumber  string
	CaseName    string
	CaseURN     string
	Defendant   string
	Prosecutor  string
	BailStatus  string
}

// HearingListConverter handles the standard daily/weekly cause list payload
// shared by most civil, family and tribunal lists. When GroupByBail is set
// (crown warned lists) cases are sectioned by bail status instead of
// flattened under a single unnamed section.
type HearingListConverter struct {
	TitleLabel  string
	GroupByBail bool
}

func (c *HearingListConverter) Summarize(payload map[string]interface{}) (Summary, error) {
	entries, err := collectHearings(payload)
	if err != nil {
		return Summary{}, err
	}

	if !c.GroupByBail {
		rows := make([]Row, 0, len(entries))
		for _, e := range entries {
			rows = append(rows, e.row())
		}
		return Summary{Sections: []Section{{Rows: rows}}}, nil
	}

	// Preserve first-seen order of bail statuses so resubmissions render
	// stably.
	var order []string
	grouped := make(map[string][]Row)
	for _, e := range entries {
		name := e.BailStatus
		if _, seen := grouped[name]; !seen {
			order = append(order, name)
		}
		grouped[name] = append(grouped[name], e.row())
	}
	sections := make([]Section, 0, len(order))
	for _, name := range order {
		sections = append(sections, Section{Name: name, Rows: grouped[name]})
	}
	return Summary{Sections: sections}, nil
}

func (c *HearingListConverter) Render(payload map[string]interface{}, meta Metadata, labels Bundle) (string, error) {
	summary, err := c.summarizeWithLabels(payload, labels)
	if err != nil {
		return "", err
	}
	title := meta["list-name"]
	if title == "" {
		title = labels["list-for"]
	}
	return renderPage(title, summary, meta, labels)
}

// summarizeWithLabels rebuilds the summary using translated field labels;
// Summarize itself keeps stable English keys for API consumers.
func (c *HearingListConverter) summarizeWithLabels(payload map[string]interface{}, labels Bundle) (Summary, error) {
	entries, err := collectHearings(payload)
	if err != nil {
		return Summary{}, err
	}
	var order []string
	grouped := make(map[string][]Row)
	for _, e := range entries {
		name := ""
		if c.GroupByBail {
			name = e.BailStatus
		}
		if _, seen := grouped[name]; !seen {
			order = append(order, name)
		}
		grouped[name] = append(grouped[name], e.labelledRow(labels))
	}
	if len(order) == 0 {
		order = []string{""}
	}
	sections := make([]Section, 0, len(order))
	for _, name := range order {
		sections = append(sections, Section{Name: name, Rows: grouped[name]})
	}
	return Summary{Sections: sections}, nil
}

func (c *HearingListConverter) ToSpreadsheet(payload map[string]interface{}) ([]byte, error) {
	entries, err := collectHearings(payload)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"Courtroom", "Sitting at", "Hearing type", "Case number", "Case name", "Case reference"}); err != nil {
		return nil, err
	}
	for _, e := range entries {
		if err := w.Write([]string{e.CourtRoom, e.SittingAt, e.HearingType, e.CaseNumber, e.CaseName, e.CaseURN}); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func (e hearingEntry) row() Row {
	var row Row
	row = appendField(row, "case-number", e.CaseNumber)
	row = appendField(row, "case-name", e.CaseName)
	row = appendField(row, "case-urn", e.CaseURN)
	row = appendField(row, "courtroom", e.CourtRoom)
	row = appendField(row, "sitting-at", e.SittingAt)
	row = appendField(row, "hearing-type", e.HearingType)
	row = appendField(row, "defendant", e.Defendant)
	row = appendField(row, "prosecutor", e.Prosecutor)
	return row
}

func (e hearingEntry) labelledRow(labels Bundle) Row {
	var row Row
	row = appendField(row, labels["case-number"], e.CaseNumber)
	row = appendField(row, labels["case-name"], e.CaseName)
	row = appendField(row, labels["case-urn"], e.CaseURN)
	row = appendField(row, labels["courtroom"], e.CourtRoom)
	row = appendField(row, labels["sitting-at"], e.SittingAt)
	row = appendField(row, labels["hearing-type"], e.HearingType)
	row = appendField(row, labels["defendant"], e.Defendant)
	row = appendField(row, labels["prosecutor"], e.Prosecutor)
	return row
}

func collectHearings(payload map[string]interface{}) ([]hearingEntry, error) {
	if payload == nil {
		return nil, errors.New("nil payload")
	}
	courtLists := getSlice(payload["courtLists"])
	if courtLists == nil {
		return nil, fmt.Errorf("payload has no courtLists")
	}

	var entries []hearingEntry
	for _, cl := range courtLists {
		courtHouse := getMap(getMap(cl)["courtHouse"])
		for _, cr := range getSlice(courtHouse["courtRoom"]) {
			room := getMap(cr)
			roomName := getString(room["courtRoomName"])
			for _, se := range getSlice(room["session"]) {
				for _, si := range getSlice(getMap(se)["sittings"]) {
					sitting := getMap(si)
					sittingStart := getString(sitting["sittingStart"])
					for _, he := range getSlice(sitting["hearing"]) {
						hearing := getMap(he)
						hearingType := getString(hearing["hearingType"])
						for _, ca := range getSlice(hearing["case"]) {
							c := getMap(ca)
							entry := hearingEntry{
								CourtRoom:   roomName,
								SittingAt:   sittingStart,
								HearingType: hearingType,
								CaseNumber:  getString(c["caseNumber"]),
								CaseName:    getString(c["caseName"]),
								CaseURN:     getString(c["caseUrn"]),
								BailStatus:  getString(c["bailStatus"]),
							}
							entry.Defendant, entry.Prosecutor = parties(getSlice(c["party"]))
							entries = append(entries, entry)
						}
					}
				}
			}
		}
	}
	return entries, nil
}

func parties(list []interface{}) (defendant, prosecutor string) {
	for _, p := range list {
		party := getMap(p)
		switch getString(party["partyRole"]) {
		case "DEFENDANT":
			if defendant == "" {
				defendant = partyName(party)
			}
		case "PROSECUTING_AUTHORITY":
			if prosecutor == "" {
				prosecutor = partyName(party)
			}
		}
	}
	return defendant, prosecutor
}

func partyName(party map[string]interface{}) string {
	if individual := getMap(party["individualDetails"]); individual != nil {
		forenames := getString(individual["individualForenames"])
		surname := getString(individual["individualSurname"])
		switch {
		case forenames != "" && surname != "":
			return forenames + " " + surname
		case surname != "":
			return surname
		case forenames != "":
			return forenames
		}
	}
	if org := getMap(party["organisationDetails"]); org != nil {
		return getString(org["organisationName"])
	}
	return ""
}
