package render

import (
	"strings"

	"github.com/opencourt/platform/pkg/publication"
)

// Registry maps list types onto their converters. Built once at process
// start and read-only afterwards; a list type with no entry is a valid
// "unsupported for rendering" outcome, not an error.
type Registry struct {
	converters map[publication.ListType]Converter
}

func NewRegistry() *Registry {
	hearing := &HearingListConverter{}
	warned := &HearingListConverter{GroupByBail: true}
	sjpPublic := &SJPConverter{}
	sjpPress := &SJPConverter{Press: true}

	return &Registry{converters: map[publication.ListType]Converter{
		publication.SJPPublicList:     sjpPublic,
		publication.SJPPressList:      sjpPress,
		publication.SJPDeltaPressList: sjpPress,

		publication.CrownDailyList:  hearing,
		publication.CrownFirmList:   hearing,
		publication.CrownWarnedList: warned,

		publication.MagistratesPublicList:   hearing,
		publication.MagistratesStandardList: hearing,

		publication.CivilDailyCauseList:          hearing,
		publication.FamilyDailyCauseList:         hearing,
		publication.CivilAndFamilyDailyCauseList: hearing,
		publication.COPDailyCauseList:            hearing,

		publication.SSCSDailyList:                   hearing,
		publication.SSCSDailyListAdditionalHearings: hearing,
		publication.IACDailyList:                    hearing,
		publication.IACDailyListAdditionalCases:     hearing,

		publication.CareStandardsList:       hearing,
		publication.PrimaryHealthList:       hearing,
		publication.ETDailyList:             hearing,
		publication.ETFortnightlyPressList:  hearing,
		publication.CSTWeeklyHearingList:    hearing,
		publication.PHTWeeklyHearingList:    hearing,
		publication.GRCWeeklyHearingList:    hearing,
		publication.WPAFCCWeeklyHearingList: hearing,
		publication.UTIACJRDailyHearingList: hearing,
		publication.ASTDailyHearingList:     hearing,
		publication.SIACWeeklyHearingList:   hearing,

		// UT chambers and first-tier tax/land lists are not yet onboarded
		// for rendering; their artefacts are stored and searchable only.
	}}
}

// For returns the converter registered for a list type.
func (r *Registry) For(listType publication.ListType) (Converter, bool) {
	c, ok := r.converters[listType]
	return c, ok
}

// Supported lists the list types that currently render, mainly for the
// health/reporting endpoints.
func (r *Registry) Supported() []publication.ListType {
	out := make([]publication.ListType, 0, len(r.converters))
	for lt := range r.converters {
		out = append(out, lt)
	}
	return out
}

var titleAcronyms = map[string]bool{
	"SJP": true, "IAC": true, "SSCS": true, "COP": true, "ET": true,
	"CST": true, "PHT": true, "GRC": true, "WPAFCC": true, "UT": true,
	"AST": true, "SIAC": true, "JR": true, "FTT": true,
}

// listTitle turns a list type constant into a page heading, keeping the
// tribunal acronyms upper case.
func listTitle(listType publication.ListType) string {
	words := strings.Split(string(listType), "_")
	for i, word := range words {
		if titleAcronyms[word] || word == "" {
			continue
		}
		words[i] = word[:1] + strings.ToLower(word[1:])
	}
	return strings.Join(words, " ")
}
