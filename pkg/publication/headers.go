package publication

import (
	"time"

	"github.com/opencourt/platform/pkg/location"
)

// Wire header names for the ingestion API. Validation errors always name one
// of these so submitting systems can self-diagnose.
const (
	HeaderProvenance       = "x-provenance"
	HeaderSourceArtefactID = "x-source-artefact-id"
	HeaderType             = "x-type"
	HeaderSensitivity      = "x-sensitivity"
	HeaderLanguage         = "x-language"
	HeaderDisplayFrom      = "x-display-from"
	HeaderDisplayTo        = "x-display-to"
	HeaderListType         = "x-list-type"
	HeaderCourtID          = "x-court-id"
	HeaderContentDate      = "x-content-date"
)

type ArtefactType string

const (
	TypeList               ArtefactType = "LIST"
	TypeJudgement          ArtefactType = "JUDGEMENT"
	TypeOutcome            ArtefactType = "OUTCOME"
	TypeGeneralPublication ArtefactType = "GENERAL_PUBLICATION"
	TypeStatusUpdate       ArtefactType = "STATUS_UPDATE"
)

// typeRule drives the type-conditional header requirements. Table-driven so a
// new artefact type is a row, not another branch in the validator.
type typeRule struct {
	requiresDisplayWindow bool
	defaultDisplayFromNow bool
}

var typeRules = map[ArtefactType]typeRule{
	TypeList:               {requiresDisplayWindow: true},
	TypeJudgement:          {requiresDisplayWindow: true},
	TypeOutcome:            {},
	TypeGeneralPublication: {defaultDisplayFromNow: true},
	TypeStatusUpdate:       {},
}

func (t ArtefactType) Valid() bool {
	_, ok := typeRules[t]
	return ok
}

type Sensitivity string

const (
	SensitivityPublic     Sensitivity = "PUBLIC"
	SensitivityPrivate    Sensitivity = "PRIVATE"
	SensitivityClassified Sensitivity = "CLASSIFIED"
)

func (s Sensitivity) Valid() bool {
	switch s {
	case SensitivityPublic, SensitivityPrivate, SensitivityClassified:
		return true
	}
	return false
}

type Language string

const (
	LanguageEnglish   Language = "ENGLISH"
	LanguageWelsh     Language = "WELSH"
	LanguageBilingual Language = "BILINGUAL"
)

func (l Language) Valid() bool {
	switch l {
	case LanguageEnglish, LanguageWelsh, LanguageBilingual:
		return true
	}
	return false
}

type ListType string

const (
	SJPPublicList                   ListType = "SJP_PUBLIC_LIST"
	SJPPressList                    ListType = "SJP_PRESS_LIST"
	SJPDeltaPressList               ListType = "SJP_DELTA_PRESS_LIST"
	CrownDailyList                  ListType = "CROWN_DAILY_LIST"
	CrownFirmList                   ListType = "CROWN_FIRM_LIST"
	CrownWarnedList                 ListType = "CROWN_WARNED_LIST"
	MagistratesPublicList           ListType = "MAGISTRATES_PUBLIC_LIST"
	MagistratesStandardList         ListType = "MAGISTRATES_STANDARD_LIST"
	CivilDailyCauseList             ListType = "CIVIL_DAILY_CAUSE_LIST"
	FamilyDailyCauseList            ListType = "FAMILY_DAILY_CAUSE_LIST"
	CivilAndFamilyDailyCauseList    ListType = "CIVIL_AND_FAMILY_DAILY_CAUSE_LIST"
	COPDailyCauseList               ListType = "COP_DAILY_CAUSE_LIST"
	SSCSDailyList                   ListType = "SSCS_DAILY_LIST"
	SSCSDailyListAdditionalHearings ListType = "SSCS_DAILY_LIST_ADDITIONAL_HEARINGS"
	IACDailyList                    ListType = "IAC_DAILY_LIST"
	IACDailyListAdditionalCases     ListType = "IAC_DAILY_LIST_ADDITIONAL_CASES"
	CareStandardsList               ListType = "CARE_STANDARDS_LIST"
	PrimaryHealthList               ListType = "PRIMARY_HEALTH_LIST"
	ETDailyList                     ListType = "ET_DAILY_LIST"
	ETFortnightlyPressList          ListType = "ET_FORTNIGHTLY_PRESS_LIST"
	CSTWeeklyHearingList            ListType = "CST_WEEKLY_HEARING_LIST"
	PHTWeeklyHearingList            ListType = "PHT_WEEKLY_HEARING_LIST"
	GRCWeeklyHearingList            ListType = "GRC_WEEKLY_HEARING_LIST"
	WPAFCCWeeklyHearingList         ListType = "WPAFCC_WEEKLY_HEARING_LIST"
	UTIACJRDailyHearingList         ListType = "UT_IAC_JR_DAILY_HEARING_LIST"
	UTTCCDailyHearingList           ListType = "UT_T_AND_CC_DAILY_HEARING_LIST"
	UTLCDailyHearingList            ListType = "UT_LC_DAILY_HEARING_LIST"
	UTAACDailyHearingList           ListType = "UT_AAC_DAILY_HEARING_LIST"
	ASTDailyHearingList             ListType = "AST_DAILY_HEARING_LIST"
	SIACWeeklyHearingList           ListType = "SIAC_WEEKLY_HEARING_LIST"
	FTTTaxWeeklyHearingList         ListType = "FTT_TAX_WEEKLY_HEARING_LIST"
	FTTLRWeeklyHearingList          ListType = "FTT_LR_WEEKLY_HEARING_LIST"
)

// listTypeLocations maps each list type onto the kind of location record it is
// published against, which steers the resolver's cross-reference lookup.
var listTypeLocations = map[ListType]string{
	SJPPublicList:                   location.TypeNational,
	SJPPressList:                    location.TypeNational,
	SJPDeltaPressList:               location.TypeNational,
	CrownDailyList:                  location.TypeVenue,
	CrownFirmList:                   location.TypeVenue,
	CrownWarnedList:                 location.TypeVenue,
	MagistratesPublicList:           location.TypeVenue,
	MagistratesStandardList:         location.TypeVenue,
	CivilDailyCauseList:             location.TypeVenue,
	FamilyDailyCauseList:            location.TypeVenue,
	CivilAndFamilyDailyCauseList:    location.TypeVenue,
	COPDailyCauseList:               location.TypeVenue,
	SSCSDailyList:                   location.TypeRegion,
	SSCSDailyListAdditionalHearings: location.TypeRegion,
	IACDailyList:                    location.TypeVenue,
	IACDailyListAdditionalCases:     location.TypeVenue,
	CareStandardsList:               location.TypeNational,
	PrimaryHealthList:               location.TypeNational,
	ETDailyList:                     location.TypeVenue,
	ETFortnightlyPressList:          location.TypeRegion,
	CSTWeeklyHearingList:            location.TypeNational,
	PHTWeeklyHearingList:            location.TypeNational,
	GRCWeeklyHearingList:            location.TypeNational,
	WPAFCCWeeklyHearingList:         location.TypeNational,
	UTIACJRDailyHearingList:         location.TypeVenue,
	UTTCCDailyHearingList:           location.TypeNational,
	UTLCDailyHearingList:            location.TypeNational,
	UTAACDailyHearingList:           location.TypeNational,
	ASTDailyHearingList:             location.TypeVenue,
	SIACWeeklyHearingList:           location.TypeNational,
	FTTTaxWeeklyHearingList:         location.TypeNational,
	FTTLRWeeklyHearingList:          location.TypeNational,
}

func (l ListType) Valid() bool {
	_, ok := listTypeLocations[l]
	return ok
}

// LocationType returns the location kind this list type resolves against.
func (l ListType) LocationType() string {
	if t, ok := listTypeLocations[l]; ok {
		return t
	}
	return location.TypeVenue
}

// ListTypes returns every known list type; used to seed the search table and
// the conversion registry.
func ListTypes() []ListType {
	out := make([]ListType, 0, len(listTypeLocations))
	for lt := range listTypeLocations {
		out = append(out, lt)
	}
	return out
}

// HeaderGroup is the canonical parsed form of the ingestion headers. It is
// produced only by Validate, so downstream code can rely on the invariants
// (required fields present, display window ordered).
type HeaderGroup struct {
	Provenance       string
	SourceArtefactID string
	Type             ArtefactType
	Sensitivity      Sensitivity
	Language         Language
	DisplayFrom      *time.Time
	DisplayTo        *time.Time
	ListType         ListType
	CourtID          string
	ContentDate      time.Time
}
