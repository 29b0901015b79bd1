package normalizer

import (
	"regexp"
	"strings"
)

type alias struct {
	key   string
	field Field
}

// aliases maps normalized header spellings to canonical fields. Order matters
// only to break ties between equally long substring matches.
var aliases = []alias{
	{"firstname", FieldFirstName}, {"first", FieldFirstName}, {"fname", FieldFirstName},
	{"givenname", FieldFirstName}, {"forename", FieldFirstName}, {"contactfirstname", FieldFirstName},

	{"lastname", FieldLastName}, {"last", FieldLastName}, {"lname", FieldLastName},
	{"surname", FieldLastName}, {"familyname", FieldLastName}, {"contactlastname", FieldLastName},

	{"fullname", FieldFullName}, {"name", FieldFullName}, {"contactname", FieldFullName},
	{"leadname", FieldFullName}, {"person", FieldFullName}, {"prospect", FieldFullName},

	{"company", FieldCompany}, {"companyname", FieldCompany}, {"org", FieldCompany},
	{"organisation", FieldCompany}, {"organization", FieldCompany}, {"account", FieldCompany},
	{"accountname", FieldCompany}, {"business", FieldCompany}, {"employer", FieldCompany},
	{"firm", FieldCompany},

	{"email", FieldEmail}, {"emailaddress", FieldEmail}, {"mail", FieldEmail},
	{"emailid", FieldEmail}, {"workemail", FieldEmail}, {"businessemail", FieldEmail},
	{"contactemail", FieldEmail}, {"personalemail", FieldEmail},

	{"phone", FieldPhone}, {"phonenumber", FieldPhone}, {"mobile", FieldPhone},
	{"cell", FieldPhone}, {"telephone", FieldPhone}, {"tel", FieldPhone},
	{"mobilephone", FieldPhone}, {"workphone", FieldPhone}, {"contactnumber", FieldPhone},
	{"contactphone", FieldPhone}, {"companyphone", FieldPhone},

	{"title", FieldTitle}, {"jobtitle", FieldTitle}, {"position", FieldTitle},
	{"role", FieldTitle}, {"designation", FieldTitle},

	{"department", FieldDepartment}, {"dept", FieldDepartment}, {"team", FieldDepartment},
	{"division", FieldDepartment},

	{"website", FieldWebsite}, {"url", FieldWebsite}, {"web", FieldWebsite},
	{"site", FieldWebsite}, {"domain", FieldWebsite}, {"homepage", FieldWebsite},
	{"companywebsite", FieldWebsite}, {"companydomain", FieldWebsite}, {"companyurl", FieldWebsite},

	{"linkedin", FieldLinkedIn}, {"li", FieldLinkedIn}, {"linkedinurl", FieldLinkedIn},
	{"linkedinprofile", FieldLinkedIn}, {"personlinkedinurl", FieldLinkedIn},

	{"twitter", FieldTwitter}, {"x", FieldTwitter}, {"twitterhandle", FieldTwitter},
	{"twitterurl", FieldTwitter},

	{"location", FieldLocation}, {"city", FieldLocation}, {"country", FieldLocation},
	{"address", FieldLocation}, {"region", FieldLocation}, {"state", FieldLocation},
	{"geo", FieldLocation},

	{"industry", FieldIndustry}, {"sector", FieldIndustry}, {"vertical", FieldIndustry},

	{"companysize", FieldCompanySize}, {"employees", FieldCompanySize}, {"headcount", FieldCompanySize},
	{"size", FieldCompanySize}, {"numberofemployees", FieldCompanySize}, {"employeecount", FieldCompanySize},

	{"revenue", FieldRevenue}, {"annualrevenue", FieldRevenue}, {"arr", FieldRevenue},
	{"turnover", FieldRevenue},

	{"notes", FieldNotes}, {"note", FieldNotes}, {"comments", FieldNotes},
	{"comment", FieldNotes}, {"description", FieldNotes},

	{"source", FieldSource}, {"leadsource", FieldSource}, {"origin", FieldSource},
	{"channel", FieldSource},

	{"tags", FieldTags}, {"tag", FieldTags}, {"labels", FieldTags},
	{"label", FieldTags}, {"segment", FieldTags},

	{"skip", FieldIgnore}, {"ignore", FieldIgnore}, {"id", FieldIgnore},
	{"rowid", FieldIgnore}, {"unused", FieldIgnore}, {"emailstatus", FieldIgnore},
}

var aliasIndex = func() map[string]Field {
	m := make(map[string]Field, len(aliases))
	for _, a := range aliases {
		m[a.key] = a.field
	}
	return m
}()

// minContainmentLen keeps short aliases such as "li", "tel" and "arr" to
// exact matches; otherwise "client" would become a LinkedIn column and
// "carrier" a revenue one.
const minContainmentLen = 4

// exactOnly lists longer aliases that still read as fragments of ordinary
// words ("excellence").
var exactOnly = map[string]bool{"cell": true}

// sampleSize is how many non-empty values per column are inspected.
const sampleSize = 5

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	urlPattern   = regexp.MustCompile(`(?i)^https?://`)
	phonePattern = regexp.MustCompile(`^[\d\s()+\-./]+$`)
	digitPattern = regexp.MustCompile(`\d`)
)

// GuessMapping derives a mapping from header names and, where the name says
// nothing, from sample values. It never calls out and is deterministic.
func GuessMapping(columns []string, sampleRows []RawRow) ColumnMapping {
	m := make(ColumnMapping, len(columns))
	for _, col := range columns {
		m[col] = guessColumn(col, sampleRows)
	}
	return m
}

func guessColumn(column string, sampleRows []RawRow) Field {
	key := normalizeKey(column)
	if key == "" {
		return FieldIgnore
	}
	if f, ok := aliasIndex[key]; ok {
		return f
	}
	if f, ok := containmentMatch(key); ok {
		return f
	}
	if f, ok := sampleMatch(key, column, sampleRows); ok {
		return f
	}
	return FieldCustom
}

// containmentMatch checks the header against every alias in both directions.
// A header that contains an alias keeps the longest such alias; failing that,
// a header contained in an alias keeps the shortest such alias, i.e. the
// closest spelling.
func containmentMatch(key string) (Field, bool) {
	var (
		best    Field
		bestLen int
	)
	for _, a := range aliases {
		if len(a.key) < minContainmentLen || exactOnly[a.key] {
			continue
		}
		if strings.Contains(key, a.key) && len(a.key) > bestLen {
			best, bestLen = a.field, len(a.key)
		}
	}
	if bestLen > 0 {
		return best, true
	}
	if len(key) < minContainmentLen {
		return "", false
	}
	for _, a := range aliases {
		if strings.Contains(a.key, key) && (bestLen == 0 || len(a.key) < bestLen) {
			best, bestLen = a.field, len(a.key)
		}
	}
	return best, bestLen > 0
}

func sampleMatch(key, column string, sampleRows []RawRow) (Field, bool) {
	inspected := 0
	for _, row := range sampleRows {
		if inspected == sampleSize {
			break
		}
		v := row.Get(column)
		if v == "" {
			continue
		}
		inspected++
		switch {
		case emailPattern.MatchString(v):
			return FieldEmail, true
		case urlPattern.MatchString(v):
			if strings.Contains(key, "linkedin") {
				return FieldLinkedIn, true
			}
			return FieldWebsite, true
		case looksLikePhone(v):
			return FieldPhone, true
		}
	}
	return "", false
}

func looksLikePhone(v string) bool {
	return len(v) >= 10 && phonePattern.MatchString(v) && digitPattern.MatchString(v)
}
