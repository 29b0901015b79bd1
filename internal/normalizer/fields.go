package normalizer

import (
	"strings"
	"unicode"
)

// Field is a canonical lead attribute that a CSV column can be mapped to.
type Field string

const (
	FieldFirstName   Field = "firstName"
	FieldLastName    Field = "lastName"
	FieldFullName    Field = "fullName"
	FieldCompany     Field = "company"
	FieldEmail       Field = "email"
	FieldPhone       Field = "phone"
	FieldTitle       Field = "title"
	FieldDepartment  Field = "department"
	FieldWebsite     Field = "website"
	FieldLinkedIn    Field = "linkedin"
	FieldTwitter     Field = "twitter"
	FieldLocation    Field = "location"
	FieldIndustry    Field = "industry"
	FieldCompanySize Field = "companySize"
	FieldRevenue     Field = "revenue"
	FieldNotes       Field = "notes"
	FieldSource      Field = "source"
	FieldTags        Field = "tags"
	FieldCustom      Field = "customField"
	FieldIgnore      Field = "ignore"
)

// AllFields lists the closed set of canonical fields in display order.
var AllFields = []Field{
	FieldFirstName, FieldLastName, FieldFullName, FieldCompany, FieldEmail, FieldPhone,
	FieldTitle, FieldDepartment, FieldWebsite, FieldLinkedIn, FieldTwitter, FieldLocation,
	FieldIndustry, FieldCompanySize, FieldRevenue, FieldNotes, FieldSource, FieldTags,
	FieldCustom, FieldIgnore,
}

var (
	fieldSet       = make(map[Field]struct{}, len(AllFields))
	canonicalByKey = make(map[string]Field, len(AllFields))
)

func init() {
	for _, f := range AllFields {
		fieldSet[f] = struct{}{}
		canonicalByKey[normalizeKey(string(f))] = f
	}
}

// Valid reports whether f belongs to the canonical set.
func (f Field) Valid() bool {
	_, ok := fieldSet[f]
	return ok
}

// ParseField resolves a canonical tag, or a loose spelling of one such as
// "first_name" or "LinkedIn URL", to a Field.
func ParseField(s string) (Field, bool) {
	key := normalizeKey(s)
	if key == "" {
		return "", false
	}
	if f, ok := canonicalByKey[key]; ok {
		return f, true
	}
	switch key {
	case "custom", "customfields", "other":
		return FieldCustom, true
	case "none", "skip", "null", "unmapped":
		return FieldIgnore, true
	}
	if f, ok := aliasIndex[key]; ok {
		return f, true
	}
	return "", false
}

// normalizeKey lowercases s and strips everything that is not a letter or digit.
func normalizeKey(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ColumnMapping maps an original column name to its canonical field.
type ColumnMapping map[string]Field

// NewColumnMapping keeps only the entries of raw whose key is one of columns
// and whose value is a canonical field.
func NewColumnMapping(columns []string, raw map[string]Field) ColumnMapping {
	known := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		known[c] = struct{}{}
	}
	m := make(ColumnMapping, len(raw))
	for col, f := range raw {
		if _, ok := known[col]; !ok {
			continue
		}
		if !f.Valid() {
			continue
		}
		m[col] = f
	}
	return m
}

// ColumnsFor returns the columns mapped to f, in header order.
func (m ColumnMapping) ColumnsFor(columns []string, f Field) []string {
	var out []string
	for _, c := range columns {
		if m[c] == f {
			out = append(out, c)
		}
	}
	return out
}

// Strings renders the mapping as plain strings for JSON responses.
func (m ColumnMapping) Strings() map[string]string {
	out := make(map[string]string, len(m))
	for col, f := range m {
		out[col] = string(f)
	}
	return out
}

// SplitNameRule names a single column that holds a combined full name.
type SplitNameRule struct {
	Column         string `json:"column"`
	FirstNameFirst bool   `json:"firstNameFirst"`
}

// DeriveSplitRule returns a split rule for the first fullName column when no
// column is mapped to firstName or lastName.
func DeriveSplitRule(columns []string, m ColumnMapping) *SplitNameRule {
	var fullName string
	for _, c := range columns {
		switch m[c] {
		case FieldFirstName, FieldLastName:
			return nil
		case FieldFullName:
			if fullName == "" {
				fullName = c
			}
		}
	}
	if fullName == "" {
		return nil
	}
	return &SplitNameRule{Column: fullName, FirstNameFirst: true}
}
