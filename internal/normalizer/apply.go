package normalizer

import (
	"net/url"
	"strings"
)

// NormalizedLead is a lead record produced from one CSV row.
type NormalizedLead struct {
	FirstName    string            `json:"firstName"`
	LastName     string            `json:"lastName"`
	Company      string            `json:"company"`
	Email        string            `json:"email"`
	Title        string            `json:"title"`
	Website      string            `json:"website"`
	LinkedIn     string            `json:"linkedin"`
	Phone        string            `json:"phone"`
	Location     string            `json:"location"`
	Industry     string            `json:"industry"`
	Department   string            `json:"department,omitempty"`
	Twitter      string            `json:"twitter,omitempty"`
	CompanySize  string            `json:"companySize,omitempty"`
	Revenue      string            `json:"revenue,omitempty"`
	Notes        string            `json:"notes,omitempty"`
	Source       string            `json:"source,omitempty"`
	CustomFields map[string]string `json:"customFields"`
	Tags         []string          `json:"tags"`
}

// Retainable reports whether the lead carries enough to identify a person or
// an account.
func (l *NormalizedLead) Retainable() bool {
	return l.Email != "" || l.LinkedIn != "" || l.Company != "" || l.FirstName != "" || l.LastName != ""
}

// FieldError records a value that was dropped while applying a mapping.
type FieldError struct {
	Row   int    `json:"row"`
	Field string `json:"field"`
	Value any    `json:"value"`
	Error string `json:"error"`
}

const (
	reasonInvalidEmail = "invalid email format"
	reasonInvalidURL   = "invalid URL"
)

// applied is the outcome of mapping one row.
type applied struct {
	lead          NormalizedLead
	errs          []FieldError
	emailSupplied bool
}

// ApplyMapping maps one row onto a lead with email validation enabled.
// Retention is left to the caller.
func ApplyMapping(row RawRow, mapping ColumnMapping, split *SplitNameRule) (NormalizedLead, []FieldError) {
	a := applyMapping(row, mapping, split, true)
	return a.lead, a.errs
}

func applyMapping(row RawRow, mapping ColumnMapping, split *SplitNameRule, validateEmails bool) applied {
	a := applied{lead: NormalizedLead{
		CustomFields: map[string]string{},
		Tags:         []string{},
	}}
	lead := &a.lead

	for _, col := range row.Columns() {
		field, ok := mapping[col]
		if !ok || field == FieldIgnore {
			continue
		}
		value := row.Get(col)
		if value == "" {
			continue
		}

		switch field {
		case FieldFirstName:
			setFirst(&lead.FirstName, value)
		case FieldLastName:
			setFirst(&lead.LastName, value)
		case FieldCompany:
			setFirst(&lead.Company, value)
		case FieldTitle:
			setFirst(&lead.Title, value)
		case FieldPhone:
			setFirst(&lead.Phone, value)
		case FieldLocation:
			setFirst(&lead.Location, value)
		case FieldIndustry:
			setFirst(&lead.Industry, value)
		case FieldDepartment:
			setFirst(&lead.Department, value)
		case FieldNotes:
			setFirst(&lead.Notes, value)
		case FieldSource:
			setFirst(&lead.Source, value)
		case FieldTwitter:
			setFirst(&lead.Twitter, value)
		case FieldCompanySize:
			setFirst(&lead.CompanySize, value)
		case FieldRevenue:
			setFirst(&lead.Revenue, value)
		case FieldEmail:
			a.emailSupplied = true
			if lead.Email != "" {
				continue
			}
			email := strings.ToLower(value)
			if validateEmails && !emailPattern.MatchString(email) {
				a.errs = append(a.errs, FieldError{Field: string(FieldEmail), Value: value, Error: reasonInvalidEmail})
				continue
			}
			lead.Email = email
		case FieldWebsite, FieldLinkedIn:
			target := &lead.Website
			if field == FieldLinkedIn {
				target = &lead.LinkedIn
			}
			if *target != "" {
				continue
			}
			u, ok := normalizeURL(value)
			if !ok {
				a.errs = append(a.errs, FieldError{Field: string(field), Value: value, Error: reasonInvalidURL})
				continue
			}
			*target = u
		case FieldTags:
			lead.Tags = append(lead.Tags, splitTags(value)...)
		case FieldCustom:
			lead.CustomFields[col] = value
		case FieldFullName:
			// Consumed through the split rule below.
		}
	}

	if lead.FirstName == "" && lead.LastName == "" && split != nil {
		lead.FirstName, lead.LastName = splitFullName(row.Get(split.Column), split.FirstNameFirst)
	}
	return a
}

func setFirst(dst *string, value string) {
	if *dst == "" {
		*dst = value
	}
}

// normalizeURL prefixes https:// unless the value already carries an http(s)
// scheme. The result must parse and name a host.
func normalizeURL(value string) (string, bool) {
	lower := strings.ToLower(value)
	switch {
	case strings.HasPrefix(lower, "https://"):
		value = "https://" + value[len("https://"):]
	case strings.HasPrefix(lower, "http://"):
		value = "http://" + value[len("http://"):]
	default:
		value = "https://" + value
	}
	u, err := url.Parse(value)
	if err != nil || u.Host == "" {
		return "", false
	}
	return value, true
}

func splitTags(value string) []string {
	var tags []string
	for _, t := range strings.Split(value, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// splitFullName splits on whitespace. With firstNameFirst the first token is
// the first name and the rest the last name; otherwise the last token is the
// first name and the first token the last name.
func splitFullName(value string, firstNameFirst bool) (first, last string) {
	parts := strings.Fields(value)
	tokens := parts[:0]
	for _, p := range parts {
		if p = strings.Trim(p, ","); p != "" {
			tokens = append(tokens, p)
		}
	}
	switch len(tokens) {
	case 0:
		return "", ""
	case 1:
		return tokens[0], ""
	}
	if firstNameFirst {
		return tokens[0], strings.Join(tokens[1:], " ")
	}
	return tokens[len(tokens)-1], tokens[0]
}
