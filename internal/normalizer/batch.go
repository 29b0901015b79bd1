package normalizer

// DefaultMaxRows bounds how many rows one import processes.
const DefaultMaxRows = 10000

// Options tunes NormalizeBatch.
type Options struct {
	SkipEmptyRows    bool
	ValidateEmails   bool
	DetectDuplicates bool
	MaxRows          int
}

func DefaultOptions() Options {
	return Options{
		SkipEmptyRows:    true,
		ValidateEmails:   true,
		DetectDuplicates: true,
		MaxRows:          DefaultMaxRows,
	}
}

type EmailValidation struct {
	Valid   int `json:"valid"`
	Invalid int `json:"invalid"`
	Missing int `json:"missing"`
}

type Completeness struct {
	HasName    int `json:"hasName"`
	HasCompany int `json:"hasCompany"`
	HasContact int `json:"hasContact"`
}

// DataQualityReport summarises one batch. Email and completeness tallies
// cover retained leads only.
type DataQualityReport struct {
	TotalRows       int             `json:"totalRows"`
	ValidRows       int             `json:"validRows"`
	SkippedRows     int             `json:"skippedRows"`
	EmailValidation EmailValidation `json:"emailValidation"`
	Completeness    Completeness    `json:"completeness"`
	Duplicates      int             `json:"duplicates"`
}

// Result is everything NormalizeBatch produces.
type Result struct {
	Leads              []NormalizedLead
	Report             DataQualityReport
	Errors             []FieldError
	CustomFieldColumns []string
	// Truncated is set when rows were left unprocessed because of MaxRows.
	Truncated bool
	// EmptyRowsSkipped counts all-blank rows dropped before counting.
	EmptyRowsSkipped int
}

// NormalizeBatch applies mapping to rows in order. A row is dropped when it
// carries no identifying field or, with DetectDuplicates, when its email was
// already seen earlier in this batch.
func NormalizeBatch(columns []string, rows []RawRow, mapping ColumnMapping, split *SplitNameRule, opts Options) Result {
	res := Result{
		Leads:              []NormalizedLead{},
		Errors:             []FieldError{},
		CustomFieldColumns: mapping.ColumnsFor(columns, FieldCustom),
	}
	if res.CustomFieldColumns == nil {
		res.CustomFieldColumns = []string{}
	}
	seenEmails := make(map[string]struct{})
	report := &res.Report

	for i, row := range rows {
		if opts.SkipEmptyRows && row.IsEmpty() {
			res.EmptyRowsSkipped++
			continue
		}
		if opts.MaxRows > 0 && report.TotalRows == opts.MaxRows {
			res.Truncated = true
			break
		}
		report.TotalRows++

		a := applyMapping(row, mapping, split, opts.ValidateEmails)
		for _, fe := range a.errs {
			fe.Row = i + 1
			res.Errors = append(res.Errors, fe)
		}

		lead := a.lead
		if !lead.Retainable() {
			report.SkippedRows++
			continue
		}
		if opts.DetectDuplicates && lead.Email != "" {
			if _, dup := seenEmails[lead.Email]; dup {
				report.Duplicates++
				report.SkippedRows++
				continue
			}
			seenEmails[lead.Email] = struct{}{}
		}

		report.ValidRows++
		switch {
		case lead.Email != "":
			report.EmailValidation.Valid++
		case a.emailSupplied:
			report.EmailValidation.Invalid++
		default:
			report.EmailValidation.Missing++
		}
		if lead.FirstName != "" || lead.LastName != "" {
			report.Completeness.HasName++
		}
		if lead.Company != "" {
			report.Completeness.HasCompany++
		}
		if lead.Email != "" || lead.Phone != "" {
			report.Completeness.HasContact++
		}
		res.Leads = append(res.Leads, lead)
	}
	return res
}
