package importer

import (
	"github.com/Neo-sk01/newmatter-sub000/internal/normalizer"
)

// ImportOptions are the caller's processing switches. Unset switches take
// their defaults: every boolean on, MaxRows at the service cap.
type ImportOptions struct {
	SkipEmptyRows    *bool `json:"skipEmptyRows,omitempty"`
	ValidateEmails   *bool `json:"validateEmails,omitempty"`
	DetectDuplicates *bool `json:"detectDuplicates,omitempty"`
	MaxRows          int   `json:"maxRows,omitempty"`
}

func (o *ImportOptions) resolve(maxRows int) normalizer.Options {
	opts := normalizer.DefaultOptions()
	opts.MaxRows = maxRows
	if o == nil {
		return opts
	}
	if o.SkipEmptyRows != nil {
		opts.SkipEmptyRows = *o.SkipEmptyRows
	}
	if o.ValidateEmails != nil {
		opts.ValidateEmails = *o.ValidateEmails
	}
	if o.DetectDuplicates != nil {
		opts.DetectDuplicates = *o.DetectDuplicates
	}
	if o.MaxRows > 0 && o.MaxRows < maxRows {
		opts.MaxRows = o.MaxRows
	}
	return opts
}

// ImportRequest is a file that the client already parsed.
type ImportRequest struct {
	Columns       []string                  `json:"columns"`
	Rows          []map[string]string       `json:"rows"`
	HeaderMapping map[string]string         `json:"headerMapping,omitempty"`
	SplitName     *normalizer.SplitNameRule `json:"splitName,omitempty"`
	Options       *ImportOptions            `json:"options,omitempty"`
	// UseAI defaults to true.
	UseAI *bool `json:"useAI,omitempty"`
}

func (r ImportRequest) useAI() bool {
	return r.UseAI == nil || *r.UseAI
}

func (r ImportRequest) validate() error {
	if len(r.Columns) == 0 {
		return &normalizer.InputError{Reason: "no columns supplied", Err: normalizer.ErrEmptyInput}
	}
	if len(r.Rows) == 0 {
		return &normalizer.InputError{Reason: "no data rows supplied", Err: normalizer.ErrEmptyInput}
	}
	return nil
}

type ImportResponse struct {
	Success        bool                         `json:"success"`
	TotalRows      int                          `json:"totalRows"`
	ValidRows      int                          `json:"validRows"`
	SkippedRows    int                          `json:"skippedRows"`
	HeaderMapping  map[string]string            `json:"headerMapping"`
	SplitName      *normalizer.SplitNameRule    `json:"splitName,omitempty"`
	DataQuality    normalizer.DataQualityReport `json:"dataQuality"`
	Leads          []normalizer.NormalizedLead  `json:"leads"`
	Errors         []normalizer.FieldError      `json:"errors"`
	Suggestions    []string                     `json:"suggestions"`
	CustomFields   []string                     `json:"customFields"`
	ProcessingTime int64                        `json:"processingTime"`
	MappingSource  string                       `json:"mappingSource"`
}

// SuggestRequest asks for a model mapping without normalizing anything.
type SuggestRequest struct {
	Columns    []string            `json:"columns"`
	SampleRows []map[string]string `json:"sampleRows"`
}

type SuggestResponse struct {
	Success       bool                      `json:"success"`
	HeaderMapping map[string]string         `json:"headerMapping"`
	SplitName     *normalizer.SplitNameRule `json:"splitName,omitempty"`
}

type ParseRequest struct {
	Contents string `json:"contents" binding:"required"`
}

type ParseResponse struct {
	Success   bool                `json:"success"`
	Columns   []string            `json:"columns"`
	Rows      []map[string]string `json:"rows"`
	TotalRows int                 `json:"totalRows"`
}

// CommitRequest carries reviewed leads to be saved.
type CommitRequest struct {
	Leads  []normalizer.NormalizedLead `json:"leads" binding:"required"`
	Source string                      `json:"source,omitempty"`
}

type CommitResponse struct {
	Success    bool `json:"success"`
	Inserted   int  `json:"inserted"`
	Duplicates int  `json:"duplicates"`
	Rejected   int  `json:"rejected"`
}
