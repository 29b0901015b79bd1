package importer

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/Neo-sk01/newmatter-sub000/internal/logger"
	"github.com/Neo-sk01/newmatter-sub000/internal/models"
	"github.com/Neo-sk01/newmatter-sub000/internal/normalizer"
)

// ErrSuggesterUnavailable is returned by SuggestMapping when no language
// model is configured. Callers fall back to the heuristic mapping.
var ErrSuggesterUnavailable = errors.New("mapping suggestion service is not configured")

// Mapping sources reported in ImportResponse.MappingSource.
const (
	SourceRequest   = "request"
	SourceAI        = "ai"
	SourceHeuristic = "heuristic"
)

// sampleRowCount is how many rows are shown to the suggester.
const sampleRowCount = 5

// defaultLeadSource tags committed leads that carry no source column.
const defaultLeadSource = "csv-import"

// MappingSuggester proposes a column mapping, typically through an LLM.
type MappingSuggester interface {
	SuggestMapping(ctx context.Context, columns []string, sampleRows []normalizer.RawRow) (normalizer.ColumnMapping, *normalizer.SplitNameRule, error)
}

// LeadStore persists committed leads.
type LeadStore interface {
	CreateLeads(ctx context.Context, companyID uuid.UUID, leads []models.Lead) (inserted, skipped int, err error)
}

// Service runs lead imports: mapping resolution, normalization and commit.
type Service struct {
	suggester MappingSuggester
	leads     LeadStore
	maxRows   int
	now       func() time.Time
}

// NewService creates a Service. suggester may be nil, in which case every
// import uses the heuristic mapping. maxRows caps every import regardless of
// the options a caller sends.
func NewService(suggester MappingSuggester, leads LeadStore, maxRows int) *Service {
	if maxRows <= 0 {
		maxRows = normalizer.DefaultMaxRows
	}
	return &Service{
		suggester: suggester,
		leads:     leads,
		maxRows:   maxRows,
		now:       time.Now,
	}
}

// Analyze maps and normalizes an already-parsed file.
func (s *Service) Analyze(ctx context.Context, req ImportRequest) (*ImportResponse, error) {
	start := s.now()
	log := logger.FromContext(ctx)

	if err := req.validate(); err != nil {
		return nil, err
	}
	rows := normalizer.RowsFromMaps(req.Columns, req.Rows)
	suggestions := []string{}

	mapping, split, source := s.resolveMapping(ctx, req, rows, &suggestions)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if split == nil {
		split = normalizer.DeriveSplitRule(req.Columns, mapping)
	}

	opts := req.Options.resolve(s.maxRows)
	res := normalizer.NormalizeBatch(req.Columns, rows, mapping, split, opts)
	suggestions = append(suggestions, reportSuggestions(req.Columns, mapping, res, opts)...)

	log.Info("Import analyzed",
		"columns", len(req.Columns),
		"total_rows", res.Report.TotalRows,
		"valid_rows", res.Report.ValidRows,
		"skipped_rows", res.Report.SkippedRows,
		"mapping_source", source,
	)

	return &ImportResponse{
		Success:        true,
		TotalRows:      res.Report.TotalRows,
		ValidRows:      res.Report.ValidRows,
		SkippedRows:    res.Report.SkippedRows,
		HeaderMapping:  mapping.Strings(),
		SplitName:      split,
		DataQuality:    res.Report,
		Leads:          res.Leads,
		Errors:         res.Errors,
		Suggestions:    suggestions,
		CustomFields:   res.CustomFieldColumns,
		ProcessingTime: s.now().Sub(start).Milliseconds(),
		MappingSource:  source,
	}, nil
}

// resolveMapping picks the mapping in order: caller-supplied, model
// suggestion, heuristic guess. Suggester failures never fail the import.
func (s *Service) resolveMapping(ctx context.Context, req ImportRequest, rows []normalizer.RawRow, suggestions *[]string) (normalizer.ColumnMapping, *normalizer.SplitNameRule, string) {
	log := logger.FromContext(ctx)

	if len(req.HeaderMapping) > 0 {
		mapping, unknown := requestMapping(req.Columns, req.HeaderMapping)
		for _, msg := range unknown {
			*suggestions = append(*suggestions, msg)
		}
		return mapping, requestSplit(req, suggestions), SourceRequest
	}

	if req.useAI() {
		if s.suggester == nil {
			*suggestions = append(*suggestions, "AI mapping is not configured; columns were mapped heuristically.")
		} else {
			mapping, split, err := s.suggester.SuggestMapping(ctx, req.Columns, sample(rows))
			if err == nil {
				if mapping == nil {
					mapping = normalizer.ColumnMapping{}
				}
				guessed := normalizer.GuessMapping(req.Columns, rows)
				for _, col := range req.Columns {
					if _, ok := mapping[col]; !ok {
						mapping[col] = guessed[col]
					}
				}
				if rs := requestSplit(req, suggestions); rs != nil {
					split = rs
				}
				return mapping, split, SourceAI
			}
			log.Warn("AI mapping failed, using heuristic mapping", "error", err)
			*suggestions = append(*suggestions, fmt.Sprintf("AI mapping failed (%v); columns were mapped heuristically.", err))
		}
	}

	return normalizer.GuessMapping(req.Columns, rows), requestSplit(req, suggestions), SourceHeuristic
}

// SuggestMapping asks the model only. It never falls back: the caller is
// told to run the heuristic itself.
func (s *Service) SuggestMapping(ctx context.Context, req SuggestRequest) (*SuggestResponse, error) {
	if len(req.Columns) == 0 {
		return nil, &normalizer.InputError{Reason: "no columns supplied", Err: normalizer.ErrEmptyInput}
	}
	if s.suggester == nil {
		return nil, ErrSuggesterUnavailable
	}
	rows := normalizer.RowsFromMaps(req.Columns, req.SampleRows)
	mapping, split, err := s.suggester.SuggestMapping(ctx, req.Columns, sample(rows))
	if err != nil {
		return nil, fmt.Errorf("mapping suggestion failed: %w", err)
	}
	return &SuggestResponse{
		Success:       true,
		HeaderMapping: mapping.Strings(),
		SplitName:     split,
	}, nil
}

// ParseCSV parses raw file contents on the server.
func (s *Service) ParseCSV(contents string) (*ParseResponse, error) {
	columns, rows, err := normalizer.Parse(contents)
	if err != nil {
		return nil, err
	}
	out := make([]map[string]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Values())
	}
	return &ParseResponse{
		Success:   true,
		Columns:   columns,
		Rows:      out,
		TotalRows: len(out),
	}, nil
}

// Commit persists reviewed leads for a company. Leads that fail the
// retention test are rejected; leads whose email already exists are skipped.
func (s *Service) Commit(ctx context.Context, companyID uuid.UUID, req CommitRequest) (*CommitResponse, error) {
	if s.leads == nil {
		return nil, errors.New("lead store is not configured")
	}
	batch := make([]models.Lead, 0, len(req.Leads))
	rejected := 0
	for _, nl := range req.Leads {
		if !nl.Retainable() {
			rejected++
			continue
		}
		batch = append(batch, toModel(companyID, nl, req.Source))
	}

	inserted, skipped, err := s.leads.CreateLeads(ctx, companyID, batch)
	if err != nil {
		return nil, fmt.Errorf("failed to save leads: %w", err)
	}
	logger.FromContext(ctx).Info("Leads committed",
		"company_id", companyID,
		"inserted", inserted,
		"duplicates", skipped,
		"rejected", rejected,
	)
	return &CommitResponse{
		Success:    true,
		Inserted:   inserted,
		Duplicates: skipped,
		Rejected:   rejected,
	}, nil
}

func toModel(companyID uuid.UUID, nl normalizer.NormalizedLead, source string) models.Lead {
	if nl.Source != "" {
		source = nl.Source
	} else if source == "" {
		source = defaultLeadSource
	}
	return models.Lead{
		CompanyID:    companyID,
		FirstName:    nl.FirstName,
		LastName:     nl.LastName,
		Company:      nl.Company,
		Email:        nl.Email,
		Title:        nl.Title,
		Website:      nl.Website,
		LinkedIn:     nl.LinkedIn,
		Phone:        nl.Phone,
		Location:     nl.Location,
		Industry:     nl.Industry,
		Department:   nl.Department,
		Twitter:      nl.Twitter,
		CompanySize:  nl.CompanySize,
		Revenue:      nl.Revenue,
		Notes:        nl.Notes,
		Source:       source,
		CustomFields: nl.CustomFields,
		Tags:         nl.Tags,
		Status:       models.LeadStatusNew,
	}
}

func sample(rows []normalizer.RawRow) []normalizer.RawRow {
	if len(rows) > sampleRowCount {
		return rows[:sampleRowCount]
	}
	return rows
}

// requestMapping converts a caller-supplied mapping. Columns the caller left
// out are ignored.
func requestMapping(columns []string, raw map[string]string) (normalizer.ColumnMapping, []string) {
	fields := make(map[string]normalizer.Field, len(raw))
	var unknown []string
	for col, name := range raw {
		f, ok := normalizer.ParseField(name)
		if !ok {
			unknown = append(unknown, fmt.Sprintf("Unknown field %q for column %q was treated as a custom field.", name, col))
			f = normalizer.FieldCustom
		}
		fields[col] = f
	}
	mapping := normalizer.NewColumnMapping(columns, fields)
	for _, col := range columns {
		if _, ok := mapping[col]; !ok {
			mapping[col] = normalizer.FieldIgnore
		}
	}
	sort.Strings(unknown)
	return mapping, unknown
}

func requestSplit(req ImportRequest, suggestions *[]string) *normalizer.SplitNameRule {
	if req.SplitName == nil || req.SplitName.Column == "" {
		return nil
	}
	for _, c := range req.Columns {
		if c == req.SplitName.Column {
			rule := *req.SplitName
			return &rule
		}
	}
	*suggestions = append(*suggestions, fmt.Sprintf("Split-name column %q is not in the file and was ignored.", req.SplitName.Column))
	return nil
}

func reportSuggestions(columns []string, mapping normalizer.ColumnMapping, res normalizer.Result, opts normalizer.Options) []string {
	var out []string
	if res.Truncated {
		out = append(out, fmt.Sprintf("Only the first %d rows were processed.", opts.MaxRows))
	}
	if len(mapping.ColumnsFor(columns, normalizer.FieldEmail)) == 0 {
		out = append(out, "No column is mapped to email; leads cannot be emailed until one is added.")
	}
	if res.Report.Duplicates > 0 {
		out = append(out, fmt.Sprintf("%d rows repeated an earlier email and were skipped.", res.Report.Duplicates))
	}
	if res.Report.EmailValidation.Invalid > 0 {
		out = append(out, fmt.Sprintf("%d leads have an invalid email address.", res.Report.EmailValidation.Invalid))
	}
	if n := len(res.CustomFieldColumns); n > 0 {
		out = append(out, fmt.Sprintf("%d columns were kept as custom fields.", n))
	}
	return out
}
