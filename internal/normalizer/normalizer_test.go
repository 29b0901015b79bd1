package normalizer

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, csvText string) ([]string, []RawRow) {
	t.Helper()
	columns, rows, err := Parse(csvText)
	require.NoError(t, err)
	return columns, rows
}

func TestParse(t *testing.T) {
	t.Run("Trims Header And Cells", func(t *testing.T) {
		columns, rows := mustParse(t, " Name , Email \n  Jane Doe ,  jane@x.io  \n")
		assert.Equal(t, []string{"Name", "Email"}, columns)
		require.Len(t, rows, 1)
		assert.Equal(t, "Jane Doe", rows[0].Get("Name"))
		assert.Equal(t, "jane@x.io", rows[0].Get("Email"))
	})

	t.Run("Drops Empty Rows And Pads Short Rows", func(t *testing.T) {
		columns, rows := mustParse(t, "a,b,c\n1,2,3\n,,\n4\n")
		assert.Equal(t, []string{"a", "b", "c"}, columns)
		require.Len(t, rows, 2)
		assert.Equal(t, "4", rows[1].Get("a"))
		assert.Equal(t, "", rows[1].Get("c"))
	})

	t.Run("Quoted Cells With Commas", func(t *testing.T) {
		_, rows := mustParse(t, "Company,Tags\n\"Acme, Inc\",\"a, b\"\n")
		assert.Equal(t, "Acme, Inc", rows[0].Get("Company"))
		assert.Equal(t, "a, b", rows[0].Get("Tags"))
	})

	t.Run("Strips Byte Order Mark", func(t *testing.T) {
		columns, _ := mustParse(t, "\ufeffEmail\nx@y.io\n")
		assert.Equal(t, []string{"Email"}, columns)
	})

	t.Run("Names Blank And Duplicate Headers", func(t *testing.T) {
		columns, _ := mustParse(t, "Email,,Email\na@b.io,x,c@d.io\n")
		assert.Equal(t, []string{"Email", "column_2", "Email_1"}, columns)
	})

	for name, input := range map[string]string{
		"Empty File":         "",
		"Whitespace Only":    "  \n \n",
		"Header Only":        "First Name,Email\n",
		"Only Empty Rows":    "First Name,Email\n,\n , \n",
		"Blank Header Cells": ",,\na,b,c\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, _, err := Parse(input)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrEmptyInput))
			var inputErr *InputError
			assert.True(t, errors.As(err, &inputErr))
		})
	}
}

func TestGuessMapping(t *testing.T) {
	t.Run("Exact Aliases", func(t *testing.T) {
		columns := []string{"First Name", "Last Name", "Company Name", "Email Address"}
		got := GuessMapping(columns, nil)
		assert.Equal(t, ColumnMapping{
			"First Name":    FieldFirstName,
			"Last Name":     FieldLastName,
			"Company Name":  FieldCompany,
			"Email Address": FieldEmail,
		}, got)
	})

	t.Run("Short Aliases", func(t *testing.T) {
		got := GuessMapping([]string{"fname", "org", "li", "skip", "Job Title", "e-mail"}, nil)
		assert.Equal(t, FieldFirstName, got["fname"])
		assert.Equal(t, FieldCompany, got["org"])
		assert.Equal(t, FieldLinkedIn, got["li"])
		assert.Equal(t, FieldIgnore, got["skip"])
		assert.Equal(t, FieldTitle, got["Job Title"])
		assert.Equal(t, FieldEmail, got["e-mail"])
	})

	t.Run("Substring Containment", func(t *testing.T) {
		got := GuessMapping([]string{"Person Linkedin Url", "Company LinkedIn Page", "Primary Phone 2", "Contact", "Organization Website"}, nil)
		assert.Equal(t, FieldLinkedIn, got["Person Linkedin Url"])
		assert.Equal(t, FieldLinkedIn, got["Company LinkedIn Page"])
		assert.Equal(t, FieldPhone, got["Primary Phone 2"])
		assert.Equal(t, FieldFullName, got["Contact"])
		assert.Equal(t, FieldCompany, got["Organization Website"])
	})

	t.Run("Short Aliases Need Exact Match", func(t *testing.T) {
		got := GuessMapping([]string{"Client", "Carrier", "Warranty", "Excellence", "Webinar", "Tel", "Web", "ARR"}, nil)
		assert.Equal(t, FieldCustom, got["Client"])
		assert.Equal(t, FieldCustom, got["Carrier"])
		assert.Equal(t, FieldCustom, got["Warranty"])
		assert.Equal(t, FieldCustom, got["Excellence"])
		assert.Equal(t, FieldCustom, got["Webinar"])
		assert.Equal(t, FieldPhone, got["Tel"])
		assert.Equal(t, FieldWebsite, got["Web"])
		assert.Equal(t, FieldRevenue, got["ARR"])
	})

	t.Run("Sample Values", func(t *testing.T) {
		columns := []string{"col1", "col2", "col3", "Profile linkedin?", "Favourite Colour"}
		rows := RowsFromMaps(columns, []map[string]string{
			{"col1": "", "col2": "", "col3": "", "Favourite Colour": "blue"},
			{"col1": "a@b.io", "col2": "https://acme.io", "col3": "+1 (555) 123-4567", "Profile linkedin?": "http://linkedin.com/in/x"},
		})
		got := GuessMapping(columns, rows)
		assert.Equal(t, FieldEmail, got["col1"])
		assert.Equal(t, FieldWebsite, got["col2"])
		assert.Equal(t, FieldPhone, got["col3"])
		assert.Equal(t, FieldLinkedIn, got["Profile linkedin?"])
		assert.Equal(t, FieldCustom, got["Favourite Colour"])
	})

	t.Run("Sample Inspection Stops After Five Values", func(t *testing.T) {
		columns := []string{"zzz"}
		records := []map[string]string{}
		for i := 0; i < 5; i++ {
			records = append(records, map[string]string{"zzz": "nope"})
		}
		records = append(records, map[string]string{"zzz": "late@hit.io"})
		got := GuessMapping(columns, RowsFromMaps(columns, records))
		assert.Equal(t, FieldCustom, got["zzz"])
	})

	t.Run("Deterministic", func(t *testing.T) {
		columns := []string{"Name", "Contact Email", "Website URL", "Notes", "Stuff"}
		rows := RowsFromMaps(columns, []map[string]string{{"Stuff": "https://x.io"}})
		first := GuessMapping(columns, rows)
		for i := 0; i < 20; i++ {
			assert.Equal(t, first, GuessMapping(columns, rows))
		}
	})
}

func TestApplyMapping(t *testing.T) {
	columns := []string{"Name", "Email", "Site", "LinkedIn", "Tags", "Shoe Size", "Skip"}
	mapping := ColumnMapping{
		"Name":      FieldFullName,
		"Email":     FieldEmail,
		"Site":      FieldWebsite,
		"LinkedIn":  FieldLinkedIn,
		"Tags":      FieldTags,
		"Shoe Size": FieldCustom,
		"Skip":      FieldIgnore,
	}

	t.Run("Normalizes Every Field Kind", func(t *testing.T) {
		row := NewRawRow(columns, map[string]string{
			"Name": "Jane Doe Smith", "Email": "Jane@Example.COM", "Site": "www.example.com",
			"LinkedIn": "https://linkedin.com/in/jane", "Tags": " vip, ,beta ,", "Shoe Size": "38", "Skip": "secret",
		})
		lead, errs := ApplyMapping(row, mapping, &SplitNameRule{Column: "Name", FirstNameFirst: true})
		assert.Empty(t, errs)
		assert.Equal(t, "Jane", lead.FirstName)
		assert.Equal(t, "Doe Smith", lead.LastName)
		assert.Equal(t, "jane@example.com", lead.Email)
		assert.Equal(t, "https://www.example.com", lead.Website)
		assert.Equal(t, "https://linkedin.com/in/jane", lead.LinkedIn)
		assert.Equal(t, []string{"vip", "beta"}, lead.Tags)
		assert.Equal(t, map[string]string{"Shoe Size": "38"}, lead.CustomFields)
		assert.NotContains(t, lead.Notes+lead.Source, "secret")
	})

	t.Run("Invalid Email Is Dropped With Error", func(t *testing.T) {
		row := NewRawRow(columns, map[string]string{"Email": "not-an-email"})
		lead, errs := ApplyMapping(row, mapping, nil)
		assert.Empty(t, lead.Email)
		require.Len(t, errs, 1)
		assert.Equal(t, "email", errs[0].Field)
		assert.Equal(t, "not-an-email", errs[0].Value)
	})

	t.Run("Bare Domain And Http Kept", func(t *testing.T) {
		row := NewRawRow(columns, map[string]string{"Site": "acme.io", "LinkedIn": "HTTP://linkedin.com/in/x"})
		lead, _ := ApplyMapping(row, mapping, nil)
		assert.Equal(t, "https://acme.io", lead.Website)
		assert.Equal(t, "HTTP://linkedin.com/in/x", lead.LinkedIn)
	})

	t.Run("Unparseable URL Is Dropped With Error", func(t *testing.T) {
		row := NewRawRow(columns, map[string]string{"Site": "acme io"})
		lead, errs := ApplyMapping(row, mapping, nil)
		assert.Empty(t, lead.Website)
		require.Len(t, errs, 1)
		assert.Equal(t, "website", errs[0].Field)
	})

	t.Run("Split Rule Directions", func(t *testing.T) {
		single := NewRawRow(columns, map[string]string{"Name": "Cher"})
		lead, _ := ApplyMapping(single, mapping, &SplitNameRule{Column: "Name", FirstNameFirst: true})
		assert.Equal(t, "Cher", lead.FirstName)
		assert.Empty(t, lead.LastName)

		reversed := NewRawRow(columns, map[string]string{"Name": "Smith, Jane"})
		lead, _ = ApplyMapping(reversed, mapping, &SplitNameRule{Column: "Name", FirstNameFirst: false})
		assert.Equal(t, "Jane", lead.FirstName)
		assert.Equal(t, "Smith", lead.LastName)
	})

	t.Run("Split Rule Ignored When Names Mapped", func(t *testing.T) {
		cols := []string{"First", "Full"}
		m := ColumnMapping{"First": FieldFirstName, "Full": FieldFullName}
		row := NewRawRow(cols, map[string]string{"First": "Ann", "Full": "Bob Jones"})
		lead, _ := ApplyMapping(row, m, &SplitNameRule{Column: "Full", FirstNameFirst: true})
		assert.Equal(t, "Ann", lead.FirstName)
		assert.Empty(t, lead.LastName)
	})

	t.Run("First Non Empty Value Wins", func(t *testing.T) {
		cols := []string{"Work Email", "Personal Email"}
		m := ColumnMapping{"Work Email": FieldEmail, "Personal Email": FieldEmail}
		row := NewRawRow(cols, map[string]string{"Work Email": "", "Personal Email": "me@home.io"})
		lead, _ := ApplyMapping(row, m, nil)
		assert.Equal(t, "me@home.io", lead.Email)
	})
}

func kerryBatch(t *testing.T) ([]string, []RawRow) {
	t.Helper()
	return mustParse(t, "First Name,Last Name,Company Name,Email Address\nKerry,Largier,Yuppiechef,kerry@yuppiechef.com\n")
}

func TestNormalizeBatch(t *testing.T) {
	t.Run("End To End", func(t *testing.T) {
		columns, rows := kerryBatch(t)
		mapping := GuessMapping(columns, rows)
		res := NormalizeBatch(columns, rows, mapping, nil, DefaultOptions())

		require.Len(t, res.Leads, 1)
		lead := res.Leads[0]
		assert.Equal(t, "Kerry", lead.FirstName)
		assert.Equal(t, "Largier", lead.LastName)
		assert.Equal(t, "Yuppiechef", lead.Company)
		assert.Equal(t, "kerry@yuppiechef.com", lead.Email)
		assert.Equal(t, 1, res.Report.TotalRows)
		assert.Equal(t, 1, res.Report.ValidRows)
		assert.Equal(t, 0, res.Report.SkippedRows)
		assert.Equal(t, 1, res.Report.EmailValidation.Valid)
		assert.Equal(t, Completeness{HasName: 1, HasCompany: 1, HasContact: 1}, res.Report.Completeness)
	})

	t.Run("Invalid Email Row Retained Through Company", func(t *testing.T) {
		columns, rows := mustParse(t, "First Name,Last Name,Company Name,Email Address\n,,Acme,not-an-email\n")
		res := NormalizeBatch(columns, rows, GuessMapping(columns, rows), nil, DefaultOptions())

		require.Len(t, res.Leads, 1)
		assert.Equal(t, "", res.Leads[0].Email)
		assert.Equal(t, "Acme", res.Leads[0].Company)
		assert.Equal(t, 1, res.Report.EmailValidation.Invalid)
		require.Len(t, res.Errors, 1)
		assert.Equal(t, FieldError{Row: 1, Field: "email", Value: "not-an-email", Error: reasonInvalidEmail}, res.Errors[0])
	})

	t.Run("Duplicate Suppression", func(t *testing.T) {
		columns, rows := mustParse(t, "Email,Company\nA@x.io,One\na@X.io,Two\nb@x.io,Three\n")
		res := NormalizeBatch(columns, rows, GuessMapping(columns, rows), nil, DefaultOptions())

		require.Len(t, res.Leads, 2)
		assert.Equal(t, "One", res.Leads[0].Company)
		assert.Equal(t, "Three", res.Leads[1].Company)
		assert.Equal(t, 1, res.Report.Duplicates)
		assert.Equal(t, 1, res.Report.SkippedRows)
	})

	t.Run("Duplicates Kept When Detection Disabled", func(t *testing.T) {
		columns, rows := mustParse(t, "Email\na@x.io\na@x.io\n")
		opts := DefaultOptions()
		opts.DetectDuplicates = false
		res := NormalizeBatch(columns, rows, GuessMapping(columns, rows), nil, opts)
		assert.Len(t, res.Leads, 2)
		assert.Equal(t, 0, res.Report.Duplicates)
	})

	t.Run("Ignore Only Row Is Skipped", func(t *testing.T) {
		columns := []string{"Internal", "Email"}
		rows := RowsFromMaps(columns, []map[string]string{{"Internal": "x"}, {"Email": "a@b.io"}})
		mapping := ColumnMapping{"Internal": FieldIgnore, "Email": FieldEmail}
		res := NormalizeBatch(columns, rows, mapping, nil, DefaultOptions())
		require.Len(t, res.Leads, 1)
		assert.Equal(t, "a@b.io", res.Leads[0].Email)
		assert.Equal(t, 1, res.Report.SkippedRows)
		assert.Equal(t, 2, res.Report.TotalRows)
	})

	t.Run("Full Name Split", func(t *testing.T) {
		columns := []string{"Name"}
		rows := RowsFromMaps(columns, []map[string]string{{"Name": "Jane Doe Smith"}})
		res := NormalizeBatch(columns, rows, ColumnMapping{"Name": FieldFullName}, &SplitNameRule{Column: "Name", FirstNameFirst: true}, DefaultOptions())
		require.Len(t, res.Leads, 1)
		assert.Equal(t, "Jane", res.Leads[0].FirstName)
		assert.Equal(t, "Doe Smith", res.Leads[0].LastName)
		assert.Equal(t, 1, res.Report.EmailValidation.Missing)
	})

	t.Run("Max Rows Caps Processing", func(t *testing.T) {
		columns, rows := mustParse(t, "Email\na@x.io\nb@x.io\nc@x.io\n")
		opts := DefaultOptions()
		opts.MaxRows = 2
		res := NormalizeBatch(columns, rows, GuessMapping(columns, rows), nil, opts)
		assert.Equal(t, 2, res.Report.TotalRows)
		assert.Len(t, res.Leads, 2)
		assert.True(t, res.Truncated)
	})

	t.Run("Empty Rows Counted Only When Not Skipped", func(t *testing.T) {
		columns := []string{"Email"}
		rows := RowsFromMaps(columns, []map[string]string{{"Email": ""}, {"Email": "a@x.io"}})

		res := NormalizeBatch(columns, rows, ColumnMapping{"Email": FieldEmail}, nil, DefaultOptions())
		assert.Equal(t, 1, res.Report.TotalRows)
		assert.Equal(t, 1, res.EmptyRowsSkipped)

		opts := DefaultOptions()
		opts.SkipEmptyRows = false
		res = NormalizeBatch(columns, rows, ColumnMapping{"Email": FieldEmail}, nil, opts)
		assert.Equal(t, 2, res.Report.TotalRows)
		assert.Equal(t, 1, res.Report.SkippedRows)
	})

	t.Run("Email Kept Without Validation", func(t *testing.T) {
		columns := []string{"Email"}
		rows := RowsFromMaps(columns, []map[string]string{{"Email": "Not-An-Email"}})
		opts := DefaultOptions()
		opts.ValidateEmails = false
		res := NormalizeBatch(columns, rows, ColumnMapping{"Email": FieldEmail}, nil, opts)
		require.Len(t, res.Leads, 1)
		assert.Equal(t, "not-an-email", res.Leads[0].Email)
		assert.Empty(t, res.Errors)
	})

	t.Run("Custom Field Columns In Header Order", func(t *testing.T) {
		columns := []string{"b", "Email", "a"}
		mapping := ColumnMapping{"a": FieldCustom, "b": FieldCustom, "Email": FieldEmail}
		res := NormalizeBatch(columns, nil, mapping, nil, DefaultOptions())
		assert.Equal(t, []string{"b", "a"}, res.CustomFieldColumns)
		assert.NotNil(t, res.Leads)
	})
}

func messyBatch(t *testing.T) ([]string, []RawRow) {
	t.Helper()
	return mustParse(t, strings.Join([]string{
		"Full Name,E-mail,Org,Website,LinkedIn,Phone,Tags,Favourite Colour",
		"Jane Doe,JANE@ACME.IO,Acme,acme.io,linkedin.com/in/jane,+1 555 123 4567,\"a,b\",red",
		"John Roe,jane@acme.io,Acme,,,,,",
		",,,,,,,",
		",bad-email,,,,,,green",
		"Solo,,,,www.linkedin.com/in/solo,,,",
		"Max Power,max@power.io,Power Co,http://power.io,,,,",
		"Ada Upper,ada@upper.io,Upper,HTTP://Upper.io,HTTPS://linkedin.com/in/ada,,,",
	}, "\n"))
}

func TestNormalizeBatchProperties(t *testing.T) {
	columns, rows := messyBatch(t)
	mapping := GuessMapping(columns, rows)
	split := DeriveSplitRule(columns, mapping)
	require.NotNil(t, split)

	first := NormalizeBatch(columns, rows, mapping, split, DefaultOptions())
	second := NormalizeBatch(columns, rows, mapping, split, DefaultOptions())

	t.Run("Idempotent", func(t *testing.T) {
		a, err := json.Marshal(first.Leads)
		require.NoError(t, err)
		b, err := json.Marshal(second.Leads)
		require.NoError(t, err)
		assert.Equal(t, string(a), string(b))
		assert.Equal(t, first.Report, second.Report)
	})

	t.Run("Conservation", func(t *testing.T) {
		r := first.Report
		assert.Equal(t, r.TotalRows, r.ValidRows+r.SkippedRows)
		assert.Equal(t, 6, r.TotalRows)
	})

	t.Run("Lowercase Emails And Absolute URLs", func(t *testing.T) {
		for _, lead := range first.Leads {
			assert.Equal(t, strings.ToLower(lead.Email), lead.Email)
			for _, u := range []string{lead.Website, lead.LinkedIn} {
				if u != "" {
					assert.True(t, strings.HasPrefix(u, "https://") || strings.HasPrefix(u, "http://"), u)
				}
			}
		}
	})

	t.Run("Expected Outcome", func(t *testing.T) {
		require.Len(t, first.Leads, 4)
		assert.Equal(t, "Jane", first.Leads[0].FirstName)
		assert.Equal(t, "https://acme.io", first.Leads[0].Website)
		assert.Equal(t, []string{"a", "b"}, first.Leads[0].Tags)
		assert.Equal(t, map[string]string{"Favourite Colour": "red"}, first.Leads[0].CustomFields)
		assert.Equal(t, "Solo", first.Leads[1].FirstName)
		assert.Equal(t, "https://www.linkedin.com/in/solo", first.Leads[1].LinkedIn)
		assert.Equal(t, "http://power.io", first.Leads[2].Website)
		assert.Equal(t, "http://Upper.io", first.Leads[3].Website, "scheme is lower-cased")
		assert.Equal(t, "https://linkedin.com/in/ada", first.Leads[3].LinkedIn)
		assert.Equal(t, 1, first.Report.Duplicates)
		assert.Equal(t, []string{"Favourite Colour"}, first.CustomFieldColumns)
	})
}

func TestDeriveSplitRule(t *testing.T) {
	columns := []string{"Name", "Email"}
	assert.Equal(t, &SplitNameRule{Column: "Name", FirstNameFirst: true},
		DeriveSplitRule(columns, ColumnMapping{"Name": FieldFullName, "Email": FieldEmail}))
	assert.Nil(t, DeriveSplitRule([]string{"First", "Name"}, ColumnMapping{"First": FieldFirstName, "Name": FieldFullName}))
	assert.Nil(t, DeriveSplitRule(columns, ColumnMapping{"Email": FieldEmail}))
}

func TestNewColumnMappingDropsUnknownColumns(t *testing.T) {
	m := NewColumnMapping([]string{"A", "B"}, map[string]Field{"A": FieldEmail, "Z": FieldCompany, "B": Field("bogus")})
	assert.Equal(t, ColumnMapping{"A": FieldEmail}, m)
}

func TestParseField(t *testing.T) {
	for input, want := range map[string]Field{
		"firstName":     FieldFirstName,
		"first_name":    FieldFirstName,
		"LinkedIn URL":  FieldLinkedIn,
		"company_size":  FieldCompanySize,
		"custom":        FieldCustom,
		"skip":          FieldIgnore,
		"Email Address": FieldEmail,
	} {
		got, ok := ParseField(input)
		assert.True(t, ok, input)
		assert.Equal(t, want, got, input)
	}
	_, ok := ParseField("favourite colour")
	assert.False(t, ok)
}
