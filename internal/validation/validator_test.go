package validation

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nilefleet/genset-invoicer/internal/csvparser"
)

func record(line int, csv string) csvparser.Record {
	return csvparser.Record{Line: line, Fields: strings.Split(csv, ",")}
}

func fieldsOf(issues []Issue) []string {
	var out []string
	for _, i := range issues {
		out = append(out, i.Field)
	}
	return out
}

func TestValidateRecord_Clean(t *testing.T) {
	issues := ValidateRecord(record(2, "Acme,B1,U1,Alexandria,Cairo,Fast,MSC,1500,2026-01-01"))
	assert.Empty(t, issues)
}

func TestValidateRecord(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		field    string
		severity string
		contains string
	}{
		{"empty customer", ",B1,U1,A,B,T,S,10,2026-01-01", "customer", SeverityWarning, "customer is empty"},
		{"empty booking", "Acme,,U1,A,B,T,S,10,2026-01-01", "bookingRef", SeverityWarning, "booking reference is empty"},
		{"empty rate", "Acme,B1,U1,A,B,T,S,,2026-01-01", "rate", SeverityWarning, "read as 0"},
		{"text rate", "Acme,B1,U1,A,B,T,S,EGP 100,2026-01-01", "rate", SeverityWarning, "not a number"},
		{"suffixed rate", "Acme,B1,U1,A,B,T,S,100EGP,2026-01-01", "rate", SeverityWarning, `only "100"`},
		{"negative rate", "Acme,B1,U1,A,B,T,S,-5,2026-01-01", "rate", SeverityWarning, "negative"},
		{"bad date", "Acme,B1,U1,A,B,T,S,10,01/02/2026", "date", SeverityWarning, "YYYY-MM-DD"},
		{"empty date", "Acme,B1,U1,A,B,T,S,10,", "date", SeverityInfo, "import date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issues := ValidateRecord(record(7, tt.line))
			require.Len(t, issues, 1, fieldsOf(issues))
			assert.Equal(t, tt.field, issues[0].Field)
			assert.Equal(t, tt.severity, issues[0].Severity)
			assert.Equal(t, 7, issues[0].Line)
			assert.Contains(t, issues[0].Message, tt.contains)
		})
	}
}

func TestValidateRecord_ColumnCount(t *testing.T) {
	short := ValidateRecord(record(3, "Acme,B1,U1,A,B,T,S,10"))
	require.NotEmpty(t, short)
	assert.Contains(t, short[0].Message, "got 8")
	assert.Contains(t, short[0].Message, "date")

	long := ValidateRecord(record(4, "Acme,B1,U1,A,B,T,Nile, Shipping,10,2026-01-01"))
	require.NotEmpty(t, long)
	assert.Contains(t, long[0].Message, "got 10")
	assert.Contains(t, fieldsOf(long), "rate")
}

func TestValidateRecords_SplitBooking(t *testing.T) {
	result := ValidateRecords([]csvparser.Record{
		record(2, "Acme,B1,U1,A,B,T,S,10,2026-01-01"),
		record(3, "Delta,B1,U2,A,B,T,S,10,2026-01-01"),
		record(4, "Acme,B1,U3,A,B,T,S,10,2026-01-01"),
	})

	assert.Equal(t, 3, result.Rows)
	require.Len(t, result.Issues, 1)
	assert.Equal(t, 3, result.Issues[0].Line)
	assert.Contains(t, result.Issues[0].Message, `invoiced to "Acme"`)
	assert.False(t, result.Clean())
}

func TestValidateFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bookings.csv")
	content := csvparser.Header + "\r\n" +
		"Acme,B1,U1,A,B,T,S,10,2026-01-01\r\n" +
		"\r\n" +
		"Acme,B2,U2,A,B,T,S,abc,2026-01-02\r\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	result, err := ValidateFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, result.File)
	assert.Equal(t, 2, result.Rows)
	require.Len(t, result.Issues, 1)
	assert.Equal(t, 4, result.Issues[0].Line)
	assert.Equal(t, "line 4: warning: rate: rate is not a number and is read as 0", result.Issues[0].String())
	assert.Equal(t, 1, result.Count(SeverityWarning))

	_, err = ValidateFile(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}
