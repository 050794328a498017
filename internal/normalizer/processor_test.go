package normalizer

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"empfmt/internal/config"
	"empfmt/internal/logger"
	"empfmt/internal/models"
)

const validEmployeeJSON = `{
	"First Name": "  jOHN ",
	"Last Name": "SMITH",
	"Address Line 1": "12  main STREET",
	"Address Line 2": "",
	"City": "new york",
	"Job Title": "it MANAGER",
	"Phone Number": " 5551234567 ",
	"Zip Code": "10001",
	"Job ID": "IT_MNG",
	"State": "NY",
	"Internal Ref": "drop-me"
}`

func decodeEmployee(t *testing.T, raw string) *models.Employee {
	t.Helper()

	var e models.Employee
	require.NoError(t, json.Unmarshal([]byte(raw), &e))

	return &e
}

func newTestProcessor() *Processor {
	return NewProcessor(config.Default(), logger.Discard())
}

func TestNewProcessor(t *testing.T) {
	assert.NotNil(t, newTestProcessor())
}

func TestProcessor_Process_Accepted(t *testing.T) {
	p := newTestProcessor()
	e := decodeEmployee(t, validEmployeeJSON)

	out, err := p.Process(context.Background(), e)
	require.NoError(t, err)

	assert.True(t, out.Accepted())
	assert.Equal(t, StateAccepted, out.State)
	assert.Equal(t, "Internal Ref", out.Dropped)
	assert.Empty(t, out.Reasons)

	got, err := json.Marshal(e)
	require.NoError(t, err)

	want := `{
		"First Name": "John",
		"Last Name": "Smith",
		"Address Line 1": "12 Main Street",
		"Address Line 2": "",
		"City": "New York",
		"Job Title": "It Manager",
		"Phone Number": 5551234567,
		"Zip Code": 10001,
		"Job ID": "IT_MNG",
		"State": "NY",
		"Company Email": "jsmith@comp.com",
		"Salary": 85200
	}`
	assert.JSONEq(t, want, string(got))

	assert.Equal(t, []string{
		"First Name", "Last Name", "Address Line 1", "Address Line 2", "City", "Job Title",
		"Phone Number", "Zip Code", "Job ID", "State", "Company Email", "Salary",
	}, e.Keys())
}

func TestProcessor_Process_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		reasons []Reason
	}{
		{
			name:    "Phone with dashes",
			raw:     `{"Phone Number":"555-123-4567","Zip Code":"10001","Job ID":"IT_MNG","x":1}`,
			reasons: []Reason{ReasonInvalidPhone},
		},
		{
			name:    "Short zip",
			raw:     `{"Phone Number":"5551234567","Zip Code":"1001","Job ID":"IT_MNG","x":1}`,
			reasons: []Reason{ReasonInvalidZip},
		},
		{
			name:    "Both invalid",
			raw:     `{"Phone Number":"n/a","Zip Code":"","x":1}`,
			reasons: []Reason{ReasonInvalidPhone, ReasonInvalidZip},
		},
		{
			name:    "Missing contact fields",
			raw:     `{"First Name":"ann","x":1}`,
			reasons: []Reason{ReasonInvalidPhone, ReasonInvalidZip},
		},
		{
			name:    "Trailing field is the zip code",
			raw:     `{"Phone Number":"5551234567","Job ID":"IT_MNG","Zip Code":"10001"}`,
			reasons: []Reason{ReasonInvalidZip},
		},
		{
			name:    "Missing Job ID",
			raw:     `{"Phone Number":"5551234567","Zip Code":"10001","State":"NY","x":1}`,
			reasons: []Reason{ReasonMalformedJobID},
		},
		{
			name:    "Job ID with two underscores",
			raw:     `{"Phone Number":"5551234567","Zip Code":"10001","Job ID":"IT_MNG_2","x":1}`,
			reasons: []Reason{ReasonMalformedJobID},
		},
		{
			name:    "Empty object",
			raw:     `{}`,
			reasons: []Reason{ReasonInvalidPhone, ReasonInvalidZip},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestProcessor()
			e := decodeEmployee(t, tt.raw)

			out, err := p.Process(context.Background(), e)
			require.NoError(t, err)

			assert.False(t, out.Accepted())
			assert.Equal(t, StateRejected, out.State)
			assert.Equal(t, tt.reasons, out.Reasons)
			assert.True(t, e.IsEmpty(), "rejected record must be cleared")
		})
	}
}

func TestProcessor_Process_NumericContactFields(t *testing.T) {
	p := newTestProcessor()
	e := decodeEmployee(t, `{"Phone Number":5551234567,"Zip Code":10001,"Job ID":"HR_EMP","State":"TX","x":1}`)

	out, err := p.Process(context.Background(), e)
	require.NoError(t, err)
	require.True(t, out.Accepted())

	assert.Equal(t, "5551234567", e.Text(models.FieldPhoneNumber))
	assert.Equal(t, "70000", e.Text(models.FieldSalary))
	assert.Equal(t, "@comp.com", e.Text(models.FieldCompanyEmail))
}

func TestProcessor_Process_LogsDiagnostics(t *testing.T) {
	var buf bytes.Buffer

	p := NewProcessor(config.Default(), logger.NewLogger(&buf, "info"))
	e := decodeEmployee(t, `{"Phone Number":"555-1234","Zip Code":"ABCDE","x":1}`)

	_, err := p.Process(context.Background(), e)
	require.NoError(t, err)

	logs := buf.String()
	assert.Contains(t, logs, "555-1234 is not a valid US phone number, skipping this employee entry...")
	assert.Contains(t, logs, "ABCDE is not a valid US zip code, skipping this employee entry...")
	assert.Contains(t, logs, "reason=invalid_phone")
	assert.Contains(t, logs, "reason=invalid_zip")
}

func TestProcessor_Process_Canceled(t *testing.T) {
	p := newTestProcessor()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Process(ctx, decodeEmployee(t, validEmployeeJSON))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestProcessor_ProcessAll(t *testing.T) {
	p := newTestProcessor()

	valid := func(first string) *models.Employee {
		return decodeEmployee(t, strings.Replace(validEmployeeJSON, "jOHN", first, 1))
	}

	records := []*models.Employee{
		valid("alice"),
		decodeEmployee(t, `{"Phone Number":"bad","Zip Code":"10001","x":1}`),
		nil,
		valid("bob"),
	}

	batch, err := p.ProcessAll(context.Background(), records)
	require.NoError(t, err)

	require.Len(t, batch.Accepted, 2)

	first, _ := batch.Accepted[0].String(models.FieldFirstName)
	second, _ := batch.Accepted[1].String(models.FieldFirstName)
	assert.Equal(t, "Alice", first)
	assert.Equal(t, "Bob", second)

	assert.Equal(t, 2, batch.RejectedTotal())
	assert.Equal(t, 1, batch.Rejected[ReasonInvalidPhone])
	assert.Equal(t, 1, batch.Rejected[ReasonNotAnObject])
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "accepted", StateAccepted.String())
	assert.Equal(t, "rejected", StateRejected.String())
	assert.Equal(t, "State(42)", State(42).String())
}
