package normalizer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"empfmt/internal/config"
	"empfmt/internal/models"
)

func TestNewTransformer(t *testing.T) {
	assert.NotNil(t, NewTransformer(config.Default()))
}

func TestTransformer_FormatField(t *testing.T) {
	tr := NewTransformer(config.Default())

	tests := []struct {
		in   string
		want string
	}{
		{"john", "John"},
		{"  mARY   ann  ", "Mary Ann"},
		{"123 MAIN st", "123 Main St"},
		{"apt 4B", "Apt 4b"},
		{"3RD floor", "3rd Floor"},
		{"SAN\tJOSE", "San Jose"},
		{"o'BRIEN", "O'brien"},
		{"software ENGINEER ii", "Software Engineer Ii"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tr.FormatField(tt.in), "FormatField(%q)", tt.in)
	}
}

func TestTransformer_FormatField_Idempotent(t *testing.T) {
	tr := NewTransformer(config.Default())

	for _, in := range []string{"  mARY   ann  ", "123 MAIN st", "apt 4B", "Élodie DUPONT"} {
		once := tr.FormatField(in)
		twice := tr.FormatField(once)
		assert.Equal(t, once, twice, "formatting %q is not idempotent", in)
	}
}

func TestTransformer_FormatFields(t *testing.T) {
	tr := NewTransformer(config.Default())

	e := models.NewEmployee(
		models.StringField(models.FieldFirstName, "  jOHN "),
		models.StringField(models.FieldAddressLine2, "   "),
		models.StringField(models.FieldCity, "new   YORK"),
		models.StringField(models.FieldState, "ny"),
	)
	require.NoError(t, e.Set(models.FieldJobTitle, 42))

	require.NoError(t, tr.FormatFields(e))

	first, _ := e.String(models.FieldFirstName)
	assert.Equal(t, "John", first)

	blank, _ := e.String(models.FieldAddressLine2)
	assert.Equal(t, "   ", blank, "blank fields stay untouched")

	city, _ := e.String(models.FieldCity)
	assert.Equal(t, "New York", city)

	state, _ := e.String(models.FieldState)
	assert.Equal(t, "ny", state, "fields outside the format list stay untouched")

	assert.Equal(t, "42", e.Text(models.FieldJobTitle), "non-string values stay untouched")

	_, ok := e.Get(models.FieldLastName)
	assert.False(t, ok, "missing fields are not created")
}

func TestTransformer_Email(t *testing.T) {
	tr := NewTransformer(config.Default())

	assert.Equal(t, "jsmith@comp.com", tr.Email("John", "Smith"))
	assert.Equal(t, "jvan der berg@comp.com", tr.Email("Jan", "Van Der Berg"))
	assert.Equal(t, "smith@comp.com", tr.Email("", "Smith"))
	assert.Equal(t, "j@comp.com", tr.Email("John", ""))
	assert.Equal(t, "édupont@comp.com", tr.Email("Élodie", "Dupont"))
}

func TestTransformer_Email_CustomDomain(t *testing.T) {
	cfg := config.Default()
	cfg.Company.EmailDomain = "example.org"

	tr := NewTransformer(cfg)
	assert.Equal(t, "jsmith@example.org", tr.Email("John", "Smith"))
}

func TestTransformer_Salary(t *testing.T) {
	tr := NewTransformer(config.Default())

	tests := []struct {
		jobID string
		state string
		want  int64
	}{
		{"IT_MNG", "NY", 85200},
		{"HR_EMP", "TX", 70000},
		{"SA_MNG", "TX", 63000},
		{"SA_EMP", "CA", 60900},
		{"HR_EMP", "WA", 71050},
		{"IT_EMP", "OR", 81200},
		{"HR_MNG", "VT", 74550},
		{"IT_MNG", "TX", 84000},
		{"XX_MNG", "NY", 0},
		{"XX_EMP", "TX", 0},
		{"IT_mng", "TX", 80000},
		{"IT_EMP", "ny", 80000},
		{"_", "", 0},
	}

	for _, tt := range tests {
		got, err := tr.Salary(tt.jobID, tt.state)
		require.NoError(t, err, "Salary(%q, %q)", tt.jobID, tt.state)
		assert.Equal(t, tt.want, got, "Salary(%q, %q)", tt.jobID, tt.state)
	}
}

func TestTransformer_Salary_Malformed(t *testing.T) {
	tr := NewTransformer(config.Default())

	for _, jobID := range []string{"", "IT", "IT-MNG", "IT_MNG_X"} {
		_, err := tr.Salary(jobID, "NY")
		assert.True(t, errors.Is(err, ErrMalformedJobID), "Salary(%q) error = %v", jobID, err)
	}
}

func TestTransformer_Salary_RoundsHalfToEven(t *testing.T) {
	cfg := config.Default()
	cfg.Salary.Departments = map[string]int64{"QA": 5}
	cfg.Salary.Multipliers.Manager = 0.5

	tr := NewTransformer(cfg)

	// 5 * 0.5 = 2.5 rounds to 2, not 3.
	got, err := tr.Salary("QA_MNG", "TX")
	require.NoError(t, err)
	assert.Equal(t, int64(2), got)

	cfg.Salary.Departments = map[string]int64{"QA": 7}
	tr = NewTransformer(cfg)

	// 7 * 0.5 = 3.5 rounds to 4.
	got, err = tr.Salary("QA_MNG", "TX")
	require.NoError(t, err)
	assert.Equal(t, int64(4), got)
}

func TestTransformer_Enrich(t *testing.T) {
	tr := NewTransformer(config.Default())

	e := models.NewEmployee(
		models.StringField(models.FieldFirstName, "John"),
		models.StringField(models.FieldLastName, "Smith"),
		models.StringField(models.FieldJobID, "IT_MNG"),
		models.StringField(models.FieldState, "NY"),
	)

	require.NoError(t, tr.Enrich(e))

	email, _ := e.String(models.FieldCompanyEmail)
	assert.Equal(t, "jsmith@comp.com", email)
	assert.Equal(t, "85200", e.Text(models.FieldSalary))
	assert.Equal(t, []string{
		models.FieldFirstName, models.FieldLastName, models.FieldJobID, models.FieldState,
		models.FieldCompanyEmail, models.FieldSalary,
	}, e.Keys())
}

func TestTransformer_Enrich_MalformedLeavesRecord(t *testing.T) {
	tr := NewTransformer(config.Default())

	e := models.NewEmployee(models.StringField(models.FieldFirstName, "John"))

	err := tr.Enrich(e)
	require.ErrorIs(t, err, ErrMalformedJobID)
	assert.Equal(t, []string{models.FieldFirstName}, e.Keys())
}
