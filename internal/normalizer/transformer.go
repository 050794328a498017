package normalizer

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"empfmt/internal/config"
	"empfmt/internal/models"
	"empfmt/pkg/utils"
)

// ErrMalformedJobID is returned when a Job ID is not exactly "<DEPARTMENT>_<ROLE>".
var ErrMalformedJobID = errors.New("malformed job id: expected <DEPARTMENT>_<ROLE>")

// Transformer formats text fields and derives the email and salary of an employee.
type Transformer struct {
	domain  string
	fields  []string
	salary  config.SalaryConfig
	strings *utils.StringHelper
}

// NewTransformer creates a new transformer instance.
func NewTransformer(cfg *config.Config) *Transformer {
	return &Transformer{
		domain:  cfg.Company.EmailDomain,
		fields:  cfg.Format.Fields,
		salary:  cfg.Salary,
		strings: utils.NewStringHelper(),
	}
}

// FormatField collapses whitespace and fixes casing word by word. Words that
// start with a digit ("12B", "3rd") are lowercased, all others capitalized.
func (t *Transformer) FormatField(value string) string {
	words := t.strings.Words(value)
	for i, w := range words {
		if t.strings.StartsWithDigit(w) {
			words[i] = strings.ToLower(w)
		} else {
			words[i] = t.strings.Capitalize(w)
		}
	}

	return strings.Join(words, " ")
}

// FormatFields applies FormatField to every configured field that holds a
// non-blank string. Missing, blank and non-string values are left as they are.
func (t *Transformer) FormatFields(e *models.Employee) error {
	for _, key := range t.fields {
		value, ok := e.String(key)
		if !ok || t.strings.TrimWhitespace(value) == "" {
			continue
		}

		if err := e.Set(key, t.FormatField(value)); err != nil {
			return err
		}
	}

	return nil
}

// Email builds <first initial><last name>@<domain>, all lowercase.
// An empty first name contributes no initial.
func (t *Transformer) Email(first, last string) string {
	initial := strings.ToLower(t.strings.FirstRune(first))

	return initial + strings.ToLower(last) + "@" + t.domain
}

// Salary computes the salary for jobID in state. The base comes from the
// department table (0 when unknown); the multiplier is chosen in this order:
// manager in an expensive state, expensive state, manager, none.
// The result is rounded half to even.
func (t *Transformer) Salary(jobID, state string) (int64, error) {
	parts := strings.Split(jobID, "_")
	if len(parts) != 2 {
		return 0, fmt.Errorf("%w: %q", ErrMalformedJobID, jobID)
	}

	department, role := parts[0], parts[1]
	base := float64(t.salary.BaseSalary(department))

	manager := role == t.salary.ManagerRole
	expensive := t.salary.IsExpensiveState(state)

	multiplier := 1.0

	switch {
	case manager && expensive:
		multiplier = t.salary.Multipliers.ManagerExpensive
	case expensive:
		multiplier = t.salary.Multipliers.Expensive
	case manager:
		multiplier = t.salary.Multipliers.Manager
	}

	return int64(math.RoundToEven(base * multiplier)), nil
}

// Enrich stores the company email and salary on e. On error e is not modified.
func (t *Transformer) Enrich(e *models.Employee) error {
	jobID, _ := e.String(models.FieldJobID)
	state, _ := e.String(models.FieldState)

	salary, err := t.Salary(jobID, state)
	if err != nil {
		return err
	}

	first, _ := e.String(models.FieldFirstName)
	last, _ := e.String(models.FieldLastName)

	if err := e.Set(models.FieldCompanyEmail, t.Email(first, last)); err != nil {
		return err
	}

	return e.Set(models.FieldSalary, salary)
}
