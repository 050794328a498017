package normalizer

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"empfmt/internal/config"
)

// Validation errors.
var (
	ErrNonDigit   = errors.New("contains a non-digit character")
	ErrDigitCount = errors.New("has the wrong number of digits")
	ErrOutOfRange = errors.New("does not fit in a 64-bit integer")
)

// Result is the outcome of validating one contact field.
// Value is meaningful only when Err is nil.
type Result struct {
	Input string
	Value int64
	Err   error
}

// Valid reports whether validation succeeded.
func (r Result) Valid() bool {
	return r.Err == nil
}

// Validator checks phone numbers and zip codes and converts them to their numeric form.
type Validator struct {
	phoneDigits int
	zipDigits   int
}

// NewValidator creates a new validator instance.
func NewValidator(cfg config.ValidationConfig) *Validator {
	return &Validator{
		phoneDigits: cfg.PhoneDigits,
		zipDigits:   cfg.ZipDigits,
	}
}

// PhoneNumber validates a US phone number: digits only, exact length.
func (v *Validator) PhoneNumber(raw string) Result {
	return digitsOnly(raw, v.phoneDigits)
}

// ZipCode validates a US zip code: digits only, exact length.
func (v *Validator) ZipCode(raw string) Result {
	return digitsOnly(raw, v.zipDigits)
}

// digitsOnly stops at the first non-digit; it never skips separators like '-' or '('.
func digitsOnly(raw string, want int) Result {
	input := strings.TrimSpace(raw)
	res := Result{Input: input}

	for i := 0; i < len(input); i++ {
		if input[i] < '0' || input[i] > '9' {
			res.Err = fmt.Errorf("%q %w at offset %d", input, ErrNonDigit, i)

			return res
		}
	}

	if len(input) != want {
		res.Err = fmt.Errorf("%q %w: got %d, want %d", input, ErrDigitCount, len(input), want)

		return res
	}

	n, err := strconv.ParseInt(input, 10, 64)
	if err != nil {
		res.Err = fmt.Errorf("%q %w", input, ErrOutOfRange)

		return res
	}

	res.Value = n

	return res
}
