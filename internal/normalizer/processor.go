// Package normalizer validates, formats and enriches employee records.
package normalizer

import (
	"context"
	"errors"
	"fmt"

	"empfmt/internal/config"
	"empfmt/internal/logger"
	"empfmt/internal/models"
)

// State is the stage a record reached in the pipeline.
type State int

// Record states, in pipeline order.
const (
	StateRaw State = iota
	StateTrimmed
	StateValidated
	StateFormatted
	StateEnriched
	StateAccepted
	StateRejected
)

func (s State) String() string {
	switch s {
	case StateRaw:
		return "raw"
	case StateTrimmed:
		return "trimmed"
	case StateValidated:
		return "validated"
	case StateFormatted:
		return "formatted"
	case StateEnriched:
		return "enriched"
	case StateAccepted:
		return "accepted"
	case StateRejected:
		return "rejected"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Reason explains why a record was rejected.
type Reason string

// Rejection reasons.
const (
	ReasonInvalidPhone   Reason = "invalid_phone"
	ReasonInvalidZip     Reason = "invalid_zip"
	ReasonMalformedJobID Reason = "malformed_job_id"
	ReasonNotAnObject    Reason = "not_an_object"
)

// Outcome is the result of processing a single record.
type Outcome struct {
	State   State
	Dropped string // key of the discarded trailing field, if any
	Reasons []Reason
}

// Accepted reports whether the record made it into the output.
func (o Outcome) Accepted() bool {
	return o.State == StateAccepted
}

// Batch is the result of processing the records of one file.
type Batch struct {
	Accepted []*models.Employee
	Rejected map[Reason]int
}

// RejectedTotal returns the number of rejected records.
func (b *Batch) RejectedTotal() int {
	total := 0
	for _, n := range b.Rejected {
		total += n
	}

	return total
}

// Processor runs the per-record pipeline: drop the trailing field, validate
// contact fields, format text fields, derive email and salary.
type Processor struct {
	validator   *Validator
	transformer *Transformer
	log         *logger.Logger
}

// NewProcessor creates a new processor instance.
func NewProcessor(cfg *config.Config, log *logger.Logger) *Processor {
	return &Processor{
		validator:   NewValidator(cfg.Validation),
		transformer: NewTransformer(cfg),
		log:         log,
	}
}

// WithLogger returns a copy of the processor that logs to log.
func (p *Processor) WithLogger(log *logger.Logger) *Processor {
	cp := *p
	cp.log = log

	return &cp
}

// Process transforms e in place. A rejected record is cleared. The error is
// reserved for failures that are not the record's fault (cancellation, encoding).
func (p *Processor) Process(ctx context.Context, e *models.Employee) (Outcome, error) {
	return p.process(ctx, p.log, e)
}

// ProcessAll processes records in order and collects the accepted ones.
// A nil entry stands for an array element that was not a JSON object.
func (p *Processor) ProcessAll(ctx context.Context, records []*models.Employee) (*Batch, error) {
	batch := &Batch{
		Accepted: make([]*models.Employee, 0, len(records)),
		Rejected: make(map[Reason]int),
	}

	for i, e := range records {
		log := p.log.With("index", i)

		if e == nil {
			log.Warn("Employee entry is not a JSON object, skipping this employee entry...",
				"reason", ReasonNotAnObject)
			batch.Rejected[ReasonNotAnObject]++

			continue
		}

		out, err := p.process(ctx, log, e)
		if err != nil {
			return nil, fmt.Errorf("employee entry %d: %w", i, err)
		}

		if !out.Accepted() {
			for _, r := range out.Reasons {
				batch.Rejected[r]++
			}

			log.Debug("employee entry rejected", "reasons", out.Reasons)

			continue
		}

		batch.Accepted = append(batch.Accepted, e)
	}

	return batch, nil
}

func (p *Processor) process(ctx context.Context, log *logger.Logger, e *models.Employee) (Outcome, error) {
	out := Outcome{State: StateRaw}

	if err := ctx.Err(); err != nil {
		return out, err
	}

	// 1. The trailing field never reaches the output.
	if dropped, ok := e.DropLast(); ok {
		out.Dropped = dropped.Key
		log.Debug("dropped trailing field", "key", dropped.Key)
	}

	// 2. Trim contact fields; a missing key reads as "".
	phone := p.validator.PhoneNumber(e.Text(models.FieldPhoneNumber))
	zip := p.validator.ZipCode(e.Text(models.FieldZipCode))
	out.State = StateTrimmed

	// 3. Validate both so every bad value gets its own diagnostic.
	if !phone.Valid() {
		log.Warn(fmt.Sprintf("%s is not a valid US phone number, skipping this employee entry...", phone.Input),
			"reason", ReasonInvalidPhone, logger.Err(phone.Err))
		out.Reasons = append(out.Reasons, ReasonInvalidPhone)
	}

	if !zip.Valid() {
		log.Warn(fmt.Sprintf("%s is not a valid US zip code, skipping this employee entry...", zip.Input),
			"reason", ReasonInvalidZip, logger.Err(zip.Err))
		out.Reasons = append(out.Reasons, ReasonInvalidZip)
	}

	if len(out.Reasons) > 0 {
		return reject(e, out), nil
	}

	// 4. Canonical numeric values replace the raw strings in place.
	if err := e.Set(models.FieldZipCode, zip.Value); err != nil {
		return out, err
	}

	if err := e.Set(models.FieldPhoneNumber, phone.Value); err != nil {
		return out, err
	}

	out.State = StateValidated

	// 5. Names, address and title.
	if err := p.transformer.FormatFields(e); err != nil {
		return out, err
	}

	out.State = StateFormatted

	// 6-7. Email and salary.
	if err := p.transformer.Enrich(e); err != nil {
		if errors.Is(err, ErrMalformedJobID) {
			job, _ := e.String(models.FieldJobID)
			log.Warn(fmt.Sprintf("%q is not a valid Job ID, skipping this employee entry...", job),
				"reason", ReasonMalformedJobID, logger.Err(err))
			out.Reasons = append(out.Reasons, ReasonMalformedJobID)

			return reject(e, out), nil
		}

		return out, err
	}

	out.State = StateAccepted

	return out, nil
}

func reject(e *models.Employee, out Outcome) Outcome {
	e.Clear()
	out.State = StateRejected

	return out
}
