package prediction

import (
	"errors"
	"fmt"
)

// Validation reasons returned by BuildRequest.
const (
	ReasonEmptyTicker        = "empty ticker"
	ReasonInvalidTicker      = "invalid ticker"
	ReasonInvalidPeriod      = "invalid period"
	ReasonNonPositiveBalance = "non-positive balance"
	ReasonFutureDaysRange    = "future days out of range"
)

// ValidationError reports bad user input. It is returned before any
// request reaches the prediction service.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func newValidationError(reason string) *ValidationError {
	return &ValidationError{Reason: reason}
}

// DivisionError is returned by DeriveMetrics when the initial balance is
// zero. BuildRequest rejects such balances, so seeing one means the
// response did not come from a validated request.
type DivisionError struct {
	Model string
}

func (e *DivisionError) Error() string {
	if e.Model == "" {
		return "division by zero initial balance"
	}
	return fmt.Sprintf("division by zero initial balance for model %s", e.Model)
}

// Is makes errors.Is(err, ErrDivision) match any *DivisionError.
func (e *DivisionError) Is(target error) bool {
	return target == ErrDivision
}

// ErrDivision matches every *DivisionError via errors.Is.
var ErrDivision = &DivisionError{}

// DuplicateDateError reports a date repeated inside one model's
// prediction series.
type DuplicateDateError struct {
	Model string
	Date  Date
}

func (e *DuplicateDateError) Error() string {
	return fmt.Sprintf("model %s: duplicate prediction date %s", e.Model, e.Date)
}

// Errors returned while normalizing wire responses.
var (
	// ErrAmbiguousShape is returned when a response mixes the single-model
	// fields with the suffixed dual-model fields.
	ErrAmbiguousShape = errors.New("response mixes single-model and dual-model fields")

	// ErrEmptyResponse is returned when a response carries no model at all.
	ErrEmptyResponse = errors.New("response contains no model results")
)

// WarningKind classifies a DataConsistencyWarning.
type WarningKind string

const (
	// WarnTradeOffAxis marks a trade dated outside the aligned date axis.
	WarnTradeOffAxis WarningKind = "trade_off_axis"
)

// DataConsistencyWarning is a non-fatal finding. Reconciliation still
// produces its output; the warning travels alongside it.
type DataConsistencyWarning struct {
	Kind    WarningKind `json:"kind"`
	Model   string      `json:"model"`
	Date    Date        `json:"date"`
	Message string      `json:"message"`
}

func (w DataConsistencyWarning) Error() string {
	return w.Message
}
