package primary

import (
	"errors"

	"github.com/example/pickup/internal/core/transfer"
)

var (
	// ErrValidation marks a rejected submission (bad amount, missing agent or
	// destination, wallet unavailable).
	ErrValidation = errors.New("validation failed")

	// ErrSubmission marks a transfer the ledger refused.
	ErrSubmission = errors.New("transfer submission failed")

	// ErrIllegalTransition marks a submission while a transfer is active.
	ErrIllegalTransition = transfer.ErrIllegalTransition

	// ErrNotFound marks a missing agent or record.
	ErrNotFound = errors.New("not found")
)
