package transfer

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
)

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Reason  string // Human-readable reason (populated when not allowed)
}

// Error returns the guard result as an error if not allowed, nil otherwise.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	return fmt.Errorf("%s", r.Reason)
}

// SubmitContext provides the context needed to evaluate a pickup submission.
// Populated by the caller with pre-resolved lookups.
type SubmitContext struct {
	CurrentState          State
	AmountInput           string
	AgentID               string
	AgentKnown            bool
	DestinationConfigured bool
	DestinationValid      bool
	WalletAvailable       bool
}

// CanSubmit evaluates whether a pickup request can move from idle to processing.
// Rules:
// - Machine must be idle (no overlapping submissions)
// - Amount must parse as a finite number greater than zero
// - Agent must be selected and known
// - Destination must be configured and a valid address
// - Wallet must be available
func CanSubmit(ctx SubmitContext) GuardResult {
	if ctx.CurrentState != StateIdle {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("a transfer is already in progress (state: %s)", ctx.CurrentState),
		}
	}

	if _, err := ParseAmount(ctx.AmountInput); err != nil {
		return GuardResult{Allowed: false, Reason: err.Error()}
	}

	if strings.TrimSpace(ctx.AgentID) == "" {
		return GuardResult{Allowed: false, Reason: "no payout agent selected"}
	}
	if !ctx.AgentKnown {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("agent %s not found", ctx.AgentID),
		}
	}

	if !ctx.DestinationConfigured {
		return GuardResult{Allowed: false, Reason: "no destination address configured"}
	}
	if !ctx.DestinationValid {
		return GuardResult{Allowed: false, Reason: "destination address is not a valid address"}
	}

	if !ctx.WalletAvailable {
		return GuardResult{Allowed: false, Reason: "wallet is not connected"}
	}

	return GuardResult{Allowed: true}
}

// ParseAmount parses a user-entered amount in currency units.
// Returns an error for empty, non-numeric, non-finite, zero or negative input.
func ParseAmount(input string) (float64, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return 0, fmt.Errorf("amount is required")
	}

	amount, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("amount %q is not a number", input)
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0, fmt.Errorf("amount %q is not a number", input)
	}
	if amount <= 0 {
		return 0, fmt.Errorf("amount must be greater than zero (got %s)", s)
	}

	return amount, nil
}

// FormatAmount renders an amount with exactly two decimal places.
// Rounding is applied to the exact binary value and ties go to the larger
// magnitude, so 10.125 renders as "10.13" while 2.675 (stored just below the
// tie) renders as "2.67". Independent of locale.
func FormatAmount(amount float64) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return strconv.FormatFloat(amount, 'f', 2, 64)
	}

	cents := new(big.Rat).SetFloat64(math.Abs(amount))
	cents.Mul(cents, big.NewRat(100, 1))
	cents.Add(cents, big.NewRat(1, 2))
	n := new(big.Int).Quo(cents.Num(), cents.Denom())

	digits := n.String()
	for len(digits) < 3 {
		digits = "0" + digits
	}
	out := digits[:len(digits)-2] + "." + digits[len(digits)-2:]
	if amount < 0 {
		out = "-" + out
	}
	return out
}
