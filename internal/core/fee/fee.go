// Package fee computes the cash pickup fee quote shown before submission.
package fee

import "math"

// Rate is the share of the sent amount kept as the pickup fee.
const Rate = 0.03

// Quote is the breakdown of a pickup amount.
type Quote struct {
	Amount   float64
	Fee      float64
	Received float64
}

// Calculate returns the fee quote for a sent amount, rounded to cents.
func Calculate(amount float64) Quote {
	if amount <= 0 {
		return Quote{}
	}
	fee := roundCents(amount * Rate)
	return Quote{
		Amount:   amount,
		Fee:      fee,
		Received: roundCents(amount - fee),
	}
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
