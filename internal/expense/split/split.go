// Package split computes how an expense amount is divided among its
// participants. All arithmetic is done in integer cents so that the
// shares always sum back to the original amount exactly.
package split

import "errors"

// Calculation errors
var (
	ErrNoParticipants    = errors.New("at least one participant is required")
	ErrNonPositiveAmount = errors.New("amount must be positive")
	ErrDuplicateUser     = errors.New("duplicate participant")
)

// Share is one participant's portion of an expense.
type Share struct {
	UserID     int64
	AmountOwed int64 // cents
}

// Equal divides totalCents evenly among the participants. Each share
// is the total divided by the participant count rounded to the nearest
// cent, and the rounding residue is reconciled against the first
// participant so the shares always sum to totalCents exactly. Shares
// are never negative. The result is deterministic for a given
// participant order.
func Equal(totalCents int64, userIDs []int64) ([]Share, error) {
	if len(userIDs) == 0 {
		return nil, ErrNoParticipants
	}
	if totalCents <= 0 {
		return nil, ErrNonPositiveAmount
	}

	seen := make(map[int64]bool, len(userIDs))
	for _, id := range userIDs {
		if seen[id] {
			return nil, ErrDuplicateUser
		}
		seen[id] = true
	}

	n := int64(len(userIDs))
	rounded := totalCents / n
	if (totalCents%n)*2 >= n {
		rounded++
	}
	first := totalCents - rounded*(n-1)
	if first < 0 {
		// Rounding up overdraws the first share when the total is only
		// a few cents; fall back to floor division there.
		rounded = totalCents / n
		first = totalCents - rounded*(n-1)
	}

	shares := make([]Share, len(userIDs))
	for i, id := range userIDs {
		amount := rounded
		if i == 0 {
			amount = first
		}
		shares[i] = Share{UserID: id, AmountOwed: amount}
	}

	return shares, nil
}
