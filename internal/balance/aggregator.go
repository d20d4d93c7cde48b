// Package balance derives who-owes-whom figures from the append-only
// expense and settlement logs. Balances are a pure projection over
// those records and are never persisted.
package balance

import (
	"github.com/fkhayef/divvy/internal/expense"
	"github.com/fkhayef/divvy/internal/settlement"
)

// Balance holds the folded result for one user. All amounts are in
// integer cents; the sign convention is positive = counterparty owes
// the user, negative = the user owes the counterparty.
type Balance struct {
	NetBalance int64
	TotalOwed  int64 // absolute sum of negative buckets
	TotalDue   int64 // sum of positive buckets
	Buckets    map[int64]int64
}

// Compute folds expense shares and settlements into per-counterparty
// balances for userID. Accumulation is commutative, so the result is
// independent of record order. known reports whether a referenced user
// still exists; records whose counterparty is unknown are skipped and
// counted as anomalies rather than failing the whole computation.
func Compute(userID int64, shares []expense.ShareRecord, settlements []settlement.Record, known func(int64) bool) (*Balance, int) {
	buckets := make(map[int64]int64)
	anomalies := 0

	for _, sh := range shares {
		switch {
		case sh.PayerID == userID && sh.UserID != userID:
			// Another participant owes the user their share.
			if !known(sh.UserID) {
				anomalies++
				continue
			}
			buckets[sh.UserID] += sh.AmountOwedCents
		case sh.UserID == userID && sh.PayerID != userID:
			// The user owes the payer their own share.
			if !known(sh.PayerID) {
				anomalies++
				continue
			}
			buckets[sh.PayerID] -= sh.AmountOwedCents
		}
	}

	// A settlement is a repayment: it moves the payer's standing toward
	// positive and the payee's toward negative, offsetting prior debt.
	for _, rec := range settlements {
		if rec.PayerID == rec.PayeeID {
			anomalies++
			continue
		}
		switch userID {
		case rec.PayerID:
			if !known(rec.PayeeID) {
				anomalies++
				continue
			}
			buckets[rec.PayeeID] += rec.AmountCents
		case rec.PayeeID:
			if !known(rec.PayerID) {
				anomalies++
				continue
			}
			buckets[rec.PayerID] -= rec.AmountCents
		}
	}

	b := &Balance{Buckets: buckets}
	for _, cents := range buckets {
		b.NetBalance += cents
		if cents < 0 {
			b.TotalOwed -= cents
		} else {
			b.TotalDue += cents
		}
	}

	return b, anomalies
}
