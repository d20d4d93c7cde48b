package balance

import (
	"testing"

	"github.com/fkhayef/divvy/internal/expense"
	"github.com/fkhayef/divvy/internal/settlement"
)

func allKnown(int64) bool { return true }

// dinnerShares models a 50.00 expense paid by user 1, split equally
// among users 1, 2, and 3. Shares follow the round-to-nearest rule
// with the residue on the first participant: 16.66, 16.67, 16.67.
func dinnerShares() []expense.ShareRecord {
	return []expense.ShareRecord{
		{ExpenseID: 1, GroupID: 1, PayerID: 1, UserID: 1, AmountOwedCents: 1666},
		{ExpenseID: 1, GroupID: 1, PayerID: 1, UserID: 2, AmountOwedCents: 1667},
		{ExpenseID: 1, GroupID: 1, PayerID: 1, UserID: 3, AmountOwedCents: 1667},
	}
}

func TestComputeDinnerScenario(t *testing.T) {
	b, anomalies := Compute(1, dinnerShares(), nil, allKnown)
	if anomalies != 0 {
		t.Fatalf("anomalies = %d, want 0", anomalies)
	}

	if got := b.Buckets[2]; got != 1667 {
		t.Errorf("bucket for user 2 = %d, want 1667", got)
	}
	if got := b.Buckets[3]; got != 1667 {
		t.Errorf("bucket for user 3 = %d, want 1667", got)
	}
	if b.TotalDue != 3334 {
		t.Errorf("TotalDue = %d, want 3334", b.TotalDue)
	}
	if b.TotalOwed != 0 {
		t.Errorf("TotalOwed = %d, want 0", b.TotalOwed)
	}
	if b.NetBalance != 3334 {
		t.Errorf("NetBalance = %d, want 3334", b.NetBalance)
	}

	// From a participant's side the same expense is a debt to the payer.
	b2, _ := Compute(2, dinnerShares(), nil, allKnown)
	if got := b2.Buckets[1]; got != -1667 {
		t.Errorf("user 2 bucket for payer = %d, want -1667", got)
	}
	if b2.TotalOwed != 1667 {
		t.Errorf("user 2 TotalOwed = %d, want 1667", b2.TotalOwed)
	}
}

func TestComputeZeroSumAcrossMembers(t *testing.T) {
	shares := dinnerShares()
	settlements := []settlement.Record{
		{ID: 1, GroupID: 1, PayerID: 2, PayeeID: 1, AmountCents: 1000},
		{ID: 2, GroupID: 1, PayerID: 3, PayeeID: 2, AmountCents: 250},
	}

	var net int64
	for _, userID := range []int64{1, 2, 3} {
		b, _ := Compute(userID, shares, settlements, allKnown)
		net += b.NetBalance
	}
	if net != 0 {
		t.Errorf("sum of net balances = %d, want 0", net)
	}
}

func TestComputeSettlementOffsetsDebt(t *testing.T) {
	// User 2 owes user 1 exactly 16.67 after the dinner, then pays it.
	settlements := []settlement.Record{
		{ID: 1, GroupID: 1, PayerID: 2, PayeeID: 1, AmountCents: 1667},
	}

	b1, _ := Compute(1, dinnerShares(), settlements, allKnown)
	if got := b1.Buckets[2]; got != 0 {
		t.Errorf("payee bucket for payer = %d, want 0", got)
	}

	b2, _ := Compute(2, dinnerShares(), settlements, allKnown)
	if got := b2.Buckets[1]; got != 0 {
		t.Errorf("payer bucket for payee = %d, want 0", got)
	}
}

func TestComputeSettlementSymmetry(t *testing.T) {
	settlements := []settlement.Record{
		{ID: 1, GroupID: 1, PayerID: 1, PayeeID: 2, AmountCents: 1000},
	}

	b1, _ := Compute(1, nil, settlements, allKnown)
	b2, _ := Compute(2, nil, settlements, allKnown)

	if b1.Buckets[2] != -b2.Buckets[1] {
		t.Errorf("buckets are not antisymmetric: %d vs %d", b1.Buckets[2], b2.Buckets[1])
	}
	if b1.Buckets[2] != 1000 {
		t.Errorf("payer bucket = %d, want 1000", b1.Buckets[2])
	}
	if b2.Buckets[1] != -1000 {
		t.Errorf("payee bucket = %d, want -1000", b2.Buckets[1])
	}
}

func TestComputeDeleteRestoresZero(t *testing.T) {
	// With the dinner expense gone only the offsetting settlement
	// remains; deleting that too returns every bucket to zero. Here we
	// model deletion by simply omitting the records.
	b, _ := Compute(1, nil, nil, allKnown)
	if b.NetBalance != 0 || len(b.Buckets) != 0 {
		t.Errorf("empty log produced non-zero balance: %+v", b)
	}
}

func TestComputeOrderIndependence(t *testing.T) {
	shares := dinnerShares()
	reversed := []expense.ShareRecord{shares[2], shares[0], shares[1]}
	settlements := []settlement.Record{
		{ID: 1, GroupID: 1, PayerID: 2, PayeeID: 1, AmountCents: 500},
		{ID: 2, GroupID: 1, PayerID: 3, PayeeID: 1, AmountCents: 700},
	}
	reversedSettlements := []settlement.Record{settlements[1], settlements[0]}

	a, _ := Compute(1, shares, settlements, allKnown)
	b, _ := Compute(1, reversed, reversedSettlements, allKnown)

	if a.NetBalance != b.NetBalance || a.TotalDue != b.TotalDue || a.TotalOwed != b.TotalOwed {
		t.Errorf("totals differ across orders: %+v vs %+v", a, b)
	}
	for id, cents := range a.Buckets {
		if b.Buckets[id] != cents {
			t.Errorf("bucket %d differs across orders: %d vs %d", id, cents, b.Buckets[id])
		}
	}
}

func TestComputeSkipsRecordsWithMissingUsers(t *testing.T) {
	known := func(id int64) bool { return id != 3 }
	settlements := []settlement.Record{
		{ID: 1, GroupID: 1, PayerID: 3, PayeeID: 1, AmountCents: 9999},
	}

	b, anomalies := Compute(1, dinnerShares(), settlements, known)
	if anomalies != 2 {
		t.Errorf("anomalies = %d, want 2", anomalies)
	}
	if _, ok := b.Buckets[3]; ok {
		t.Error("bucket created for missing user")
	}
	if got := b.Buckets[2]; got != 1667 {
		t.Errorf("surviving bucket = %d, want 1667", got)
	}
}

func TestComputePayerOwnShareHasNoCounterparty(t *testing.T) {
	// The payer's own share never creates a bucket against themselves.
	b, _ := Compute(1, dinnerShares(), nil, allKnown)
	if _, ok := b.Buckets[1]; ok {
		t.Error("payer has a bucket against themselves")
	}
}
