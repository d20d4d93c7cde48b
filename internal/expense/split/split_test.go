package split

import (
	"errors"
	"testing"
)

func TestEqualSumsToTotal(t *testing.T) {
	totals := []int64{1, 2, 99, 100, 101, 5000, 12345, 99999, 1000000}

	for _, total := range totals {
		for n := 1; n <= 100; n++ {
			ids := make([]int64, n)
			for i := range ids {
				ids[i] = int64(i + 1)
			}

			shares, err := Equal(total, ids)
			if err != nil {
				t.Fatalf("Equal(%d, %d participants): %v", total, n, err)
			}
			if len(shares) != n {
				t.Fatalf("Equal(%d, %d participants): got %d shares", total, n, len(shares))
			}

			var sum int64
			for _, sh := range shares {
				if sh.AmountOwed < 0 {
					t.Fatalf("Equal(%d, %d participants): negative share %d for user %d", total, n, sh.AmountOwed, sh.UserID)
				}
				sum += sh.AmountOwed
			}
			if sum != total {
				t.Errorf("Equal(%d, %d participants): shares sum to %d", total, n, sum)
			}
		}
	}
}

func TestEqualRoundsToNearestCent(t *testing.T) {
	// 50.00 over three people: 16.666... rounds to 16.67, so the first
	// participant absorbs the residue and ends up with 16.66.
	shares, err := Equal(5000, []int64{1, 2, 3})
	if err != nil {
		t.Fatal(err)
	}

	want := []Share{
		{UserID: 1, AmountOwed: 1666},
		{UserID: 2, AmountOwed: 1667},
		{UserID: 3, AmountOwed: 1667},
	}
	for i, sh := range shares {
		if sh != want[i] {
			t.Errorf("share %d: got %+v, want %+v", i, sh, want[i])
		}
	}
}

func TestEqualResidueCanAddToFirst(t *testing.T) {
	// 1.00 over three people: 0.333... rounds down to 0.33, so the
	// first participant picks up the extra cent.
	shares, err := Equal(100, []int64{7, 8, 9})
	if err != nil {
		t.Fatal(err)
	}

	want := []int64{34, 33, 33}
	for i, sh := range shares {
		if sh.AmountOwed != want[i] {
			t.Errorf("share %d: got %d, want %d", i, sh.AmountOwed, want[i])
		}
	}
}

func TestEqualTinyTotalKeepsSharesNonNegative(t *testing.T) {
	// 0.02 over four people: 0.005 would round up to a cent each,
	// overdrawing the first participant. The whole residue lands on
	// them instead.
	shares, err := Equal(2, []int64{1, 2, 3, 4})
	if err != nil {
		t.Fatal(err)
	}

	want := []int64{2, 0, 0, 0}
	var sum int64
	for i, sh := range shares {
		if sh.AmountOwed != want[i] {
			t.Errorf("share %d: got %d, want %d", i, sh.AmountOwed, want[i])
		}
		if sh.AmountOwed < 0 {
			t.Errorf("share %d is negative: %d", i, sh.AmountOwed)
		}
		sum += sh.AmountOwed
	}
	if sum != 2 {
		t.Errorf("shares sum to %d, want 2", sum)
	}
}

func TestEqualExactDivision(t *testing.T) {
	shares, err := Equal(3000, []int64{1, 2, 3})
	if err != nil {
		t.Fatal(err)
	}
	for _, sh := range shares {
		if sh.AmountOwed != 1000 {
			t.Errorf("user %d: got %d, want 1000", sh.UserID, sh.AmountOwed)
		}
	}
}

func TestEqualDeterministic(t *testing.T) {
	a, err := Equal(12347, []int64{4, 2, 9})
	if err != nil {
		t.Fatal(err)
	}
	b, err := Equal(12347, []int64{4, 2, 9})
	if err != nil {
		t.Fatal(err)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("share %d differs between runs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestEqualValidation(t *testing.T) {
	tests := []struct {
		name    string
		total   int64
		userIDs []int64
		wantErr error
	}{
		{"no participants", 1000, nil, ErrNoParticipants},
		{"zero amount", 0, []int64{1}, ErrNonPositiveAmount},
		{"negative amount", -500, []int64{1, 2}, ErrNonPositiveAmount},
		{"duplicate participant", 1000, []int64{1, 2, 1}, ErrDuplicateUser},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Equal(tt.total, tt.userIDs)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("got %v, want %v", err, tt.wantErr)
			}
		})
	}
}
