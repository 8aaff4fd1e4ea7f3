package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func amount(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestCommitment_MonthlyEquivalent(t *testing.T) {
	table := []struct {
		name     string
		cadence  Cadence
		amount   string
		expected string
	}{
		{name: "monthly", cadence: CadenceMonthly, amount: "150", expected: "150"},
		{name: "quarterly", cadence: CadenceQuarterly, amount: "300", expected: "100"},
		{name: "quarterly rounds", cadence: CadenceQuarterly, amount: "100", expected: "33.33"},
		{name: "annual", cadence: CadenceAnnual, amount: "1200", expected: "100"},
		{name: "annual rounds", cadence: CadenceAnnual, amount: "1000", expected: "83.33"},
		{name: "one time", cadence: CadenceOneTime, amount: "5000", expected: "0"},
		{name: "other", cadence: CadenceOther, amount: "5000", expected: "0"},
	}

	for _, e := range table {
		t.Run(e.name, func(t *testing.T) {
			c := Commitment{
				Cadence: e.cadence,
				Amount:  amount(e.amount),
			}
			assert.Equal(t, true, c.MonthlyEquivalent().Equal(amount(e.expected)))
		})
	}
}

func TestCommitment_Equal(t *testing.T) {
	c := Commitment{
		Status:  CommitmentCommitted,
		Amount:  amount("100.00"),
		Cadence: CadenceMonthly,
		Notes:   "pledged at spring dinner",
	}

	assert.Equal(t, true,
		c.Equal(CommitmentCommitted, amount("100"), CadenceMonthly, "pledged at spring dinner"))
	assert.Equal(t, false,
		c.Equal(CommitmentConsidering, amount("100"), CadenceMonthly, "pledged at spring dinner"))
	assert.Equal(t, false,
		c.Equal(CommitmentCommitted, amount("120"), CadenceMonthly, "pledged at spring dinner"))
	assert.Equal(t, false,
		c.Equal(CommitmentCommitted, amount("100"), CadenceAnnual, "pledged at spring dinner"))
	assert.Equal(t, false,
		c.Equal(CommitmentCommitted, amount("100"), CadenceMonthly, ""))
}

func TestCommitmentStatus_Valid(t *testing.T) {
	assert.Equal(t, true, CommitmentPendingReview.Valid())
	assert.Equal(t, false, CommitmentStatus("done").Valid())
	assert.Equal(t, false, CommitmentStatus("").Valid())
}

func TestCadence_Valid(t *testing.T) {
	assert.Equal(t, true, CadenceOneTime.Valid())
	assert.Equal(t, false, Cadence("weekly").Valid())
}
