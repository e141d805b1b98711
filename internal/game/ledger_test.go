package game

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOutcomeMatches(t *testing.T) {
	o := NewOutcome([]int{3, 7, 19, 32}, []int{3, 7, 21, 30}, []int{3, 7, 21, 30}, dec("0.02"), CurrencyNative)
	assert.Equal(t, []int{3, 7}, o.Matches)
	assert.True(t, o.Won())

	lost := NewOutcome([]int{1}, []int{2, 3, 4, 5}, nil, decimal.Zero, CurrencyToken)
	assert.Empty(t, lost.Matches)
	assert.False(t, lost.Won())
}

func TestLedgerMostRecentFirst(t *testing.T) {
	l := NewLedger()
	for i := 0; i < 7; i++ {
		l.Append(HistoryEntry{ID: fmt.Sprint(i), Amount: dec("1"), Reward: decimal.Zero})
	}
	all := l.Visible(true)
	require.Len(t, all, 7)
	assert.Equal(t, "6", all[0].ID)
	assert.Equal(t, "0", all[6].ID)

	recent := l.Visible(false)
	require.Len(t, recent, HistoryPage)
	assert.Equal(t, []string{"6", "5", "4", "3", "2"}, ids(recent))
}

func TestLedgerNeverDeduplicates(t *testing.T) {
	l := NewLedger()
	e := HistoryEntry{ID: "same", Amount: dec("0.1"), Reward: decimal.Zero}
	l.Append(e)
	l.Append(e)
	assert.Equal(t, 2, l.Len())
}

func TestAggregateEqualsFold(t *testing.T) {
	l := NewLedger()
	totals := l.Aggregate()
	for _, c := range Currencies {
		assert.True(t, totals[c].Bet.IsZero())
		assert.True(t, totals[c].Reward.IsZero())
	}

	entries := []HistoryEntry{
		{Amount: dec("0.004"), Reward: dec("0"), Currency: CurrencyNative},
		{Amount: dec("0.1"), Reward: dec("0.35"), Currency: CurrencyNative},
		{Amount: dec("2"), Reward: dec("1"), Currency: CurrencyToken},
	}
	for _, e := range entries {
		l.Append(e)
	}
	totals = l.Aggregate()

	for _, c := range Currencies {
		bet, reward := decimal.Zero, decimal.Zero
		for _, e := range l.Entries() {
			if e.Currency == c {
				bet = bet.Add(e.Amount)
				reward = reward.Add(e.Reward)
			}
		}
		assert.True(t, totals[c].Bet.Equal(bet), c.String())
		assert.True(t, totals[c].Reward.Equal(reward), c.String())
	}
	assert.Equal(t, "0.246", totals[CurrencyNative].Balance().String())
	assert.Equal(t, "-1", totals[CurrencyToken].Balance().String())
}

func TestCurrencyText(t *testing.T) {
	b, err := CurrencyToken.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "Ypto", string(b))

	var c Currency
	require.NoError(t, c.UnmarshalText([]byte("eth")))
	assert.Equal(t, CurrencyNative, c)
	assert.Error(t, c.UnmarshalText([]byte("btc")))
}

func ids(entries []HistoryEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.ID
	}
	return out
}
