package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readyInput() BetInput {
	return BetInput{
		WalletConnected: true,
		LotteryReady:    true,
		TokenReady:      true,
		SelectionSize:   2,
		Amount:          "0.001",
	}
}

func TestValidateBetPriority(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*BetInput)
		want   error
	}{
		{"pending wins over everything", func(in *BetInput) { *in = BetInput{Pending: true, Amount: "x"} }, ErrPreviousPending},
		{"wallet", func(in *BetInput) { in.WalletConnected = false; in.LotteryReady = false }, ErrWalletNotConnected},
		{"lottery before token", func(in *BetInput) { in.LotteryReady = false; in.TokenReady = false }, ErrLotteryNotConnected},
		{"token", func(in *BetInput) { in.TokenReady = false }, ErrTokenNotConnected},
		{"empty selection before amount", func(in *BetInput) { in.SelectionSize = 0; in.Amount = "abc" }, ErrNoSelection},
		{"amount above max", func(in *BetInput) { in.Amount = "6" }, ErrAmountOutOfRange},
		{"amount below min", func(in *BetInput) { in.Amount = "0.00009" }, ErrAmountOutOfRange},
		{"amount not a number", func(in *BetInput) { in.Amount = "NaN" }, ErrAmountOutOfRange},
		{"amount empty", func(in *BetInput) { in.Amount = "" }, ErrAmountOutOfRange},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := readyInput()
			tc.mutate(&in)
			_, err := ValidateBet(in)
			assert.ErrorIs(t, err, tc.want)

			var ve *ValidationError
			assert.ErrorAs(t, err, &ve)
		})
	}
}

func TestValidateBetBounds(t *testing.T) {
	for _, raw := range []string{"0.0001", "5", " 2.5 "} {
		in := readyInput()
		in.Amount = raw
		amount, err := ValidateBet(in)
		require.NoError(t, err, raw)
		assert.True(t, amount.GreaterThanOrEqual(MinBet))
	}
}

func TestParseAmountPrecision(t *testing.T) {
	amount, err := ParseAmount("0.100000000000000000000")
	require.NoError(t, err)
	assert.Equal(t, "100000000000000000", ToBaseUnits(amount).String())

	amount, err = ParseAmount("0.000100000000000001")
	require.NoError(t, err)
	assert.Equal(t, "100000000000001", ToBaseUnits(amount).String())

	for _, raw := range []string{"0.0001000000000000001", "1.0000000000000000009"} {
		_, err := ParseAmount(raw)
		assert.ErrorIs(t, err, ErrAmountOutOfRange, raw)
	}
}

func TestAmountOutOfRangeMessage(t *testing.T) {
	in := readyInput()
	in.Amount = "6"
	_, err := ValidateBet(in)
	require.Error(t, err)
	assert.Equal(t, "amount out of range", err.Error())
}
