package game

import (
	"strings"

	"github.com/shopspring/decimal"
)

// BetInput 下注前检查所需的会话状态快照
type BetInput struct {
	Pending         bool
	WalletConnected bool
	LotteryReady    bool
	TokenReady      bool
	SelectionSize   int
	Amount          string // 用户输入的单注金额（原样字符串）
}

// ValidateBet 按固定优先级检查，返回解析后的单注金额或第一个命中的 *ValidationError。
// 纯函数，提交时必须同步再调用一次。
func ValidateBet(in BetInput) (decimal.Decimal, error) {
	switch {
	case in.Pending:
		return decimal.Zero, ErrPreviousPending
	case !in.WalletConnected:
		return decimal.Zero, ErrWalletNotConnected
	case !in.LotteryReady:
		return decimal.Zero, ErrLotteryNotConnected
	case !in.TokenReady:
		return decimal.Zero, ErrTokenNotConnected
	case in.SelectionSize == 0:
		return decimal.Zero, ErrNoSelection
	}
	return ParseAmount(in.Amount)
}

// ParseAmount 解析单注金额并检查 [MinBet, MaxBet]；超过 UnitDecimals 位小数无法精确上链，同样拒绝
func ParseAmount(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, ErrAmountOutOfRange
	}
	if !amount.Equal(amount.Truncate(UnitDecimals)) {
		return decimal.Zero, ErrAmountOutOfRange
	}
	if amount.LessThan(MinBet) || amount.GreaterThan(MaxBet) {
		return decimal.Zero, ErrAmountOutOfRange
	}
	return amount, nil
}
