package game

import (
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BetConfig 单注金额与币种
type BetConfig struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency Currency        `json:"currency"`
}

// PendingRequest 正在进行中的下注，会话内最多一个
type PendingRequest struct {
	ID          string    `json:"id"`
	Selection   []int     `json:"selection"`
	Config      BetConfig `json:"config"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// NewPendingRequest 以当前时间创建进行中的下注
func NewPendingRequest(selection []int, cfg BetConfig) *PendingRequest {
	return &PendingRequest{
		ID:          uuid.NewString(),
		Selection:   selection,
		Config:      cfg,
		SubmittedAt: time.Now(),
	}
}

// BetRequest generateLotteryNumbers 的调用参数
type BetRequest struct {
	Selection   []uint8  // 按提交顺序的号码
	TokenAmount *big.Int // 代币支付金额（原生币下注时为 0）
	Currency    Currency // 币种枚举
	Value       *big.Int // 随交易附带的原生币（wei）

	TotalStake decimal.Decimal // 单注金额 × 号码个数
	ValueEth   decimal.Decimal // Value 的十进制表示
}

// NeedsApproval 代币下注前需先 approve
func (r *BetRequest) NeedsApproval() bool { return r.Currency == CurrencyToken }

// ApproveAmount 需要授权给彩票合约的代币数量
func (r *BetRequest) ApproveAmount() *big.Int { return new(big.Int).Set(r.TokenAmount) }

// BuildRequest 根据已校验的选号与下注配置生成链上调用参数。
// 服务费 QRNPrice 始终以原生币附带，与号码个数无关。
func BuildRequest(selection []int, cfg BetConfig) (*BetRequest, error) {
	if len(selection) == 0 {
		return nil, ErrNoSelection
	}
	nums := make([]uint8, 0, len(selection))
	for _, n := range selection {
		if !InRange(n) {
			return nil, fmt.Errorf("number %d out of range [1, %d]", n, NumberCount)
		}
		nums = append(nums, uint8(n))
	}

	stake := cfg.Amount.Mul(decimal.NewFromInt(int64(len(selection))))
	req := &BetRequest{
		Selection:  nums,
		Currency:   cfg.Currency,
		TotalStake: stake,
	}
	switch cfg.Currency {
	case CurrencyNative:
		req.ValueEth = stake.Add(QRNPrice)
		req.TokenAmount = big.NewInt(0)
	case CurrencyToken:
		req.ValueEth = QRNPrice
		req.TokenAmount = ToBaseUnits(stake)
	default:
		return nil, fmt.Errorf("unsupported currency %d", cfg.Currency)
	}
	req.Value = ToBaseUnits(req.ValueEth)
	return req, nil
}

// ToBaseUnits 十进制金额转 18 位精度整数
func ToBaseUnits(d decimal.Decimal) *big.Int {
	return d.Shift(UnitDecimals).BigInt()
}

// FromBaseUnits 18 位精度整数转十进制金额
func FromBaseUnits(b *big.Int) decimal.Decimal {
	if b == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(b, -UnitDecimals)
}
