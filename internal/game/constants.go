package game

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// 协议常量，与合约保持一致
const (
	NumberCount  = 32 // 号码池大小 [1, NumberCount]
	MaxSelection = 4  // 最多选择的号码个数
	HistoryPage  = 5  // 历史记录默认展示条数

	// UnitDecimals 原生币与代币均按 18 位精度编码
	UnitDecimals = 18
)

var (
	MinBet = decimal.RequireFromString("0.0001") // 单个号码最小下注额（原生币单位）
	MaxBet = decimal.RequireFromString("5")      // 单个号码最大下注额

	// QRNPrice 量子随机数服务费，无论用哪种币下注都以原生币支付
	QRNPrice = decimal.RequireFromString("0.0003")
)

// Currency 合约中的币种枚举
type Currency uint8

const (
	CurrencyNative Currency = 0 // ETH
	CurrencyToken  Currency = 1 // Ypto
)

// Currencies 所有已知币种，汇总时按此顺序输出
var Currencies = []Currency{CurrencyNative, CurrencyToken}

func (c Currency) String() string {
	switch c {
	case CurrencyNative:
		return "ETH"
	case CurrencyToken:
		return "Ypto"
	default:
		return "unknown"
	}
}

// ParseCurrency 解析前端传入的币种名称（ETH / Ypto，大小写不敏感）
func ParseCurrency(s string) (Currency, bool) {
	switch {
	case strings.EqualFold(s, "ETH"), s == "0":
		return CurrencyNative, true
	case strings.EqualFold(s, "Ypto"), s == "1":
		return CurrencyToken, true
	default:
		return 0, false
	}
}

func (c Currency) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Currency) UnmarshalText(b []byte) error {
	v, ok := ParseCurrency(string(b))
	if !ok {
		return fmt.Errorf("unknown currency %q", string(b))
	}
	*c = v
	return nil
}
