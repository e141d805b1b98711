package model

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// WinningNumbersGenerated 彩票合约开奖事件
// event WinningNumbersGenerated(address indexed owner, uint8[] selectedNumbers, uint8[] drawnNumbers, uint8[] winningNumbers, uint256 reward, uint8 currency)
type WinningNumbersGenerated struct {
	Owner           common.Address
	SelectedNumbers []uint8
	DrawnNumbers    []uint8
	WinningNumbers  []uint8
	Reward          *big.Int
	Currency        uint8
	Raw             types.Log
}

// BetRecord 对应 bet_records 表，已完成下注的本地归档（仅镜像，链上为准）
type BetRecord struct {
	ID            uint64          `gorm:"column:id;primaryKey;autoIncrement;comment:自增主键ID"`
	BetID         string          `gorm:"column:bet_id;type:varchar(64);uniqueIndex;not null;comment:本地下注ID"`
	UserWallet    string          `gorm:"column:user_wallet;type:varchar(64);index;not null;comment:用户钱包地址"`
	Selection     datatypes.JSON  `gorm:"column:selection;type:jsonb;not null;comment:提交的号码"`
	Drawn         datatypes.JSON  `gorm:"column:drawn;type:jsonb;not null;comment:开出的号码"`
	Winning       datatypes.JSON  `gorm:"column:winning;type:jsonb;comment:最终中奖号码"`
	Matches       int             `gorm:"column:matches;type:int;default:0;comment:命中个数"`
	Amount        decimal.Decimal `gorm:"column:amount;type:numeric(38,18);not null;comment:下注总额"`
	Currency      string          `gorm:"column:currency;type:varchar(16);not null;comment:币种 ETH/Ypto"`
	Reward        decimal.Decimal `gorm:"column:reward;type:numeric(38,18);default:0;comment:奖励"`
	BetTxHash     string          `gorm:"column:bet_tx_hash;type:varchar(66);comment:下注交易哈希"`
	OutcomeTxHash string          `gorm:"column:outcome_tx_hash;type:varchar(66);comment:开奖事件所在交易"`
	OutcomeBlock  *int64          `gorm:"column:outcome_block;comment:开奖事件区块高度"`
	SubmittedAt   time.Time       `gorm:"column:submitted_at;type:timestamp;not null;comment:提交时间"`
	ResolvedAt    time.Time       `gorm:"column:resolved_at;type:timestamp;not null;comment:开奖时间"`
	CreatedAt     time.Time       `gorm:"column:created_at;type:timestamp;default:now();comment:创建时间"`
}

func (BetRecord) TableName() string { return "bet_records" }
