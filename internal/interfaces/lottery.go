package interfaces

import (
	"context"
	"math/big"

	"QuenoClient/internal/model"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/event"
)

// LotteryContract 彩票合约绑定
type LotteryContract interface {
	Address() common.Address
	// GenerateLotteryNumbers 发起下注交易，只保证已广播
	GenerateLotteryNumbers(ctx context.Context, selection []uint8, tokenAmount *big.Int, currency uint8, value *big.Int) (*types.Transaction, error)
	// WatchWinningNumbersGenerated 订阅开奖事件，owners 为空时不过滤
	WatchWinningNumbersGenerated(ctx context.Context, sink chan<- *model.WinningNumbersGenerated, owners []common.Address) (event.Subscription, error)
}

// TokenContract ERC20 代币绑定
type TokenContract interface {
	Address() common.Address
	Approve(ctx context.Context, spender common.Address, amount *big.Int) (*types.Transaction, error)
	BalanceOf(ctx context.Context, owner common.Address) (*big.Int, error)
	Allowance(ctx context.Context, owner, spender common.Address) (*big.Int, error)
}

// TxWaiter 等待交易被打包
type TxWaiter interface {
	WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error)
}

// BalanceReader 原生币余额
type BalanceReader interface {
	NativeBalance(ctx context.Context, owner common.Address) (*big.Int, error)
}

// ErrorDecoder 把节点/合约返回的错误转成可读原因
type ErrorDecoder interface {
	Decode(err error) string
}
