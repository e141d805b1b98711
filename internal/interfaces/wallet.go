package interfaces

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
)

// Binding 钱包连接成功后得到的一组链上句柄。
// Lottery / Token 为 nil 表示对应合约未就绪。
type Binding struct {
	Owner    common.Address
	Lottery  LotteryContract
	Token    TokenContract
	Waiter   TxWaiter
	Balances BalanceReader
	Decoder  ErrorDecoder
	Close    func()
}

// WalletConnector 连接钱包并绑定合约
type WalletConnector interface {
	Connect(ctx context.Context) (*Binding, error)
}
