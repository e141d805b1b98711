package chain

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"QuenoClient/internal/model"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/event"
)

// Lottery 彩票合约绑定（下注 + 开奖事件订阅）
type Lottery struct {
	address  common.Address
	contract *bind.BoundContract
	auth     *bind.TransactOpts
}

// NewLottery 绑定彩票合约；auth 为 nil 时只能订阅/解析事件
func NewLottery(address common.Address, backend bind.ContractBackend, auth *bind.TransactOpts) (*Lottery, error) {
	parsed, err := abi.JSON(strings.NewReader(LotteryABI))
	if err != nil {
		return nil, fmt.Errorf("parse lottery abi: %w", err)
	}
	return &Lottery{
		address:  address,
		contract: bind.NewBoundContract(address, parsed, backend, backend, backend),
		auth:     auth,
	}, nil
}

func (l *Lottery) Address() common.Address { return l.address }

// GenerateLotteryNumbers 调用 generateLotteryNumbers(uint8[],uint256,uint8)，value 为附带的原生币
func (l *Lottery) GenerateLotteryNumbers(ctx context.Context, selection []uint8, tokenAmount *big.Int, currency uint8, value *big.Int) (*types.Transaction, error) {
	opts, err := transactOpts(ctx, l.auth, value)
	if err != nil {
		return nil, err
	}
	return l.contract.Transact(opts, methodGenerate, selection, tokenAmount, currency)
}

// WatchWinningNumbersGenerated 订阅开奖事件，返回的订阅由调用方负责 Unsubscribe
func (l *Lottery) WatchWinningNumbersGenerated(ctx context.Context, sink chan<- *model.WinningNumbersGenerated, owners []common.Address) (event.Subscription, error) {
	var ownerRule []interface{}
	for _, o := range owners {
		ownerRule = append(ownerRule, o)
	}
	logs, sub, err := l.contract.WatchLogs(&bind.WatchOpts{Context: ctx}, eventWinning, ownerRule)
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", eventWinning, err)
	}
	return event.NewSubscription(func(quit <-chan struct{}) error {
		defer sub.Unsubscribe()
		for {
			select {
			case log := <-logs:
				ev, err := l.ParseWinningNumbersGenerated(log)
				if err != nil {
					return err
				}
				select {
				case sink <- ev:
				case err := <-sub.Err():
					return err
				case <-quit:
					return nil
				}
			case err := <-sub.Err():
				return err
			case <-quit:
				return nil
			}
		}
	}), nil
}

// ParseWinningNumbersGenerated 解析一条开奖事件日志
func (l *Lottery) ParseWinningNumbersGenerated(log types.Log) (*model.WinningNumbersGenerated, error) {
	ev := new(model.WinningNumbersGenerated)
	if err := l.contract.UnpackLog(ev, eventWinning, log); err != nil {
		return nil, fmt.Errorf("unpack %s: %w", eventWinning, err)
	}
	ev.Raw = log
	return ev, nil
}

// transactOpts 复制钱包的交易参数，按本次调用设置 ctx 与 value
func transactOpts(ctx context.Context, auth *bind.TransactOpts, value *big.Int) (*bind.TransactOpts, error) {
	if auth == nil {
		return nil, fmt.Errorf("wallet signer not configured")
	}
	opts := *auth
	opts.Context = ctx
	if value != nil {
		opts.Value = new(big.Int).Set(value)
	} else {
		opts.Value = nil
	}
	return &opts, nil
}
