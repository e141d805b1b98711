// Package testutil 提供链上协作方的内存替身，供各包测试使用
package testutil

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"sync/atomic"

	"QuenoClient/internal/interfaces"
	"QuenoClient/internal/model"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/event"
)

var (
	Owner          = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	LotteryAddress = common.HexToAddress("0xe6b98F104c1BEf218F3893ADab4160Dc73Eb8367")
	TokenAddress   = common.HexToAddress("0x8464135c8F25Da09e49BC8782676a84730C318bC")
)

// CallLog 按顺序记录对链的调用
type CallLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *CallLog) Add(call string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, call)
}

func (l *CallLog) Calls() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.calls...)
}

// Sub 记录 Unsubscribe 次数的订阅
type Sub struct {
	errc   chan error
	unsubs atomic.Int32
	once   sync.Once
}

func NewSub() *Sub { return &Sub{errc: make(chan error, 1)} }

func (s *Sub) Err() <-chan error { return s.errc }

func (s *Sub) Unsubscribe() {
	s.unsubs.Add(1)
	s.once.Do(func() { close(s.errc) })
}

// Unsubscribes 被调用的次数
func (s *Sub) Unsubscribes() int { return int(s.unsubs.Load()) }

// Drop 模拟订阅断开
func (s *Sub) Drop(err error) { s.errc <- err }

// GenerateCall generateLotteryNumbers 的一次调用参数
type GenerateCall struct {
	Selection   []uint8
	TokenAmount *big.Int
	Currency    uint8
	Value       *big.Int
}

// Lottery 彩票合约替身
type Lottery struct {
	Log         *CallLog
	WatchErr    error
	GenerateErr error
	// OnGenerate 在 generateLotteryNumbers 返回前调用，可用来发事件或阻塞
	OnGenerate func(call GenerateCall)

	mu       sync.Mutex
	sinks    []chan<- *model.WinningNumbersGenerated
	subs     []*Sub
	generate []GenerateCall
	nonce    uint64
}

var _ interfaces.LotteryContract = (*Lottery)(nil)

func (l *Lottery) Address() common.Address { return LotteryAddress }

func (l *Lottery) GenerateLotteryNumbers(ctx context.Context, selection []uint8, tokenAmount *big.Int, currency uint8, value *big.Int) (*types.Transaction, error) {
	call := GenerateCall{Selection: selection, TokenAmount: tokenAmount, Currency: currency, Value: value}
	l.Log.Add("generate")
	if l.GenerateErr != nil {
		return nil, l.GenerateErr
	}
	l.mu.Lock()
	l.generate = append(l.generate, call)
	l.nonce++
	nonce := l.nonce
	l.mu.Unlock()
	if l.OnGenerate != nil {
		l.OnGenerate(call)
	}
	return types.NewTx(&types.LegacyTx{Nonce: 1000 + nonce, To: &LotteryAddress, Value: value, Gas: 21000, GasPrice: big.NewInt(1)}), nil
}

func (l *Lottery) WatchWinningNumbersGenerated(ctx context.Context, sink chan<- *model.WinningNumbersGenerated, owners []common.Address) (event.Subscription, error) {
	l.Log.Add("watch")
	if l.WatchErr != nil {
		return nil, l.WatchErr
	}
	sub := NewSub()
	l.mu.Lock()
	l.sinks = append(l.sinks, sink)
	l.subs = append(l.subs, sub)
	l.mu.Unlock()
	return sub, nil
}

// Emit 把事件投递给所有仍在订阅的监听者
func (l *Lottery) Emit(ev *model.WinningNumbersGenerated) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, sink := range l.sinks {
		if l.subs[i].Unsubscribes() > 0 {
			continue
		}
		sink <- ev
	}
}

func (l *Lottery) Subs() []*Sub {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]*Sub(nil), l.subs...)
}

// ActiveSubs 尚未注销的订阅数
func (l *Lottery) ActiveSubs() int {
	n := 0
	for _, s := range l.Subs() {
		if s.Unsubscribes() == 0 {
			n++
		}
	}
	return n
}

func (l *Lottery) GenerateCalls() []GenerateCall {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]GenerateCall(nil), l.generate...)
}

// Token 代币合约替身；Allowed 为已有授权额度
type Token struct {
	Log          *CallLog
	ApproveErr   error
	Balance      *big.Int
	Allowed      *big.Int
	AllowanceErr error

	mu       sync.Mutex
	approved []*big.Int
}

var _ interfaces.TokenContract = (*Token)(nil)

func (t *Token) Address() common.Address { return TokenAddress }

func (t *Token) Approve(ctx context.Context, spender common.Address, amount *big.Int) (*types.Transaction, error) {
	t.Log.Add("approve")
	if t.ApproveErr != nil {
		return nil, t.ApproveErr
	}
	t.mu.Lock()
	t.approved = append(t.approved, amount)
	n := uint64(len(t.approved))
	t.mu.Unlock()
	return types.NewTx(&types.LegacyTx{Nonce: n, To: &TokenAddress, Value: big.NewInt(0), Gas: 50000, GasPrice: big.NewInt(1)}), nil
}

func (t *Token) BalanceOf(ctx context.Context, owner common.Address) (*big.Int, error) {
	if t.Balance == nil {
		return big.NewInt(0), nil
	}
	return new(big.Int).Set(t.Balance), nil
}

func (t *Token) Allowance(ctx context.Context, owner, spender common.Address) (*big.Int, error) {
	t.Log.Add("allowance")
	if t.AllowanceErr != nil {
		return nil, t.AllowanceErr
	}
	if t.Allowed == nil {
		return big.NewInt(0), nil
	}
	return new(big.Int).Set(t.Allowed), nil
}

func (t *Token) Approved() []*big.Int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]*big.Int(nil), t.approved...)
}

// Waiter 交易打包替身；Revert 中的交易返回失败回执，回执区块取 Block（默认 1）
type Waiter struct {
	Log     *CallLog
	Block   atomic.Uint64
	Err     error
	Revert  func(tx *types.Transaction) bool
	Native  *big.Int
	Blocked chan struct{} // 非 nil 时等待关闭后才返回
}

func (w *Waiter) WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	w.Log.Add(fmt.Sprintf("mined:%d", tx.Nonce()))
	if w.Blocked != nil {
		select {
		case <-w.Blocked:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if w.Err != nil {
		return nil, w.Err
	}
	status := types.ReceiptStatusSuccessful
	if w.Revert != nil && w.Revert(tx) {
		status = types.ReceiptStatusFailed
	}
	block := w.Block.Load()
	if block == 0 {
		block = 1
	}
	return &types.Receipt{Status: status, TxHash: tx.Hash(), BlockNumber: new(big.Int).SetUint64(block)}, nil
}

func (w *Waiter) NativeBalance(ctx context.Context, owner common.Address) (*big.Int, error) {
	if w.Native == nil {
		return big.NewInt(0), nil
	}
	return new(big.Int).Set(w.Native), nil
}

// Decoder 原样返回错误信息
type Decoder struct{}

func (Decoder) Decode(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// Chain 一组互相共享调用日志的替身
type Chain struct {
	Log     *CallLog
	Lottery *Lottery
	Token   *Token
	Waiter  *Waiter

	NoLottery  bool
	NoToken    bool
	ConnectErr error
	closed     atomic.Int32
}

func NewChain() *Chain {
	log := &CallLog{}
	return &Chain{
		Log:     log,
		Lottery: &Lottery{Log: log},
		Token:   &Token{Log: log},
		Waiter:  &Waiter{Log: log},
	}
}

// Connect 实现 interfaces.WalletConnector
func (c *Chain) Connect(ctx context.Context) (*interfaces.Binding, error) {
	if c.ConnectErr != nil {
		return nil, c.ConnectErr
	}
	b := &interfaces.Binding{
		Owner:    Owner,
		Waiter:   c.Waiter,
		Balances: c.Waiter,
		Decoder:  Decoder{},
		Close:    func() { c.closed.Add(1) },
	}
	if !c.NoLottery {
		b.Lottery = c.Lottery
	}
	if !c.NoToken {
		b.Token = c.Token
	}
	return b, nil
}

func (c *Chain) Closed() int { return int(c.closed.Load()) }

// WinningEvent 构造一条开奖事件
func WinningEvent(owner common.Address, selected, drawn []uint8, reward *big.Int, currency uint8) *model.WinningNumbersGenerated {
	return &model.WinningNumbersGenerated{
		Owner:           owner,
		SelectedNumbers: selected,
		DrawnNumbers:    drawn,
		WinningNumbers:  drawn,
		Reward:          reward,
		Currency:        currency,
		Raw:             types.Log{TxHash: common.HexToHash("0xbeef"), BlockNumber: 42},
	}
}

// ErrRejected 模拟用户/节点拒绝
var ErrRejected = errors.New("transaction rejected")
