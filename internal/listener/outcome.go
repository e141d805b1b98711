package listener

import (
	"context"
	"fmt"
	"sync"
	"time"

	"QuenoClient/internal/game"
	"QuenoClient/internal/interfaces"
	"QuenoClient/internal/model"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/event"
	"github.com/sirupsen/logrus"
)

// State 单次下注的事件关联状态
type State int

const (
	StateArmed State = iota
	StateResolved
	StateFailed
	StateAbandoned
)

func (s State) String() string {
	switch s {
	case StateArmed:
		return "armed"
	case StateResolved:
		return "resolved"
	case StateFailed:
		return "failed"
	case StateAbandoned:
		return "abandoned"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// OutcomeCorrelator 为每次下注注册 WinningNumbersGenerated 监听
type OutcomeCorrelator struct {
	lottery interfaces.LotteryContract
	timeout time.Duration
	logger  *logrus.Logger
}

// NewOutcomeCorrelator timeout 为 0 时一直等待事件
func NewOutcomeCorrelator(lottery interfaces.LotteryContract, timeout time.Duration, logger *logrus.Logger) *OutcomeCorrelator {
	return &OutcomeCorrelator{lottery: lottery, timeout: timeout, logger: logger}
}

// Arm 在交易确认之前注册监听，返回持有唯一订阅的 Correlation。
// 调用方必须 defer Release()。
func (c *OutcomeCorrelator) Arm(ctx context.Context, owner common.Address, selection []int) (*Correlation, error) {
	sink := make(chan *model.WinningNumbersGenerated, 8)
	sub, err := c.lottery.WatchWinningNumbersGenerated(ctx, sink, []common.Address{owner})
	if err != nil {
		return nil, fmt.Errorf("arm outcome listener: %w", err)
	}
	return &Correlation{
		owner:     owner,
		selection: append([]int(nil), selection...),
		sink:      sink,
		sub:       sub,
		timeout:   c.timeout,
		logger:    c.logger,
		state:     StateArmed,
	}, nil
}

// Resolution 关联成功的开奖结果
type Resolution struct {
	Outcome     *game.Outcome
	TxHash      string
	BlockNumber uint64
}

// Correlation Armed → Resolved | Failed | Abandoned。
// 任何一次状态迁移都会释放订阅，且只释放一次。
type Correlation struct {
	owner     common.Address
	selection []int
	sink      chan *model.WinningNumbersGenerated
	sub       event.Subscription
	timeout   time.Duration
	logger    *logrus.Logger

	mu    sync.Mutex
	state State
	once  sync.Once
}

func (c *Correlation) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Wait 等待第一条 owner 与选号都匹配、且不早于 since 区块的事件；其余事件忽略。
// since 为下注交易所在区块，更早的同选号事件来自之前被放弃的下注。
func (c *Correlation) Wait(ctx context.Context, since uint64) (*Resolution, error) {
	if st := c.State(); st != StateArmed {
		return nil, &game.CorrelationError{Reason: "listener is " + st.String()}
	}
	var timeout <-chan time.Time
	if c.timeout > 0 {
		timer := time.NewTimer(c.timeout)
		defer timer.Stop()
		timeout = timer.C
	}
	for {
		select {
		case ev := <-c.sink:
			if !c.matches(ev, since) {
				c.logger.WithFields(logrus.Fields{
					"tx_hash": ev.Raw.TxHash.Hex(),
					"block":   ev.Raw.BlockNumber,
				}).Debug("忽略不属于本次下注的开奖事件")
				continue
			}
			c.finish(StateResolved)
			return decode(ev), nil
		case err := <-c.sub.Err():
			c.finish(StateFailed)
			if err == nil {
				err = fmt.Errorf("subscription closed")
			}
			return nil, &game.CorrelationError{Reason: "event subscription dropped", Err: err}
		case <-ctx.Done():
			c.finish(StateAbandoned)
			return nil, &game.CorrelationError{Reason: "wait abandoned", Err: ctx.Err()}
		case <-timeout:
			c.finish(StateAbandoned)
			return nil, &game.CorrelationError{Reason: fmt.Sprintf("no outcome event within %s", c.timeout)}
		}
	}
}

// Fail 下注交易失败，不会再有事件
func (c *Correlation) Fail(err error) {
	if c.finish(StateFailed) {
		c.logger.WithError(err).Debug("下注失败，注销开奖监听")
	}
}

// Release 兜底释放；仍处于 Armed 时视为 Abandoned
func (c *Correlation) Release() {
	c.finish(StateAbandoned)
}

// finish 仅在 Armed 时迁移状态，返回是否发生迁移；订阅总是被释放（只一次）
func (c *Correlation) finish(to State) bool {
	c.mu.Lock()
	moved := c.state == StateArmed
	if moved {
		c.state = to
	}
	c.mu.Unlock()
	c.once.Do(c.sub.Unsubscribe)
	return moved
}

func (c *Correlation) matches(ev *model.WinningNumbersGenerated, since uint64) bool {
	if ev == nil || ev.Owner != c.owner || ev.Raw.BlockNumber < since {
		return false
	}
	return game.SameNumbers(toInts(ev.SelectedNumbers), c.selection)
}

func decode(ev *model.WinningNumbersGenerated) *Resolution {
	return &Resolution{
		Outcome: game.NewOutcome(
			toInts(ev.SelectedNumbers),
			toInts(ev.DrawnNumbers),
			toInts(ev.WinningNumbers),
			game.FromBaseUnits(ev.Reward),
			game.Currency(ev.Currency),
		),
		TxHash:      ev.Raw.TxHash.Hex(),
		BlockNumber: ev.Raw.BlockNumber,
	}
}

func toInts(nums []uint8) []int {
	out := make([]int, len(nums))
	for i, n := range nums {
		out[i] = int(n)
	}
	return out
}
