package service

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"QuenoClient/internal/game"
	"QuenoClient/internal/interfaces"
	"QuenoClient/internal/listener"
	"QuenoClient/internal/metrics"
	"QuenoClient/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Session 单个玩家的游戏会话：钱包、选号、进行中的下注与历史。
// 所有状态由 mu 保护，链上调用期间不持有锁。
type Session struct {
	mu             sync.Mutex
	logger         *logrus.Logger
	connector      interfaces.WalletConnector
	bets           repository.BetRepository // 可为 nil，则不归档
	metrics        *metrics.Metrics         // 可为 nil
	rng            *rand.Rand
	outcomeTimeout time.Duration

	binding    *interfaces.Binding
	correlator *listener.OutcomeCorrelator
	// epoch 每次断开钱包递增，旧 epoch 的下注结果直接丢弃
	epoch      uint64
	cancelWait context.CancelFunc

	selection      *game.Selection
	autoPick       bool
	amount         string
	currency       game.Currency
	pending        *game.PendingRequest
	outcome        *game.Outcome
	finalSelection []int
	finalCurrency  game.Currency
	errMsg         string
	ledger         *game.Ledger
	showAll        bool

	watchers    map[int]chan Snapshot
	nextWatcher int
}

// Option 会话可选依赖
type Option func(*Session)

func WithBetRepository(repo repository.BetRepository) Option {
	return func(s *Session) { s.bets = repo }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Session) { s.metrics = m }
}

// WithOutcomeTimeout 0 表示一直等待开奖事件
func WithOutcomeTimeout(d time.Duration) Option {
	return func(s *Session) { s.outcomeTimeout = d }
}

// WithRand 自动选号使用的随机源
func WithRand(rng *rand.Rand) Option {
	return func(s *Session) { s.rng = rng }
}

// NewSession 创建会话，默认单注金额为 MinBet、币种 ETH
func NewSession(connector interfaces.WalletConnector, logger *logrus.Logger, opts ...Option) *Session {
	s := &Session{
		logger:    logger,
		connector: connector,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
		selection: game.NewSelection(),
		amount:    game.MinBet.String(),
		currency:  game.CurrencyNative,
		ledger:    game.NewLedger(),
		watchers:  make(map[int]chan Snapshot),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.finalCurrency = s.currency
	return s
}

// Connect 连接钱包并绑定合约；已连接时直接返回
func (s *Session) Connect(ctx context.Context) error {
	s.mu.Lock()
	connected := s.binding != nil
	s.mu.Unlock()
	if connected {
		return nil
	}

	binding, err := s.connector.Connect(ctx)
	if err != nil {
		return fmt.Errorf("connect wallet: %w", err)
	}

	s.mu.Lock()
	if s.binding != nil {
		s.mu.Unlock()
		closeBinding(binding)
		return nil
	}
	s.binding = binding
	if binding.Lottery != nil {
		s.correlator = listener.NewOutcomeCorrelator(binding.Lottery, s.outcomeTimeout, s.logger)
	}
	s.notifyLocked()
	s.mu.Unlock()

	s.logger.WithFields(logrus.Fields{
		"wallet":        binding.Owner.Hex(),
		"lottery_ready": binding.Lottery != nil,
		"token_ready":   binding.Token != nil,
	}).Info("会话已连接钱包")

	if bal, err := s.Balances(ctx); err != nil {
		s.logger.WithError(err).Warn("读取余额失败")
	} else {
		s.logger.WithFields(logrus.Fields{
			"native":        bal.Native.String(),
			"token":         bal.Token.String(),
			"lottery_token": bal.LotteryToken.String(),
		}).Info("钱包余额")
	}
	return nil
}

// Disconnect 清空钱包、合约、历史与游戏状态，放弃正在等待的开奖结果
func (s *Session) Disconnect() {
	s.mu.Lock()
	binding := s.binding
	if binding == nil {
		s.mu.Unlock()
		return
	}
	s.epoch++
	if s.cancelWait != nil {
		s.cancelWait()
		s.cancelWait = nil
	}
	s.binding = nil
	s.correlator = nil
	s.pending = nil
	s.ledger = game.NewLedger()
	s.showAll = false
	s.resetGameLocked()
	s.notifyLocked()
	s.mu.Unlock()

	closeBinding(binding)
	s.logger.WithField("wallet", binding.Owner.Hex()).Info("会话已断开钱包")
}

// Toggle 切换号码选中状态；自动选号、结果展示中或有进行中的下注时忽略
func (s *Session) Toggle(n int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.autoPick || s.outcome != nil || s.pending != nil {
		return false
	}
	changed := s.selection.Toggle(n)
	if changed {
		s.notifyLocked()
	}
	return changed
}

// SetAutoPick 开启时立即随机填满选号
func (s *Session) SetAutoPick(on bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending != nil {
		return game.ErrPreviousPending
	}
	if s.outcome != nil {
		return game.ErrResultDisplayed
	}
	s.autoPick = on
	if on {
		s.selection.Replace(game.AutoPick(s.rng))
	}
	s.notifyLocked()
	return nil
}

// SetBetConfig 保存用户输入的单注金额与币种，金额在提交时校验
func (s *Session) SetBetConfig(amount string, currency game.Currency) error {
	if _, ok := game.ParseCurrency(currency.String()); !ok {
		return fmt.Errorf("unsupported currency %d", currency)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.amount = amount
	s.currency = currency
	s.notifyLocked()
	return nil
}

// Reset 清空选号、开奖结果与错误信息，保留钱包与历史
func (s *Session) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending != nil {
		return game.ErrPreviousPending
	}
	s.resetGameLocked()
	s.notifyLocked()
	return nil
}

func (s *Session) resetGameLocked() {
	s.selection.Clear()
	s.outcome = nil
	s.finalSelection = nil
	s.finalCurrency = s.currency
	s.errMsg = ""
	s.autoPick = false
}

func (s *Session) SetShowAll(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.showAll = on
	s.notifyLocked()
}

// Balances 钱包原生币余额、代币余额以及彩票合约的代币余额（奖池）
type Balances struct {
	Wallet       string          `json:"wallet"`
	Native       decimal.Decimal `json:"native"`
	Token        decimal.Decimal `json:"token"`
	LotteryToken decimal.Decimal `json:"lottery_token"`
}

func (s *Session) Balances(ctx context.Context) (*Balances, error) {
	s.mu.Lock()
	binding := s.binding
	s.mu.Unlock()
	if binding == nil {
		return nil, game.ErrWalletNotConnected
	}

	out := &Balances{Wallet: binding.Owner.Hex(), Token: decimal.Zero, LotteryToken: decimal.Zero}
	native, err := binding.Balances.NativeBalance(ctx, binding.Owner)
	if err != nil {
		return nil, fmt.Errorf("native balance: %w", err)
	}
	out.Native = game.FromBaseUnits(native)

	if binding.Token == nil {
		return out, nil
	}
	tok, err := binding.Token.BalanceOf(ctx, binding.Owner)
	if err != nil {
		return nil, fmt.Errorf("token balance: %w", err)
	}
	out.Token = game.FromBaseUnits(tok)
	if binding.Lottery != nil {
		pool, err := binding.Token.BalanceOf(ctx, binding.Lottery.Address())
		if err != nil {
			return nil, fmt.Errorf("lottery token balance: %w", err)
		}
		out.LotteryToken = game.FromBaseUnits(pool)
	}
	return out, nil
}

func closeBinding(b *interfaces.Binding) {
	if b != nil && b.Close != nil {
		b.Close()
	}
}
