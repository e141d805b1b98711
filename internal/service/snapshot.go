package service

import (
	"QuenoClient/internal/game"

	"github.com/shopspring/decimal"
)

// TotalsView 单币种累计，Balance = Reward - Bet
type TotalsView struct {
	Bet     decimal.Decimal `json:"bet"`
	Reward  decimal.Decimal `json:"reward"`
	Balance decimal.Decimal `json:"balance"`
}

// Snapshot 会话的只读视图，供 HTTP 与 websocket 展示
type Snapshot struct {
	Wallet         string                `json:"wallet"`
	Connected      bool                  `json:"connected"`
	LotteryReady   bool                  `json:"lottery_ready"`
	TokenReady     bool                  `json:"token_ready"`
	Selection      []int                 `json:"selection"`
	AutoPick       bool                  `json:"auto_pick"`
	Amount         string                `json:"amount"`
	Currency       game.Currency         `json:"currency"`
	StakePreview   *decimal.Decimal      `json:"stake_preview,omitempty"`
	Pending        *game.PendingRequest  `json:"pending,omitempty"`
	Drawn          []int                 `json:"drawn"`
	FinalSelection []int                 `json:"final_selection"`
	FinalCurrency  game.Currency         `json:"final_currency"`
	Outcome        *game.Outcome         `json:"outcome,omitempty"`
	Result         string                `json:"result,omitempty"` // win / lose
	Error          string                `json:"error,omitempty"`
	Totals         map[string]TotalsView `json:"totals"`
	History        []game.HistoryEntry   `json:"history"`
	HistoryCount   int                   `json:"history_count"`
	HasMoreHistory bool                  `json:"has_more_history"`
	ShowAll        bool                  `json:"show_all"`
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{
		Selection:      s.selection.Values(),
		AutoPick:       s.autoPick,
		Amount:         s.amount,
		Currency:       s.currency,
		Drawn:          []int{},
		FinalSelection: append([]int{}, s.finalSelection...),
		FinalCurrency:  s.finalCurrency,
		Error:          s.errMsg,
		Totals:         make(map[string]TotalsView, len(game.Currencies)),
		History:        s.ledger.Visible(s.showAll),
		HistoryCount:   s.ledger.Len(),
		HasMoreHistory: s.ledger.Len() > game.HistoryPage,
		ShowAll:        s.showAll,
	}
	if b := s.binding; b != nil {
		snap.Wallet = b.Owner.Hex()
		snap.Connected = true
		snap.LotteryReady = b.Lottery != nil
		snap.TokenReady = b.Token != nil
	}
	if amount, err := game.ParseAmount(s.amount); err == nil {
		stake := amount.Mul(decimal.NewFromInt(int64(s.selection.Len())))
		snap.StakePreview = &stake
	}
	if s.pending != nil {
		p := *s.pending
		snap.Pending = &p
	}
	if s.outcome != nil {
		snap.Outcome = s.outcome
		snap.Drawn = append([]int{}, s.outcome.Drawn...)
		snap.Result = "lose"
		if s.outcome.Won() {
			snap.Result = "win"
		}
	}
	for c, t := range s.ledger.Aggregate() {
		snap.Totals[c.String()] = TotalsView{Bet: t.Bet, Reward: t.Reward, Balance: t.Balance()}
	}
	return snap
}

// Watch 订阅会话变化，通道只保留最新一份快照；返回的函数用于取消订阅
func (s *Session) Watch() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)
	s.mu.Lock()
	id := s.nextWatcher
	s.nextWatcher++
	s.watchers[id] = ch
	ch <- s.snapshotLocked()
	s.mu.Unlock()

	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.watchers[id]; ok {
			delete(s.watchers, id)
			close(ch)
		}
	}
}

func (s *Session) notifyLocked() {
	if len(s.watchers) == 0 {
		return
	}
	snap := s.snapshotLocked()
	for _, ch := range s.watchers {
		select {
		case <-ch:
		default:
		}
		ch <- snap
	}
}
