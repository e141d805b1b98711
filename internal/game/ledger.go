package game

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// Outcome 链上开奖结果，以事件字段为准
type Outcome struct {
	Selection []int           `json:"selection"`
	Drawn     []int           `json:"drawn"`
	Winning   []int           `json:"winning"`
	Matches   []int           `json:"matches"`
	Reward    decimal.Decimal `json:"reward"`
	Currency  Currency        `json:"currency"`
}

// NewOutcome 计算命中号码（selection ∩ drawn，保持 selection 顺序）
func NewOutcome(selection, drawn, winning []int, reward decimal.Decimal, currency Currency) *Outcome {
	matches := make([]int, 0, len(selection))
	for _, n := range selection {
		if slices.Contains(drawn, n) {
			matches = append(matches, n)
		}
	}
	return &Outcome{
		Selection: slices.Clone(selection),
		Drawn:     slices.Clone(drawn),
		Winning:   slices.Clone(winning),
		Matches:   matches,
		Reward:    reward,
		Currency:  currency,
	}
}

func (o *Outcome) Won() bool { return o.Reward.IsPositive() }

// HistoryEntry 已完成下注的快照
type HistoryEntry struct {
	ID         string          `json:"id"`
	Selection  []int           `json:"selection"`
	Drawn      []int           `json:"drawn"`
	Amount     decimal.Decimal `json:"amount"`
	Currency   Currency        `json:"currency"`
	Reward     decimal.Decimal `json:"reward"`
	TxHash     string          `json:"tx_hash,omitempty"`
	ResolvedAt time.Time       `json:"resolved_at"`
}

// Totals 单币种累计
type Totals struct {
	Bet    decimal.Decimal `json:"bet"`
	Reward decimal.Decimal `json:"reward"`
}

// Balance 累计奖励 - 累计下注
func (t Totals) Balance() decimal.Decimal { return t.Reward.Sub(t.Bet) }

// Ledger 内存中的下注历史，最新在前，只追加
type Ledger struct {
	// 按追加顺序存放，读取时倒序，避免每次头插拷贝
	entries []HistoryEntry
}

func NewLedger() *Ledger { return &Ledger{} }

func (l *Ledger) Append(e HistoryEntry) {
	l.entries = append(l.entries, e)
}

func (l *Ledger) Len() int { return len(l.entries) }

// Entries 全部记录，最新在前
func (l *Ledger) Entries() []HistoryEntry {
	out := make([]HistoryEntry, len(l.entries))
	for i, e := range l.entries {
		out[len(l.entries)-1-i] = e
	}
	return out
}

// Visible showAll 为 false 时只返回最近 HistoryPage 条
func (l *Ledger) Visible(showAll bool) []HistoryEntry {
	all := l.Entries()
	if showAll || len(all) <= HistoryPage {
		return all
	}
	return all[:HistoryPage]
}

// Aggregate 每次都从完整历史折叠计算，没有用过的币种为零
func (l *Ledger) Aggregate() map[Currency]Totals {
	out := make(map[Currency]Totals, len(Currencies))
	for _, c := range Currencies {
		out[c] = Totals{Bet: decimal.Zero, Reward: decimal.Zero}
	}
	for _, e := range l.entries {
		t := out[e.Currency]
		t.Bet = t.Bet.Add(e.Amount)
		t.Reward = t.Reward.Add(e.Reward)
		out[e.Currency] = t
	}
	return out
}
