// Package metrics 下注流程的 Prometheus 指标
package metrics

import (
	"time"

	"QuenoClient/internal/game"

	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	submitted   *prometheus.CounterVec
	resolved    *prometheus.CounterVec
	failed      *prometheus.CounterVec
	outcomeWait prometheus.Histogram
}

// New 创建并注册指标；reg 为 nil 时只创建不注册
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		submitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "queno_bets_submitted_total",
			Help: "已提交上链的下注数",
		}, []string{"currency"}),
		resolved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "queno_bets_resolved_total",
			Help: "收到开奖事件的下注数",
		}, []string{"currency"}),
		failed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "queno_bets_failed_total",
			Help: "按阶段统计的失败下注",
		}, []string{"stage"}),
		outcomeWait: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "queno_outcome_wait_seconds",
			Help:    "从下注确认到收到开奖事件的耗时",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		}),
	}
	if reg != nil {
		reg.MustRegister(m.submitted, m.resolved, m.failed, m.outcomeWait)
	}
	return m
}

func (m *Metrics) BetSubmitted(c game.Currency) {
	if m == nil {
		return
	}
	m.submitted.WithLabelValues(c.String()).Inc()
}

func (m *Metrics) BetResolved(c game.Currency, wait time.Duration) {
	if m == nil {
		return
	}
	m.resolved.WithLabelValues(c.String()).Inc()
	m.outcomeWait.Observe(wait.Seconds())
}

// BetFailed stage 取值 validate / approve / bet / receipt / outcome
func (m *Metrics) BetFailed(stage string) {
	if m == nil {
		return
	}
	m.failed.WithLabelValues(stage).Inc()
}
