package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"time"

	"QuenoClient/internal/game"
	"QuenoClient/internal/interfaces"
	"QuenoClient/internal/listener"
	"QuenoClient/internal/model"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

const archiveTimeout = 5 * time.Second

// submission 一次下注在锁外执行所需的全部输入
type submission struct {
	epoch      uint64
	binding    *interfaces.Binding
	correlator *listener.OutcomeCorrelator
	pending    *game.PendingRequest
	request    *game.BetRequest
	logger     *logrus.Entry
}

// settled 已关联到开奖事件的下注
type settled struct {
	resolution *listener.Resolution
	betTx      string
}

// PlaceBet 校验 → 自动选号 → 标记进行中 → 注册监听 → (approve) → 下注 → 等待开奖。
// 同一会话同时只允许一笔下注，第二次提交同步返回 ErrPreviousPending。
// ctx 只约束下注交易发出之前的步骤；交易发出后只有断开钱包或 outcome_timeout 能结束等待。
func (s *Session) PlaceBet(ctx context.Context) (*game.Outcome, error) {
	waitCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	defer cancel()
	callCtx, stopCall := context.WithCancel(waitCtx)
	defer stopCall()
	defer context.AfterFunc(ctx, stopCall)()

	sub, err := s.begin(cancel)
	if err != nil {
		s.metrics.BetFailed("validate")
		return nil, err
	}
	defer s.finish(sub.epoch)

	sub.logger.Info("开始下注")
	res, err := s.submit(callCtx, waitCtx, sub)
	if err != nil {
		return nil, s.fail(sub, err)
	}
	return s.resolve(waitCtx, sub, res)
}

// begin 在锁内完成校验并标记进行中，之后的链上调用都在锁外
func (s *Session) begin(cancel context.CancelFunc) (*submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	in := game.BetInput{
		Pending:       s.pending != nil,
		SelectionSize: s.selection.Len(),
		Amount:        s.amount,
	}
	if s.autoPick {
		in.SelectionSize = game.MaxSelection
	}
	if b := s.binding; b != nil {
		in.WalletConnected = true
		in.LotteryReady = b.Lottery != nil && s.correlator != nil
		in.TokenReady = b.Token != nil
	}
	amount, err := game.ValidateBet(in)
	if err != nil {
		// 进行中的下注不受影响，只提示
		s.errMsg = err.Error()
		s.notifyLocked()
		return nil, err
	}

	if s.autoPick {
		s.selection.Replace(game.AutoPick(s.rng))
	}
	cfg := game.BetConfig{Amount: amount, Currency: s.currency}
	selection := s.selection.Values()
	req, err := game.BuildRequest(selection, cfg)
	if err != nil {
		s.errMsg = err.Error()
		s.notifyLocked()
		return nil, err
	}

	s.pending = game.NewPendingRequest(selection, cfg)
	s.errMsg = ""
	s.cancelWait = cancel
	s.notifyLocked()

	return &submission{
		epoch:      s.epoch,
		binding:    s.binding,
		correlator: s.correlator,
		pending:    s.pending,
		request:    req,
		logger: s.logger.WithFields(logrus.Fields{
			"bet_id":    s.pending.ID,
			"wallet":    s.binding.Owner.Hex(),
			"currency":  cfg.Currency.String(),
			"selection": selection,
		}),
	}, nil
}

// finish 清除进行中标记；钱包已断开（epoch 变化）时不再触碰会话
func (s *Session) finish(epoch uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch {
		return
	}
	s.pending = nil
	s.cancelWait = nil
	s.notifyLocked()
}

// submit 监听先于任何交易注册；监听在函数返回时释放。
// callCtx 用于交易发出前的调用，waitCtx 用于下注交易发出后的等待。
func (s *Session) submit(callCtx, waitCtx context.Context, sub *submission) (*settled, error) {
	corr, err := sub.correlator.Arm(waitCtx, sub.binding.Owner, sub.pending.Selection)
	if err != nil {
		return nil, &game.CorrelationError{Reason: "listener not armed", Err: err}
	}
	defer corr.Release()

	req := sub.request
	if req.NeedsApproval() && !s.allowanceCovers(callCtx, sub, req.ApproveAmount()) {
		tx, err := sub.binding.Token.Approve(callCtx, sub.binding.Lottery.Address(), req.ApproveAmount())
		if err != nil {
			corr.Fail(err)
			return nil, s.submissionError(sub, game.StageApprove, err)
		}
		sub.logger.WithField("tx_hash", tx.Hash().Hex()).Info("授权交易已发送")
		if _, err := s.waitSuccess(callCtx, sub, tx, game.StageApprove); err != nil {
			corr.Fail(err)
			return nil, err
		}
	}

	tx, err := sub.binding.Lottery.GenerateLotteryNumbers(callCtx, req.Selection, req.TokenAmount, uint8(req.Currency), req.Value)
	if err != nil {
		corr.Fail(err)
		return nil, s.submissionError(sub, game.StageBet, err)
	}
	s.metrics.BetSubmitted(req.Currency)
	sub.logger.WithFields(logrus.Fields{
		"tx_hash": tx.Hash().Hex(),
		"value":   req.ValueEth.String(),
	}).Info("下注交易已发送，等待打包")

	receipt, err := s.waitSuccess(waitCtx, sub, tx, game.StageReceipt)
	if err != nil {
		corr.Fail(err)
		return nil, err
	}
	minedAt := time.Now()

	// 早于本次下注所在区块的事件属于之前被放弃的下注
	var since uint64
	if receipt.BlockNumber != nil {
		since = receipt.BlockNumber.Uint64()
	}
	sub.logger.WithField("block", since).Info("下注已确认，等待开奖事件")
	res, err := corr.Wait(waitCtx, since)
	if err != nil {
		return nil, err
	}
	s.metrics.BetResolved(req.Currency, time.Since(minedAt))
	return &settled{resolution: res, betTx: tx.Hash().Hex()}, nil
}

// allowanceCovers 已有授权足够时跳过 approve；查询失败按不足处理
func (s *Session) allowanceCovers(ctx context.Context, sub *submission, amount *big.Int) bool {
	allowance, err := sub.binding.Token.Allowance(ctx, sub.binding.Owner, sub.binding.Lottery.Address())
	if err != nil {
		sub.logger.WithError(err).Warn("读取授权额度失败，重新授权")
		return false
	}
	if allowance.Cmp(amount) < 0 {
		return false
	}
	sub.logger.WithField("allowance", allowance.String()).Info("授权额度已足够，跳过 approve")
	return true
}

// waitSuccess 等待交易打包且回执状态为成功
func (s *Session) waitSuccess(ctx context.Context, sub *submission, tx *types.Transaction, stage game.Stage) (*types.Receipt, error) {
	receipt, err := sub.binding.Waiter.WaitMined(ctx, tx)
	if err != nil {
		return nil, s.submissionError(sub, stage, err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, &game.SubmissionError{
			Stage:  stage,
			Reason: "transaction reverted",
			Err:    fmt.Errorf("tx %s status %d", tx.Hash().Hex(), receipt.Status),
		}
	}
	return receipt, nil
}

func (s *Session) submissionError(sub *submission, stage game.Stage, err error) error {
	reason := err.Error()
	if sub.binding.Decoder != nil {
		reason = sub.binding.Decoder.Decode(err)
	}
	return &game.SubmissionError{Stage: stage, Reason: reason, Err: err}
}

// fail 记录可读的失败原因；选号与上一次开奖结果保持不变
func (s *Session) fail(sub *submission, err error) error {
	stage := "outcome"
	var subErr *game.SubmissionError
	if errors.As(err, &subErr) {
		stage = string(subErr.Stage)
	}
	s.metrics.BetFailed(stage)
	sub.logger.WithError(err).WithField("stage", stage).Warn("下注失败")

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != sub.epoch {
		return err
	}
	if subErr != nil {
		s.errMsg = subErr.Reason
	} else {
		s.errMsg = err.Error()
	}
	s.notifyLocked()
	return err
}

// resolve 展示开奖结果、写入历史并尽力归档
func (s *Session) resolve(ctx context.Context, sub *submission, res *settled) (*game.Outcome, error) {
	outcome := res.resolution.Outcome
	entry := game.HistoryEntry{
		ID:         sub.pending.ID,
		Selection:  outcome.Selection,
		Drawn:      outcome.Drawn,
		Amount:     sub.request.TotalStake,
		Currency:   sub.pending.Config.Currency,
		Reward:     outcome.Reward,
		TxHash:     res.betTx,
		ResolvedAt: time.Now(),
	}

	s.mu.Lock()
	if s.epoch != sub.epoch {
		s.mu.Unlock()
		sub.logger.Warn("钱包已断开，丢弃迟到的开奖结果")
		return nil, &game.CorrelationError{Reason: "wallet disconnected"}
	}
	s.outcome = outcome
	s.finalSelection = append([]int(nil), outcome.Selection...)
	s.finalCurrency = outcome.Currency
	s.errMsg = ""
	s.ledger.Append(entry)
	s.notifyLocked()
	s.mu.Unlock()

	sub.logger.WithFields(logrus.Fields{
		"drawn":   outcome.Drawn,
		"matches": outcome.Matches,
		"reward":  outcome.Reward.String(),
	}).Info("开奖完成")

	s.archive(ctx, sub, entry, res)
	return outcome, nil
}

// archive 写入 bet_records，失败只记日志
func (s *Session) archive(ctx context.Context, sub *submission, entry game.HistoryEntry, res *settled) {
	if s.bets == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), archiveTimeout)
	defer cancel()

	record, err := newBetRecord(sub, entry, res)
	if err == nil {
		err = s.bets.CreateBetRecord(ctx, record)
	}
	if err != nil {
		sub.logger.WithError(err).Warn("下注归档失败")
	}
}

func newBetRecord(sub *submission, entry game.HistoryEntry, res *settled) (*model.BetRecord, error) {
	outcome := res.resolution.Outcome
	selection, err := jsonNumbers(entry.Selection)
	if err != nil {
		return nil, err
	}
	drawn, err := jsonNumbers(entry.Drawn)
	if err != nil {
		return nil, err
	}
	winning, err := jsonNumbers(outcome.Winning)
	if err != nil {
		return nil, err
	}
	block := int64(res.resolution.BlockNumber)
	return &model.BetRecord{
		BetID:         entry.ID,
		UserWallet:    sub.binding.Owner.Hex(),
		Selection:     selection,
		Drawn:         drawn,
		Winning:       winning,
		Matches:       len(outcome.Matches),
		Amount:        entry.Amount,
		Currency:      entry.Currency.String(),
		Reward:        entry.Reward,
		BetTxHash:     res.betTx,
		OutcomeTxHash: res.resolution.TxHash,
		OutcomeBlock:  &block,
		SubmittedAt:   sub.pending.SubmittedAt,
		ResolvedAt:    entry.ResolvedAt,
	}, nil
}

func jsonNumbers(nums []int) (datatypes.JSON, error) {
	if nums == nil {
		nums = []int{}
	}
	b, err := json.Marshal(nums)
	if err != nil {
		return nil, fmt.Errorf("marshal numbers: %w", err)
	}
	return datatypes.JSON(b), nil
}
