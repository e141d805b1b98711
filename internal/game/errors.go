package game

import "fmt"

// ValidationError 本地预检失败，不触达网络
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

var (
	ErrPreviousPending     = &ValidationError{Reason: "wait for previous result"}
	ErrWalletNotConnected  = &ValidationError{Reason: "connect wallet"}
	ErrLotteryNotConnected = &ValidationError{Reason: "lottery contract not connected"}
	ErrTokenNotConnected   = &ValidationError{Reason: "token contract not connected"}
	ErrNoSelection         = &ValidationError{Reason: "no number selected"}
	ErrAmountOutOfRange    = &ValidationError{Reason: "amount out of range"}
	ErrResultDisplayed     = &ValidationError{Reason: "clear the previous result first"}
)

// Stage 提交失败所处的阶段
type Stage string

const (
	StageApprove Stage = "approve"
	StageBet     Stage = "bet"
	StageReceipt Stage = "receipt"
)

// SubmissionError 授权或下注交易被节点/合约拒绝，Reason 为解码后的可读原因
type SubmissionError struct {
	Stage  Stage
	Reason string
	Err    error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("%s failed: %s", e.Stage, e.Reason)
}

func (e *SubmissionError) Unwrap() error { return e.Err }

// CorrelationError 交易已上链但没有等到对应的开奖事件
type CorrelationError struct {
	Reason string
	Err    error
}

func (e *CorrelationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("outcome unresolved: %s: %v", e.Reason, e.Err)
	}
	return "outcome unresolved: " + e.Reason
}

func (e *CorrelationError) Unwrap() error { return e.Err }
