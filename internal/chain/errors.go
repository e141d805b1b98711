package chain

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
)

// ErrorDecoder 基于彩票与代币合约 ABI 解码 revert 数据
type ErrorDecoder struct {
	abis []abi.ABI
}

// NewErrorDecoder 解析两份合约 ABI 中声明的自定义错误
func NewErrorDecoder() (*ErrorDecoder, error) {
	d := &ErrorDecoder{}
	for _, raw := range []string{LotteryABI, TokenABI} {
		parsed, err := abi.JSON(strings.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("parse abi: %w", err)
		}
		d.abis = append(d.abis, parsed)
	}
	return d, nil
}

// Decode 返回可读的失败原因：优先解析 revert 数据，其次识别常见节点错误，最后原样返回
func (d *ErrorDecoder) Decode(err error) string {
	if err == nil {
		return ""
	}
	var dataErr rpc.DataError
	if errors.As(err, &dataErr) {
		if data := revertData(dataErr.ErrorData()); len(data) >= 4 {
			return d.DecodeRevert(data)
		}
	}
	switch {
	case errors.Is(err, context.Canceled):
		return "request cancelled"
	case errors.Is(err, context.DeadlineExceeded):
		return "request timed out"
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "insufficient funds"):
		return "insufficient funds for stake and fee"
	case strings.Contains(msg, "nonce too low"), strings.Contains(msg, "replacement transaction underpriced"):
		return "conflicting pending transaction, retry"
	}
	return msg
}

// DecodeRevert 解码 revert 返回数据：Error(string)、Panic(uint256) 或 ABI 中的自定义错误
func (d *ErrorDecoder) DecodeRevert(data []byte) string {
	if reason, err := abi.UnpackRevert(data); err == nil {
		return reason
	}
	if len(data) < 4 {
		return fmt.Sprintf("execution reverted: 0x%x", data)
	}
	for _, parsed := range d.abis {
		for _, e := range parsed.Errors {
			if !bytes.Equal(e.ID[:4], data[:4]) {
				continue
			}
			values, err := e.Inputs.Unpack(data[4:])
			if err != nil {
				return e.Name
			}
			parts := make([]string, 0, len(values))
			for i, v := range values {
				parts = append(parts, fmt.Sprintf("%s=%v", e.Inputs[i].Name, v))
			}
			return fmt.Sprintf("%s(%s)", e.Name, strings.Join(parts, ", "))
		}
	}
	return fmt.Sprintf("execution reverted: unknown error 0x%x", data[:4])
}

func revertData(v interface{}) []byte {
	switch data := v.(type) {
	case string:
		b, err := hexutil.Decode(data)
		if err != nil {
			return nil
		}
		return b
	case []byte:
		return data
	default:
		return nil
	}
}
