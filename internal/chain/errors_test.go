package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type revertErr struct {
	data interface{}
}

func (e *revertErr) Error() string          { return "execution reverted" }
func (e *revertErr) ErrorData() interface{} { return e.data }

func errorStringData(t *testing.T, reason string) []byte {
	t.Helper()
	strType, err := abi.NewType("string", "", nil)
	require.NoError(t, err)
	packed, err := abi.Arguments{{Type: strType}}.Pack(reason)
	require.NoError(t, err)
	return append(crypto.Keccak256([]byte("Error(string)"))[:4], packed...)
}

func TestDecodeRevertReason(t *testing.T) {
	d, err := NewErrorDecoder()
	require.NoError(t, err)

	data := errorStringData(t, "lottery paused")
	assert.Equal(t, "lottery paused", d.Decode(&revertErr{data: hexutil.Encode(data)}))
	assert.Equal(t, "lottery paused", d.Decode(fmt.Errorf("send tx: %w", &revertErr{data: data})))
}

func TestDecodeCustomError(t *testing.T) {
	d, err := NewErrorDecoder()
	require.NoError(t, err)

	parsed, err := abi.JSON(strings.NewReader(TokenABI))
	require.NoError(t, err)
	e := parsed.Errors["ERC20InsufficientAllowance"]
	spender := common.HexToAddress("0xe6b98F104c1BEf218F3893ADab4160Dc73Eb8367")
	args, err := e.Inputs.Pack(spender, big.NewInt(0), big.NewInt(5))
	require.NoError(t, err)
	data := append(append([]byte{}, e.ID[:4]...), args...)

	got := d.Decode(&revertErr{data: hexutil.Encode(data)})
	assert.True(t, strings.HasPrefix(got, "ERC20InsufficientAllowance("), got)
	assert.Contains(t, got, "needed=5")
}

func TestDecodeLotteryCustomErrorWithoutArgs(t *testing.T) {
	d, err := NewErrorDecoder()
	require.NoError(t, err)
	sel := crypto.Keccak256([]byte("InvalidSelection()"))[:4]
	assert.Equal(t, "InvalidSelection()", d.DecodeRevert(sel))
}

func TestDecodeUnknownSelector(t *testing.T) {
	d, err := NewErrorDecoder()
	require.NoError(t, err)
	got := d.DecodeRevert([]byte{0xde, 0xad, 0xbe, 0xef})
	assert.Contains(t, got, "0xdeadbeef")
}

func TestDecodePlainErrors(t *testing.T) {
	d, err := NewErrorDecoder()
	require.NoError(t, err)

	assert.Equal(t, "", d.Decode(nil))
	assert.Equal(t, "request cancelled", d.Decode(fmt.Errorf("wait: %w", context.Canceled)))
	assert.Equal(t, "insufficient funds for stake and fee", d.Decode(errors.New("insufficient funds for gas * price + value")))
	assert.Equal(t, "boom", d.Decode(errors.New("boom")))
	// 没有 revert 数据时按普通错误处理
	assert.Equal(t, "execution reverted", d.Decode(&revertErr{data: nil}))
}
