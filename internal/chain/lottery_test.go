package chain

import (
	"context"
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testOwner = common.HexToAddress("0x00000000000000000000000000000000000000aa")

func winningLog(t *testing.T, owner common.Address, selected, drawn, winning []uint8, reward *big.Int, currency uint8) types.Log {
	t.Helper()
	parsed, err := abi.JSON(strings.NewReader(LotteryABI))
	require.NoError(t, err)
	ev := parsed.Events[eventWinning]
	data, err := ev.Inputs.NonIndexed().Pack(selected, drawn, winning, reward, currency)
	require.NoError(t, err)
	return types.Log{
		Topics: []common.Hash{ev.ID, common.BytesToHash(owner.Bytes())},
		Data:   data,
		TxHash: common.HexToHash("0x01"),
	}
}

func TestEventSignature(t *testing.T) {
	parsed, err := abi.JSON(strings.NewReader(LotteryABI))
	require.NoError(t, err)
	want := crypto.Keccak256Hash([]byte("WinningNumbersGenerated(address,uint8[],uint8[],uint8[],uint256,uint8)"))
	assert.Equal(t, want, parsed.Events[eventWinning].ID)

	method := parsed.Methods[methodGenerate]
	assert.Equal(t, crypto.Keccak256([]byte("generateLotteryNumbers(uint8[],uint256,uint8)"))[:4], method.ID)
	assert.True(t, method.IsPayable())

	packed, err := parsed.Pack(methodGenerate, []uint8{3, 7, 19, 32}, big.NewInt(0), uint8(0))
	require.NoError(t, err)
	assert.Equal(t, method.ID, packed[:4])
}

func TestParseWinningNumbersGenerated(t *testing.T) {
	l, err := NewLottery(common.HexToAddress("0x01"), nil, nil)
	require.NoError(t, err)

	reward := new(big.Int).Mul(big.NewInt(2), big.NewInt(1e16))
	log := winningLog(t, testOwner, []uint8{3, 7, 19, 32}, []uint8{3, 7, 21, 30}, []uint8{3, 7, 21, 30}, reward, 1)

	ev, err := l.ParseWinningNumbersGenerated(log)
	require.NoError(t, err)
	assert.Equal(t, testOwner, ev.Owner)
	assert.Equal(t, []uint8{3, 7, 19, 32}, ev.SelectedNumbers)
	assert.Equal(t, []uint8{3, 7, 21, 30}, ev.DrawnNumbers)
	assert.Equal(t, []uint8{3, 7, 21, 30}, ev.WinningNumbers)
	assert.Equal(t, 0, ev.Reward.Cmp(reward))
	assert.Equal(t, uint8(1), ev.Currency)
	assert.Equal(t, log.TxHash, ev.Raw.TxHash)
}

func TestTransactWithoutSigner(t *testing.T) {
	l, err := NewLottery(common.HexToAddress("0x01"), nil, nil)
	require.NoError(t, err)
	_, err = l.GenerateLotteryNumbers(context.Background(), []uint8{1}, big.NewInt(0), 0, big.NewInt(1))
	assert.Error(t, err)
}

func TestParsePrivateKey(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	hexKey := "0x" + common.Bytes2Hex(crypto.FromECDSA(key))

	got, err := ParsePrivateKey(hexKey)
	require.NoError(t, err)
	assert.Equal(t, crypto.PubkeyToAddress(key.PublicKey), crypto.PubkeyToAddress(got.PublicKey))

	_, err = ParsePrivateKey("")
	assert.Error(t, err)
	_, err = ParsePrivateKey("zz")
	assert.Error(t, err)
}
