package chain

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Token ERC20 代币绑定
type Token struct {
	address  common.Address
	contract *bind.BoundContract
	auth     *bind.TransactOpts
}

// NewToken 绑定代币合约
func NewToken(address common.Address, backend bind.ContractBackend, auth *bind.TransactOpts) (*Token, error) {
	parsed, err := abi.JSON(strings.NewReader(TokenABI))
	if err != nil {
		return nil, fmt.Errorf("parse token abi: %w", err)
	}
	return &Token{
		address:  address,
		contract: bind.NewBoundContract(address, parsed, backend, backend, backend),
		auth:     auth,
	}, nil
}

func (t *Token) Address() common.Address { return t.address }

// Approve 授权 spender 使用 amount 个代币
func (t *Token) Approve(ctx context.Context, spender common.Address, amount *big.Int) (*types.Transaction, error) {
	opts, err := transactOpts(ctx, t.auth, nil)
	if err != nil {
		return nil, err
	}
	return t.contract.Transact(opts, methodApprove, spender, amount)
}

// BalanceOf 读取代币余额
func (t *Token) BalanceOf(ctx context.Context, owner common.Address) (*big.Int, error) {
	return t.callUint(ctx, methodBalanceOf, owner)
}

// Allowance 读取 owner 给 spender 的授权额度
func (t *Token) Allowance(ctx context.Context, owner, spender common.Address) (*big.Int, error) {
	return t.callUint(ctx, methodAllowance, owner, spender)
}

func (t *Token) callUint(ctx context.Context, method string, params ...interface{}) (*big.Int, error) {
	var out []interface{}
	if err := t.contract.Call(&bind.CallOpts{Context: ctx}, &out, method, params...); err != nil {
		return nil, fmt.Errorf("call %s: %w", method, err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("call %s: empty result", method)
	}
	v, ok := out[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("call %s: unexpected result %T", method, out[0])
	}
	return v, nil
}
