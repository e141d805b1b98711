package chain

import (
	"context"
	"crypto/ecdsa"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"QuenoClient/internal/config"
	"QuenoClient/internal/interfaces"
	"QuenoClient/internal/utils/httpclient"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/sirupsen/logrus"
)

var (
	_ interfaces.LotteryContract = (*Lottery)(nil)
	_ interfaces.TokenContract   = (*Token)(nil)
	_ interfaces.TxWaiter        = (*Node)(nil)
	_ interfaces.BalanceReader   = (*Node)(nil)
	_ interfaces.ErrorDecoder    = (*ErrorDecoder)(nil)
)

// Dial 连接 RPC：http(s) 走带代理/超时的 HTTP 客户端，ws/ipc 直接拨号（事件订阅需要 ws）
func Dial(ctx context.Context, cfg *config.ChainConfig, logger *logrus.Logger) (*ethclient.Client, error) {
	if cfg.RPCURL == "" {
		return nil, fmt.Errorf("rpc_url 必填")
	}
	var (
		rc  *rpc.Client
		err error
	)
	if strings.HasPrefix(cfg.RPCURL, "http://") || strings.HasPrefix(cfg.RPCURL, "https://") {
		rc, err = rpc.DialOptions(ctx, cfg.RPCURL, rpc.WithHTTPClient(httpclient.NewHTTPClient(cfg, logger)))
	} else {
		rc, err = rpc.DialContext(ctx, cfg.RPCURL)
	}
	if err != nil {
		return nil, fmt.Errorf("dial rpc: %w", err)
	}
	return ethclient.NewClient(rc), nil
}

// ParsePrivateKey 解析 hex 私钥（可带 0x 前缀）
func ParsePrivateKey(keyHex string) (*ecdsa.PrivateKey, error) {
	keyHex = strings.TrimPrefix(strings.TrimSpace(keyHex), "0x")
	if keyHex == "" {
		return nil, fmt.Errorf("private_key 必填")
	}
	keyBuf, err := hex.DecodeString(keyHex)
	if err != nil {
		return nil, fmt.Errorf("decode wallet key: %w", err)
	}
	key, err := crypto.ToECDSA(keyBuf)
	if err != nil {
		return nil, fmt.Errorf("to ecdsa: %w", err)
	}
	return key, nil
}

// Node 对 ethclient 的薄封装：等待打包、查询原生币余额
type Node struct {
	client *ethclient.Client
}

func NewNode(client *ethclient.Client) *Node { return &Node{client: client} }

// WaitMined 阻塞直到交易被打包，返回回执（不判断 status）
func (n *Node) WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	receipt, err := bind.WaitMined(ctx, n.client, tx)
	if err != nil {
		return nil, fmt.Errorf("wait mined %s: %w", tx.Hash().Hex(), err)
	}
	return receipt, nil
}

func (n *Node) NativeBalance(ctx context.Context, owner common.Address) (*big.Int, error) {
	return n.client.BalanceAt(ctx, owner, nil)
}

// Connector 用配置中的私钥作为钱包，连接节点并绑定彩票/代币合约
type Connector struct {
	cfg    *config.ChainConfig
	logger *logrus.Logger
}

// NewConnector 创建钱包连接器
func NewConnector(cfg *config.ChainConfig, logger *logrus.Logger) *Connector {
	return &Connector{cfg: cfg, logger: logger}
}

// Connect 拨号、构造签名器，并逐个检查合约是否已部署；未就绪的合约在 Binding 中为 nil
func (c *Connector) Connect(ctx context.Context) (*interfaces.Binding, error) {
	key, err := ParsePrivateKey(c.cfg.PrivateKey)
	if err != nil {
		return nil, err
	}
	client, err := Dial(ctx, c.cfg, c.logger)
	if err != nil {
		return nil, err
	}

	chainID := big.NewInt(c.cfg.ChainID)
	if c.cfg.ChainID == 0 {
		chainID, err = client.ChainID(ctx)
		if err != nil {
			client.Close()
			return nil, fmt.Errorf("chain id: %w", err)
		}
	}
	auth, err := bind.NewKeyedTransactorWithChainID(key, chainID)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("keyed transactor: %w", err)
	}
	auth.GasLimit = c.cfg.GasLimit

	decoder, err := NewErrorDecoder()
	if err != nil {
		client.Close()
		return nil, err
	}

	node := NewNode(client)
	binding := &interfaces.Binding{
		Owner:    auth.From,
		Waiter:   node,
		Balances: node,
		Decoder:  decoder,
		Close:    client.Close,
	}

	if addr, ok := c.deployed(ctx, client, "lottery", c.cfg.LotteryAddress); ok {
		lottery, err := NewLottery(addr, client, auth)
		if err != nil {
			client.Close()
			return nil, err
		}
		binding.Lottery = lottery
	}
	if addr, ok := c.deployed(ctx, client, "token", c.cfg.TokenAddress); ok {
		token, err := NewToken(addr, client, auth)
		if err != nil {
			client.Close()
			return nil, err
		}
		binding.Token = token
	}

	c.logger.WithFields(logrus.Fields{
		"wallet":        auth.From.Hex(),
		"chain_id":      chainID.String(),
		"lottery_ready": binding.Lottery != nil,
		"token_ready":   binding.Token != nil,
	}).Info("钱包已连接")
	return binding, nil
}

// deployed 地址合法且链上有代码才视为合约就绪
func (c *Connector) deployed(ctx context.Context, client *ethclient.Client, name, hexAddr string) (common.Address, bool) {
	if !common.IsHexAddress(hexAddr) {
		c.logger.WithField("contract", name).Warn("合约地址未配置或非法")
		return common.Address{}, false
	}
	addr := common.HexToAddress(hexAddr)
	code, err := client.CodeAt(ctx, addr, nil)
	if err != nil {
		c.logger.WithError(err).WithField("contract", name).Warn("读取合约代码失败")
		return addr, false
	}
	if len(code) == 0 {
		c.logger.WithField("contract", name).WithField("address", addr.Hex()).Warn("地址上没有合约代码")
		return addr, false
	}
	return addr, true
}
