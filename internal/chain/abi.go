package chain

// LotteryABI 彩票合约最小 ABI：下注方法与开奖事件
const LotteryABI = `[
	{"name":"generateLotteryNumbers","type":"function","stateMutability":"payable","inputs":[
		{"name":"selectedNumbers","type":"uint8[]"},
		{"name":"tokenAmount","type":"uint256"},
		{"name":"currency","type":"uint8"}
	],"outputs":[]},
	{"name":"WinningNumbersGenerated","type":"event","anonymous":false,"inputs":[
		{"name":"owner","type":"address","indexed":true},
		{"name":"selectedNumbers","type":"uint8[]","indexed":false},
		{"name":"drawnNumbers","type":"uint8[]","indexed":false},
		{"name":"winningNumbers","type":"uint8[]","indexed":false},
		{"name":"reward","type":"uint256","indexed":false},
		{"name":"currency","type":"uint8","indexed":false}
	]},
	{"name":"InvalidSelection","type":"error","inputs":[]},
	{"name":"InsufficientQRNFee","type":"error","inputs":[
		{"name":"sent","type":"uint256"},
		{"name":"required","type":"uint256"}
	]},
	{"name":"InsufficientPrizePool","type":"error","inputs":[
		{"name":"available","type":"uint256"},
		{"name":"required","type":"uint256"}
	]}
]`

// TokenABI ERC20 最小 ABI，含 OpenZeppelin v5 自定义错误
const TokenABI = `[
	{"name":"balanceOf","type":"function","stateMutability":"view","inputs":[{"name":"account","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
	{"name":"allowance","type":"function","stateMutability":"view","inputs":[{"name":"owner","type":"address"},{"name":"spender","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
	{"name":"approve","type":"function","stateMutability":"nonpayable","inputs":[{"name":"spender","type":"address"},{"name":"value","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
	{"name":"ERC20InsufficientBalance","type":"error","inputs":[
		{"name":"sender","type":"address"},
		{"name":"balance","type":"uint256"},
		{"name":"needed","type":"uint256"}
	]},
	{"name":"ERC20InsufficientAllowance","type":"error","inputs":[
		{"name":"spender","type":"address"},
		{"name":"allowance","type":"uint256"},
		{"name":"needed","type":"uint256"}
	]},
	{"name":"ERC20InvalidSpender","type":"error","inputs":[{"name":"spender","type":"address"}]}
]`

const (
	methodGenerate  = "generateLotteryNumbers"
	eventWinning    = "WinningNumbersGenerated"
	methodApprove   = "approve"
	methodBalanceOf = "balanceOf"
	methodAllowance = "allowance"
)
