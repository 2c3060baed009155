package uniswap

const quoterV3ABIJson = `[{
	"inputs": [
		{"internalType": "address", "name": "tokenIn", "type": "address"},
		{"internalType": "address", "name": "tokenOut", "type": "address"},
		{"internalType": "uint24", "name": "fee", "type": "uint24"},
		{"internalType": "uint256", "name": "amountIn", "type": "uint256"},
		{"internalType": "uint160", "name": "sqrtPriceLimitX96", "type": "uint160"}
	],
	"name": "quoteExactInputSingle",
	"outputs": [{"internalType": "uint256", "name": "amountOut", "type": "uint256"}],
	"stateMutability": "view",
	"type": "function"
}]`

const routerV2ABIJson = `[{
	"inputs": [
		{"internalType": "uint256", "name": "amountIn", "type": "uint256"},
		{"internalType": "address[]", "name": "path", "type": "address[]"}
	],
	"name": "getAmountsOut",
	"outputs": [{"internalType": "uint256[]", "name": "amounts", "type": "uint256[]"}],
	"stateMutability": "view",
	"type": "function"
}]`

// QuoterV3ABI and RouterV2ABI are exported for callers building fakes
const (
	QuoterV3ABI = quoterV3ABIJson
	RouterV2ABI = routerV2ABIJson
)
