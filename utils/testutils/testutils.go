package testutils

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
)

// CallHandler answers one contract method. args are the decoded call inputs; the returned
// values are ABI-packed as the method outputs.
type CallHandler func(to common.Address, args []interface{}) ([]interface{}, error)

// FakeCaller implements bind.ContractCaller by decoding calldata against one or more ABIs
// and dispatching to per-method handlers.
type FakeCaller struct {
	mu       sync.Mutex
	abis     []abi.ABI
	handlers map[string]CallHandler
	calls    map[string]int
}

// NewFakeCaller parses every ABI and returns a caller with no handlers
func NewFakeCaller(t *testing.T, abiJSON ...string) *FakeCaller {
	f := &FakeCaller{
		handlers: make(map[string]CallHandler),
		calls:    make(map[string]int),
	}
	for _, j := range abiJSON {
		parsed, err := abi.JSON(strings.NewReader(j))
		require.NoError(t, err)
		f.abis = append(f.abis, parsed)
	}
	return f
}

// Handle registers the handler for a method name
func (f *FakeCaller) Handle(method string, h CallHandler) *FakeCaller {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[method] = h
	return f
}

// Calls returns how many times method was invoked
func (f *FakeCaller) Calls(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

func (f *FakeCaller) CodeAt(ctx context.Context, contract common.Address, blockNumber *big.Int) ([]byte, error) {
	return []byte{0x60, 0x80}, nil
}

func (f *FakeCaller) CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	if len(call.Data) < 4 {
		return nil, errors.New("calldata too short")
	}
	method, err := f.method(call.Data[:4])
	if err != nil {
		return nil, err
	}
	args, err := method.Inputs.Unpack(call.Data[4:])
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	f.calls[method.Name]++
	h, ok := f.handlers[method.Name]
	f.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("execution reverted: no handler for %s", method.Name)
	}

	var to common.Address
	if call.To != nil {
		to = *call.To
	}
	outs, err := h(to, args)
	if err != nil {
		return nil, err
	}
	return method.Outputs.Pack(outs...)
}

func (f *FakeCaller) method(id []byte) (*abi.Method, error) {
	for _, a := range f.abis {
		if m, err := a.MethodById(id); err == nil {
			return m, nil
		}
	}
	return nil, fmt.Errorf("no method with id %x", id)
}

// CreateMockTransaction creates a signed legacy transaction for testing
func CreateMockTransaction(t *testing.T) *types.Transaction {
	privateKey, err := crypto.GenerateKey()
	require.NoError(t, err)

	signer := types.NewEIP155Signer(big.NewInt(137))

	tx := types.NewTransaction(
		0,
		common.HexToAddress("0x1234567890123456789012345678901234567890"),
		big.NewInt(0),
		800000,
		big.NewInt(30000000000),
		nil,
	)

	signedTx, err := types.SignTx(tx, signer, privateKey)
	require.NoError(t, err)

	return signedTx
}

// Units returns whole * 10^decimals
func Units(whole int64, decimals uint8) *big.Int {
	return new(big.Int).Mul(big.NewInt(whole), new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil))
}
