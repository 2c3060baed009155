package flashloan

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// NewTransactor builds transact options for a hex private key, with or without 0x prefix
func NewTransactor(privateKeyHex string, chainID *big.Int) (*bind.TransactOpts, common.Address, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(privateKeyHex), "0x"))
	if err != nil {
		return nil, common.Address{}, fmt.Errorf("invalid private key: %w", err)
	}

	auth, err := bind.NewKeyedTransactorWithChainID(key, chainID)
	if err != nil {
		return nil, common.Address{}, fmt.Errorf("failed to create transactor: %w", err)
	}

	return auth, crypto.PubkeyToAddress(key.PublicKey), nil
}

// PriceCommitment hashes the commitment seed sent with every execution
func PriceCommitment(seed string) [32]byte {
	return crypto.Keccak256Hash([]byte(seed))
}
