package aave

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/michaelpento.lv/arbbot/utils/testutils"
)

var pool = common.HexToAddress("0x794a61358D6845594F94dc1DB02A252b5b4814aD")

func TestFeeBps(t *testing.T) {
	tests := []struct {
		name    string
		premium *big.Int
		err     error
		want    uint64
	}{
		{name: "pool premium", premium: big.NewInt(5), want: 5},
		{name: "zero premium", premium: big.NewInt(0), want: 0},
		{name: "call fails", err: errors.New("execution reverted"), want: 9},
		{name: "absurd premium", premium: big.NewInt(10000), want: 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			caller := testutils.NewFakeCaller(t, PoolABI).
				Handle("FLASHLOAN_PREMIUM_TOTAL", func(to common.Address, _ []interface{}) ([]interface{}, error) {
					assert.Equal(t, pool, to)
					if tt.err != nil {
						return nil, tt.err
					}
					return []interface{}{tt.premium}, nil
				})

			provider, err := NewProvider(pool, caller, 9, zaptest.NewLogger(t))
			require.NoError(t, err)
			assert.Equal(t, tt.want, provider.FeeBps(context.Background()))
		})
	}
}

func TestNewProviderValidation(t *testing.T) {
	_, err := NewProvider(pool, nil, 9, zaptest.NewLogger(t))
	assert.Error(t, err)

	_, err = NewProvider(pool, testutils.NewFakeCaller(t, PoolABI), 9, nil)
	assert.Error(t, err)
}
