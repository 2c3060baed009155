package arbitrage

import (
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/michaelpento.lv/arbbot/types"
)

func TestRunningStatistics(t *testing.T) {
	stats := NewRunningStatistics()

	snap := stats.Snapshot()
	assert.Nil(t, snap.BestSpread)
	assert.Nil(t, snap.LastOpportunity)

	assert.Equal(t, uint64(1), stats.RecordScan())
	assert.Equal(t, uint64(2), stats.RecordScan())

	stats.ObserveSpread(-0.5)
	stats.ObserveSpread(-1.2)
	best, ok := stats.BestSpread()
	require.True(t, ok)
	assert.Equal(t, -0.5, best)

	stats.ObserveSpread(0.3)
	best, _ = stats.BestSpread()
	assert.Equal(t, 0.3, best)

	at := time.Unix(1700000000, 0)
	stats.RecordOpportunity(at)
	stats.RecordNearMiss()
	stats.RecordExecution(types.ExecutionOutcome{Status: types.ExecutionSkipped})
	stats.RecordExecution(types.ExecutionOutcome{Status: types.ExecutionReverted, TxHash: common.HexToHash("0x01")})

	snap = stats.Snapshot()
	assert.Equal(t, uint64(2), snap.Scans)
	assert.Equal(t, uint64(1), snap.Opportunities)
	assert.Equal(t, uint64(1), snap.NearMisses)
	assert.Equal(t, uint64(1), snap.Executions)
	require.NotNil(t, snap.LastOpportunity)
	assert.True(t, snap.LastOpportunity.Equal(at))
	assert.Equal(t, "reverted", snap.LastStatus)
	assert.Equal(t, common.HexToHash("0x01").Hex(), snap.LastTxHash)
}
