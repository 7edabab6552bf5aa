package account

import (
	"bytes"
	"context"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/ValentinKolb/dTX/lib/account"
	"github.com/ValentinKolb/dTX/lib/lockmgr"
	"github.com/ValentinKolb/dTX/lib/store/mstore"
	"github.com/ValentinKolb/dTX/lib/txn"
	gometrics "github.com/rcrowley/go-metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLocalService() account.IAccountService {
	return account.NewAccountService(txn.NewTransactionManager(mstore.NewMemoryStore(), lockmgr.NewLockManager(), nil))
}

func TestPerfTransfersConserveMoney(t *testing.T) {
	svc := newLocalService()
	ctx := context.Background()

	names, err := createPerfAccounts(ctx, svc, 8)
	require.NoError(t, err)
	for _, n := range names {
		assert.True(t, strings.HasPrefix(n, perfAccountPrefix+"-"))
	}

	perfNumThreads, perfDuration, perfSkip = 4, 200*time.Millisecond, nil

	r := runBenchmark(ctx, gometrics.NewRegistry(), "transfer", func(ctx context.Context, rnd *rand.Rand) error {
		return randomTransfer(ctx, svc, names, rnd)
	})
	require.False(t, r.skipped)
	assert.Greater(t, r.ops.Count(), int64(0))
	assert.Equal(t, int64(0), r.errors.Count())

	var total int64
	for _, n := range names {
		b, err := svc.GetBalance(ctx, n)
		require.NoError(t, err)
		total += b
	}
	assert.Equal(t, perfInitialBalance*int64(len(names)), total)

	var out bytes.Buffer
	printResult(&out, r)
	assert.Contains(t, out.String(), "transfer")
	assert.Contains(t, out.String(), "ops/sec")
}

func TestPerfSkip(t *testing.T) {
	perfSkip = []string{"balance"}
	defer func() { perfSkip = nil }()

	r := runBenchmark(context.Background(), gometrics.NewRegistry(), "balance", func(context.Context, *rand.Rand) error {
		t.Fatal("skipped benchmark must not run")
		return nil
	})
	assert.True(t, r.skipped)

	var out bytes.Buffer
	printResult(&out, r)
	assert.Contains(t, out.String(), "skipped")
}
