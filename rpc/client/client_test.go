package client

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ValentinKolb/dTX/lib/account"
	"github.com/ValentinKolb/dTX/lib/lockmgr"
	"github.com/ValentinKolb/dTX/lib/store"
	"github.com/ValentinKolb/dTX/lib/store/mstore"
	"github.com/ValentinKolb/dTX/lib/txn"
	"github.com/ValentinKolb/dTX/rpc/common"
	"github.com/ValentinKolb/dTX/rpc/serializer"
	"github.com/ValentinKolb/dTX/rpc/server"
	"github.com/ValentinKolb/dTX/rpc/transport"
	httptransport "github.com/ValentinKolb/dTX/rpc/transport/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// loopbackTransport hands requests directly to a server handler
type loopbackTransport struct {
	handler   transport.ServerHandleFunc
	connected bool
	fail      error
}

func (l *loopbackTransport) Connect(config common.ClientConfig) error {
	l.connected = true
	return nil
}

func (l *loopbackTransport) Send(ctx context.Context, req []byte) ([]byte, error) {
	if l.fail != nil {
		return nil, l.fail
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return l.handler(req), nil
}

func (l *loopbackTransport) Close() error {
	l.connected = false
	return nil
}

func newRemote(t *testing.T, ser serializer.IRPCSerializer) (account.IAccountService, *loopbackTransport) {
	t.Helper()
	tm := txn.NewTransactionManager(mstore.NewMemoryStore(), lockmgr.NewLockManager(), nil)
	tr := &loopbackTransport{handler: server.NewRequestHandler(account.NewAccountService(tm), ser)}

	svc, err := NewRPCAccountService(common.ClientConfig{Endpoints: []string{"loopback"}}, tr, ser)
	require.NoError(t, err)
	require.True(t, tr.connected)
	return svc, tr
}

// --------------------------------------------------------------------------
// Tests
// --------------------------------------------------------------------------

func TestRemoteDemoScenario(t *testing.T) {
	for name, ser := range map[string]serializer.IRPCSerializer{
		"JSON":   serializer.NewJSONSerializer(),
		"GOB":    serializer.NewGOBSerializer(),
		"Binary": serializer.NewBinarySerializer(),
	} {
		t.Run(name, func(t *testing.T) {
			svc, _ := newRemote(t, ser)
			ctx := context.Background()

			require.NoError(t, svc.CreateAccount(ctx, "Bob", 1000))
			require.NoError(t, svc.CreateAccount(ctx, "Alice", 100))
			require.NoError(t, svc.CreateAccount(ctx, "Eve", 0))
			require.NoError(t, svc.CreateAccount(ctx, "Dave", 0))

			require.NoError(t, svc.TransferFundsWithBroker(ctx, "Bob", "Alice", "Eve", "Dave", 1000, 10))

			want := map[string]int64{"Bob": 0, "Alice": 100, "Eve": 990, "Dave": 10}
			for name, balance := range want {
				got, err := svc.GetBalance(ctx, name)
				require.NoError(t, err)
				assert.Equal(t, balance, got, name)
			}

			err := svc.TransferFundsWithBroker(ctx, "Bob", "Alice", "Eve", "Dave", 500, 10)
			assert.ErrorIs(t, err, store.ErrInsufficientFunds)

			got, err := svc.GetBalance(ctx, "Eve")
			require.NoError(t, err)
			assert.Equal(t, int64(990), got)
		})
	}
}

func TestRemoteErrorsKeepTheirCode(t *testing.T) {
	svc, _ := newRemote(t, serializer.NewBinarySerializer())
	ctx := context.Background()

	require.NoError(t, svc.CreateAccount(ctx, "Bob", 1))
	assert.ErrorIs(t, svc.CreateAccount(ctx, "Bob", 1), store.ErrAlreadyExists)

	_, err := svc.GetBalance(ctx, "nobody")
	assert.ErrorIs(t, err, store.ErrNotFound)

	assert.ErrorIs(t, svc.CreateAccount(ctx, "neg", -5), store.ErrInvalidState)
}

func TestTransportFailureIsInternalError(t *testing.T) {
	svc, tr := newRemote(t, serializer.NewJSONSerializer())
	tr.fail = errors.New("connection refused")

	_, err := svc.GetBalance(context.Background(), "Bob")
	assert.Equal(t, store.RetCInternalError, store.CodeOf(err))
}

func TestRemoteConcurrentTransfers(t *testing.T) {
	svc, _ := newRemote(t, serializer.NewBinarySerializer())
	ctx := context.Background()

	for _, name := range []string{"a", "b", "c", "d"} {
		require.NoError(t, svc.CreateAccount(ctx, name, 1000))
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			// alternate direction, both orders must complete
			if i%2 == 0 {
				assert.NoError(t, svc.TransferFundsWithBroker(ctx, "a", "b", "c", "d", 10, 1))
			} else {
				assert.NoError(t, svc.TransferFundsWithBroker(ctx, "c", "d", "a", "b", 10, 1))
			}
		}(i)
	}
	wg.Wait()

	var total int64
	for _, name := range []string{"a", "b", "c", "d"} {
		b, err := svc.GetBalance(ctx, name)
		require.NoError(t, err)
		total += b
	}
	assert.Equal(t, int64(4000), total)
}

func TestSlowTransferIsNotRepeated(t *testing.T) {
	ser := serializer.NewBinarySerializer()
	tm := txn.NewTransactionManager(mstore.NewMemoryStore(), lockmgr.NewLockManager(), nil)
	local := account.NewAccountService(tm)
	handler := server.NewRequestHandler(local, ser)

	// the first response arrives after the client gave up, the transfer is committed anyway
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		resp := handler(body)
		if calls.Add(1) == 1 {
			time.Sleep(1500 * time.Millisecond)
		}
		_, _ = w.Write(resp)
	}))
	defer ts.Close()

	svc, err := NewRPCAccountService(common.ClientConfig{
		Endpoints:     []string{ts.URL},
		TimeoutSecond: 1,
		RetryCount:    3,
	}, httptransport.NewHttpClientTransport(), ser)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, local.CreateAccount(ctx, "Bob", 1000))
	require.NoError(t, local.CreateAccount(ctx, "Alice", 100))
	require.NoError(t, local.CreateAccount(ctx, "Eve", 0))
	require.NoError(t, local.CreateAccount(ctx, "Dave", 0))

	err = svc.TransferFundsWithBroker(ctx, "Bob", "Alice", "Eve", "Dave", 100, 10)
	assert.Equal(t, store.RetCInternalError, store.CodeOf(err))

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())

	want := map[string]int64{"Bob": 900, "Alice": 100, "Eve": 90, "Dave": 10}
	for name, balance := range want {
		got, err := local.GetBalance(ctx, name)
		require.NoError(t, err)
		assert.Equal(t, balance, got, name)
	}
}
