package txn

import (
	"context"
	"github.com/ValentinKolb/dTX/lib/lockmgr"
	"github.com/ValentinKolb/dTX/lib/store"
	"github.com/VictoriaMetrics/metrics"
	"github.com/google/uuid"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/tidwall/btree"
	"time"
)

var Logger = logger.GetLogger("txn")

var (
	txBegun          = metrics.NewCounter("dtx_tx_begun_total")
	txCommitted      = metrics.NewCounter("dtx_tx_committed_total")
	txRolledBack     = metrics.NewCounter("dtx_tx_rolled_back_total")
	txCommitDuration = metrics.NewHistogram("dtx_tx_commit_duration_seconds")
)

const (
	defaultLockTimeout = 5 * time.Second
)

// Config configures the transaction manager.
type Config struct {
	// LockTimeout bounds every lock wait of a transaction whose context has no deadline.
	// 0 means lock waits are unbounded.
	LockTimeout time.Duration
}

// DefaultConfig returns the default transaction manager configuration.
func DefaultConfig() *Config {
	return &Config{
		LockTimeout: defaultLockTimeout,
	}
}

// Manager opens, commits and rolls back transactions against a key store.
// It is the only component that mutates the store.
type Manager struct {
	store  store.IKeyStore
	locks  lockmgr.ILockManager
	config Config
	active *xsync.MapOf[string, *Tx]
}

// NewTransactionManager creates a transaction manager for the given store and lock manager (config is optional).
// All transactions on the store must go through the same manager and lock manager.
func NewTransactionManager(s store.IKeyStore, locks lockmgr.ILockManager, config *Config) *Manager {
	if config == nil {
		config = DefaultConfig()
	}
	return &Manager{
		store:  s,
		locks:  locks,
		config: *config,
		active: xsync.NewMapOf[string, *Tx](),
	}
}

// --------------------------------------------------------------------------
// Transaction lifecycle
// --------------------------------------------------------------------------

// Begin allocates a new transaction in Active state with an empty working set and no locks.
func (m *Manager) Begin() *Tx {
	return m.begin(false)
}

// BeginReadOnly allocates a transaction that rejects writes.
func (m *Manager) BeginReadOnly() *Tx {
	return m.begin(true)
}

func (m *Manager) begin(readOnly bool) *Tx {
	tx := &Tx{
		id:       uuid.NewString(),
		mgr:      m,
		readOnly: readOnly,
		state:    StateActive,
		ws:       new(btree.Map[string, *entry]),
		finished: make(chan struct{}),
	}
	m.active.Store(tx.id, tx)
	txBegun.Inc()
	Logger.Debugf("tx %s begun (read only: %t)", tx.id, readOnly)
	return tx
}

// Get returns the active transaction with the given id.
// Ids of committed or rolled back transactions are invalid and not found.
func (m *Manager) Get(id string) (*Tx, bool) {
	return m.active.Load(id)
}

// Rollback rolls back the active transaction with the given id.
// Unknown (including already finished) ids are ignored.
func (m *Manager) Rollback(id string) error {
	tx, ok := m.active.Load(id)
	if !ok {
		return nil
	}
	return tx.Rollback()
}

// Active returns the number of open transactions.
func (m *Manager) Active() int {
	return m.active.Size()
}

// LockTimeout returns the lock wait bound applied to contexts without a deadline (0 = unbounded).
func (m *Manager) LockTimeout() time.Duration {
	return m.config.LockTimeout
}

// Store returns the key store the manager works on.
// It must not be mutated directly.
func (m *Manager) Store() store.IKeyStore {
	return m.store
}

// --------------------------------------------------------------------------
// Scoped transactions
// --------------------------------------------------------------------------

// Update runs fn inside a new transaction that holds the locks of keys before fn is called.
// The transaction commits if fn returns nil. It is rolled back on every other exit path,
// including errors and panics, so no partial state escapes a failed fn.
func (m *Manager) Update(ctx context.Context, keys []string, fn func(tx *Tx) error) error {
	return m.run(ctx, m.Begin(), keys, fn)
}

// View is like Update but the transaction is read only.
// It still commits (trivially) to release its locks as soon as fn returns.
func (m *Manager) View(ctx context.Context, keys []string, fn func(tx *Tx) error) error {
	return m.run(ctx, m.BeginReadOnly(), keys, fn)
}

func (m *Manager) run(ctx context.Context, tx *Tx, keys []string, fn func(tx *Tx) error) error {
	// no-op once committed
	defer func() {
		_ = tx.Rollback()
	}()

	if len(keys) > 0 {
		if err := tx.Lock(ctx, keys...); err != nil {
			return err
		}
	}
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// lockContext applies the configured lock timeout to ctx unless ctx already has a deadline.
func (m *Manager) lockContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok || m.config.LockTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, m.config.LockTimeout)
}

// forget removes a finished transaction from the registry, invalidating its id.
func (m *Manager) forget(tx *Tx) {
	m.active.Delete(tx.id)
}
