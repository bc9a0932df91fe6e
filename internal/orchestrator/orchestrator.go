// Package orchestrator coordinates writes against the authoritative store
// and a best-effort mirror.
//
// The mirror carries NO consistency guarantee: a mirror write that fails
// after a primary success is logged, counted and dropped — no retry, no
// queue. The mirror must never be read for correctness-sensitive queries.
package orchestrator

import (
	"context"
	"sync"
	"time"

	"github.com/orsta/orsta/internal/config"
	"github.com/orsta/orsta/internal/observability/logger"
	"github.com/orsta/orsta/internal/observability/metrics"
	pkgdb "github.com/orsta/orsta/pkg/db"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// HeartbeatInterval is how often the liveness statement is issued.
const HeartbeatInterval = 5 * time.Second

// Statement is one mutating statement, expressed as a gorm chain that runs
// identically against either backend. Statements must be deterministic:
// generate IDs and timestamps before building one, never inside it.
type Statement func(db *gorm.DB) *gorm.DB

// Orchestrator serializes all persistence through one exclusive lock. The
// lock is held for the full primary+mirror interaction, which is what makes
// the one-open-billing-window invariant hold under concurrent requests: a
// slow mirror therefore stalls every other operation, accepted for now.
type Orchestrator struct {
	mu      sync.Mutex
	primary *gorm.DB
	mirror  *gorm.DB // nil in primary-only mode
	log     *zap.Logger
	metrics *metrics.DualWriteMetrics
}

// New opens the primary store and, if configured, the mirror. An
// unreachable mirror at startup is not an error: the coordinator runs in
// primary-only mode for the process lifetime.
func New(cfg config.Config, log *zap.Logger, m *metrics.DualWriteMetrics) (*Orchestrator, error) {
	gormCfg := func() *gorm.Config {
		return &gorm.Config{
			Logger: logger.NewGormLogger(logger.DefaultGormLoggerConfig()),
		}
	}

	primary, err := gorm.Open(pkgdb.Dialect(cfg.DatabaseURL), gormCfg())
	if err != nil {
		return nil, err
	}

	var mirror *gorm.DB
	if cfg.MirrorDatabaseURL != "" {
		mirror, err = gorm.Open(pkgdb.Dialect(cfg.MirrorDatabaseURL), gormCfg())
		if err == nil {
			if sqlDB, pingErr := mirror.DB(); pingErr != nil {
				err = pingErr
			} else {
				err = sqlDB.Ping()
			}
		}
		if err != nil {
			log.Warn("mirror offline, operating in primary-only mode", zap.Error(err))
			mirror = nil
		}
	}

	o := NewWithHandles(primary, mirror, log, m)
	o.log.Info("orchestrator initialized",
		zap.Bool("mirror_enabled", mirror != nil),
	)
	return o, nil
}

// NewWithHandles wires a coordinator over already-open gorm handles.
func NewWithHandles(primary, mirror *gorm.DB, log *zap.Logger, m *metrics.DualWriteMetrics) *Orchestrator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Orchestrator{
		primary: primary,
		mirror:  mirror,
		log:     log.Named("orchestrator"),
		metrics: m,
	}
}

// Primary exposes the authoritative handle for startup-time migrations.
// Request-path code must go through Read/Write/Transact instead.
func (o *Orchestrator) Primary() *gorm.DB { return o.primary }

// Mirror exposes the mirror handle, nil in primary-only mode.
func (o *Orchestrator) Mirror() *gorm.DB { return o.mirror }

// MirrorEnabled reports whether a mirror was reachable at startup.
func (o *Orchestrator) MirrorEnabled() bool { return o.mirror != nil }

// Write executes one statement against the primary and, on success, replays
// it on the mirror. The returned error is always the primary's; mirror
// outcomes never affect the caller.
func (o *Orchestrator) Write(ctx context.Context, stmt Statement) (int64, error) {
	o.lock()
	defer o.mu.Unlock()

	res := stmt(o.primary.WithContext(ctx))
	if res.Error != nil {
		o.metrics.RecordPrimaryError()
		return 0, res.Error
	}
	o.replay(ctx, stmt)
	return res.RowsAffected, nil
}

// Read runs fn against the primary under the coordinator lock.
func (o *Orchestrator) Read(ctx context.Context, fn func(db *gorm.DB) error) error {
	o.lock()
	defer o.mu.Unlock()
	return fn(o.primary.WithContext(ctx))
}

// Tx is an in-flight primary transaction that records the mutating
// statements it executes so they can be replayed on the mirror after
// commit. Reads go through DB directly and are never replayed.
type Tx struct {
	o      *Orchestrator
	db     *gorm.DB
	queued []Statement
}

// DB returns the primary transaction handle for reads.
func (t *Tx) DB() *gorm.DB { return t.db }

// Exec runs one mutating statement inside the primary transaction and
// queues it for mirror replay.
func (t *Tx) Exec(stmt Statement) (int64, error) {
	res := stmt(t.db)
	if res.Error != nil {
		t.o.metrics.RecordPrimaryError()
		return 0, res.Error
	}
	t.queued = append(t.queued, stmt)
	return res.RowsAffected, nil
}

// Transact runs fn inside a primary transaction, holding the coordinator
// lock across the whole operation. If the transaction commits, the queued
// statements are replayed on the mirror best-effort. Lifecycle operations
// use this so their two-step writes are atomic on the primary: a crash can
// no longer leave an active instance without an open billing window.
func (o *Orchestrator) Transact(ctx context.Context, fn func(tx *Tx) error) error {
	o.lock()
	defer o.mu.Unlock()

	tx := &Tx{o: o}
	err := o.primary.WithContext(ctx).Transaction(func(g *gorm.DB) error {
		tx.db = g
		return fn(tx)
	})
	if err != nil {
		return err
	}
	o.replay(ctx, tx.queued...)
	return nil
}

func (o *Orchestrator) lock() {
	start := time.Now()
	o.mu.Lock()
	o.metrics.ObserveLockWait(time.Since(start))
}

// replay applies statements to the mirror, stopping at the first failure
// since later statements may depend on earlier ones.
func (o *Orchestrator) replay(ctx context.Context, stmts ...Statement) {
	if o.mirror == nil {
		return
	}
	for i, stmt := range stmts {
		if res := stmt(o.mirror.WithContext(ctx)); res.Error != nil {
			o.metrics.RecordMirrorFailure()
			o.log.Warn("mirror write dropped",
				zap.Int("statement_index", i),
				zap.Int("statement_count", len(stmts)),
				zap.Error(res.Error),
			)
			return
		}
	}
}
