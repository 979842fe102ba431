package service

import (
	"context"
	"log/slog"
	"time"
)

// PendingReconciler is the slice of the registration usecase the loop needs.
type PendingReconciler interface {
	ReconcilePending(ctx context.Context) (int, error)
}

// Reconciler periodically re-anchors records that were persisted but never
// received a ledger receipt, closing the gap left by the missing cross-store
// transaction.
type Reconciler struct {
	registration PendingReconciler
	interval     time.Duration
}

func NewReconciler(registration PendingReconciler, interval time.Duration) *Reconciler {
	return &Reconciler{
		registration: registration,
		interval:     interval,
	}
}

// Run blocks until ctx is cancelled, processing one pass per tick.
func (r *Reconciler) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.pass(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.pass(ctx)
		}
	}
}

func (r *Reconciler) pass(ctx context.Context) {
	count, err := r.registration.ReconcilePending(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "reconcile pass failed", slog.String("error", err.Error()))
		return
	}
	if count > 0 {
		slog.InfoContext(ctx, "reconciled pending anchors", slog.Int("count", count))
	}
}
