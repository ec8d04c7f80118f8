package reconcile

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/nkiryanov/bankledger/internal/logger"
)

const defaultInterval = time.Minute

var unpairedReferences = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "bankledger_unpaired_references",
	Help: "Internal transfer references without exactly one debit and one credit leg",
})

type referenceLister interface {
	ListUnpairedReferences(ctx context.Context) ([]string, error)
}

// Reconciler periodically checks ledger for internal transfers with broken legs
type Reconciler struct {
	interval time.Duration
	repo     referenceLister
	logger   logger.Logger
}

func New(interval time.Duration, repo referenceLister, logger logger.Logger) *Reconciler {
	if interval <= 0 {
		interval = defaultInterval
	}

	return &Reconciler{
		interval: interval,
		repo:     repo,
		logger:   logger,
	}
}

// Run checks ledger every interval until ctx is done
// Returned channel is closed when reconciler stopped
func (r *Reconciler) Run(ctx context.Context) <-chan struct{} {
	idleStopped := make(chan struct{})
	r.logger.Debug("Starting reconciler", "interval", r.interval)

	go func() {
		defer close(idleStopped)

		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				r.logger.Debug("Reconciler stopped by context")
				return

			case <-ticker.C:
				r.logger.Debug("Reconciler tick: checking references")

				if _, err := r.Check(ctx); err != nil {
					r.logger.Error("Failed to reconcile ledger", "error", err)
				}
			}
		}
	}()

	return idleStopped
}

// Check makes one pass and returns unpaired references found
func (r *Reconciler) Check(ctx context.Context) ([]string, error) {
	refs, err := r.repo.ListUnpairedReferences(ctx)
	if err != nil {
		return nil, fmt.Errorf("can't list unpaired references. Err: %w", err)
	}

	unpairedReferences.Set(float64(len(refs)))
	for _, ref := range refs {
		r.logger.Error("Internal transfer legs are not paired", "reference", ref)
	}

	return refs, nil
}
