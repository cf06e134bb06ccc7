package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ledgerport/order-admission/internal/api/metrics"
	"github.com/ledgerport/order-admission/internal/core/domain"
	"github.com/ledgerport/order-admission/internal/core/ports"
)

const (
	// maxWorkers caps harness concurrency the way the load driver is meant
	// to run: enough parallelism to force contention, bounded so a large n
	// queues instead of exploding.
	maxWorkers = 16

	scenarioTimeout     = 60 * time.Second
	deactivationTimeout = 90 * time.Second
)

type scenarioService struct {
	clients ports.ClientService
	orders  ports.OrderService
	log     zerolog.Logger
}

// NewScenarioService returns the scenario harness. It drives the admission
// protocol through the same service interfaces the API uses, so the
// contention it generates exercises the real code path.
func NewScenarioService(clients ports.ClientService, orders ports.OrderService, log zerolog.Logger) ports.ScenarioService {
	return &scenarioService{clients: clients, orders: orders, log: log}
}

// attemptFn is one unit of harness work. It returns the created order id (or
// "" for non-order attempts), a human-readable message, and the error that
// classifies the outcome.
type attemptFn func(ctx context.Context) (orderID, message string, err error)

type indexedAttempt struct {
	idx    int
	result ports.ScenarioAttempt
}

// runAttempts fires all attempts through a bounded worker pool behind a
// shared start gate, then collects results in harness index order. Attempts
// that do not resolve within timeout are recorded as attempt-level failures,
// distinct from protocol rejections.
func (s *scenarioService) runAttempts(ctx context.Context, scenario string, timeout time.Duration, attempts []attemptFn) []ports.ScenarioAttempt {
	n := len(attempts)
	workers := maxWorkers
	if n < workers {
		workers = n
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	tasks := make(chan int, n)
	for i := range attempts {
		tasks <- i
	}
	close(tasks)

	out := make(chan indexedAttempt, n)
	start := make(chan struct{})

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			for idx := range tasks {
				orderID, msg, err := attempts[idx](runCtx)
				a := ports.ScenarioAttempt{
					Index:   idx,
					Success: err == nil,
					OrderID: orderID,
					Message: msg,
				}
				if err != nil {
					a.Reason = outcomeOf(err)
					a.Message = err.Error()
				}
				out <- indexedAttempt{idx: idx, result: a}
			}
		}()
	}

	// Release every worker at once to maximize real contention.
	close(start)
	go func() {
		wg.Wait()
		close(out)
	}()

	results := make([]ports.ScenarioAttempt, n)
	resolved := make([]bool, n)
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

collect:
	for received := 0; received < n; {
		select {
		case ia, ok := <-out:
			if !ok {
				break collect
			}
			results[ia.idx] = ia.result
			resolved[ia.idx] = true
			received++
		case <-deadline.C:
			break collect
		}
	}

	for i := range results {
		if !resolved[i] {
			s.log.Warn().
				Str("scenario", scenario).
				Int("attempt", i).
				Dur("timeout", timeout).
				Msg("attempt did not resolve before the deadline")
			results[i] = ports.ScenarioAttempt{
				Index:   i,
				Success: false,
				Reason:  "error",
				Message: fmt.Sprintf("attempt did not resolve within %s", timeout),
			}
		}
	}
	return results
}

func summarize(scenario string, requested int, attempts []ports.ScenarioAttempt) *ports.ScenarioSummary {
	sum := &ports.ScenarioSummary{
		Scenario:  scenario,
		Requested: requested,
		Attempts:  attempts,
	}
	for _, a := range attempts {
		// Only the first `requested` attempts count; extra workers (the
		// deactivation shot) are reported but excluded from the totals.
		if a.Index >= requested {
			continue
		}
		if a.Success {
			sum.Succeeded++
		} else {
			sum.Failed++
		}
	}

	metrics.ScenarioRunsTotal.WithLabelValues(scenario).Inc()
	metrics.ScenarioAttemptsTotal.WithLabelValues(scenario, "success").Add(float64(sum.Succeeded))
	metrics.ScenarioAttemptsTotal.WithLabelValues(scenario, "failure").Add(float64(sum.Failed))
	return sum
}

// freshPair registers a brand-new supplier/consumer pair so scenario runs
// never interfere with each other's positions or business keys.
func (s *scenarioService) freshPair(ctx context.Context, ts int64) (supplier, consumer *domain.Client, err error) {
	supplier, err = s.clients.Create(ctx, ports.CreateClientInput{
		Name:  fmt.Sprintf("Supp-%d", ts),
		Email: fmt.Sprintf("supp%d@mail.test", ts),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("create supplier: %w", err)
	}
	consumer, err = s.clients.Create(ctx, ports.CreateClientInput{
		Name:  fmt.Sprintf("Cons-%d", ts),
		Email: fmt.Sprintf("cons%d@mail.test", ts),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("create consumer: %w", err)
	}
	return supplier, consumer, nil
}

func (s *scenarioService) admitAttempt(in ports.AdmitOrderInput) attemptFn {
	return func(ctx context.Context) (string, string, error) {
		order, err := s.orders.Admit(ctx, in)
		if err != nil {
			return "", "", err
		}
		return order.ID, "created", nil
	}
}

// RunDuplicates fires n attempts sharing one business key. Exactly one must
// win; the rest must be rejected as duplicates.
func (s *scenarioService) RunDuplicates(ctx context.Context, n int) (*ports.ScenarioSummary, error) {
	if n < 1 {
		return nil, &domain.ValidationError{Message: "n must be at least 1"}
	}
	ts := time.Now().UnixMilli()
	supplier, consumer, err := s.freshPair(ctx, ts)
	if err != nil {
		return nil, err
	}

	in := ports.AdmitOrderInput{
		Title:      fmt.Sprintf("dup-%d", ts),
		SupplierID: supplier.ID,
		ConsumerID: consumer.ID,
		Price:      100,
	}
	attempts := make([]attemptFn, n)
	for i := range attempts {
		attempts[i] = s.admitAttempt(in)
	}

	results := s.runAttempts(ctx, "duplicates", scenarioTimeout, attempts)
	s.log.Info().Int("n", n).Msg("duplicates scenario finished")
	return summarize("duplicates", n, results), nil
}

// RunDescending seeds a 970 order against the consumer, leaving 30 of
// headroom above a -1000 floor, then offers strictly decreasing prices
// 100, 90, ..., 10 under one shared title.
// The duplicate rule dominates: exactly one colliding-title attempt wins, and
// no winner may push the consumer below the floor.
func (s *scenarioService) RunDescending(ctx context.Context, n int) (*ports.ScenarioSummary, error) {
	if n < 1 {
		return nil, &domain.ValidationError{Message: "n must be at least 1"}
	}
	ts := time.Now().UnixMilli()
	supplier, consumer, err := s.freshPair(ctx, ts)
	if err != nil {
		return nil, err
	}

	if _, err := s.orders.Admit(ctx, ports.AdmitOrderInput{
		Title:      fmt.Sprintf("seed-%d", ts),
		SupplierID: supplier.ID,
		ConsumerID: consumer.ID,
		Price:      97000,
	}); err != nil {
		return nil, fmt.Errorf("seed order: %w", err)
	}

	title := fmt.Sprintf("dec-common-%d", ts)
	var attempts []attemptFn
	for p := domain.Cents(10000); p >= 1000 && len(attempts) < n; p -= 1000 {
		attempts = append(attempts, s.admitAttempt(ports.AdmitOrderInput{
			Title:      title,
			SupplierID: supplier.ID,
			ConsumerID: consumer.ID,
			Price:      p,
		}))
	}

	results := s.runAttempts(ctx, "descending", scenarioTimeout, attempts)
	s.log.Info().Int("n", len(attempts)).Msg("descending scenario finished")
	return summarize("descending", len(attempts), results), nil
}

// RunDeactivationRace fires n distinct-title attempts plus one extra worker
// that deactivates the consumer after deactivateAfter. Depending on the
// relative timing of each attempt's processing window versus the
// deactivation, some prefix succeeds and the rest are rejected with
// became_inactive_during_processing.
func (s *scenarioService) RunDeactivationRace(ctx context.Context, n int, deactivateAfter time.Duration) (*ports.ScenarioSummary, error) {
	if n < 1 {
		return nil, &domain.ValidationError{Message: "n must be at least 1"}
	}
	ts := time.Now().UnixMilli()
	supplier, consumer, err := s.freshPair(ctx, ts)
	if err != nil {
		return nil, err
	}

	attempts := make([]attemptFn, 0, n+1)
	for i := 0; i < n; i++ {
		attempts = append(attempts, s.admitAttempt(ports.AdmitOrderInput{
			Title:      fmt.Sprintf("race-%d-%d", ts, i),
			SupplierID: supplier.ID,
			ConsumerID: consumer.ID,
			Price:      5000,
		}))
	}
	attempts = append(attempts, func(runCtx context.Context) (string, string, error) {
		if deactivateAfter > 0 {
			t := time.NewTimer(deactivateAfter)
			defer t.Stop()
			select {
			case <-runCtx.Done():
				return "", "", runCtx.Err()
			case <-t.C:
			}
		}
		if _, err := s.clients.SetActive(runCtx, consumer.ID, false); err != nil {
			return "", "", err
		}
		return "", "consumer deactivated", nil
	})

	results := s.runAttempts(ctx, "deactivation_race", deactivationTimeout, attempts)
	s.log.Info().Int("n", n).Dur("deactivate_after", deactivateAfter).Msg("deactivation race scenario finished")
	return summarize("deactivation_race", n, results), nil
}
