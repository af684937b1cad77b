package attempt

import (
	"context"
	"errors"
	"testing"

	"github.com/brcurves/svenfit/internal/curve"
	"github.com/brcurves/svenfit/internal/opt"
	"github.com/brcurves/svenfit/internal/storage"
	"github.com/brcurves/svenfit/internal/storage/memory"
)

var testObservations = curve.ObservationSet{
	{CalendarDays: 30, BusinessDays: 21, Rate: 0.12},
	{CalendarDays: 720, BusinessDays: 504, Rate: 0.11},
}

var testInitial = curve.ParameterVector{
	Beta0: 0.1, Beta1: 0.01, Beta2: 0.01, Beta3: 0.01,
	Lambda1: 1, Lambda2: 5,
}

func newTestManager(t *testing.T) *Manager {
	t.Helper()

	observations := memory.NewObservationStore()
	if err := observations.SaveObservations(context.Background(), "2026-08-21", testObservations); err != nil {
		t.Fatalf("seed observations: %v", err)
	}

	cfg := Config{Optimizer: opt.DefaultConfig(), Seed: 42}
	return NewManager(memory.NewAttemptStore(), observations, cfg)
}

func TestManagerCreate(t *testing.T) {
	m := newTestManager(t)

	record, err := m.Create(context.Background(), "2026-08-21", testInitial, "first try")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if record.ID == "" {
		t.Fatal("expected generated id")
	}
	if record.InitialMetrics.Objective <= 0 {
		t.Fatalf("expected positive initial objective, got %g", record.InitialMetrics.Objective)
	}
	if record.Final != nil {
		t.Fatal("new attempt must not carry final parameters")
	}

	got, err := m.Get(context.Background(), record.ID)
	if err != nil {
		t.Fatalf("Get after Create: %v", err)
	}
	if got.Initial != testInitial {
		t.Fatalf("stored initial mismatch: %+v", got.Initial)
	}
}

func TestManagerCreateRejectsBadDate(t *testing.T) {
	m := newTestManager(t)

	if _, err := m.Create(context.Background(), "21/08/2026", testInitial, ""); err == nil {
		t.Fatal("expected error for malformed date")
	}
}

func TestManagerCreateRequiresObservations(t *testing.T) {
	m := newTestManager(t)

	_, err := m.Create(context.Background(), "2025-01-02", testInitial, "")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected not-found for date without observations, got %v", err)
	}
}

func TestManagerImproveCommitsStrictlyBetterFit(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	record, err := m.Create(ctx, "2026-08-21", testInitial, "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	outcome, err := m.Improve(ctx, record.ID, opt.StrategyLocalSearch, nil)
	if err != nil {
		t.Fatalf("Improve: %v", err)
	}
	if !outcome.Improved {
		t.Fatal("local search from the rough seed should improve the fit")
	}
	if outcome.NewObjective >= outcome.PreviousObjective {
		t.Fatalf("objective did not drop: %g -> %g", outcome.PreviousObjective, outcome.NewObjective)
	}

	stored, err := m.Get(ctx, record.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if stored.Final == nil || stored.FinalMetrics == nil {
		t.Fatal("improved attempt must persist final side")
	}
	if stored.FinalMetrics.Objective != outcome.NewObjective {
		t.Fatalf("persisted objective %g != outcome %g", stored.FinalMetrics.Objective, outcome.NewObjective)
	}
}

func TestManagerImproveNoCommitWithoutImprovement(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	record, err := m.Create(ctx, "2026-08-21", testInitial, "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	first, err := m.Improve(ctx, record.ID, opt.StrategyLocalSearch, nil)
	if err != nil {
		t.Fatalf("first Improve: %v", err)
	}
	if !first.Improved {
		t.Fatal("first improve should commit")
	}

	// Local search is deterministic; rerunning from the converged point
	// cannot beat it.
	second, err := m.Improve(ctx, record.ID, opt.StrategyLocalSearch, nil)
	if err != nil {
		t.Fatalf("second Improve: %v", err)
	}
	if second.Improved {
		t.Fatal("rerun from converged point must not report improvement")
	}

	stored, err := m.Get(ctx, record.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if stored.FinalMetrics.Objective != first.NewObjective {
		t.Fatalf("no-improvement run must leave the record untouched: %g != %g",
			stored.FinalMetrics.Objective, first.NewObjective)
	}
}

func TestManagerImproveBaselineUsesFinalWhenPresent(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	record, err := m.Create(ctx, "2026-08-21", testInitial, "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	first, err := m.Improve(ctx, record.ID, opt.StrategyLocalSearch, nil)
	if err != nil {
		t.Fatalf("first Improve: %v", err)
	}

	second, err := m.Improve(ctx, record.ID, opt.StrategyHybridWarm, nil)
	if err != nil {
		t.Fatalf("second Improve: %v", err)
	}
	if second.PreviousObjective != first.NewObjective {
		t.Fatalf("baseline should be the committed final objective: got %g, want %g",
			second.PreviousObjective, first.NewObjective)
	}
}

func TestManagerImproveUnknownStrategy(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	record, err := m.Create(ctx, "2026-08-21", testInitial, "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, err = m.Improve(ctx, record.ID, opt.Strategy("simulated_annealing"), nil)
	var unknown *opt.UnknownStrategyError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownStrategyError, got %v", err)
	}
}

func TestManagerImproveBusyRejection(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	record, err := m.Create(ctx, "2026-08-21", testInitial, "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if !m.acquire(record.ID) {
		t.Fatal("first acquire must succeed")
	}
	defer m.release(record.ID)

	_, err = m.Improve(ctx, record.ID, opt.StrategyLocalSearch, nil)
	if !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}
}

func TestManagerImproveReleasesLockAfterRun(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	record, err := m.Create(ctx, "2026-08-21", testInitial, "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := m.Improve(ctx, record.ID, opt.StrategyLocalSearch, nil); err != nil {
		t.Fatalf("first Improve: %v", err)
	}
	if _, err := m.Improve(ctx, record.ID, opt.StrategyLocalSearch, nil); err != nil {
		t.Fatalf("lock not released after first run: %v", err)
	}
}

func TestManagerUpdateInitialRecomputesMetrics(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	record, err := m.Create(ctx, "2026-08-21", testInitial, "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := m.Improve(ctx, record.ID, opt.StrategyLocalSearch, nil); err != nil {
		t.Fatalf("Improve: %v", err)
	}

	better := testInitial
	better.Beta0 = 0.11
	updated, err := m.UpdateInitial(ctx, record.ID, better, "nudged level")
	if err != nil {
		t.Fatalf("UpdateInitial: %v", err)
	}
	if updated.Initial != better {
		t.Fatalf("initial not replaced: %+v", updated.Initial)
	}
	if updated.InitialMetrics.Objective == record.InitialMetrics.Objective {
		t.Fatal("initial metrics must be recomputed")
	}
	if updated.Final == nil {
		t.Fatal("update must not drop the committed final side")
	}
	if updated.Note != "nudged level" {
		t.Fatalf("note not updated: %q", updated.Note)
	}
}

func TestManagerCurve(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	record, err := m.Create(ctx, "2026-08-21", testInitial, "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	resp, err := m.Curve(ctx, record.ID)
	if err != nil {
		t.Fatalf("Curve: %v", err)
	}
	if resp.Source != "initial" {
		t.Fatalf("curve before improve must come from initial params, got %q", resp.Source)
	}
	if len(resp.Points) < 1000 {
		t.Fatalf("expected dense sampling grid, got %d points", len(resp.Points))
	}
	for i := 1; i < len(resp.Points); i++ {
		if resp.Points[i].TenorYears <= resp.Points[i-1].TenorYears {
			t.Fatalf("tenors must be strictly increasing at %d", i)
		}
	}

	if _, err := m.Improve(ctx, record.ID, opt.StrategyLocalSearch, nil); err != nil {
		t.Fatalf("Improve: %v", err)
	}
	resp, err = m.Curve(ctx, record.ID)
	if err != nil {
		t.Fatalf("Curve after improve: %v", err)
	}
	if resp.Source != "final" {
		t.Fatalf("curve after improve must come from final params, got %q", resp.Source)
	}
}
