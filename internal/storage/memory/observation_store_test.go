package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brcurves/svenfit/internal/curve"
	"github.com/brcurves/svenfit/internal/storage"
)

var sampleObs = curve.ObservationSet{
	{CalendarDays: 30, BusinessDays: 21, Rate: 0.12},
	{CalendarDays: 720, BusinessDays: 504, Rate: 0.11},
}

func TestObservationStoreSaveAndLoad(t *testing.T) {
	store := NewObservationStore()
	ctx := context.Background()

	require.NoError(t, store.SaveObservations(ctx, "2026-08-21", sampleObs))

	got, err := store.Observations(ctx, "2026-08-21")
	require.NoError(t, err)
	assert.Equal(t, sampleObs, got)
}

func TestObservationStoreNotFound(t *testing.T) {
	store := NewObservationStore()

	_, err := store.Observations(context.Background(), "2026-01-01")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestObservationStoreReplaceSet(t *testing.T) {
	store := NewObservationStore()
	ctx := context.Background()

	require.NoError(t, store.SaveObservations(ctx, "2026-08-21", sampleObs))

	replacement := curve.ObservationSet{{CalendarDays: 90, BusinessDays: 63, Rate: 0.115}}
	require.NoError(t, store.SaveObservations(ctx, "2026-08-21", replacement))

	got, err := store.Observations(ctx, "2026-08-21")
	require.NoError(t, err)
	assert.Equal(t, replacement, got)
}

func TestObservationStoreListDatesNewestFirst(t *testing.T) {
	store := NewObservationStore()
	ctx := context.Background()

	require.NoError(t, store.SaveObservations(ctx, "2026-08-19", sampleObs))
	require.NoError(t, store.SaveObservations(ctx, "2026-08-21", sampleObs))
	require.NoError(t, store.SaveObservations(ctx, "2026-08-20", sampleObs))

	dates, err := store.ListDates(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"2026-08-21", "2026-08-20", "2026-08-19"}, dates)
}

func TestObservationStoreReturnsCopies(t *testing.T) {
	store := NewObservationStore()
	ctx := context.Background()

	require.NoError(t, store.SaveObservations(ctx, "2026-08-21", sampleObs))

	got, err := store.Observations(ctx, "2026-08-21")
	require.NoError(t, err)
	got[0].Rate = 99

	fresh, err := store.Observations(ctx, "2026-08-21")
	require.NoError(t, err)
	assert.Equal(t, 0.12, fresh[0].Rate)
}
