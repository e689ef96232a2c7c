package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestReserver(t *testing.T) (SlotReserver, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	log := logrus.New()
	log.SetLevel(logrus.FatalLevel)

	return NewRedisSlotReservation(client, log), mr
}

func TestRedisSlotReservation_ReserveOnce(t *testing.T) {
	reserver, _ := newTestReserver(t)
	ctx := context.Background()

	ok, err := reserver.Reserve(ctx, "2026-09-15|10:00|dermatology", "inv-1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	// Second claim on the same slot fails regardless of owner
	ok, err = reserver.Reserve(ctx, "2026-09-15|10:00|dermatology", "inv-2", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	// A different slot is unaffected
	ok, err = reserver.Reserve(ctx, "2026-09-15|11:00|dermatology", "inv-2", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisSlotReservation_ReleaseByOwner(t *testing.T) {
	reserver, _ := newTestReserver(t)
	ctx := context.Background()

	ok, err := reserver.Reserve(ctx, "slot-a", "inv-1", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, reserver.Release(ctx, "slot-a", "inv-1"))

	// Slot is free again
	ok, err = reserver.Reserve(ctx, "slot-a", "inv-2", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisSlotReservation_ReleaseWrongOwnerKeepsReservation(t *testing.T) {
	reserver, mr := newTestReserver(t)
	ctx := context.Background()

	ok, err := reserver.Reserve(ctx, "slot-a", "inv-1", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	// A stale caller must not free a reservation it no longer holds
	require.NoError(t, reserver.Release(ctx, "slot-a", "inv-stale"))
	assert.True(t, mr.Exists("slot_reservation:slot-a"))

	ok, err = reserver.Reserve(ctx, "slot-a", "inv-2", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisSlotReservation_TTLExpires(t *testing.T) {
	reserver, mr := newTestReserver(t)
	ctx := context.Background()

	ok, err := reserver.Reserve(ctx, "slot-a", "inv-1", 30*time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(31 * time.Second)

	ok, err = reserver.Reserve(ctx, "slot-a", "inv-2", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}
