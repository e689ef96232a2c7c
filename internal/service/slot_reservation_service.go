package service

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// SlotReserver is the fast-path guard against offering one physical slot to
// two patients at once. The database partial unique index remains the
// authority; the reserver just rejects the obvious double-offer cheaply.
type SlotReserver interface {
	// Reserve claims the slot for the given owner. Returns false when the
	// slot is already held by someone else.
	Reserve(ctx context.Context, slotKey, owner string, ttl time.Duration) (bool, error)
	// Release frees the slot only if the given owner still holds it
	Release(ctx context.Context, slotKey, owner string) error
}

// releaseScript deletes the reservation only when the stored owner matches,
// so a slow caller cannot release a reservation that was re-acquired by a
// later invitation.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
else
	return 0
end
`)

type redisSlotReservation struct {
	client *redis.Client
	log    *logrus.Logger
}

func NewRedisSlotReservation(client *redis.Client, log *logrus.Logger) SlotReserver {
	return &redisSlotReservation{client: client, log: log}
}

func (r *redisSlotReservation) key(slotKey string) string {
	return fmt.Sprintf("slot_reservation:%s", slotKey)
}

func (r *redisSlotReservation) Reserve(ctx context.Context, slotKey, owner string, ttl time.Duration) (bool, error) {
	ok, err := r.client.SetNX(ctx, r.key(slotKey), owner, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to reserve slot %s: %w", slotKey, err)
	}
	return ok, nil
}

func (r *redisSlotReservation) Release(ctx context.Context, slotKey, owner string) error {
	released, err := releaseScript.Run(ctx, r.client, []string{r.key(slotKey)}, owner).Int()
	if err != nil {
		return fmt.Errorf("failed to release slot %s: %w", slotKey, err)
	}
	if released == 0 {
		r.log.Warnf("Slot reservation %s no longer held by %s, nothing released", slotKey, owner)
	}
	return nil
}
