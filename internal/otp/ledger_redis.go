package otp

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

type redisLedger struct {
	client *redis.Client
	prefix string
}

// NewRedisLedger crea un ledger respaldado en Redis. El TTL nativo de
// la clave hace la purga de registros vencidos a nivel de store.
func NewRedisLedger(client *redis.Client) Ledger {
	if client == nil {
		return nil
	}
	return &redisLedger{
		client: client,
		prefix: "signup:otp:",
	}
}

func (l *redisLedger) Put(ctx context.Context, rec PendingSignup) error {
	email := normalizeKey(rec.Email)
	if email == "" {
		return ErrNotFound
	}
	rec.Email = email
	payload, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	ttl := time.Until(rec.ExpiresAt)
	if ttl <= 0 {
		ttl = time.Second
	}
	// SET sobreescribe el registro previo y renueva el TTL de una vez.
	return l.client.Set(ctx, l.prefix+email, payload, ttl).Err()
}

func (l *redisLedger) Get(ctx context.Context, email string) (PendingSignup, error) {
	payload, err := l.client.Get(ctx, l.prefix+normalizeKey(email)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return PendingSignup{}, ErrNotFound
		}
		return PendingSignup{}, err
	}
	var rec PendingSignup
	if err := json.Unmarshal(payload, &rec); err != nil {
		return PendingSignup{}, err
	}
	return rec, nil
}

func (l *redisLedger) Delete(ctx context.Context, email string) error {
	return l.client.Del(ctx, l.prefix+normalizeKey(email)).Err()
}
