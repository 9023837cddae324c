package otp

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
)

// PendingSignup es el registro efímero entre signup y verificación.
// Guarda el password candidato ya con bcrypt, nunca en claro.
type PendingSignup struct {
	Email        string    `json:"email"`
	FullName     string    `json:"full_name"`
	PasswordHash string    `json:"password_hash"`
	OTPHash      string    `json:"otp_hash"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Ledger guarda como máximo un PendingSignup vivo por email.
// Put reemplaza cualquier registro previo del mismo email.
type Ledger interface {
	Put(ctx context.Context, rec PendingSignup) error
	Get(ctx context.Context, email string) (PendingSignup, error)
	Delete(ctx context.Context, email string) error
}

var ErrNotFound = errors.New("pending signup not found")

const sweepInterval = 30 * time.Second

type memoryLedger struct {
	mu      sync.Mutex
	records map[string]PendingSignup
	done    chan struct{}
	once    sync.Once
}

// NewMemoryLedger crea un ledger en memoria con barrido periódico
// de registros vencidos, para desarrollo y tests.
func NewMemoryLedger() *memoryLedger {
	l := &memoryLedger{
		records: make(map[string]PendingSignup),
		done:    make(chan struct{}),
	}
	go l.sweep()
	return l
}

func (l *memoryLedger) Put(_ context.Context, rec PendingSignup) error {
	email := normalizeKey(rec.Email)
	if email == "" {
		return ErrNotFound
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	rec.Email = email
	l.records[email] = rec
	return nil
}

func (l *memoryLedger) Get(_ context.Context, email string) (PendingSignup, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	rec, ok := l.records[normalizeKey(email)]
	if !ok {
		return PendingSignup{}, ErrNotFound
	}
	return rec, nil
}

func (l *memoryLedger) Delete(_ context.Context, email string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.records, normalizeKey(email))
	return nil
}

func (l *memoryLedger) Close() {
	l.once.Do(func() { close(l.done) })
}

func (l *memoryLedger) sweep() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-l.done:
			return
		case now := <-ticker.C:
			l.mu.Lock()
			for email, rec := range l.records {
				if now.UTC().After(rec.ExpiresAt) {
					delete(l.records, email)
				}
			}
			l.mu.Unlock()
		}
	}
}

func normalizeKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
