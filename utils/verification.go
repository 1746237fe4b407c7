// utils/verification.go
package utils

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"math/big"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLength   = 6

	// Codes older than this are discarded
	codeTTL = 15 * time.Minute
)

// ErrTooManyAttempts is returned when an email exceeds its verification budget.
var ErrTooManyAttempts = errors.New("too many verification attempts")

// PendingSignup is the signup data stashed between /sendVerification and
// /verify, keyed by email.
type PendingSignup struct {
	Code      string `json:"code"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// VerificationStore holds pending signups in Redis with a TTL. When Redis is
// unavailable it degrades to a process-lifetime map, which loses codes on
// restart.
type VerificationStore struct {
	redis *redis.Client
	mu    sync.RWMutex
	local map[string]PendingSignup
}

func NewVerificationStore(client *redis.Client) *VerificationStore {
	return &VerificationStore{
		redis: client,
		local: make(map[string]PendingSignup),
	}
}

// GenerateVerificationCode produces a 6-character alphanumeric code
func GenerateVerificationCode() (string, error) {
	code := make([]byte, codeLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(codeAlphabet))))
		if err != nil {
			return "", err
		}
		code[i] = codeAlphabet[n.Int64()]
	}
	return string(code), nil
}

// Put stashes a pending signup under its email, replacing any previous one.
func (s *VerificationStore) Put(ctx context.Context, email string, pending PendingSignup) error {
	if s.redis != nil {
		payload, err := json.Marshal(pending)
		if err != nil {
			return err
		}
		return s.redis.Set(ctx, verificationKey(email), payload, codeTTL).Err()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.local[email] = pending
	return nil
}

// Get returns the pending signup for an email, if one exists.
func (s *VerificationStore) Get(ctx context.Context, email string) (PendingSignup, bool) {
	if s.redis != nil {
		payload, err := s.redis.Get(ctx, verificationKey(email)).Bytes()
		if err != nil {
			return PendingSignup{}, false
		}
		var pending PendingSignup
		if err := json.Unmarshal(payload, &pending); err != nil {
			return PendingSignup{}, false
		}
		return pending, true
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	pending, ok := s.local[email]
	return pending, ok
}

// Delete removes the pending signup once it has been consumed.
func (s *VerificationStore) Delete(ctx context.Context, email string) {
	if s.redis != nil {
		s.redis.Del(ctx, verificationKey(email))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.local, email)
}

// ValidateAttempts counts verification attempts per email and rejects after
// five within an hour. Attempt counting needs Redis; without it every attempt
// is allowed.
func (s *VerificationStore) ValidateAttempts(ctx context.Context, email string) error {
	if s.redis == nil {
		return nil
	}

	key := "verify_attempts:" + email
	attempts, err := s.redis.Incr(ctx, key).Result()
	if err != nil {
		return err
	}

	// Set expiry if first attempt
	if attempts == 1 {
		s.redis.Expire(ctx, key, 1*time.Hour)
	}

	if attempts > 5 {
		return ErrTooManyAttempts
	}

	return nil
}

func verificationKey(email string) string {
	return "verification:" + email
}
