package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// OTPStore keeps at most one pending code per email. Save overwrites any
// previous unconsumed code (last-write-wins), Delete consumes it.
type OTPStore interface {
	Save(ctx context.Context, email string, rec OTPRecord, ttl time.Duration) error
	Get(ctx context.Context, email string) (OTPRecord, bool, error)
	Delete(ctx context.Context, email string) error
}

// OTPRecord is the stored form of an issued code: a salted hash plus an
// explicit expiry. The expiry lives inside the record, not only in the store's
// retention, so an expired-but-still-retained code can be reported as expired
// rather than missing.
type OTPRecord struct {
	CodeHash  string
	ExpiresAt time.Time
}

func (r OTPRecord) encode() string {
	return strconv.FormatInt(r.ExpiresAt.Unix(), 10) + "|" + r.CodeHash
}

func decodeOTPRecord(s string) (OTPRecord, error) {
	parts := strings.SplitN(s, "|", 2)
	if len(parts) != 2 {
		return OTPRecord{}, fmt.Errorf("malformed otp record")
	}
	unix, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return OTPRecord{}, fmt.Errorf("malformed otp expiry: %w", err)
	}
	return OTPRecord{CodeHash: parts[1], ExpiresAt: time.Unix(unix, 0).UTC()}, nil
}

// GenerateOTP produces a six digit code, its salted hash and expiry.
func GenerateOTP(ttl time.Duration) (string, OTPRecord, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", OTPRecord{}, err
	}
	code := fmt.Sprintf("%06d", n.Int64())

	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return "", OTPRecord{}, err
	}
	saltStr := base64.StdEncoding.EncodeToString(salt)
	hashBytes := sha256.Sum256([]byte(saltStr + ":" + code))
	hash := base64.StdEncoding.EncodeToString(hashBytes[:])

	rec := OTPRecord{
		CodeHash:  saltStr + ":" + hash,
		ExpiresAt: time.Now().UTC().Add(ttl),
	}
	return code, rec, nil
}

// Matches compares a submitted code against the stored salted hash.
func (r OTPRecord) Matches(code string) bool {
	parts := strings.Split(r.CodeHash, ":")
	if len(parts) != 2 {
		return false
	}
	saltStr := parts[0]
	expectedHash := parts[1]
	hashBytes := sha256.Sum256([]byte(saltStr + ":" + code))
	hash := base64.StdEncoding.EncodeToString(hashBytes[:])
	return subtle.ConstantTimeCompare([]byte(hash), []byte(expectedHash)) == 1
}

type memoryOTPStore struct {
	mu    sync.Mutex
	items map[string]memoryOTPEntry
}

type memoryOTPEntry struct {
	rec       OTPRecord
	retainTil time.Time
}

func NewMemoryOTPStore() OTPStore {
	return &memoryOTPStore{items: make(map[string]memoryOTPEntry)}
}

func (s *memoryOTPStore) Save(_ context.Context, email string, rec OTPRecord, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[email] = memoryOTPEntry{
		rec:       rec,
		retainTil: time.Now().UTC().Add(2 * ttl),
	}
	return nil
}

func (s *memoryOTPStore) Get(_ context.Context, email string) (OTPRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.items[email]
	if !ok {
		return OTPRecord{}, false, nil
	}
	if time.Now().UTC().After(entry.retainTil) {
		delete(s.items, email)
		return OTPRecord{}, false, nil
	}
	return entry.rec, true, nil
}

func (s *memoryOTPStore) Delete(_ context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, email)
	return nil
}

type redisOTPStore struct {
	client *redis.Client
	prefix string
}

func NewRedisOTPStore(client *redis.Client) OTPStore {
	if client == nil {
		return nil
	}
	return &redisOTPStore{
		client: client,
		prefix: "otp:code:",
	}
}

func (s *redisOTPStore) Save(ctx context.Context, email string, rec OTPRecord, ttl time.Duration) error {
	// Retain for twice the code TTL so a stale code still resolves as
	// expired instead of missing.
	return s.client.Set(ctx, s.prefix+email, rec.encode(), 2*ttl).Err()
}

func (s *redisOTPStore) Get(ctx context.Context, email string) (OTPRecord, bool, error) {
	val, err := s.client.Get(ctx, s.prefix+email).Result()
	if err == redis.Nil {
		return OTPRecord{}, false, nil
	}
	if err != nil {
		return OTPRecord{}, false, err
	}
	rec, err := decodeOTPRecord(val)
	if err != nil {
		return OTPRecord{}, false, err
	}
	return rec, true, nil
}

func (s *redisOTPStore) Delete(ctx context.Context, email string) error {
	return s.client.Del(ctx, s.prefix+email).Err()
}
