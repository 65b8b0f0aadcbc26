package sessions

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// CookieName carries the session version the browser last saw. A mismatch
// with the stored version means the session changed in another tab or was
// revoked, and cached auth state must be re-primed.
const CookieName = "ecohub_session_version"

const versionTTL = 30 * 24 * time.Hour

type Config struct {
	Addr     string
	Password string
	DB       int
}

// VersionStore keeps a per-user monotonically increasing session version in
// redis. Every sign-in and sign-out bumps it.
type VersionStore struct {
	redisdb *redis.Client
}

func New(cfg Config) *VersionStore {
	redisdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	return &VersionStore{redisdb: redisdb}
}

// NewWithClient wraps an existing client. Used by tests.
func NewWithClient(c *redis.Client) *VersionStore {
	return &VersionStore{redisdb: c}
}

func (s *VersionStore) Ping(ctx context.Context) error {
	return s.redisdb.Ping(ctx).Err()
}

func (s *VersionStore) Close() error {
	return s.redisdb.Close()
}

// Bump advances the user's session version and returns the new value.
func (s *VersionStore) Bump(ctx context.Context, userID string) (int64, error) {
	key := versionKey(userID)

	v, err := s.redisdb.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	s.redisdb.Expire(ctx, key, versionTTL)

	return v, nil
}

// Current returns the user's session version, 0 when none was ever bumped.
func (s *VersionStore) Current(ctx context.Context, userID string) (int64, error) {
	raw, err := s.redisdb.Get(ctx, versionKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	return strconv.ParseInt(raw, 10, 64)
}

func versionKey(userID string) string {
	return "sessions:version:v1:" + userID
}
