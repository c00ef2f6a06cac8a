package session

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const keyPrefix = "session:"

// RedisStore keeps sessions in Redis keyed by a random session id. The token
// given to the client is an HS256 JWT wrapping that id, so a tampered cookie
// fails signature verification before Redis is ever consulted.
type RedisStore struct {
	rdb    *redis.Client
	secret []byte
	ttl    time.Duration
}

func NewRedisStore(rdb *redis.Client, secret string, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, secret: []byte(secret), ttl: ttl}
}

func (s *RedisStore) Create(ctx context.Context, userID uint) (string, error) {
	sid := uuid.NewString()

	if err := s.rdb.Set(ctx, keyPrefix+sid, uint64(userID), s.ttl).Err(); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}

	claims := jwt.MapClaims{
		"sid": sid,
		"exp": time.Now().Add(s.ttl).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return token, nil
}

func (s *RedisStore) UserID(ctx context.Context, token string) (uint, error) {
	sid, err := s.sessionID(token)
	if err != nil {
		return 0, err
	}

	raw, err := s.rdb.Get(ctx, keyPrefix+sid).Result()
	if err == redis.Nil {
		return 0, ErrInvalid
	}
	if err != nil {
		return 0, fmt.Errorf("failed to load session: %w", err)
	}

	userID, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, ErrInvalid
	}
	return uint(userID), nil
}

func (s *RedisStore) Destroy(ctx context.Context, token string) error {
	sid, err := s.sessionID(token)
	if err != nil {
		// Nothing server-side to clear for a token we never issued.
		return nil
	}
	if err := s.rdb.Del(ctx, keyPrefix+sid).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (s *RedisStore) sessionID(token string) (string, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return "", ErrInvalid
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalid
	}
	sid, ok := claims["sid"].(string)
	if !ok || sid == "" {
		return "", ErrInvalid
	}
	return sid, nil
}
