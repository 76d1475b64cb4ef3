package service

import (
	"context"
	"errors"
	"estudiapro_backend/internal/model"
	"estudiapro_backend/internal/repository"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// SessionStore tracks issued token ids so logout can revoke a token before
// it expires.
type SessionStore interface {
	Save(ctx context.Context, tokenID string, userID uint, expiresAt time.Time) error
	IsActive(ctx context.Context, tokenID string) (bool, error)
	Revoke(ctx context.Context, tokenID string) error
}

type DBSessionStore struct {
	Repo *repository.SessionRepository
}

func NewDBSessionStore(repo *repository.SessionRepository) *DBSessionStore {
	return &DBSessionStore{Repo: repo}
}

func (s *DBSessionStore) Save(_ context.Context, tokenID string, userID uint, expiresAt time.Time) error {
	return s.Repo.Create(&model.AuthSession{TokenID: tokenID, UserID: userID, ExpiresAt: expiresAt})
}

func (s *DBSessionStore) IsActive(_ context.Context, tokenID string) (bool, error) {
	session, err := s.Repo.FindByTokenID(tokenID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return session.RevokedAt == nil && time.Now().Before(session.ExpiresAt), nil
}

func (s *DBSessionStore) Revoke(_ context.Context, tokenID string) error {
	return s.Repo.Revoke(tokenID)
}

// RedisSessionStore keeps one key per token that expires with the token.
type RedisSessionStore struct {
	Client *redis.Client
	Prefix string
}

func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{Client: client, Prefix: "estudiapro:session:"}
}

func (s *RedisSessionStore) key(tokenID string) string {
	return s.Prefix + tokenID
}

func (s *RedisSessionStore) Save(ctx context.Context, tokenID string, userID uint, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return fmt.Errorf("session already expired")
	}
	return s.Client.Set(ctx, s.key(tokenID), userID, ttl).Err()
}

func (s *RedisSessionStore) IsActive(ctx context.Context, tokenID string) (bool, error) {
	n, err := s.Client.Exists(ctx, s.key(tokenID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *RedisSessionStore) Revoke(ctx context.Context, tokenID string) error {
	return s.Client.Del(ctx, s.key(tokenID)).Err()
}
