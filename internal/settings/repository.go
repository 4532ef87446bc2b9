// Package settings stores the small fixed set of bot configuration values
// (owner id, manager chat id, support handle, reviews link) as key-value rows.
package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/jmoiron/sqlx"

	"github.com/skupfast/skupbot/core/logger"
	"log/slog"
)

// Keys form the fixed vocabulary of configuration entries.
const (
	KeyOwnerID         = "owner_id"
	KeyManagerChatID   = "manager_chat_id"
	KeySupportUsername = "support_username"
	KeyReviewsLink     = "reviews_link"
)

var (
	// ErrNotFound is returned when the requested key has no stored value.
	ErrNotFound = errors.New("setting not found")
	// ErrUnknownKey is returned when the key is outside the fixed vocabulary.
	ErrUnknownKey = errors.New("unknown setting key")
)

var knownKeys = map[string]struct{}{
	KeyOwnerID:         {},
	KeyManagerChatID:   {},
	KeySupportUsername: {},
	KeyReviewsLink:     {},
}

// IsKnownKey reports whether key belongs to the fixed vocabulary.
func IsKnownKey(key string) bool {
	_, ok := knownKeys[key]
	return ok
}

// Repository provides upsert/get access to bot configuration entries.
type Repository interface {
	Set(ctx context.Context, key, value string) error
	Get(ctx context.Context, key string) (string, error)
	OwnerID(ctx context.Context) (int64, error)
	ManagerChatID(ctx context.Context) (int64, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository constructs a Postgres-backed settings repository.
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

// Set upserts the value for key. Writing a key replaces any prior value.
func (r *repository) Set(ctx context.Context, key, value string) error {
	if !IsKnownKey(key) {
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO bot_config (key, value)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`,
		key, value)
	if err != nil {
		logger.SVCSettings.Error("set failed",
			slog.String("event", "settings.set"),
			slog.String("status", "fail"),
			slog.String("key", key),
			slog.String("err", err.Error()),
		)
		return fmt.Errorf("upsert setting %s: %w", key, err)
	}
	logger.SVCSettings.Debug("set",
		slog.String("event", "settings.set"),
		slog.String("status", "ok"),
		slog.String("key", key),
	)
	return nil
}

// Get returns the stored value for key or ErrNotFound.
func (r *repository) Get(ctx context.Context, key string) (string, error) {
	if !IsKnownKey(key) {
		return "", fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	var value string
	err := r.db.GetContext(ctx, &value, `SELECT value FROM bot_config WHERE key = $1`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("select setting %s: %w", key, err)
	}
	return value, nil
}

// OwnerID returns the registered owner identity, if any.
func (r *repository) OwnerID(ctx context.Context) (int64, error) {
	return r.getInt64(ctx, KeyOwnerID)
}

// ManagerChatID returns the configured manager chat, if any.
func (r *repository) ManagerChatID(ctx context.Context) (int64, error) {
	return r.getInt64(ctx, KeyManagerChatID)
}

func (r *repository) getInt64(ctx context.Context, key string) (int64, error) {
	raw, err := r.Get(ctx, key)
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse setting %s: %w", key, err)
	}
	return id, nil
}
