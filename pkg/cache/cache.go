package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"holdem-server/pkg/model"
)

// Config holds the Redis connection and expiry settings
type Config struct {
	URL         string
	RoomTTL     time.Duration
	SnapshotTTL time.Duration
}

// DefaultConfig returns the default expiry settings
func DefaultConfig() Config {
	return Config{
		URL:         "redis://localhost:6379",
		RoomTTL:     time.Hour,
		SnapshotTTL: 5 * time.Minute,
	}
}

// RoomView is a room with the players currently sitting in it
type RoomView struct {
	Room    *model.Room         `json:"room"`
	Players []*model.RoomPlayer `json:"players"`
}

// Redis caches rooms and the latest serialized hand for each session
type Redis struct {
	client *redis.Client
	cfg    Config
}

// New connects to Redis and verifies the connection
func New(cfg Config) (*Redis, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return NewWithClient(client, cfg), nil
}

// NewWithClient wraps an existing client
func NewWithClient(client *redis.Client, cfg Config) *Redis {
	return &Redis{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (r *Redis) Close() error {
	return r.client.Close()
}

// SaveRoom caches the room view
func (r *Redis) SaveRoom(ctx context.Context, view *RoomView) error {
	data, err := json.Marshal(view)
	if err != nil {
		return err
	}

	return r.client.Set(ctx, roomKey(view.Room.ID), data, r.cfg.RoomTTL).Err()
}

// GetRoom returns the cached room view or model.ErrNotFound
func (r *Redis) GetRoom(ctx context.Context, roomID string) (*RoomView, error) {
	data, err := r.get(ctx, roomKey(roomID))
	if err != nil {
		return nil, err
	}

	var view RoomView
	if err := json.Unmarshal(data, &view); err != nil {
		return nil, err
	}

	return &view, nil
}

// InvalidateRoom drops the cached room view
func (r *Redis) InvalidateRoom(ctx context.Context, roomID string) error {
	return r.client.Del(ctx, roomKey(roomID)).Err()
}

// SaveGame caches the serialized hand
func (r *Redis) SaveGame(ctx context.Context, sessionID string, state []byte) error {
	return r.client.Set(ctx, gameKey(sessionID), state, r.cfg.SnapshotTTL).Err()
}

// GetGame returns the serialized hand or model.ErrNotFound
func (r *Redis) GetGame(ctx context.Context, sessionID string) ([]byte, error) {
	return r.get(ctx, gameKey(sessionID))
}

func (r *Redis) get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrNotFound
		}

		return nil, err
	}

	return data, nil
}

func roomKey(roomID string) string {
	return "holdem:room:" + roomID
}

func gameKey(sessionID string) string {
	return "holdem:game:" + sessionID
}
