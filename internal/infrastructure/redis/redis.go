package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/example/court-booking/internal/domain/booking"
)

const DefaultLocalKey = "courtbook:local_bookings"

func NewClient(addr, password string, db int) *goredis.Client {
	return goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

// LocalStore persists the local booking partition as one JSON array under Key.
type LocalStore struct {
	client *goredis.Client
	key    string
}

func NewLocalStore(client *goredis.Client, key string) *LocalStore {
	if key == "" {
		key = DefaultLocalKey
	}
	return &LocalStore{client: client, key: key}
}

func (s *LocalStore) Load(ctx context.Context) ([]booking.Booking, error) {
	val, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", s.key, err)
	}
	var out []booking.Booking
	if err := json.Unmarshal(val, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.key, err)
	}
	return out, nil
}

func (s *LocalStore) Save(ctx context.Context, bs []booking.Booking) error {
	if bs == nil {
		bs = []booking.Booking{}
	}
	data, err := json.Marshal(bs)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("save %s: %w", s.key, err)
	}
	return nil
}

// DraftStore keeps each session's selection under draft:<session>, expiring after TTL.
type DraftStore struct {
	client *goredis.Client
	ttl    time.Duration
}

func NewDraftStore(client *goredis.Client, ttl time.Duration) *DraftStore {
	return &DraftStore{client: client, ttl: ttl}
}

func draftKey(session string) string { return "draft:" + session }

func (s *DraftStore) Get(ctx context.Context, session string) (booking.Selection, error) {
	val, err := s.client.Get(ctx, draftKey(session)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return booking.Selection{}, nil
	}
	if err != nil {
		return booking.Selection{}, err
	}
	var sel booking.Selection
	if err := json.Unmarshal(val, &sel); err != nil {
		return booking.Selection{}, err
	}
	return sel, nil
}

func (s *DraftStore) Put(ctx context.Context, session string, sel booking.Selection) error {
	data, err := json.Marshal(sel)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, draftKey(session), data, s.ttl).Err()
}

func (s *DraftStore) Delete(ctx context.Context, session string) error {
	return s.client.Del(ctx, draftKey(session)).Err()
}
