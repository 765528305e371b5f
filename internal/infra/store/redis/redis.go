package redisx

import (
	"context"
	"fmt"
	"log"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/davay42/sw-gallery/internal/domain"
)

const keyPrefix = "img:"

type Config struct {
	Addr     string
	DB       int
	Password string
}

// Store — реализация domain.BlobStore поверх Redis: hash на запись,
// поля blob/ts/size/type.
type Store struct {
	rdb    *redis.Client
	logger *log.Logger
}

func New(cfg Config, logger *log.Logger) *Store {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		DB:       cfg.DB,
		Password: cfg.Password,
	})
	return &Store{rdb: rdb, logger: logger}
}

func (s *Store) Get(ctx context.Context, filename string) (domain.StoredItem, error) {
	fields, err := s.rdb.HGetAll(ctx, keyPrefix+filename).Result()
	if err != nil {
		s.logger.Printf("HGETALL %q failed: %v", filename, err)
		return domain.StoredItem{}, fmt.Errorf("%w: %v", domain.ErrStore, err)
	}
	if len(fields) == 0 {
		return domain.StoredItem{}, fmt.Errorf("%q: %w", filename, domain.ErrNotFound)
	}
	item := domain.StoredItem{
		Filename: filename,
		Blob:     []byte(fields["blob"]),
		Type:     fields["type"],
	}
	item.Timestamp, _ = strconv.ParseInt(fields["ts"], 10, 64)
	item.Size, _ = strconv.ParseInt(fields["size"], 10, 64)
	return item, nil
}

func (s *Store) GetAll(ctx context.Context) ([]domain.StoredItem, error) {
	var items []domain.StoredItem
	iter := s.rdb.Scan(ctx, 0, keyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		// только метаданные, blob не тянем
		vals, err := s.rdb.HMGet(ctx, key, "ts", "size", "type").Result()
		if err != nil {
			s.logger.Printf("HMGET %q failed: %v", key, err)
			return nil, fmt.Errorf("%w: %v", domain.ErrStore, err)
		}
		item := domain.StoredItem{Filename: key[len(keyPrefix):]}
		if v, ok := vals[0].(string); ok {
			item.Timestamp, _ = strconv.ParseInt(v, 10, 64)
		}
		if v, ok := vals[1].(string); ok {
			item.Size, _ = strconv.ParseInt(v, 10, 64)
		}
		if v, ok := vals[2].(string); ok {
			item.Type = v
		}
		items = append(items, item)
	}
	if err := iter.Err(); err != nil {
		s.logger.Printf("SCAN failed: %v", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrStore, err)
	}
	return items, nil
}

// Put заменяет запись целиком: DEL + HSET в одном пайплайне.
func (s *Store) Put(ctx context.Context, item domain.StoredItem) error {
	key := keyPrefix + item.Filename
	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key, map[string]any{
		"blob": item.Blob,
		"ts":   item.Timestamp,
		"size": item.Size,
		"type": item.Type,
	})
	if _, err := pipe.Exec(ctx); err != nil {
		s.logger.Printf("PUT %q failed: %v", item.Filename, err)
		return fmt.Errorf("%w: %v", domain.ErrStore, err)
	}
	s.logger.Printf("PUT %q ok (%d bytes)", item.Filename, item.Size)
	return nil
}

func (s *Store) Delete(ctx context.Context, filename string) error {
	n, err := s.rdb.Del(ctx, keyPrefix+filename).Result()
	if err != nil {
		s.logger.Printf("DEL %q failed: %v", filename, err)
		return fmt.Errorf("%w: %v", domain.ErrStore, err)
	}
	s.logger.Printf("DEL %q: deleted=%d", filename, n)
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	err := s.rdb.Ping(ctx).Err()
	if err != nil {
		s.logger.Printf("PING failed: %v", err)
	} else {
		s.logger.Println("PING ok")
	}
	return err
}

func (s *Store) Close() {
	if err := s.rdb.Close(); err != nil {
		s.logger.Printf("error while closing: %v", err)
		return
	}
	s.logger.Println("closed")
}
