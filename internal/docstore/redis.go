package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const redisKeyPrefix = "studyplan"

// RedisStore is the ephemeral backend of demo sessions. Every document and the
// per-collection id index expire ttl after the last write to the collection.
type RedisStore struct {
	rdb *goredis.Client
	ttl time.Duration
}

// NewRedisClient connects to addr and verifies the connection with a ping.
func NewRedisClient(addr string) (*goredis.Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

func NewRedisStore(rdb *goredis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func (s *RedisStore) docKey(owner string, collection string, id string) string {
	return fmt.Sprintf("%s:%s:%s:%s", redisKeyPrefix, owner, collection, id)
}

func (s *RedisStore) indexKey(owner string, collection string) string {
	return fmt.Sprintf("%s:%s:%s", redisKeyPrefix, owner, collection)
}

func (s *RedisStore) GetDocument(ctx context.Context, owner string, collection string, id string) (json.RawMessage, error) {
	data, err := s.rdb.HGet(ctx, s.docKey(owner, collection, id), "data").Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		return nil, unavailable("get", collection, id, err)
	}
	return data, nil
}

func (s *RedisStore) SetDocument(ctx context.Context, owner string, collection string, id string, data json.RawMessage) error {
	key := s.docKey(owner, collection, id)
	index := s.indexKey(owner, collection)
	now := strconv.FormatInt(time.Now().UnixMilli(), 10)

	_, err := s.rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.HSetNX(ctx, key, "createdAt", now)
		pipe.HSet(ctx, key, "data", string(data), "updatedAt", now)
		pipe.SAdd(ctx, index, id)
		if s.ttl > 0 {
			pipe.Expire(ctx, key, s.ttl)
			pipe.Expire(ctx, index, s.ttl)
		}
		return nil
	})
	if err != nil {
		log.Errorf("failed to set demo document %s/%s: %v", collection, id, err)
		return unavailable("set", collection, id, err)
	}
	return nil
}

func (s *RedisStore) DeleteDocument(ctx context.Context, owner string, collection string, id string) error {
	_, err := s.rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Del(ctx, s.docKey(owner, collection, id))
		pipe.SRem(ctx, s.indexKey(owner, collection), id)
		return nil
	})
	if err != nil {
		return unavailable("delete", collection, id, err)
	}
	return nil
}

func (s *RedisStore) ListAllDocuments(ctx context.Context, owner string, collection string) (map[string]json.RawMessage, error) {
	ids, err := s.rdb.SMembers(ctx, s.indexKey(owner, collection)).Result()
	if err != nil {
		return nil, unavailable("list", collection, "*", err)
	}
	result := make(map[string]json.RawMessage, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	cmds := make(map[string]*goredis.StringCmd, len(ids))
	_, err = s.rdb.Pipelined(ctx, func(pipe goredis.Pipeliner) error {
		for _, id := range ids {
			cmds[id] = pipe.HGet(ctx, s.docKey(owner, collection, id), "data")
		}
		return nil
	})
	if err != nil && !errors.Is(err, goredis.Nil) {
		return nil, unavailable("list", collection, "*", err)
	}
	for id, cmd := range cmds {
		data, err := cmd.Bytes()
		if err != nil {
			// expired between SMEMBERS and HGET
			continue
		}
		result[id] = data
	}
	return result, nil
}
