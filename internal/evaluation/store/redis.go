package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"curaframe/internal/evaluation"
)

const (
	resultKeyPrefix    = "curaframe:result:"
	candidateKeyPrefix = "curaframe:candidate:"
	recentKey          = "curaframe:recent"
)

// RedisHistoryStore keeps results as JSON strings and indexes them in sorted
// sets scored by evaluation time, one per candidate and one for everything.
type RedisHistoryStore struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *RedisHistoryStore {
	return &RedisHistoryStore{client: client}
}

func (s *RedisHistoryStore) Save(ctx context.Context, result *evaluation.Result) error {
	return s.SaveAll(ctx, []*evaluation.Result{result})
}

// SaveAll writes the batch in a single MULTI/EXEC so readers never see part
// of it.
func (s *RedisHistoryStore) SaveAll(ctx context.Context, results []*evaluation.Result) error {
	pipe := s.client.TxPipeline()
	for _, result := range results {
		if result == nil {
			return ErrNilResult
		}
		payload, err := json.Marshal(result)
		if err != nil {
			return fmt.Errorf("marshal evaluation result: %w", err)
		}
		id := result.ID.String()
		score := float64(result.EvaluatedAt.UnixNano())
		pipe.Set(ctx, resultKeyPrefix+id, payload, 0)
		pipe.ZAdd(ctx, candidateKeyPrefix+result.CandidateName, redis.Z{Score: score, Member: id})
		pipe.ZAdd(ctx, recentKey, redis.Z{Score: score, Member: id})
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save evaluation result: %w", err)
	}
	return nil
}

func (s *RedisHistoryStore) ListByCandidate(ctx context.Context, candidateName string, limit int) ([]*evaluation.Result, error) {
	return s.list(ctx, candidateKeyPrefix+candidateName, limit)
}

func (s *RedisHistoryStore) ListRecent(ctx context.Context, limit int) ([]*evaluation.Result, error) {
	return s.list(ctx, recentKey, limit)
}

func (s *RedisHistoryStore) list(ctx context.Context, index string, limit int) ([]*evaluation.Result, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit - 1)
	}
	ids, err := s.client.ZRevRange(ctx, index, 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("read index %s: %w", index, err)
	}
	out := make([]*evaluation.Result, 0, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	pipe := s.client.Pipeline()
	cmds := make([]*redis.StringCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.Get(ctx, resultKeyPrefix+id)
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("load evaluation results: %w", err)
	}
	for i, cmd := range cmds {
		raw, err := cmd.Bytes()
		if errors.Is(err, redis.Nil) {
			// index entry outlived its payload
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("load evaluation result %s: %w", ids[i], err)
		}
		var r evaluation.Result
		if err := json.Unmarshal(raw, &r); err != nil {
			return nil, fmt.Errorf("decode evaluation result %s: %w", ids[i], err)
		}
		out = append(out, &r)
	}
	return out, nil
}
