package leaderboard

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/ilmhub/quizhub/internal/quiz"
)

const keyPrefix = "leaderboard:"

// Service serves leaderboards through a Redis cache when a client is
// configured, and straight from the aggregator when it is nil. Boards are
// invalidated wholesale whenever a submission is written.
type Service struct {
	agg    *Aggregator
	client *redis.Client
	ttl    time.Duration
	sf     singleflight.Group
}

func NewService(agg *Aggregator, client *redis.Client, ttl time.Duration) *Service {
	return &Service{agg: agg, client: client, ttl: ttl}
}

func (s *Service) EvaluateModule(ctx context.Context, moduleID string) (ModuleEvaluation, error) {
	return s.agg.EvaluateModule(ctx, moduleID)
}

func (s *Service) Global(ctx context.Context, section string) ([]Row, error) {
	return s.board(ctx, keyPrefix+"all:"+sectionKey(section), func() ([]Row, error) {
		return s.agg.Global(ctx, section)
	})
}

func (s *Service) Module(ctx context.Context, moduleID, section string) ([]Row, error) {
	return s.board(ctx, keyPrefix+"module:"+moduleID+":"+sectionKey(section), func() ([]Row, error) {
		return s.agg.Module(ctx, moduleID, section)
	})
}

func (s *Service) ParticipantsByDay(ctx context.Context, quizDayID string) ([]quiz.Submission, error) {
	return s.agg.ParticipantsByDay(ctx, quizDayID)
}

// Invalidate drops every cached board. Called after each submission.
func (s *Service) Invalidate(ctx context.Context) {
	if s.client == nil {
		return
	}
	keys, err := s.client.Keys(ctx, keyPrefix+"*").Result()
	if err != nil || len(keys) == 0 {
		return
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		log.Printf("leaderboard: cache invalidation failed: %v", err)
	}
}

func (s *Service) board(ctx context.Context, key string, compute func() ([]Row, error)) ([]Row, error) {
	if s.client == nil {
		return compute()
	}
	if raw, err := s.client.Get(ctx, key).Bytes(); err == nil {
		var rows []Row
		if json.Unmarshal(raw, &rows) == nil {
			return rows, nil
		}
	}
	v, err, _ := s.sf.Do(key, func() (interface{}, error) {
		if raw, err := s.client.Get(ctx, key).Bytes(); err == nil {
			var rows []Row
			if json.Unmarshal(raw, &rows) == nil {
				return rows, nil
			}
		}
		rows, err := compute()
		if err != nil {
			return nil, err
		}
		if raw, err := json.Marshal(rows); err == nil {
			if err := s.client.Set(ctx, key, raw, s.ttl).Err(); err != nil {
				log.Printf("leaderboard: cache write failed: %v", err)
			}
		}
		return rows, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]Row), nil
}

func sectionKey(section string) string {
	if section == "" {
		return SectionAll
	}
	return section
}
