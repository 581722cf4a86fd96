package cache

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"surveyservice/internal/model"
)

// StatsCache keeps running submission counters per survey cycle
type StatsCache interface {
	RecordResponse(ctx context.Context, cycleID string, details []*model.SurveyResponseDetail) error
	CycleStats(ctx context.Context, cycleID string) (*model.CycleStats, error)
}

type statsCache struct {
	client *redis.Client
}

// NewStatsCache creates a new stats cache
func NewStatsCache(client *redis.Client) StatsCache {
	return &statsCache{
		client: client,
	}
}

func (c *statsCache) responsesKey(cycleID string) string {
	return fmt.Sprintf("cycle:%s:responses", cycleID)
}

func (c *statsCache) optionsKey(cycleID string) string {
	return fmt.Sprintf("cycle:%s:options", cycleID)
}

// RecordResponse counts one response and every selected option in a single
// transaction.
func (c *statsCache) RecordResponse(ctx context.Context, cycleID string, details []*model.SurveyResponseDetail) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, c.responsesKey(cycleID))
		for _, d := range details {
			if d.OptionID == nil {
				continue
			}
			pipe.HIncrBy(ctx, c.optionsKey(cycleID), d.QuestionID+":"+*d.OptionID, 1)
		}
		return nil
	})
	return err
}

func (c *statsCache) CycleStats(ctx context.Context, cycleID string) (*model.CycleStats, error) {
	stats := &model.CycleStats{
		SurveyCycleID:   cycleID,
		OptionSelection: map[string]int64{},
	}

	total, err := c.client.Get(ctx, c.responsesKey(cycleID)).Int64()
	if err != nil && err != redis.Nil {
		return nil, err
	}
	stats.TotalResponses = total

	counts, err := c.client.HGetAll(ctx, c.optionsKey(cycleID)).Result()
	if err != nil {
		return nil, err
	}
	for field, v := range counts {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("option counter %s: %w", field, err)
		}
		stats.OptionSelection[field] = n
	}
	return stats, nil
}
