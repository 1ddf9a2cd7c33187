package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"taskman/internal/models"

	"github.com/go-redis/redis/v8"
)

const taskTTL = time.Hour

// TaskCache is a read-through cache for single-task lookups. Every
// write path must call Invalidate or Set so reads never see a stale
// row.
type TaskCache struct {
	rdb *redis.Client
}

func NewTaskCache(rdb *redis.Client) *TaskCache {
	return &TaskCache{rdb: rdb}
}

func taskKey(taskID int) string {
	return fmt.Sprintf("task:%d", taskID)
}

// Get returns the cached task and whether a usable entry was found.
// Any Redis or decode problem counts as a miss.
func (c *TaskCache) Get(ctx context.Context, taskID int) (models.Task, bool) {
	cached, err := c.rdb.Get(ctx, taskKey(taskID)).Result()
	if err != nil {
		return models.Task{}, false
	}
	var task models.Task
	if err := json.Unmarshal([]byte(cached), &task); err != nil {
		return models.Task{}, false
	}
	return task, true
}

// Set stores the task for an hour. Failures are ignored: caching is
// best-effort and the database stays authoritative.
func (c *TaskCache) Set(ctx context.Context, task models.Task) {
	data, err := json.Marshal(task)
	if err != nil {
		return
	}
	c.rdb.SetEX(ctx, taskKey(task.ID), data, taskTTL)
}

func (c *TaskCache) Invalidate(ctx context.Context, taskID int) {
	c.rdb.Del(ctx, taskKey(taskID))
}
