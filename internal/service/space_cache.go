package service

import (
	"context"
	"sync"

	"github.com/chen-001/tapirtwins-go/internal/api"
	"github.com/chen-001/tapirtwins-go/internal/model"
)

// spaceCache 空间成员快照缓存
// 能力判定依赖成员快照;未加载时判定结果为 Indeterminate,
// 由调用方拉取一次后重试,而不是默认拒绝
type spaceCache struct {
	api    api.TaskAPI
	mu     sync.RWMutex
	spaces map[string]*model.Space
}

func newSpaceCache(client api.TaskAPI) *spaceCache {
	return &spaceCache{
		api:    client,
		spaces: make(map[string]*model.Space),
	}
}

// cached 返回已缓存的空间快照,未缓存或个人任务时返回 nil
func (c *spaceCache) cached(spaceID string) *model.Space {
	if spaceID == "" {
		return nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.spaces[spaceID]
}

// fetch 拉取空间快照并缓存
func (c *spaceCache) fetch(ctx context.Context, spaceID string) (*model.Space, error) {
	space, err := c.api.GetSpace(ctx, spaceID)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.spaces[spaceID] = space
	c.mu.Unlock()
	return space, nil
}
