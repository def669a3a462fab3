package store

import (
	"sort"
	"sync"

	"github.com/chen-001/tapirtwins-go/internal/model"
)

// MergePersonalAndSpace 合并个人任务与空间任务
// 任务总是显式归属某个范围,两个集合天然不相交,直接拼接即可;
// 梦境的合并策略不同,见 dream_store.go
func MergePersonalAndSpace(personal, space []*model.Task) []*model.Task {
	merged := make([]*model.Task, 0, len(personal)+len(space))
	merged = append(merged, personal...)
	merged = append(merged, space...)
	return merged
}

// SortForDisplay 按展示顺序排序(原地排序并返回)
// 未完成的排在已完成之前;同组内有截止时间的按截止时间升序,
// 无截止时间的排在有截止时间的之后、按创建时间降序
func SortForDisplay(tasks []*model.Task) []*model.Task {
	sort.SliceStable(tasks, func(i, j int) bool {
		return displayLess(tasks[i], tasks[j])
	})
	return tasks
}

func displayLess(a, b *model.Task) bool {
	// 未完成优先于任何日期序
	if a.CompletedToday != b.CompletedToday {
		return !a.CompletedToday
	}
	switch {
	case a.DueDate != nil && b.DueDate != nil:
		if !a.DueDate.Equal(*b.DueDate) {
			return a.DueDate.Before(*b.DueDate)
		}
		return a.CreatedAt.After(b.CreatedAt)
	case a.DueDate != nil:
		return true
	case b.DueDate != nil:
		return false
	default:
		return a.CreatedAt.After(b.CreatedAt)
	}
}

// TaskStore 任务的内存存储
// 同一屏幕会话只由一个协调器持有;对账回读整体替换内容,
// 以完成顺序后写胜出
type TaskStore struct {
	mu    sync.RWMutex
	tasks []*model.Task
}

// NewTaskStore 创建任务存储
func NewTaskStore() *TaskStore {
	return &TaskStore{}
}

// Replace 原子地替换全部任务并按展示顺序排序
func (s *TaskStore) Replace(tasks []*model.Task) {
	sorted := SortForDisplay(append([]*model.Task(nil), tasks...))
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = sorted
}

// Tasks 返回当前任务快照
func (s *TaskStore) Tasks() []*model.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*model.Task(nil), s.tasks...)
}

// Get 按 ID 查找任务,不存在时返回 nil
func (s *TaskStore) Get(id string) *model.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.tasks {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// Remove 删除任务(历史打卡记录保留用于审计)
func (s *TaskStore) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.tasks[:0]
	for _, t := range s.tasks {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	s.tasks = kept
}

// Len 返回任务数量
func (s *TaskStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tasks)
}
