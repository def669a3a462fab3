package store

import (
	"sort"
	"sync"
	"time"

	"github.com/chen-001/tapirtwins-go/internal/model"
)

// RecordStore 打卡记录与审批历史的内存存储
// 记录按任务分组;历史条目只追加,展示时按创建时间倒序
type RecordStore struct {
	mu      sync.RWMutex
	byTask  map[string][]*model.TaskRecord
	history []*model.HistoryEvent
}

// NewRecordStore 创建记录存储
func NewRecordStore() *RecordStore {
	return &RecordStore{
		byTask: make(map[string][]*model.TaskRecord),
	}
}

// Replace 原子地替换全部打卡记录(不影响历史条目)
func (s *RecordStore) Replace(records []*model.TaskRecord) {
	byTask := make(map[string][]*model.TaskRecord)
	for _, r := range records {
		byTask[r.TaskID] = append(byTask[r.TaskID], r)
	}
	for taskID := range byTask {
		sortByCreatedDesc(byTask[taskID])
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byTask = byTask
}

// Apply 写入单条记录,同 ID 覆盖、否则新增
func (s *RecordStore) Apply(record *model.TaskRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	records := s.byTask[record.TaskID]
	for i, r := range records {
		if r.ID == record.ID {
			records[i] = record
			return
		}
	}
	s.byTask[record.TaskID] = append([]*model.TaskRecord{record}, records...)
	sortByCreatedDesc(s.byTask[record.TaskID])
}

// Active 返回任务的活跃记录(最新一条),没有记录时返回 nil
func (s *RecordStore) Active(taskID string) *model.TaskRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	records := s.byTask[taskID]
	if len(records) == 0 {
		return nil
	}
	return records[0]
}

// Get 按记录 ID 查找,不存在时返回 nil
func (s *RecordStore) Get(recordID string) *model.TaskRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, records := range s.byTask {
		for _, r := range records {
			if r.ID == recordID {
				return r
			}
		}
	}
	return nil
}

// ByTask 返回指定任务的全部记录,按创建时间倒序
func (s *RecordStore) ByTask(taskID string) []*model.TaskRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*model.TaskRecord(nil), s.byTask[taskID]...)
}

// Today 返回 now 所在自然日(本地时区)内创建的记录
func (s *RecordStore) Today(now time.Time) []*model.TaskRecord {
	y, m, d := now.Date()
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []*model.TaskRecord
	for _, records := range s.byTask {
		for _, r := range records {
			ry, rm, rd := r.CreatedAt.In(now.Location()).Date()
			if ry == y && rm == m && rd == d {
				result = append(result, r)
			}
		}
	}
	sortByCreatedDesc(result)
	return result
}

// AppendHistory 追加一条审计历史,历史不允许修改或删除
func (s *RecordStore) AppendHistory(event *model.HistoryEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, event)
}

// ReplaceHistory 用服务端的权威历史列表替换本地缓存
func (s *RecordStore) ReplaceHistory(events []*model.HistoryEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append([]*model.HistoryEvent(nil), events...)
}

// History 返回历史条目,最新的在前
func (s *RecordStore) History() []*model.HistoryEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	events := append([]*model.HistoryEvent(nil), s.history...)
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].CreatedAt.After(events[j].CreatedAt)
	})
	return events
}

func sortByCreatedDesc(records []*model.TaskRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
}
