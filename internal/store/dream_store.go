package store

import (
	"sort"

	"github.com/chen-001/tapirtwins-go/internal/model"
)

// MergeWithDefaultSpace 合并个人梦境与默认空间的梦境
// 同一条梦境可能同时出现在个人列表与空间列表中,按 (标题, 日期)
// 精确匹配去重,保留个人条目;结果按日期降序。
// 任务的合并不做去重,见 task_store.go
func MergeWithDefaultSpace(personal, space []model.Dream) []model.Dream {
	type key struct {
		title string
		date  string
	}
	seen := make(map[key]struct{}, len(personal))
	merged := make([]model.Dream, 0, len(personal)+len(space))

	for _, d := range personal {
		seen[key{d.Title, d.Date}] = struct{}{}
		merged = append(merged, d)
	}
	for _, d := range space {
		if _, dup := seen[key{d.Title, d.Date}]; dup {
			continue
		}
		seen[key{d.Title, d.Date}] = struct{}{}
		merged = append(merged, d)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Date > merged[j].Date
	})
	return merged
}
