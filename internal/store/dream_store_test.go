package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chen-001/tapirtwins-go/internal/model"
)

// TestMergeWithDefaultSpace 梦境合并按 (标题, 日期) 去重,保留个人条目
func TestMergeWithDefaultSpace(t *testing.T) {
	personal := []model.Dream{
		{ID: "p1", Title: "飞行", Date: "2026-08-20"},
		{ID: "p2", Title: "坠落", Date: "2026-08-22"},
	}
	space := []model.Dream{
		// 与 p1 同标题同日期,去重
		{ID: "s1", Title: "飞行", Date: "2026-08-20"},
		// 同标题不同日期,保留
		{ID: "s2", Title: "飞行", Date: "2026-08-21"},
	}

	merged := MergeWithDefaultSpace(personal, space)
	require.Len(t, merged, 3)

	// 按日期降序
	assert.Equal(t, "p2", merged[0].ID)
	assert.Equal(t, "s2", merged[1].ID)
	assert.Equal(t, "p1", merged[2].ID)
}

// TestMergeWithDefaultSpaceEmpty 空集合合并安全
func TestMergeWithDefaultSpaceEmpty(t *testing.T) {
	assert.Empty(t, MergeWithDefaultSpace(nil, nil))

	only := []model.Dream{{ID: "p1", Title: "飞行", Date: "2026-08-20"}}
	merged := MergeWithDefaultSpace(only, nil)
	require.Len(t, merged, 1)
	assert.Equal(t, "p1", merged[0].ID)
}
