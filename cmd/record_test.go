/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>

*/
package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRecordListScope 测试 record list 的查询口径解析
func TestRecordListScope(t *testing.T) {
	// 无参数无 --today: 全部记录
	taskID, err := recordListScope(nil, false)
	require.NoError(t, err)
	assert.Empty(t, taskID)

	// 指定任务
	taskID, err = recordListScope([]string{"task-001"}, false)
	require.NoError(t, err)
	assert.Equal(t, "task-001", taskID)

	// 仅 --today
	taskID, err = recordListScope(nil, true)
	require.NoError(t, err)
	assert.Empty(t, taskID)

	// 任务参数与 --today 互斥
	_, err = recordListScope([]string{"task-001"}, true)
	assert.Error(t, err)
}
