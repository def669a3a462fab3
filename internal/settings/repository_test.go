package settings

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/chen-001/tapirtwins-go/internal/database"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

// TestDefaultSpaceID 默认空间读写,未设置时返回空串
func TestDefaultSpaceID(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	id, err := repo.DefaultSpaceID()
	require.NoError(t, err)
	assert.Empty(t, id)

	require.NoError(t, repo.SetDefaultSpaceID("space-001"))
	id, err = repo.DefaultSpaceID()
	require.NoError(t, err)
	assert.Equal(t, "space-001", id)

	// 覆盖写入
	require.NoError(t, repo.SetDefaultSpaceID("space-002"))
	id, err = repo.DefaultSpaceID()
	require.NoError(t, err)
	assert.Equal(t, "space-002", id)
}

// TestLastSyncAt 同步时间读写,未设置时返回 nil
func TestLastSyncAt(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	got, err := repo.LastSyncAt()
	require.NoError(t, err)
	assert.Nil(t, got)

	at := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.SetLastSyncAt(at))

	got, err = repo.LastSyncAt()
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Equal(at))
}

// TestDatabaseHealth 健康检查
func TestDatabaseHealth(t *testing.T) {
	db := setupTestDB(t)
	assert.True(t, database.CheckHealth(db))
	assert.False(t, database.CheckHealth(nil))
}
