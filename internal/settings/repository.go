package settings

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/chen-001/tapirtwins-go/internal/model"
)

const (
	keyDefaultSpaceID = "default_space_id"
	keyLastSyncAt     = "last_sync_at"
)

// Repository 本地设置仓储接口
// 默认共享空间的选择影响任务与梦境列表的合并行为
type Repository interface {
	DefaultSpaceID() (string, error)
	SetDefaultSpaceID(id string) error
	LastSyncAt() (*time.Time, error)
	SetLastSyncAt(t time.Time) error
}

// repository 设置仓储实现
type repository struct {
	db *gorm.DB
}

// NewRepository 创建设置仓储
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// DefaultSpaceID 读取默认共享空间,未设置时返回空串
func (r *repository) DefaultSpaceID() (string, error) {
	return r.get(keyDefaultSpaceID)
}

// SetDefaultSpaceID 写入默认共享空间
func (r *repository) SetDefaultSpaceID(id string) error {
	return r.set(keyDefaultSpaceID, id)
}

// LastSyncAt 读取最近一次同步时间,未设置时返回 nil
func (r *repository) LastSyncAt() (*time.Time, error) {
	value, err := r.get(keyLastSyncAt)
	if err != nil || value == "" {
		return nil, err
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, fmt.Errorf("failed to parse last sync time: %w", err)
	}
	return &t, nil
}

// SetLastSyncAt 写入最近一次同步时间
func (r *repository) SetLastSyncAt(t time.Time) error {
	return r.set(keyLastSyncAt, t.Format(time.RFC3339))
}

func (r *repository) get(key string) (string, error) {
	var setting model.SettingModel
	if err := r.db.Where("key = ?", key).First(&setting).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read setting %q: %w", key, err)
	}
	return setting.Value, nil
}

func (r *repository) set(key, value string) error {
	setting := &model.SettingModel{
		Key:       key,
		Value:     value,
		UpdatedAt: time.Now(),
	}
	if err := setting.Validate(); err != nil {
		return err
	}
	if err := r.db.Save(setting).Error; err != nil {
		return fmt.Errorf("failed to write setting %q: %w", key, err)
	}
	return nil
}
