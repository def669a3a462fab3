package model

import (
	"errors"
	"time"
)

// SettingModel 本地设置数据模型
// 存放设备侧的键值设置,如默认共享空间、最近一次同步时间
type SettingModel struct {
	Key       string    `gorm:"primaryKey;type:varchar(64)"`
	Value     string    `gorm:"type:text;not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName 指定表名
func (SettingModel) TableName() string {
	return "settings"
}

// Validate 验证设置模型
func (sm *SettingModel) Validate() error {
	if sm.Key == "" {
		return errors.New("setting key is required")
	}
	return nil
}
