package sync

import (
	"context"
	"time"
)

// Clock 可注入的时钟,对账回读的固定间隔通过它等待,
// 测试中替换为假时钟即可避免真实延时
type Clock interface {
	Now() time.Time
	// Sleep 等待 d,上下文取消时返回 false
	Sleep(ctx context.Context, d time.Duration) bool
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) Sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// RealClock 系统时钟
var RealClock Clock = realClock{}
