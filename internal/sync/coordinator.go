package sync

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/chen-001/tapirtwins-go/internal/errs"
	"github.com/chen-001/tapirtwins-go/internal/metrics"
	"github.com/chen-001/tapirtwins-go/internal/model"
	"github.com/chen-001/tapirtwins-go/internal/store"
)

// FetchFunc 拉取权威任务与记录集合
type FetchFunc func(ctx context.Context) ([]*model.Task, []*model.TaskRecord, error)

// Predicate 判断拉取结果是否已反映预期状态,满足则提前结束回读
type Predicate func(tasks []*model.Task, records []*model.TaskRecord) bool

// Coordinator 写后对账协调器
// 后端存储最终一致,写入成功后下一次读取未必能看到结果,
// 因此在固定间隔下做有界次数的回读,每次用拉取结果整体替换
// 本地存储;预算耗尽后静默放弃。重试只作用于写后的回读,
// 从不作用于写本身
type Coordinator struct {
	tasks      *store.TaskStore
	records    *store.RecordStore
	clock      Clock
	maxRetries int
	delay      time.Duration
	logger     *logrus.Logger
}

// NewCoordinator 创建对账协调器
func NewCoordinator(tasks *store.TaskStore, records *store.RecordStore, clock Clock, maxRetries int, delay time.Duration, logger *logrus.Logger) *Coordinator {
	if clock == nil {
		clock = RealClock
	}
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &Coordinator{
		tasks:      tasks,
		records:    records,
		clock:      clock,
		maxRetries: maxRetries,
		delay:      delay,
		logger:     logger,
	}
}

// Clock 返回协调器使用的时钟
func (c *Coordinator) Clock() Clock { return c.clock }

// Reconcile 执行有界回读
// 每一轮: 等待固定间隔 → 拉取 → 替换本地存储 → 判断谓词。
// 瞬时读取失败消耗一次预算后继续;谓词满足则提前返回 true;
// 预算耗尽返回 false;上下文取消时静默放弃(不视为错误)
func (c *Coordinator) Reconcile(ctx context.Context, fetch FetchFunc, until Predicate) bool {
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		if !c.clock.Sleep(ctx, c.delay) {
			// 视图已销毁,放弃剩余回读
			return false
		}

		metrics.RecordReconcilePass()
		tasks, records, err := fetch(ctx)
		if err != nil {
			if !errs.IsTransient(err) {
				c.logger.WithError(err).WithField("attempt", attempt).Warn("reconcile fetch failed")
			} else {
				c.logger.WithError(err).WithField("attempt", attempt).Debug("reconcile fetch failed, will retry")
			}
			continue
		}

		c.tasks.Replace(tasks)
		c.records.Replace(records)

		if until == nil || until(tasks, records) {
			return true
		}
		c.logger.WithField("attempt", attempt).Debug("read-back still stale")
	}

	metrics.RecordReconcileGiveup()
	c.logger.WithField("max_retries", c.maxRetries).Debug("reconcile gave up within retry budget")
	return false
}

// ReconcileAsync 以独立单元调度回读,不阻塞调用方
// 完成顺序决定最终内容: 后完成的回读整体覆盖先前的结果
func (c *Coordinator) ReconcileAsync(ctx context.Context, fetch FetchFunc, until Predicate) {
	go c.Reconcile(ctx, fetch, until)
}
