package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
)

// Job 周期任务
type Job interface{ Run(ctx context.Context) }

// FuncJob 函数适配器
type FuncJob func(ctx context.Context)

func (f FuncJob) Run(ctx context.Context) { f(ctx) }

// Scheduler 周期任务调度器，cron表达式驱动，
// 告警保留期清理等维护任务挂在这里
type Scheduler struct {
	c      *cron.Cron
	ctx    context.Context
	cancel context.CancelFunc
}

// New 创建调度器，loc为nil时用本地时区
func New(loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		c:      cron.New(cron.WithLocation(loc), cron.WithChain(cron.Recover(cron.DefaultLogger))),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Add 按cron表达式注册任务
func (s *Scheduler) Add(expr string, job Job) (cron.EntryID, error) {
	return s.c.AddFunc(expr, func() { job.Run(s.ctx) })
}

// Every 按固定间隔注册任务
func (s *Scheduler) Every(d time.Duration, job Job) {
	go func() {
		t := time.NewTicker(d)
		defer t.Stop()
		for {
			select {
			case <-s.ctx.Done():
				return
			case <-t.C:
				job.Run(s.ctx)
			}
		}
	}()
}

// Start 启动cron调度
func (s *Scheduler) Start() { s.c.Start() }

// Stop 停止全部任务，等待运行中的任务结束
func (s *Scheduler) Stop() {
	s.cancel()
	ctx := s.c.Stop()
	<-ctx.Done()
}
