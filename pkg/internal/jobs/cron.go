// Package jobs 负责注册与实现业务定时任务（基于 scheduler）.
package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/yeisme/clouddrive/pkg/configs"
	"github.com/yeisme/clouddrive/pkg/internal/types"
	"github.com/yeisme/clouddrive/pkg/log"
	"github.com/yeisme/clouddrive/pkg/scheduler"
)

// TrashPurger 按移入回收站的时间彻底删除文件.
type TrashPurger interface {
	PurgeTrashedBefore(ctx context.Context, cutoff time.Time) (*types.PurgeReport, error)
}

// CronRegistrar 可注册 cron 任务的调度器.
type CronRegistrar interface {
	AddCron(name, cronExpr string, job scheduler.JobFunc) error
}

// RegisterCronJobs 配置业务定时任务：
//   - 按 jobs.trash_retention_cron 清理超过 drive.trash_retention_days 的回收站文件
func RegisterCronJobs(sched CronRegistrar, purger TrashPurger, cfg *configs.AppConfig) error {
	if sched == nil || purger == nil {
		return errors.New("scheduler and purger are required")
	}

	retention := cfg.Drive.TrashRetention()
	if retention <= 0 {
		log.Logger().Info().Msg("trash retention disabled")

		return nil
	}

	return sched.AddCron(JobTrashRetention, cfg.Jobs.TrashRetentionCron, TrashRetention(purger, retention, nil))
}

// TrashRetention 返回回收站保留任务：删除在 now-retention 之前移入回收站的文件.
func TrashRetention(purger TrashPurger, retention time.Duration, now func() time.Time) scheduler.JobFunc {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}

	return func(ctx context.Context) error {
		l := log.Logger().With().Str("job", JobTrashRetention).Logger()
		cutoff := now().Add(-retention)

		report, err := purger.PurgeTrashedBefore(ctx, cutoff)
		if err != nil {
			return err
		}

		if len(report.Failed) > 0 {
			l.Warn().Int("purged", report.Purged).Int("failed", len(report.Failed)).Time("cutoff", cutoff).Msg("部分文件清理失败")

			return errors.New("some trashed files could not be purged")
		}

		if report.Purged > 0 {
			l.Info().Int("purged", report.Purged).Time("cutoff", cutoff).Msg("回收站过期文件已清理")
		}

		return nil
	}
}
