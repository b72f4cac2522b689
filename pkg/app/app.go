// Package app 组装应用：初始化追踪、指标与存储，构建文件服务、后台任务与 HTTP 引擎，并负责优雅退出.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yeisme/clouddrive/pkg/cache"
	"github.com/yeisme/clouddrive/pkg/configs"
	"github.com/yeisme/clouddrive/pkg/internal/handle"
	"github.com/yeisme/clouddrive/pkg/internal/jobs"
	"github.com/yeisme/clouddrive/pkg/internal/mq"
	"github.com/yeisme/clouddrive/pkg/internal/router"
	"github.com/yeisme/clouddrive/pkg/internal/service"
	"github.com/yeisme/clouddrive/pkg/internal/storage"
	"github.com/yeisme/clouddrive/pkg/internal/storage/kv"
	"github.com/yeisme/clouddrive/pkg/internal/store"
	"github.com/yeisme/clouddrive/pkg/log"
	"github.com/yeisme/clouddrive/pkg/metrics"
	"github.com/yeisme/clouddrive/pkg/scheduler"
	"github.com/yeisme/clouddrive/pkg/tracing"
)

// linkCacheNamespace 下载链接缓存的键前缀.
const linkCacheNamespace = "dl"

// serviceOptions 按配置组装文件服务的可选依赖.
func serviceOptions(cfg *configs.AppConfig, kvStore kv.KVStore, pub message.Publisher) []service.Option {
	opts := []service.Option{service.WithPublisher(pub)}

	if cfg.Drive.LinkCache {
		links := cache.New(kvStore, linkCacheNamespace, cache.WithErrorHandler(service.ObserveLinkCacheError))
		opts = append(opts, service.WithLinkCache(links))
	}

	return opts
}

// App 持有运行期的全部资源.
type App struct {
	Engine *gin.Engine
	config *configs.AppConfig

	storage   *storage.Manager
	scheduler *scheduler.Scheduler
	logger    *zerolog.Logger

	// cancel 结束消息消费等后台循环
	cancel context.CancelFunc
}

// NewApp 按配置创建应用，失败时释放已创建的资源.
func NewApp(cfg *configs.AppConfig) (_ *App, err error) {
	l := log.Logger()

	if err := tracing.InitTracer(cfg.Tracing); err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}

	if err := metrics.InitMetrics(cfg.Metrics); err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	a := &App{config: cfg, logger: l, cancel: cancel}

	defer func() {
		if err != nil {
			_ = a.Close()
		}
	}()

	if a.storage, err = storage.New(ctx, cfg); err != nil {
		return nil, err
	}

	gin.DefaultWriter = log.NewGinWriter(l, zerolog.InfoLevel)
	gin.DefaultErrorWriter = log.NewGinWriter(l, zerolog.ErrorLevel)

	svc := service.NewFileService(
		store.NewFileStore(a.storage.DB.DB),
		a.storage.S3,
		service.OptionsFromConfig(cfg),
		serviceOptions(cfg, a.storage.KV, a.storage.MQ)...,
	)

	mq.RegisterAudit(a.storage.MQ, l)

	if err = a.storage.MQ.Run(ctx); err != nil {
		return nil, fmt.Errorf("start mq consumers: %w", err)
	}

	if a.scheduler, err = scheduler.NewScheduler(l); err != nil {
		return nil, fmt.Errorf("init scheduler: %w", err)
	}

	if cfg.Jobs.Enabled {
		if err = jobs.RegisterCronJobs(a.scheduler, svc, cfg); err != nil {
			return nil, fmt.Errorf("register jobs: %w", err)
		}
	}

	h := handle.New(svc,
		handle.WithProbe("db", a.storage.DB),
		handle.WithProbe("s3", a.storage.S3),
		handle.WithProbe("kv", a.storage.KV),
		handle.WithProbe("mq", a.storage.MQ),
		handle.WithJobs(a.scheduler),
		handle.WithVersion(configs.AppVersion),
		handle.WithMaxUploadBytes(cfg.Drive.MaxUploadBytes()),
	)

	a.Engine = router.New(cfg, h)

	return a, nil
}

// Run 启动调度器与 HTTP 服务，收到 SIGINT/SIGTERM 后优雅退出并释放资源.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.scheduler.Start()

	srv := &http.Server{
		Addr:              a.config.Server.Addr(),
		Handler:           a.Engine,
		ReadHeaderTimeout: a.config.Server.GetTimeoutDuration(),
		IdleTimeout:       2 * a.config.Server.GetTimeoutDuration(),
	}

	errCh := make(chan error, 1)

	go func() {
		a.logger.Info().Str("addr", srv.Addr).Str("version", configs.AppVersion).Msg("HTTP server listening")

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}

		close(errCh)
	}()

	var serveErr error

	select {
	case <-ctx.Done():
		a.logger.Info().Msg("shutdown signal received")
	case serveErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.config.Server.GetShutdownTimeout())
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.logger.Error().Err(err).Msg("HTTP server shutdown")
	}

	return errors.Join(serveErr, a.Close())
}

// Close 停止调度器与消费者，关闭存储连接并刷新追踪数据.
func (a *App) Close() error {
	var errs []error

	if a.scheduler != nil {
		errs = append(errs, a.scheduler.Stop())
	}

	if a.cancel != nil {
		a.cancel()
	}

	if a.storage != nil {
		errs = append(errs, a.storage.Close())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	errs = append(errs, tracing.ShutdownTracer(ctx))

	return errors.Join(errs...)
}
