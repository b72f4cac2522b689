// Package storage 聚合元数据库、对象存储、KV 缓存与消息队列客户端，统一创建与关闭.
//
// Example:
//
//	mgr, err := storage.New(ctx, configs.GetConfig())
//	if err != nil {
//		return err
//	}
//	defer mgr.Close()
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/yeisme/clouddrive/pkg/configs"
	dbc "github.com/yeisme/clouddrive/pkg/internal/storage/db"
	kvc "github.com/yeisme/clouddrive/pkg/internal/storage/kv"
	mqc "github.com/yeisme/clouddrive/pkg/internal/storage/mq"
	s3c "github.com/yeisme/clouddrive/pkg/internal/storage/s3"
	nlog "github.com/yeisme/clouddrive/pkg/log"
)

// Manager 聚合所有存储资源.
type Manager struct {
	DB *dbc.Client
	S3 *s3c.Client
	KV *kvc.Client
	MQ *mqc.Client
}

// New 按配置依次初始化各存储客户端，任一失败时关闭已创建的部分.
func New(ctx context.Context, cfg *configs.AppConfig) (*Manager, error) {
	m := &Manager{}

	var err error

	if m.DB, err = dbc.New(ctx, cfg.DB, cfg.Metrics); err != nil {
		return nil, fmt.Errorf("storage: db: %w", err)
	}

	if m.S3, err = s3c.New(ctx, cfg.S3); err != nil {
		_ = m.Close()

		return nil, fmt.Errorf("storage: s3: %w", err)
	}

	if m.KV, err = kvc.New(ctx, cfg.KV); err != nil {
		_ = m.Close()

		return nil, fmt.Errorf("storage: kv: %w", err)
	}

	if m.MQ, err = mqc.New(ctx, cfg.MQ, cfg.Metrics); err != nil {
		_ = m.Close()

		return nil, fmt.Errorf("storage: mq: %w", err)
	}

	nlog.Logger().Info().
		Str("db", string(cfg.DB.Type)).
		Str("kv", string(cfg.KV.Type)).
		Str("mq", string(cfg.MQ.Type)).
		Msg("storage manager initialized")

	return m, nil
}

// Close 按与创建相反的顺序关闭资源.
func (m *Manager) Close() error {
	var errs []error

	if m.MQ != nil {
		errs = append(errs, m.MQ.Close())
	}

	if m.KV != nil {
		errs = append(errs, m.KV.Close())
	}

	if m.S3 != nil {
		errs = append(errs, m.S3.Close())
	}

	if m.DB != nil {
		errs = append(errs, m.DB.Close())
	}

	return errors.Join(errs...)
}
