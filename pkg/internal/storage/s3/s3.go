// Package s3 实现基于 MinIO 客户端的对象存储适配器：写入、签名下载链接与删除.
package s3

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/url"
	"time"

	minio "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/yeisme/clouddrive/pkg/configs"
	nlog "github.com/yeisme/clouddrive/pkg/log"
)

// Client 包装 MinIO 客户端，所有对象都写入同一个 bucket.
type Client struct {
	*minio.Client
	bucket  string
	timeout time.Duration
}

// New 初始化 MinIO 客户端，若 bucket 不存在则尝试创建.
func New(ctx context.Context, cfg configs.S3Config) (*Client, error) {
	endpoint, secure := normalizeEndpoint(cfg.Endpoint, cfg.UseSSL)

	cli, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: secure,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	cli.SetAppInfo("clouddrive", configs.AppVersion)

	c := &Client{Client: cli, bucket: cfg.BucketName, timeout: cfg.Timeout}
	if err := c.ensureBucket(ctx, cfg.Region); err != nil {
		return nil, err
	}

	nlog.Logger().Info().Str("endpoint", endpoint).Str("bucket", cfg.BucketName).Msg("s3 connected")

	return c, nil
}

// normalizeEndpoint 允许用户传完整 schema endpoint（http:// 或 https://）.
func normalizeEndpoint(endpoint string, useSSL bool) (string, bool) {
	if u, err := url.Parse(endpoint); err == nil && u.Host != "" {
		return u.Host, useSSL || u.Scheme == "https"
	}

	return endpoint, useSSL
}

func (c *Client) ensureBucket(ctx context.Context, region string) error {
	exists, err := c.BucketExists(ctx, c.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", c.bucket, err)
	}

	if exists {
		return nil
	}

	if err := c.MakeBucket(ctx, c.bucket, minio.MakeBucketOptions{Region: region}); err != nil {
		return fmt.Errorf("create bucket %s: %w", c.bucket, err)
	}

	nlog.Logger().Info().Str("bucket", c.bucket).Msg("bucket created")

	return nil
}

// Bucket 返回使用的 bucket 名称.
func (c *Client) Bucket() string {
	return c.bucket
}

// withTimeout 为单次对象操作设置超时.
func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, c.timeout)
}

// Put 以流的方式写入对象，size 未知时传 -1.
func (c *Client) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	_, err := c.PutObject(ctx, c.bucket, key, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("put object %s: %w", key, err)
	}

	return nil
}

// SignedGetURL 生成限时的下载链接，downloadName 非空时浏览器以该文件名展示.
func (c *Client) SignedGetURL(ctx context.Context, key string, ttl time.Duration, downloadName string) (string, error) {
	params := url.Values{}
	if downloadName != "" {
		params.Set("response-content-disposition", ContentDisposition(downloadName))
	}

	u, err := c.PresignedGetObject(ctx, c.bucket, key, ttl, params)
	if err != nil {
		return "", fmt.Errorf("presign object %s: %w", key, err)
	}

	return u.String(), nil
}

// Delete 删除对象，对象不存在时同样视为成功.
func (c *Client) Delete(ctx context.Context, key string) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	if err := c.RemoveObject(ctx, c.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove object %s: %w", key, err)
	}

	return nil
}

// HealthCheck 通过检查 bucket 是否存在来验证连接与权限.
func (c *Client) HealthCheck(ctx context.Context) error {
	ok, err := c.BucketExists(ctx, c.bucket)
	if err != nil {
		return err
	}

	if !ok {
		return fmt.Errorf("bucket %s not found", c.bucket)
	}

	return nil
}

// Close 关闭 S3 客户端连接（无实际操作，接口兼容）.
func (c *Client) Close() error {
	return nil
}

// ContentDisposition 生成 inline 的 Content-Disposition，非 ASCII 文件名按 RFC 2231 编码.
func ContentDisposition(name string) string {
	v := mime.FormatMediaType("inline", map[string]string{"filename": name})
	if v == "" {
		return "inline"
	}

	return v
}
