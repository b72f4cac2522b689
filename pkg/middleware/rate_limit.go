package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/yeisme/clouddrive/pkg/configs"
)

const (
	cleanupInterval   = 10 * time.Minute
	maxLimiterEntries = 10000
)

// RateLimitMiddleware 返回一个基于配置的全局限流中间件.
func RateLimitMiddleware(cfg configs.RateLimitConfig) gin.HandlerFunc {
	if !cfg.Enabled || cfg.RPS <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	return newLimiter(cfg, cfg.RPS, cfg.Burst).handle
}

// UploadRateLimitMiddleware 上传接口单独的限流，UploadRPS 为 0 时不额外限制.
func UploadRateLimitMiddleware(cfg configs.RateLimitConfig) gin.HandlerFunc {
	if !cfg.Enabled || cfg.UploadRPS <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	burst := int(cfg.UploadRPS)
	if burst < 1 {
		burst = 1
	}

	return newLimiter(cfg, cfg.UploadRPS, burst).handle
}

// keyedLimiter 按维度键持有令牌桶.
type keyedLimiter struct {
	cfg      configs.RateLimitConfig
	limit    rate.Limit
	burst    int
	global   *rate.Limiter
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	swept    time.Time
}

func newLimiter(cfg configs.RateLimitConfig, rps float64, burst int) *keyedLimiter {
	l := &keyedLimiter{
		cfg:      cfg,
		limit:    rate.Limit(rps),
		burst:    burst,
		limiters: map[string]*rate.Limiter{},
		swept:    time.Now(),
	}

	if key := strings.ToLower(strings.TrimSpace(cfg.Key)); key == "global" || key == "" {
		l.global = rate.NewLimiter(l.limit, burst)
	}

	return l
}

// get 获取限流器；表过大时定期整体重置.
func (l *keyedLimiter) get(key string) *rate.Limiter {
	if l.global != nil {
		return l.global
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if time.Since(l.swept) > cleanupInterval && len(l.limiters) > maxLimiterEntries {
		l.limiters = map[string]*rate.Limiter{}
		l.swept = time.Now()
	}

	lim, ok := l.limiters[key]
	if !ok {
		lim = rate.NewLimiter(l.limit, l.burst)
		l.limiters[key] = lim
	}

	return lim
}

func (l *keyedLimiter) handle(c *gin.Context) {
	if !l.get(l.key(c)).Allow() {
		abortJSON(c, http.StatusTooManyRequests, CodeRateLimited, "rate limit exceeded, please try again later")

		return
	}

	c.Next()
}

// key 按配置选择限流维度：请求头或客户端 IP.
func (l *keyedLimiter) key(c *gin.Context) string {
	if name, ok := l.cfg.HeaderKey(); ok {
		if v := c.GetHeader(name); v != "" {
			return v
		}
	}

	if ip := clientIP(c); ip != "" {
		return ip
	}

	return "unknown"
}

func clientIP(c *gin.Context) string {
	ip := c.ClientIP()
	if ip == "" {
		host, _, err := net.SplitHostPort(c.Request.RemoteAddr)
		if err == nil {
			ip = host
		} else {
			ip = c.Request.RemoteAddr
		}
	}

	return ip
}
