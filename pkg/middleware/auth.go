package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/clouddrive/pkg/configs"
)

// AuthMiddleware 单用户身份校验，满足任一条件即放行：
//   - Authorization: Bearer <auth.token>
//   - oauth2-proxy 注入的 X-Auth-Request-Email 或 X-Forwarded-Email 等于 auth.allowed_email
//   - dev_allow_query 开启时 ?token=<auth.token>
//
// skip_paths 中的路径前缀不做校验.
func AuthMiddleware(conf configs.AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !conf.Enabled || isSkippedPath(c.Request.URL.Path, conf.SkipPaths) {
			c.Next()
			return
		}

		if authorized(c, conf) {
			c.Next()
			return
		}

		abortJSON(c, http.StatusUnauthorized, CodeUnauthorized, "unauthorized")
	}
}

func authorized(c *gin.Context, conf configs.AuthConfig) bool {
	if conf.Token != "" {
		if token, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer "); ok && tokenEqual(token, conf.Token) {
			return true
		}

		if conf.DevAllowQuery && tokenEqual(c.Query("token"), conf.Token) {
			return true
		}
	}

	if conf.AllowedEmail == "" {
		return false
	}

	email := strings.TrimSpace(c.GetHeader("X-Auth-Request-Email"))
	if email == "" {
		email = strings.TrimSpace(c.GetHeader("X-Forwarded-Email"))
	}

	return strings.EqualFold(email, conf.AllowedEmail)
}

func tokenEqual(got, want string) bool {
	return subtle.ConstantTimeCompare([]byte(strings.TrimSpace(got)), []byte(want)) == 1
}

func isSkippedPath(path string, skips []string) bool {
	if path == "" || len(skips) == 0 {
		return false
	}

	for _, p := range skips {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}

		if strings.HasPrefix(path, p) {
			return true
		}
	}

	return false
}
