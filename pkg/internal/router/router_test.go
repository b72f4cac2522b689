package router_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/clouddrive/pkg/configs"
	"github.com/yeisme/clouddrive/pkg/internal/handle"
	"github.com/yeisme/clouddrive/pkg/internal/model"
	"github.com/yeisme/clouddrive/pkg/internal/router"
	"github.com/yeisme/clouddrive/pkg/internal/types"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// nopFiles 不做任何事的文件服务.
type nopFiles struct{}

func (nopFiles) Upload(context.Context, types.UploadInput) (*model.File, error) {
	return &model.File{}, nil
}

func (nopFiles) List(context.Context, types.ListFilesQuery) (*types.ListFilesResponse, error) {
	return &types.ListFilesResponse{Files: []model.File{}}, nil
}

func (nopFiles) Get(context.Context, uint) (*model.File, error) { return &model.File{}, nil }

func (nopFiles) GetDownloadLink(context.Context, uint) (*types.DownloadLinkResponse, error) {
	return &types.DownloadLinkResponse{}, nil
}

func (nopFiles) SetStarred(context.Context, uint, bool) error { return nil }
func (nopFiles) SetTrashed(context.Context, uint, bool) error { return nil }
func (nopFiles) PurgeForever(context.Context, uint) error     { return nil }

func (nopFiles) EmptyTrash(context.Context) (*types.PurgeReport, error) {
	return &types.PurgeReport{}, nil
}

func (nopFiles) Stats(context.Context) (*types.StatsResponse, error) {
	return &types.StatsResponse{}, nil
}

func testConfig() *configs.AppConfig {
	cfg := configs.Default()
	cfg.Metrics.Enabled = true
	cfg.Metrics.Path = "/metrics"

	return cfg
}

func TestRoutesRegistered(t *testing.T) {
	engine := router.New(testConfig(), handle.New(nopFiles{}))

	got := map[string]bool{}
	for _, r := range engine.Routes() {
		got[r.Method+" "+r.Path] = true
	}

	for _, want := range []string{
		"GET /api/health",
		"GET /api/health/:component",
		"GET /api/files",
		"POST /api/files",
		"GET /api/files/:id",
		"DELETE /api/files/:id",
		"GET /api/files/:id/download",
		"POST /api/files/:id/star",
		"POST /api/files/:id/unstar",
		"POST /api/files/:id/trash",
		"POST /api/files/:id/restore",
		"DELETE /api/trash",
		"GET /api/stats",
		"GET /api/jobs",
		"POST /api/jobs/:name/run",
		"GET /metrics",
	} {
		if !got[want] {
			t.Errorf("route %s not registered", want)
		}
	}
}

func TestAuthGuardsAPI(t *testing.T) {
	cfg := testConfig()
	cfg.Auth = configs.AuthConfig{Enabled: true, Token: "t", SkipPaths: []string{"/api/health", "/metrics"}}

	engine := router.New(cfg, handle.New(nopFiles{}))

	get := func(path, token string) int {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}

		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)
		_, _ = io.Copy(io.Discard, w.Body)

		return w.Code
	}

	if code := get("/api/files", ""); code != http.StatusUnauthorized {
		t.Fatalf("anonymous list = %d", code)
	}

	if code := get("/api/files", "t"); code != http.StatusOK {
		t.Fatalf("authorized list = %d", code)
	}

	if code := get("/api/health", ""); code != http.StatusOK {
		t.Fatalf("health = %d", code)
	}
}
