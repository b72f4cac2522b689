package db

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/yeisme/clouddrive/pkg/configs"
	"github.com/yeisme/clouddrive/pkg/internal/model"
)

func TestRegisteredDBTypes(t *testing.T) {
	types := GetRegisteredDBTypes()

	want := map[configs.DBType]bool{configs.SQLite: false, configs.MySQL: false, configs.PostgreSQL: false}
	for _, ty := range types {
		if _, ok := want[ty]; ok {
			want[ty] = true
		}
	}

	for ty, seen := range want {
		if !seen {
			t.Errorf("dialector for %s not registered", ty)
		}
	}
}

func TestNewUnsupportedType(t *testing.T) {
	_, err := New(context.Background(), configs.DBConfig{Type: "oracle", Database: "x"}, configs.MetricsConfig{})
	if err == nil {
		t.Fatal("expected error for unsupported type")
	}
}

func TestNewSQLiteMigrates(t *testing.T) {
	cfg := configs.DBConfig{
		Type:         configs.SQLite,
		Database:     filepath.Join(t.TempDir(), "drive"),
		MaxIdleConns: 1,
		AutoMigrate:  true,
	}

	client, err := New(context.Background(), cfg, configs.MetricsConfig{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer client.Close()

	if !client.Migrator().HasTable(&model.File{}) {
		t.Fatal("files table missing after migration")
	}

	if err := client.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck: %v", err)
	}
}
