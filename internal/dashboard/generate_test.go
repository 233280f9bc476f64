package dashboard

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	jsoniter "github.com/json-iterator/go"
)

func TestRenderMissingEnv(t *testing.T) {
	t.Setenv("GREPTIMEDB_DATASOURCE_UID", "")
	dir := t.TempDir()
	if err := Render(dir); err == nil {
		t.Fatalf("expected error for missing env vars")
	}
	if _, err := os.Stat(filepath.Join(dir, "grafana-dashboard.json")); !os.IsNotExist(err) {
		t.Fatalf("partial dashboard left behind")
	}
}

func TestRenderSuccess(t *testing.T) {
	t.Setenv("GREPTIMEDB_DATASOURCE_UID", "uid1")

	dir := t.TempDir()
	if err := Render(dir); err != nil {
		t.Fatalf("render failed: %v", err)
	}

	b, err := os.ReadFile(filepath.Join(dir, "grafana-dashboard.json"))
	if err != nil {
		t.Fatalf("read dashboard: %v", err)
	}
	if !strings.Contains(string(b), "uid1") {
		t.Fatalf("greptime uid not rendered")
	}
	if !strings.Contains(string(b), "FROM bulkhead_samples") {
		t.Fatalf("table name not rendered")
	}
	var doc map[string]any
	if err := jsoniter.Unmarshal(b, &doc); err != nil {
		t.Fatalf("dashboard is not valid JSON: %v", err)
	}
}

func TestRenderCustomTable(t *testing.T) {
	t.Setenv("GREPTIMEDB_DATASOURCE_UID", "uid1")
	dir := t.TempDir()
	if err := RenderTable(dir, "demo_samples"); err != nil {
		t.Fatalf("render failed: %v", err)
	}
	b, _ := os.ReadFile(filepath.Join(dir, "grafana-dashboard.json"))
	if !strings.Contains(string(b), "FROM demo_samples") {
		t.Fatalf("custom table not rendered")
	}
}
