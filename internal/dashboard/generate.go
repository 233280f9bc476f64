package dashboard

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
)

//go:embed templates/*.tmpl
var templates embed.FS

const templateFile = "templates/grafana-dashboard.json.tmpl"

// DefaultTable is the GreptimeDB table the dashboard queries.
const DefaultTable = "bulkhead_samples"

// Render executes the embedded dashboard template and writes the JSON
// dashboard to outDir. GREPTIMEDB_DATASOURCE_UID must be set.
func Render(outDir string) error {
	return RenderTable(outDir, DefaultTable)
}

// RenderTable is Render against a custom sample table name.
func RenderTable(outDir, table string) error {
	funcMap := template.FuncMap{
		"env": func(key string) (string, error) {
			v := os.Getenv(key)
			if v == "" {
				return "", fmt.Errorf("environment variable %s not set", key)
			}
			return v, nil
		},
	}
	if table == "" {
		table = DefaultTable
	}

	t, err := template.New(filepath.Base(templateFile)).Funcs(funcMap).ParseFS(templates, templateFile)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}
	outPath := filepath.Join(outDir, strings.TrimSuffix(filepath.Base(templateFile), ".tmpl"))
	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	if err := t.Execute(f, struct{ Table string }{Table: table}); err != nil {
		f.Close()
		os.Remove(outPath)
		return err
	}
	return f.Close()
}
