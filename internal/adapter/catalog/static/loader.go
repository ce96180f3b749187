package staticcatalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"shiplife/internal/app/ports"
	"shiplife/internal/domain/catalog"
)

var ErrInvalidContentPath = errors.New("invalid content filepath")

// Loader reads content tables from Root. Each table lives in its own file
// named after the table, as .json, .yaml or .yml.
type Loader struct {
	Root   string
	Logger *slog.Logger
}

var _ ports.CatalogSource = Loader{}

var extensions = []string{".json", ".yaml", ".yml"}

func (l Loader) logger() *slog.Logger {
	if l.Logger == nil {
		return slog.Default()
	}
	return l.Logger
}

func (l Loader) Load(ctx context.Context) (catalog.Tables, error) {
	var t catalog.Tables
	tables := []struct {
		name string
		dst  any
	}{
		{"items", &t.Items},
		{"missions", &t.Missions},
		{"activities", &t.Activities},
		{"guardians", &t.Guardians},
		{"anomalies", &t.Anomalies},
		{"locations", &t.Locations},
		{"trophies", &t.Trophies},
		{"workstations", &t.Workstations},
	}
	for _, tb := range tables {
		if err := ctx.Err(); err != nil {
			return catalog.Tables{}, err
		}
		data, path, err := l.read(tb.name)
		if errors.Is(err, fs.ErrNotExist) {
			l.logger().Warn("content table missing", "table", tb.name, "root", l.Root)
			continue
		}
		if err != nil {
			return catalog.Tables{}, err
		}
		if err := json.Unmarshal(data, tb.dst); err != nil {
			return catalog.Tables{}, fmt.Errorf("decode %s: %w", path, err)
		}
	}
	return t, nil
}

// Catalog loads the tables, indexes them and logs validation findings.
func (l Loader) Catalog(ctx context.Context) (*catalog.Catalog, error) {
	t, err := l.Load(ctx)
	if err != nil {
		return nil, err
	}
	cat := catalog.New(t)
	cat.Logger = l.Logger
	for _, w := range cat.Validate() {
		l.logger().Warn("content warning", "detail", w)
	}
	l.logger().Info("content loaded",
		"items", len(t.Items),
		"missions", len(t.Missions),
		"activities", len(t.Activities),
		"locations", len(t.Locations),
	)
	return cat, nil
}

// read returns the table as JSON, converting YAML when needed.
func (l Loader) read(table string) ([]byte, string, error) {
	for _, ext := range extensions {
		path, err := secureJoin(l.Root, table+ext)
		if err != nil {
			return nil, "", err
		}
		raw, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, path, fmt.Errorf("read %s: %w", path, err)
		}
		if ext == ".json" {
			return raw, path, nil
		}
		data, err := yamlToJSON(raw)
		if err != nil {
			return nil, path, fmt.Errorf("convert %s: %w", path, err)
		}
		return data, path, nil
	}
	return nil, "", fs.ErrNotExist
}

func secureJoin(root, rel string) (string, error) {
	rel = strings.TrimSpace(rel)
	if rel == "" || filepath.IsAbs(rel) {
		return "", ErrInvalidContentPath
	}
	rootAbs, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}
	target := filepath.Clean(filepath.Join(rootAbs, rel))
	if target != rootAbs && !strings.HasPrefix(target, rootAbs+string(filepath.Separator)) {
		return "", ErrInvalidContentPath
	}
	return target, nil
}
