package msgcat

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"text/template"

	yaml "gopkg.in/yaml.v3"
)

//go:embed messages.ja.yaml
var defaultFiles embed.FS

// Catalog は利用者向け文言のテンプレート集。組み込みの既定文言に
// 任意ディレクトリのYAMLを上書き適用できる。値は text/template で描画する。
type Catalog struct {
	mu   sync.RWMutex
	data map[string]string // ドット区切りキー → テンプレート本文
}

// New は組み込み文言を読み込み、dir が指定されていれば上書きを適用する。
func New(overrideDir string) (*Catalog, error) {
	c := &Catalog{data: make(map[string]string)}

	raw, err := fs.ReadFile(defaultFiles, "messages.ja.yaml")
	if err != nil {
		return nil, fmt.Errorf("read embedded messages: %w", err)
	}
	if err := c.apply(raw); err != nil {
		return nil, err
	}

	if strings.TrimSpace(overrideDir) != "" {
		if err := c.applyDir(overrideDir); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Catalog) applyDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read message dir: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext == ".yaml" || ext == ".yml" {
			files = append(files, e.Name())
		}
	}
	// 適用順を決定的にする
	sort.Strings(files)
	for _, name := range files {
		b, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return fmt.Errorf("read %s: %w", name, err)
		}
		if err := c.apply(b); err != nil {
			return fmt.Errorf("parse %s: %w", name, err)
		}
	}
	return nil
}

func (c *Catalog) apply(b []byte) error {
	var m map[string]any
	if err := yaml.Unmarshal(b, &m); err != nil {
		return err
	}
	flat := make(map[string]string)
	if err := flatten(m, "", flat); err != nil {
		return err
	}
	c.mu.Lock()
	for k, v := range flat {
		c.data[k] = v
	}
	c.mu.Unlock()
	return nil
}

func flatten(src any, prefix string, out map[string]string) error {
	switch v := src.(type) {
	case map[string]any:
		for k, vv := range v {
			key := k
			if prefix != "" {
				key = prefix + "." + k
			}
			if err := flatten(vv, key, out); err != nil {
				return err
			}
		}
		return nil
	case string:
		if prefix == "" {
			return errors.New("string value without key prefix")
		}
		out[prefix] = v
		return nil
	case nil:
		return nil
	default:
		return fmt.Errorf("unsupported value at %s: %T", prefix, v)
	}
}

// Render はキーのテンプレートを data で描画する。キー未登録はエラー。
func (c *Catalog) Render(key string, data any) (string, error) {
	c.mu.RLock()
	tpl, ok := c.data[strings.TrimSpace(key)]
	c.mu.RUnlock()
	if !ok || strings.TrimSpace(tpl) == "" {
		return "", fmt.Errorf("message not found: %s", key)
	}
	t, err := template.New(key).Option("missingkey=error").Parse(tpl)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	if err := t.Execute(&b, data); err != nil {
		return "", err
	}
	return b.String(), nil
}

// RenderOr は描画に失敗したとき fallback を返すラッパ。ハンドラ向け。
func (c *Catalog) RenderOr(key string, data any, fallback string) string {
	s, err := c.Render(key, data)
	if err != nil {
		return fallback
	}
	return s
}
