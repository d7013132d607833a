package msgcat

import (
	"os"
	"path/filepath"
	"testing"
)

func TestEmbeddedMessages(t *testing.T) {
	c, err := New("")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got, err := c.Render("upload.ok", map[string]any{
		"Opponent":   "青木",
		"TotalMoves": 76,
		"Result":     "勝ち",
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	want := "棋譜を登録しました（青木戦・76手・勝ち）"
	if got != want {
		t.Fatalf("Render = %q, want %q", got, want)
	}
}

func TestRenderMissingKey(t *testing.T) {
	c, err := New("")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := c.Render("no.such.key", nil); err == nil {
		t.Fatalf("expected error for unknown key")
	}
	if got := c.RenderOr("no.such.key", nil, "fallback"); got != "fallback" {
		t.Fatalf("RenderOr = %q, want fallback", got)
	}
}

func TestOverrideDir(t *testing.T) {
	dir := t.TempDir()
	override := "upload:\n  no_moves: \"override!\"\n"
	if err := os.WriteFile(filepath.Join(dir, "10-custom.yaml"), []byte(override), 0o644); err != nil {
		t.Fatalf("write override: %v", err)
	}

	c, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := c.RenderOr("upload.no_moves", nil, ""); got != "override!" {
		t.Fatalf("override not applied: %q", got)
	}
	// 上書きされていないキーは既定のまま
	if got := c.RenderOr("result.win", nil, ""); got != "勝ち" {
		t.Fatalf("default lost after override: %q", got)
	}
}
