package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/ryooooooya/shogi-ganbaru/internal/engine"
)

// 解析エンジンの疎通確認。引数に棋譜ファイルを渡すと実際に1局解析する。
func main() {
	baseURL := os.Getenv("ENGINE_BASE_URL")
	if baseURL == "" {
		log.Fatal("ENGINE_BASE_URL is required")
	}

	client := engine.NewClient(baseURL, engine.WithTimeout(120*time.Second))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := client.Health(ctx); err != nil {
		cancel()
		log.Fatalf("/health error: %v", err)
	}
	cancel()
	log.Println("/health ok")

	if len(os.Args) < 2 {
		return
	}

	raw, err := os.ReadFile(os.Args[1])
	if err != nil {
		log.Fatalf("read kif file: %v", err)
	}

	actx, acancel := context.WithTimeout(context.Background(), 180*time.Second)
	defer acancel()
	start := time.Now()
	evals, blunders, err := client.Analyze(actx, string(raw))
	if err != nil {
		log.Fatalf("/analyze error: %v", err)
	}
	log.Printf("/analyze ok: evals=%d blunders=%d took=%s", len(evals), len(blunders), time.Since(start))
}
