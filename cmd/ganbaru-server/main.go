package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/ryooooooya/shogi-ganbaru/internal/builder"
	appcfg "github.com/ryooooooya/shogi-ganbaru/internal/config"
	"github.com/ryooooooya/shogi-ganbaru/internal/msgcat"
	"github.com/ryooooooya/shogi-ganbaru/internal/obslog"
	"github.com/ryooooooya/shogi-ganbaru/internal/server"
	"github.com/ryooooooya/shogi-ganbaru/internal/workers"
)

func main() {
	cfg, err := appcfg.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	if err := obslog.InitFromEnv(); err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer obslog.Sync()
	logger := obslog.L()

	deps, err := builder.New(cfg, logger)
	if err != nil {
		log.Fatalf("init error: %v", err)
	}
	defer deps.Close()

	cat, err := msgcat.New(cfg.MsgcatDir)
	if err != nil {
		log.Fatalf("messages error: %v", err)
	}

	srv := server.New(deps.Service, cat, logger)

	// 巡回解析はエンジンが設定されているときだけ動かす
	var worker *workers.AnalyzeWorker
	if deps.Engine != nil {
		worker, err = workers.NewAnalyzeWorker(
			deps.Service,
			time.Duration(cfg.AnalyzeIntervalSec)*time.Second,
			cfg.AnalyzeBatch,
			logger,
		)
		if err != nil {
			log.Fatalf("worker init error: %v", err)
		}
		if err := worker.Start(); err != nil {
			log.Fatalf("worker start error: %v", err)
		}
	} else {
		logger.Warn("ENGINE_BASE_URL not set, background analysis disabled")
	}

	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.Listen(cfg.HTTPAddr); err != nil {
			logger.Fatal("http server stopped", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutting down")
	if worker != nil {
		worker.Stop()
	}
	if err := srv.Shutdown(); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
}
