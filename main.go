package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"github.com/martineserios/enhanced-rag-multi-db-ai-agent/app/client/llm"
	"github.com/martineserios/enhanced-rag-multi-db-ai-agent/app/config"
	"github.com/martineserios/enhanced-rag-multi-db-ai-agent/app/server"
	"github.com/martineserios/enhanced-rag-multi-db-ai-agent/app/service/audit"
	"github.com/martineserios/enhanced-rag-multi-db-ai-agent/app/service/chat"
	"github.com/martineserios/enhanced-rag-multi-db-ai-agent/app/service/history"
	"github.com/martineserios/enhanced-rag-multi-db-ai-agent/app/service/memory"
	"github.com/martineserios/enhanced-rag-multi-db-ai-agent/app/util/mylog"

	"github.com/gofiber/fiber/v2/log"
	"github.com/samber/do"
)

func main() {
	di := do.New()
	defer di.Shutdown()
	defer log.Info("Waiting for services to finish...")

	mylog.Preinit()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	do.ProvideValue(di, appCtx)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	do.ProvideValue(di, cfg)

	if err = mylog.Init(cfg); err != nil {
		log.Fatalf("logging init failed: %v", err)
	}

	do.Provide(di, llm.New)
	do.Provide(di, history.New)
	do.Provide(di, memory.New)
	do.Provide(di, audit.New)
	do.Provide(di, chat.New)
	do.Provide(di, server.New)

	slog.Info("Service started")

	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt)
		<-sigint

		log.Info("Shutting down...")

		cancel()
	}()

	go do.MustInvoke[*audit.Service](di).Run(appCtx)
	go do.MustInvoke[*server.Service](di).Run(appCtx)

	<-appCtx.Done()
}
