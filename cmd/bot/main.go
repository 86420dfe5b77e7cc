package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Friomademyday/FRIO-BOT-v2/internal/bot"
	"github.com/Friomademyday/FRIO-BOT-v2/internal/config"
	"github.com/Friomademyday/FRIO-BOT-v2/internal/db"
	"github.com/Friomademyday/FRIO-BOT-v2/internal/ledger"
	"github.com/Friomademyday/FRIO-BOT-v2/internal/moderation"
	"github.com/Friomademyday/FRIO-BOT-v2/internal/proxy"
	"github.com/Friomademyday/FRIO-BOT-v2/internal/transport/telegram"
)

func main() {
	cfg := config.MustLoad()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	var store ledger.Store
	if cfg.DatabaseURL != "" {
		pool := db.MustConnect(ctx, cfg.DatabaseURL)
		defer pool.Close()

		// Run migrations automatically on start (simple approach)
		if err := db.ApplyMigrations(ctx, pool, "./migrations"); err != nil {
			log.Fatalf("migrations: %v", err)
		}
		store = ledger.NewPG(pool)
	} else {
		fs, err := ledger.OpenFile(cfg.DataFile)
		if err != nil {
			log.Fatalf("ledger: %v", err)
		}
		store = fs
	}
	defer store.Close()

	mod, err := moderation.Open(cfg.ModerationDB)
	if err != nil {
		log.Fatalf("moderation: %v", err)
	}
	defer mod.Close()

	botAPI, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		log.Fatalf("bot init: %v", err)
	}
	botAPI.Debug = false

	session := telegram.New(botAPI)
	px := proxy.New(proxy.Config{
		ScreenshotURL:  cfg.ScreenshotURL,
		TTSURL:         cfg.TTSURL,
		ImageSearchURL: cfg.ImageSearchURL,
		ConvertURL:     cfg.ConvertURL,
		Timeout:        cfg.ProxyTimeout,
	})

	h := bot.NewHandler(session, cfg, store, mod, px, logger)

	// Graceful shutdown
	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
		<-ch
		cancel()
	}()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := botAPI.GetUpdatesChan(u)

	log.Printf("FRIO bot started as @%s", botAPI.Self.UserName)

	for {
		select {
		case <-ctx.Done():
			log.Println("shutdown")
			return
		case upd := <-updates:
			if msg, ok := session.FromUpdate(upd); ok {
				h.Dispatch(ctx, msg)
			}
		}
	}
}
