package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/robfig/cron/v3"

	"github.com/Notivest/price-fetcher/internal/api"
	"github.com/Notivest/price-fetcher/internal/cache"
	"github.com/Notivest/price-fetcher/internal/config"
	"github.com/Notivest/price-fetcher/internal/market"
	"github.com/Notivest/price-fetcher/internal/marketdata"
	"github.com/Notivest/price-fetcher/internal/provider"
	"github.com/Notivest/price-fetcher/internal/store"
	"github.com/Notivest/price-fetcher/internal/watchlist"
)

func main() {
	cfgPath := "configs/app.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	clock, err := market.NewClock(cfg.Market.Timezone, cfg.Market.Premarket, cfg.Market.Regular, cfg.Market.After)
	if err != nil {
		log.Fatalf("market clock error: %v", err)
	}

	st, err := store.Open(cfg.Store.Sqlite.Path)
	if err != nil {
		log.Fatalf("store error: %v", err)
	}
	defer func() {
		if err := st.Close(); err != nil {
			log.Printf("store close error: %v", err)
		}
	}()

	quotes := cache.NewQuoteCache(time.Duration(cfg.Quotes.TTLSeconds) * time.Second)
	candles := cache.NewCandleStore()

	finnhub := provider.NewFinnhubProvider(
		cfg.Providers.Finnhub.BaseURL,
		cfg.Providers.Finnhub.APIKey,
		time.Duration(cfg.Providers.Finnhub.TimeoutMs)*time.Millisecond,
	)
	polygon := provider.NewPolygonProvider(
		cfg.Providers.Polygon.BaseURL,
		cfg.Providers.Polygon.APIKey,
		time.Duration(cfg.Providers.Polygon.TimeoutMs)*time.Millisecond,
	)
	providers := provider.NewFactory(cfg.Providers.Primary, finnhub, polygon)

	wl := watchlist.NewService(st)
	svc := marketdata.NewService(providers, quotes, candles, cfg.Quotes.MaxCandleWindow)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched := marketdata.NewRefreshScheduler(wl, providers, quotes, clock,
		time.Duration(cfg.Quotes.RefreshMs)*time.Millisecond)
	go sched.Run(ctx)

	if cfg.Prefetch.Cron != "" {
		cr := cron.New(cron.WithSeconds())
		_, err := cr.AddFunc(cfg.Prefetch.Cron, func() {
			ids, err := wl.EnabledSymbols()
			if err != nil {
				log.Printf("scheduled prefetch: load watchlist: %v", err)
				return
			}
			n, err := svc.Prefetch(context.Background(), ids)
			if err != nil {
				log.Printf("scheduled prefetch failed: %v", err)
				return
			}
			log.Printf("scheduled prefetch stored %d quotes", n)
		})
		if err != nil {
			log.Fatalf("register prefetch cron: %v", err)
		}
		cr.Start()
		defer cr.Stop()
	}

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	h := server.Default(server.WithHostPorts(addr))
	api.RegisterRoutes(h, svc, wl, quotes, candles, clock)

	log.Printf("price-fetcher starting on %s (primary=%s, phase=%s)", addr, providers.Primary().Name(), clock.Phase())
	if err := h.Run(); err != nil {
		log.Fatalf("server run error: %v", err)
	}
}
