package api

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"

	"github.com/Notivest/price-fetcher/internal/cache"
	"github.com/Notivest/price-fetcher/internal/market"
	"github.com/Notivest/price-fetcher/internal/marketdata"
	"github.com/Notivest/price-fetcher/internal/watchlist"
)

const appVersion = "0.1.0"

type watchlistPatch struct {
	Enabled  *bool `json:"enabled"`
	Priority *int  `json:"priority"`
}

func RegisterRoutes(h *server.Hertz, svc *marketdata.Service, wl *watchlist.Service, quotes *cache.QuoteCache, candles *cache.CandleStore, clock *market.Clock) {
	h.GET("/health", func(_ context.Context, c *app.RequestContext) {
		items, err := wl.List()
		if err != nil {
			c.JSON(http.StatusInternalServerError, map[string]any{"status": "DOWN", "error": err.Error()})
			return
		}
		enabled := 0
		enabledSymbols := make([]string, 0, len(items))
		for _, item := range items {
			if item.Enabled {
				enabled++
				enabledSymbols = append(enabledSymbols, item.Symbol)
			}
		}
		cachedSymbols := make([]string, 0, quotes.Count())
		for _, sym := range quotes.Symbols() {
			cachedSymbols = append(cachedSymbols, sym.String())
		}
		c.JSON(http.StatusOK, map[string]any{
			"status":    "UP",
			"timestamp": time.Now().UTC(),
			"market": map[string]any{
				"phase":    clock.Phase(),
				"timezone": clock.Timezone(),
			},
			"cache": map[string]any{
				"quotes":  quotes.Count(),
				"candles": candles.Count(),
				"symbols": cachedSymbols,
			},
			"watchlist": map[string]any{
				"total":           len(items),
				"enabled":         enabled,
				"disabled":        len(items) - enabled,
				"enabled_symbols": enabledSymbols,
			},
			"version": map[string]string{
				"app":     "price-fetcher",
				"version": appVersion,
			},
		})
	})

	h.GET("/quotes", func(_ context.Context, c *app.RequestContext) {
		raw := strings.TrimSpace(c.Query("symbols"))
		if raw == "" {
			c.JSON(http.StatusBadRequest, map[string]string{"error": "symbols query parameter is required"})
			return
		}
		ids := make([]market.SymbolId, 0)
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			ids = append(ids, market.ParseSymbol(part))
		}
		views, err := svc.GetQuotes(ids)
		if err != nil {
			if errors.Is(err, marketdata.ErrNotFound) {
				c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
				return
			}
			c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, views)
	})

	h.GET("/historical", func(ctx context.Context, c *app.RequestContext) {
		symbolRaw := strings.TrimSpace(c.Query("symbol"))
		if symbolRaw == "" {
			c.JSON(http.StatusBadRequest, map[string]string{"error": "symbol query parameter is required"})
			return
		}
		from, err := time.Parse(time.RFC3339, c.Query("from"))
		if err != nil {
			c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid from: " + err.Error()})
			return
		}
		to, err := time.Parse(time.RFC3339, c.Query("to"))
		if err != nil {
			c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid to: " + err.Error()})
			return
		}
		tfRaw := c.Query("tf")
		if tfRaw == "" {
			tfRaw = string(market.T1D)
		}
		tf, err := market.ParseTimeframe(tfRaw)
		if err != nil {
			c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		adjusted := true
		if v := c.Query("adjusted"); v != "" {
			adjusted, err = strconv.ParseBool(v)
			if err != nil {
				c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid adjusted: " + err.Error()})
				return
			}
		}

		series, err := svc.Historical(ctx, market.ParseSymbol(symbolRaw), from, to, tf, adjusted)
		if err != nil {
			log.Printf("historical fetch for %s failed: %v", symbolRaw, err)
			c.JSON(http.StatusBadGateway, map[string]string{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, series)
	})

	h.POST("/prefetch", func(ctx context.Context, c *app.RequestContext) {
		ids, err := wl.EnabledSymbols()
		if err != nil {
			c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		count, err := svc.Prefetch(ctx, ids)
		if err != nil {
			log.Printf("prefetch failed: %v", err)
			c.JSON(http.StatusBadGateway, map[string]string{"error": err.Error()})
			return
		}
		symbols := make([]string, 0, len(ids))
		for _, id := range ids {
			symbols = append(symbols, id.String())
		}
		c.JSON(http.StatusOK, map[string]any{
			"prefetched": count,
			"symbols":    symbols,
		})
	})

	h.GET("/watchlist", func(_ context.Context, c *app.RequestContext) {
		items, err := wl.List()
		if err != nil {
			c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		if items == nil {
			items = []market.WatchListItem{}
		}
		c.JSON(http.StatusOK, items)
	})

	h.POST("/watchlist", func(_ context.Context, c *app.RequestContext) {
		item := market.WatchListItem{Enabled: true}
		if err := c.BindJSON(&item); err != nil {
			c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid json body"})
			return
		}
		if err := wl.Add(item); err != nil {
			if errors.Is(err, watchlist.ErrExists) {
				c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
				return
			}
			c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, map[string]string{"status": "added"})
	})

	h.PATCH("/watchlist/:symbol", func(_ context.Context, c *app.RequestContext) {
		var body watchlistPatch
		if err := c.BindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid json body"})
			return
		}
		if err := wl.Patch(c.Param("symbol"), body.Enabled, body.Priority); err != nil {
			if errors.Is(err, watchlist.ErrNotFound) {
				c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
				return
			}
			c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		c.SetStatusCode(http.StatusNoContent)
	})

	h.DELETE("/watchlist/:symbol", func(_ context.Context, c *app.RequestContext) {
		if err := wl.Delete(c.Param("symbol")); err != nil {
			if errors.Is(err, watchlist.ErrNotFound) {
				c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
				return
			}
			c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		c.SetStatusCode(http.StatusNoContent)
	})

	h.GET("/info/timeframes", func(_ context.Context, c *app.RequestContext) {
		descriptions := map[market.Timeframe]string{
			market.T1M:  "1 minute",
			market.T5M:  "5 minutes",
			market.T15M: "15 minutes",
			market.T1H:  "1 hour",
			market.T1D:  "1 day",
		}
		available := make([]map[string]string, 0, len(descriptions))
		for _, tf := range market.Timeframes() {
			available = append(available, map[string]string{
				"value":       string(tf),
				"description": descriptions[tf],
			})
		}
		c.JSON(http.StatusOK, map[string]any{
			"available_timeframes": available,
			"default":              string(market.T1D),
		})
	})
}
