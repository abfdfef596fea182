package market

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/katheedev/crypto-sentiment/internal/domain/models"
	domservice "github.com/katheedev/crypto-sentiment/internal/domain/service"
	pkghttp "github.com/katheedev/crypto-sentiment/pkg/http"
)

// Binance implements MarketDataSource over the Binance spot REST API.
type Binance struct {
	baseURL string
	client  *pkghttp.Client
}

// NewBinance creates a Binance market data source.
func NewBinance(baseURL string, client *pkghttp.Client) *Binance {
	if baseURL == "" {
		baseURL = "https://api.binance.com"
	}
	if client == nil {
		client = pkghttp.NewClient()
	}
	return &Binance{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

type exchangeInfo struct {
	Symbols []struct {
		Symbol     string `json:"symbol"`
		Status     string `json:"status"`
		QuoteAsset string `json:"quoteAsset"`
	} `json:"symbols"`
}

// SearchSymbols returns trading USDT pairs whose name contains the query,
// sorted ascending and capped at 100 results.
func (b *Binance) SearchSymbols(ctx context.Context, query string) ([]string, error) {
	var info exchangeInfo
	err := b.client.SendAndParse(ctx, &pkghttp.RequestOptions{
		Method: pkghttp.MethodGet,
		URL:    b.baseURL + "/api/v3/exchangeInfo",
	}, &info)
	if err != nil {
		return nil, fmt.Errorf("exchange info: %w", err)
	}

	q := strings.ToUpper(strings.TrimSpace(query))
	out := make([]string, 0, 32)
	for _, s := range info.Symbols {
		if s.Status != "TRADING" || s.QuoteAsset != "USDT" {
			continue
		}
		if q != "" && !strings.Contains(s.Symbol, q) {
			continue
		}
		out = append(out, s.Symbol)
	}
	sort.Strings(out)
	if len(out) > 100 {
		out = out[:100]
	}
	return out, nil
}

// GetOHLCV fetches up to limit historical candles, oldest first.
func (b *Binance) GetOHLCV(ctx context.Context, symbol, interval string, limit int) ([]models.Candle, error) {
	if limit <= 0 {
		limit = 500
	}
	var raw [][]json.RawMessage
	err := b.client.SendAndParse(ctx, &pkghttp.RequestOptions{
		Method: pkghttp.MethodGet,
		URL:    b.baseURL + "/api/v3/klines",
		QueryParams: map[string][]string{
			"symbol":   {strings.ToUpper(symbol)},
			"interval": {interval},
			"limit":    {strconv.Itoa(limit)},
		},
	}, &raw)
	if err != nil {
		return nil, fmt.Errorf("klines %s %s: %w", symbol, interval, err)
	}

	candles := make([]models.Candle, 0, len(raw))
	for _, k := range raw {
		// kline: [openTime, open, high, low, close, volume, closeTime, ...]
		if len(k) < 7 {
			continue
		}
		c, err := parseKline(k)
		if err != nil {
			return nil, fmt.Errorf("parse kline: %w", err)
		}
		candles = append(candles, c)
	}
	return candles, nil
}

func parseKline(k []json.RawMessage) (models.Candle, error) {
	var c models.Candle
	if err := json.Unmarshal(k[0], &c.OpenTime); err != nil {
		return c, err
	}
	if err := json.Unmarshal(k[6], &c.CloseTime); err != nil {
		return c, err
	}
	for i, dst := range map[int]*float64{1: &c.Open, 2: &c.High, 3: &c.Low, 4: &c.Close, 5: &c.Volume} {
		var s string
		if err := json.Unmarshal(k[i], &s); err != nil {
			return c, err
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return c, err
		}
		*dst = v
	}
	return c, nil
}

var _ domservice.MarketDataSource = (*Binance)(nil)
