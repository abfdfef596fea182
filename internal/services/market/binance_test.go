package market

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
)

func TestSearchSymbolsFiltersAndSorts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v3/exchangeInfo" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"symbols": []map[string]string{
				{"symbol": "ETHUSDT", "status": "TRADING", "quoteAsset": "USDT"},
				{"symbol": "BTCUSDT", "status": "TRADING", "quoteAsset": "USDT"},
				{"symbol": "BTCBUSD", "status": "TRADING", "quoteAsset": "BUSD"},
				{"symbol": "XRPUSDT", "status": "BREAK", "quoteAsset": "USDT"},
			},
		})
	}))
	defer srv.Close()

	b := NewBinance(srv.URL, nil)
	got, err := b.SearchSymbols(context.Background(), "")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	want := []string{"BTCUSDT", "ETHUSDT"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}

	got, err = b.SearchSymbols(context.Background(), "eth")
	if err != nil {
		t.Fatalf("search eth: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"ETHUSDT"}) {
		t.Fatalf("expected [ETHUSDT], got %v", got)
	}
}

func TestGetOHLCVParsesKlines(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v3/klines" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("symbol"); got != "BTCUSDT" {
			t.Fatalf("expected symbol BTCUSDT, got %s", got)
		}
		if got := r.URL.Query().Get("interval"); got != "1h" {
			t.Fatalf("expected interval 1h, got %s", got)
		}
		_, _ = w.Write([]byte(`[
			[1700000000000,"100.5","110.0","99.0","105.25","1234.5",1700003599999,"0",0,"0","0","0"],
			[1700003600000,"105.25","112.0","104.0","111.0","987.0",1700007199999,"0",0,"0","0","0"]
		]`))
	}))
	defer srv.Close()

	b := NewBinance(srv.URL, nil)
	candles, err := b.GetOHLCV(context.Background(), "btcusdt", "1h", 2)
	if err != nil {
		t.Fatalf("ohlcv: %v", err)
	}
	if len(candles) != 2 {
		t.Fatalf("expected 2 candles, got %d", len(candles))
	}
	first := candles[0]
	if first.OpenTime != 1700000000000 || first.CloseTime != 1700003599999 {
		t.Fatalf("unexpected times: %+v", first)
	}
	if first.Open != 100.5 || first.High != 110.0 || first.Low != 99.0 || first.Close != 105.25 || first.Volume != 1234.5 {
		t.Fatalf("unexpected candle values: %+v", first)
	}
	if candles[1].Close != 111.0 {
		t.Fatalf("unexpected second close: %v", candles[1].Close)
	}
}

func TestKlineEventCandle(t *testing.T) {
	raw := `{"e":"kline","s":"BTCUSDT","k":{"t":1700000000000,"T":1700000059999,"o":"50.0","h":"51.0","l":"49.5","c":"50.5","v":"12.5","x":true}}`
	var ev klineEvent
	if err := json.Unmarshal([]byte(raw), &ev); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !ev.Kline.Closed {
		t.Fatalf("expected closed kline")
	}
	c, err := ev.candle()
	if err != nil {
		t.Fatalf("candle: %v", err)
	}
	if c.Symbol != "BTCUSDT" {
		t.Fatalf("expected symbol BTCUSDT, got %s", c.Symbol)
	}
	if c.Open != 50.0 || c.High != 51.0 || c.Low != 49.5 || c.Close != 50.5 || c.Volume != 12.5 {
		t.Fatalf("unexpected candle: %+v", c)
	}
}
