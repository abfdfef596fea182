package market

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/katheedev/crypto-sentiment/internal/domain/models"
	domrepo "github.com/katheedev/crypto-sentiment/internal/domain/repository"
)

// Stream implements a TickStream backed by the Binance kline WebSocket. Only
// closed candles are forwarded, so downstream indicator math never sees a
// partial bar.
type Stream struct {
	websocketURL   string
	symbols        []string
	interval       string
	reconnectDelay time.Duration
	pingInterval   time.Duration

	conn      *websocket.Conn
	connected bool
}

// NewStream creates a Binance kline stream for the given symbols.
func NewStream(websocketURL string, symbols []string, interval string, reconnectDelay, pingInterval time.Duration) *Stream {
	if websocketURL == "" {
		websocketURL = "wss://stream.binance.com:9443/ws"
	}
	if interval == "" {
		interval = string(domrepo.DefaultInterval())
	}
	return &Stream{
		websocketURL:   websocketURL,
		symbols:        symbols,
		interval:       interval,
		reconnectDelay: reconnectDelay,
		pingInterval:   pingInterval,
	}
}

// Connect establishes the WebSocket connection and subscribes to the kline
// streams.
func (s *Stream) Connect(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.websocketURL, nil)
	if err != nil {
		return fmt.Errorf("binance stream connect: %w", err)
	}
	s.conn = conn
	s.connected = true

	params := make([]string, 0, len(s.symbols))
	for _, sym := range s.symbols {
		params = append(params, fmt.Sprintf("%s@kline_%s", strings.ToLower(sym), s.interval))
	}
	sub := map[string]interface{}{"method": "SUBSCRIBE", "params": params, "id": 1}
	if err := conn.WriteJSON(sub); err != nil {
		return fmt.Errorf("binance subscribe: %w", err)
	}
	return nil
}

type klineEvent struct {
	EventType string `json:"e"`
	Symbol    string `json:"s"`
	Kline     struct {
		OpenTime  int64  `json:"t"`
		CloseTime int64  `json:"T"`
		Open      string `json:"o"`
		High      string `json:"h"`
		Low       string `json:"l"`
		Close     string `json:"c"`
		Volume    string `json:"v"`
		Closed    bool   `json:"x"`
	} `json:"k"`
}

// Read streams closed candles and errors. Both channels close when the read
// loop ends.
func (s *Stream) Read(ctx context.Context) (<-chan models.StreamCandle, <-chan error) {
	candles := make(chan models.StreamCandle, 256)
	errs := make(chan error, 1)

	// ping loop
	go func() {
		ticker := time.NewTicker(s.pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if s.conn != nil {
					_ = s.conn.WriteMessage(websocket.PingMessage, nil)
				}
			}
		}
	}()

	// read loop
	go func() {
		defer close(candles)
		defer close(errs)
		for {
			select {
			case <-ctx.Done():
				return
			default:
				if s.conn == nil {
					errs <- fmt.Errorf("binance stream conn nil")
					return
				}
				_, b, err := s.conn.ReadMessage()
				if err != nil {
					errs <- fmt.Errorf("binance stream read: %w", err)
					return
				}
				var ev klineEvent
				if err := json.Unmarshal(b, &ev); err != nil {
					// ignore non-kline frames
					continue
				}
				if ev.EventType != "kline" || !ev.Kline.Closed {
					continue
				}
				c, err := ev.candle()
				if err != nil {
					continue
				}
				select {
				case candles <- c:
				default:
					// drop on backpressure
				}
			}
		}
	}()

	return candles, errs
}

func (e *klineEvent) candle() (models.StreamCandle, error) {
	c := models.StreamCandle{Symbol: e.Symbol}
	c.OpenTime = e.Kline.OpenTime
	c.CloseTime = e.Kline.CloseTime
	var err error
	parse := func(s string) float64 {
		v, perr := strconv.ParseFloat(s, 64)
		if perr != nil && err == nil {
			err = perr
		}
		return v
	}
	c.Open = parse(e.Kline.Open)
	c.High = parse(e.Kline.High)
	c.Low = parse(e.Kline.Low)
	c.Close = parse(e.Kline.Close)
	c.Volume = parse(e.Kline.Volume)
	return c, err
}

// Reconnect closes and reconnects.
func (s *Stream) Reconnect(ctx context.Context) error {
	_ = s.Close()
	time.Sleep(s.reconnectDelay)
	return s.Connect(ctx)
}

// Close closes the WS connection.
func (s *Stream) Close() error {
	s.connected = false
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

// IsConnected indicates status.
func (s *Stream) IsConnected() bool { return s.connected }

var _ domrepo.TickStream = (*Stream)(nil)
