package push

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/xiaot623/gogo/remindchat/internal/protocol"
)

// DefaultReadTimeout is twice the server's 30s ping interval.
const DefaultReadTimeout = 60 * time.Second

const pongWriteTimeout = 10 * time.Second

// wsTransport reads JSON frames from a websocket connection.
type wsTransport struct {
	url         string
	header      http.Header
	readTimeout time.Duration
	dialer      *websocket.Dialer
	logger      *slog.Logger
}

func newWebSocketTransport(url string, header http.Header, readTimeout time.Duration, logger *slog.Logger) *wsTransport {
	return &wsTransport{
		url:         url,
		header:      header,
		readTimeout: readTimeout,
		dialer: &websocket.Dialer{
			HandshakeTimeout: 10 * time.Second,
		},
		logger: logger,
	}
}

func (t *wsTransport) Name() string { return protocol.TransportWebSocket }

func (t *wsTransport) Stream(ctx context.Context, onOpen func(), deliver func(protocol.Frame)) error {
	conn, _, err := t.dialer.DialContext(ctx, t.url, t.header)
	if err != nil {
		return fmt.Errorf("dial %s: %w", t.url, err)
	}
	defer conn.Close()

	// A dead peer shows up as a read timeout; every ping or frame extends it.
	conn.SetReadDeadline(time.Now().Add(t.readTimeout))
	conn.SetPingHandler(func(appData string) error {
		conn.SetReadDeadline(time.Now().Add(t.readTimeout))
		err := conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(pongWriteTimeout))
		if err == websocket.ErrCloseSent {
			return nil
		}
		return err
	})

	onOpen()
	t.logger.Debug("websocket connected", "url", t.url)

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			conn.WriteControl(
				websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second),
			)
			conn.Close()
		case <-stop:
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("read: %w", err)
		}

		conn.SetReadDeadline(time.Now().Add(t.readTimeout))

		var frame protocol.Frame
		if err := json.Unmarshal(data, &frame); err != nil {
			t.logger.Warn("dropping malformed push frame", "error", err)
			continue
		}
		deliver(frame)
	}
}
