package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/tnqbao/gau-object-gallery/entity"
)

type EventHandler func(event entity.ObjectEvent)

// Subscribe streams realtime events to handler until ctx ends (nil error)
// or the connection drops. Unknown frames are skipped.
func (c *Client) Subscribe(ctx context.Context, handler EventHandler) error {
	conn, _, err := c.dialer.DialContext(ctx, c.realtimeURL(), nil)
	if err != nil {
		return fmt.Errorf("failed to connect to realtime endpoint: %w", err)
	}
	defer conn.Close()

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-stop:
		}
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			var closeErr *websocket.CloseError
			if errors.As(err, &closeErr) && closeErr.Code == websocket.CloseNormalClosure {
				return nil
			}
			return fmt.Errorf("realtime connection lost: %w", err)
		}

		var event entity.ObjectEvent
		if err := json.Unmarshal(message, &event); err != nil {
			continue
		}
		handler(event)
	}
}

func (c *Client) realtimeURL() string {
	wsURL := c.baseURL
	switch {
	case strings.HasPrefix(wsURL, "https://"):
		wsURL = "wss://" + strings.TrimPrefix(wsURL, "https://")
	case strings.HasPrefix(wsURL, "http://"):
		wsURL = "ws://" + strings.TrimPrefix(wsURL, "http://")
	}
	return wsURL + apiBasePath + "/realtime"
}
