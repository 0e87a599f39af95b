package live

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// Client is a Go-side live viewer connection, used by tooling and tests
type Client struct {
	conn *websocket.Conn
}

// Dial connects to a live endpoint such as ws://host/live/<session>
func Dial(ctx context.Context, url string) (*Client, *http.Response, error) {
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, resp, fmt.Errorf("dial %s: %w", url, err)
	}
	return &Client{conn: conn}, resp, nil
}

// SendEvent sends a pointer event
func (c *Client) SendEvent(evt Event) error {
	return c.conn.WriteMessage(websocket.BinaryMessage, EncodeEvent(evt))
}

// SendControl sends a control message
func (c *Client) SendControl(ctl Control) error {
	return c.conn.WriteMessage(websocket.BinaryMessage, EncodeControl(ctl))
}

// Read returns the next binary message from the server. A zero timeout
// waits indefinitely.
func (c *Client) Read(timeout time.Duration) (MessageType, []byte, error) {
	if timeout != 0 {
		c.conn.SetReadDeadline(time.Now().Add(timeout))
	}
	for {
		mt, data, err := c.conn.ReadMessage()
		if err != nil {
			return 0, nil, err
		}
		if mt != websocket.BinaryMessage || len(data) == 0 {
			continue
		}
		return MessageType(data[0]), data, nil
	}
}

// ReadControl skips render frames until a control message arrives
func (c *Client) ReadControl(timeout time.Duration) (string, []byte, error) {
	deadline := time.Now().Add(timeout)
	for {
		mt, data, err := c.Read(time.Until(deadline))
		if err != nil {
			return "", nil, err
		}
		if mt != FrameControl {
			continue
		}
		name, err := controlName(NewDecoder(data))
		if err != nil {
			return "", nil, err
		}
		return name, data, nil
	}
}

// ReadFrame skips control messages until a render frame arrives
func (c *Client) ReadFrame(timeout time.Duration) (*Render, error) {
	deadline := time.Now().Add(timeout)
	for {
		mt, data, err := c.Read(time.Until(deadline))
		if err != nil {
			return nil, err
		}
		if mt == FrameRender {
			return DecodeFrame(data)
		}
	}
}

// Close closes the connection
func (c *Client) Close() error {
	c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
	return c.conn.Close()
}
