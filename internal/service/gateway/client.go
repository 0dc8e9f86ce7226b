// Package gateway connects to the BLE gateway bridge: an external process
// that owns the Bluetooth adapter, pairs with the Polar H10, and forwards
// every GATT notification over a local websocket as raw payload bytes plus
// characteristic identity and arrival time. Pairing, bonding and
// transport-level retry live on that side of the socket, not here.
package gateway

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"PulseLab/internal/domain/models"
	drepo "PulseLab/internal/domain/repository"

	"github.com/gorilla/websocket"
)

// Client implements a SensorStream backed by the gateway websocket.
type Client struct {
	url             string
	characteristics []string
	reconnectDelay  time.Duration
	pingInterval    time.Duration

	control *ControlClient

	conn      *websocket.Conn
	connected bool
}

// New creates a new gateway SensorStream. control may be nil when the
// gateway has no HTTP control surface.
func New(url string, characteristics []string, reconnectDelay, pingInterval time.Duration, control *ControlClient) drepo.SensorStream {
	return &Client{
		url:             url,
		characteristics: characteristics,
		reconnectDelay:  reconnectDelay,
		pingInterval:    pingInterval,
		control:         control,
	}
}

// Connect establishes the websocket connection.
func (c *Client) Connect(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return fmt.Errorf("gateway connect: %w", err)
	}
	c.conn = conn
	c.connected = true
	log.Printf("gateway: connected")
	return nil
}

// Subscribe asks the gateway for notifications on the configured
// characteristics.
func (c *Client) Subscribe(ctx context.Context) error {
	if c.conn == nil || !c.connected {
		return fmt.Errorf("gateway not connected")
	}
	needsPMD := false
	for _, ch := range c.characteristics {
		msg := map[string]string{"type": "subscribe", "characteristic": ch}
		if err := c.conn.WriteJSON(msg); err != nil {
			return fmt.Errorf("subscribe %s: %w", ch, err)
		}
		log.Printf("gateway: subscribed %s", ch)
		if models.Characteristic(ch) == models.CharPMDData {
			needsPMD = true
		}
	}
	// PMD frames only flow after the stream-request command.
	if needsPMD && c.control != nil {
		if err := c.control.StartECGStream(ctx); err != nil {
			return err
		}
		log.Printf("gateway: ecg stream requested")
	}
	return nil
}

type gwFrame struct {
	Characteristic string `json:"characteristic"`
	Data           string `json:"data"`    // base64 payload bytes
	Arrival        int64  `json:"arrival"` // unix ms
}

type gwMessage struct {
	Type  string   `json:"type"`
	Frame *gwFrame `json:"frame"`
}

// Read streams RawFrame events and errors.
func (c *Client) Read(ctx context.Context) (<-chan *models.RawFrame, <-chan error) {
	frames := make(chan *models.RawFrame, 1024)
	errs := make(chan error, 1)

	// ping loop
	go func() {
		ticker := time.NewTicker(c.pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if c.conn != nil {
					_ = c.conn.WriteMessage(websocket.PingMessage, nil)
				}
			}
		}
	}()

	// read loop
	go func() {
		defer close(frames)
		defer close(errs)
		for {
			select {
			case <-ctx.Done():
				return
			default:
				if c.conn == nil {
					errs <- fmt.Errorf("gateway conn nil")
					return
				}
				_, b, err := c.conn.ReadMessage()
				if err != nil {
					errs <- fmt.Errorf("gateway read: %w", err)
					return
				}
				var m gwMessage
				if err := json.Unmarshal(b, &m); err != nil {
					// ignore non-frame messages
					continue
				}
				if m.Type != "notification" || m.Frame == nil {
					continue
				}
				payload, err := base64.StdEncoding.DecodeString(m.Frame.Data)
				if err != nil {
					continue
				}
				arrival := time.UnixMilli(m.Frame.Arrival)
				if m.Frame.Arrival == 0 {
					arrival = time.Now()
				}
				frame := &models.RawFrame{
					Characteristic: models.Characteristic(m.Frame.Characteristic),
					Payload:        payload,
					Arrival:        arrival,
				}
				select {
				case frames <- frame:
				default:
					// drop on backpressure; the gateway resends nothing
					// and a stalled consumer must not wedge the socket
				}
			}
		}
	}()

	return frames, errs
}

// Reconnect closes and re-establishes the connection.
func (c *Client) Reconnect(ctx context.Context) error {
	c.connected = false
	if c.conn != nil {
		_ = c.conn.Close()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(c.reconnectDelay):
	}
	if err := c.Connect(ctx); err != nil {
		return err
	}
	return c.Subscribe(ctx)
}

func (c *Client) Close() error {
	c.connected = false
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

func (c *Client) IsConnected() bool { return c.connected }
