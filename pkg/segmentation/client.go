package segmentation

import (
	"NutriVision/internal/entity"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Client is a single websocket session with the segmenter service. Each
// request is one binary image frame out and one segmentation payload back;
// a session is never shared between in-flight requests.
type Client struct {
	log          *logrus.Logger
	url          string
	conn         *websocket.Conn
	mu           sync.Mutex
	pingInterval time.Duration
	readTimeout  time.Duration
	writeTimeout time.Duration
}

// segmenterResponse is the wire shape of the model service. Class ids in
// id2label arrive as strings and are converted on this side.
type segmenterResponse struct {
	Width    int               `json:"width"`
	Height   int               `json:"height"`
	Classes  [][]int           `json:"classes"`
	ID2Label map[string]string `json:"id2label"`
	Error    string            `json:"error,omitempty"`
}

func NewClient(log *logrus.Logger) *Client {
	client := &Client{
		log:          log,
		url:          getSegmenterURL(),
		pingInterval: 30 * time.Second,
		readTimeout:  60 * time.Second,
		writeTimeout: 5 * time.Second,
	}

	go client.connectInBackground()

	return client
}

func (c *Client) connectInBackground() {
	if err := c.Reconnect(); err != nil {
		c.log.WithFields(logrus.Fields{
			"url":   c.url,
			"error": err.Error(),
		}).Warn("Initial segmenter connection failed, will retry on demand")
		return
	}
	c.log.WithField("url", c.url).Info("Connected to segmenter service")
}

func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

func (c *Client) Reconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}

	if c.url == "" {
		return fmt.Errorf("segmenter URL not configured")
	}

	dialer := websocket.DefaultDialer
	dialer.HandshakeTimeout = 10 * time.Second

	conn, _, err := dialer.Dial(c.url, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", c.url, err)
	}

	conn.SetPingHandler(func(appData string) error {
		err := conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(c.writeTimeout))
		if err != nil {
			c.log.WithField("error", err.Error()).Warn("Failed to send pong to segmenter")
		}
		return nil
	})

	c.conn = conn
	go c.keepAlive()

	return nil
}

func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}

func (c *Client) keepAlive() {
	ticker := time.NewTicker(c.pingInterval)
	defer ticker.Stop()

	for range ticker.C {
		c.mu.Lock()
		conn := c.conn
		if conn == nil {
			c.mu.Unlock()
			return
		}

		err := conn.WriteControl(
			websocket.PingMessage,
			[]byte{},
			time.Now().Add(c.writeTimeout),
		)
		if err != nil {
			c.log.WithField("error", err.Error()).Warn("Segmenter ping failed, marking connection as dead")
			c.conn = nil
			conn.Close()
			c.mu.Unlock()
			return
		}

		c.mu.Unlock()
	}
}

func (c *Client) getConnection() (*websocket.Conn, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return nil, fmt.Errorf("not connected to segmenter service")
	}
	return c.conn, nil
}

// ProcessImage sends one encoded image to the segmenter and waits for its
// class grid. The connection is re-dialed once if it has gone away.
func (c *Client) ProcessImage(frame []byte) (*entity.SegmentationResult, error) {
	conn, err := c.getConnection()
	if err != nil {
		if err := c.Reconnect(); err != nil {
			return nil, fmt.Errorf("cannot connect to segmenter service: %w", err)
		}
		conn, err = c.getConnection()
		if err != nil {
			return nil, err
		}
	}

	c.mu.Lock()

	conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	if err := conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
		c.conn = nil
		conn.Close()
		c.mu.Unlock()
		return nil, fmt.Errorf("error sending image frame: %w", err)
	}

	conn.SetReadDeadline(time.Now().Add(c.readTimeout))

	c.mu.Unlock()

	_, message, err := conn.ReadMessage()
	if err != nil {
		c.mu.Lock()
		c.conn = nil
		conn.Close()
		c.mu.Unlock()
		return nil, fmt.Errorf("error reading segmenter response: %w", err)
	}

	c.mu.Lock()
	conn.SetReadDeadline(time.Time{})
	conn.SetWriteDeadline(time.Time{})
	c.mu.Unlock()

	var resp segmenterResponse
	if err := json.Unmarshal(message, &resp); err != nil {
		return nil, fmt.Errorf("error unmarshaling segmenter response: %w", err)
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("segmenter error: %s", resp.Error)
	}

	result, err := toSegmentationResult(&resp)
	if err != nil {
		return nil, err
	}

	c.log.WithFields(logrus.Fields{
		"width":   result.Width,
		"height":  result.Height,
		"classes": len(result.Labels),
	}).Debug("Received segmentation from model service")

	return result, nil
}

func toSegmentationResult(resp *segmenterResponse) (*entity.SegmentationResult, error) {
	labels := make(map[int]string, len(resp.ID2Label))
	for raw, label := range resp.ID2Label {
		id, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("segmenter sent non-numeric class id %q", raw)
		}
		labels[id] = label
	}

	return &entity.SegmentationResult{
		Width:   resp.Width,
		Height:  resp.Height,
		Classes: resp.Classes,
		Labels:  labels,
	}, nil
}

func getSegmenterURL() string {
	url := os.Getenv("SEGMENTER_WS_URL")
	if url == "" {
		url = "ws://localhost:8000/api/v1/segmenter/ws"
	}
	return url
}
