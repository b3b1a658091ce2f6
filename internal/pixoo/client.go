package pixoo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jwulff/pinclock-go/internal/domain"
)

// DefaultPort is the default Pixoo HTTP API port.
const DefaultPort = 80

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 5 * time.Second

// Client is an HTTP client for one Pixoo device.
type Client struct {
	endpoint   string
	HTTPClient *http.Client
}

// NewClient creates a client for address, which is a host or host:port.
func NewClient(address string) *Client {
	return NewClientWithURL(fmt.Sprintf("http://%s/post", address))
}

// NewClientWithURL creates a client posting to a full endpoint URL.
func NewClientWithURL(endpoint string) *Client {
	return &Client{
		endpoint: endpoint,
		HTTPClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
}

// Endpoint returns the full API endpoint URL.
func (c *Client) Endpoint() string { return c.endpoint }

// sendCommand posts a command and checks the device error code.
func (c *Client) sendCommand(ctx context.Context, command any) error {
	data, err := json.Marshal(command)
	if err != nil {
		return fmt.Errorf("failed to marshal command: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode, string(body))
	}

	var r Response
	if err := json.Unmarshal(body, &r); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if r.ErrorCode != 0 {
		return fmt.Errorf("device error code %d", r.ErrorCode)
	}
	return nil
}

// SendFrame shows a 64x64 frame as picture picID.
func (c *Client) SendFrame(ctx context.Context, frame *domain.Frame, picID int) error {
	if frame.Width != Size || frame.Height != Size {
		return fmt.Errorf("frame must be %dx%d, got %dx%d", Size, Size, frame.Width, frame.Height)
	}
	return c.sendCommand(ctx, CreateFrameCommand(frame, picID))
}

// ResetGifID resets the picture id counter on the device.
func (c *Client) ResetGifID(ctx context.Context) error {
	return c.sendCommand(ctx, CreateResetGifIDCommand())
}

// SetBrightness sets the display brightness (0-100).
func (c *Client) SetBrightness(ctx context.Context, brightness int) error {
	return c.sendCommand(ctx, CreateBrightnessCommand(brightness))
}
