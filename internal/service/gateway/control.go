package gateway

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	xhttp "PulseLab/pkg/http"
)

// CharPMDControl is the PMD control point. Writing a stream-request
// command here is what makes the sensor emit PMD data frames; without it
// the ECG characteristic stays silent.
const CharPMDControl = "fb005c81-02e7-f387-1cad-8acd2d8df0c8"

// pmdECGCommand requests the 130 Hz ECG stream.
var pmdECGCommand = []byte{0x01, 0x00, 0x00, 0x01, 0x82, 0x00, 0x01, 0x01, 0x0e, 0x00}

// ControlClient drives the gateway's HTTP control surface: characteristic
// writes that must happen before notifications start flowing.
type ControlClient struct {
	baseURL string
	hc      *xhttp.Client
}

// NewControlClient creates a control client for the gateway's HTTP API.
func NewControlClient(baseURL string, timeout time.Duration) *ControlClient {
	return &ControlClient{
		baseURL: baseURL,
		hc:      xhttp.NewClient(xhttp.WithTimeout(timeout)),
	}
}

type writeRequest struct {
	Characteristic string `json:"characteristic"`
	Data           string `json:"data"` // base64 payload bytes
}

// WriteCharacteristic asks the gateway to write payload to a GATT
// characteristic on the connected sensor.
func (c *ControlClient) WriteCharacteristic(ctx context.Context, characteristic string, payload []byte) error {
	req := writeRequest{
		Characteristic: characteristic,
		Data:           base64.StdEncoding.EncodeToString(payload),
	}
	err := c.hc.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodPost,
		URL:    c.baseURL + "/control/write",
		Body:   req,
	}, nil)
	if err != nil {
		return fmt.Errorf("control write %s: %w", characteristic, err)
	}
	return nil
}

// StartECGStream writes the PMD stream-request command for ECG.
func (c *ControlClient) StartECGStream(ctx context.Context) error {
	return c.WriteCharacteristic(ctx, CharPMDControl, pmdECGCommand)
}
