package tuya

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/arkady-digital/homewatch-core/internal/infrastructure/config"
	"github.com/arkady-digital/homewatch-core/internal/telemetry"
)

// tokenEarlyRefresh is how long before expiry a cached token is
// considered stale and refreshed.
const tokenEarlyRefresh = 60 * time.Second

// Logger interface for optional logging support.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Warn(string, ...any)  {}

// Client talks to the vendor cloud API.
//
// It caches the access token and refreshes it shortly before expiry.
// All methods are safe for concurrent use.
type Client struct {
	cfg        config.VendorConfig
	httpClient *http.Client

	// devices maps device ID to its type, for DP scaling rules.
	devices map[string]DeviceType

	// token cache, guarded by tokenMu.
	tokenMu     sync.Mutex
	accessToken string
	tokenExpiry time.Time

	capture *capture

	logger   Logger
	loggerMu sync.RWMutex

	// now is replaced in tests.
	now func() time.Time
}

// New creates a vendor API client for the configured devices.
//
// Devices with an unrecognised type are skipped; callers validate types
// at config load time so this only happens with hand-built configs.
func New(cfg config.VendorConfig, devices []config.DeviceConfig) *Client {
	m := make(map[string]DeviceType, len(devices))
	for _, d := range devices {
		dt, err := ParseDeviceType(d.Type)
		if err != nil {
			continue
		}
		m[d.ID] = dt
	}

	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.RequestTimeout) * time.Second,
		},
		devices: m,
		capture: newCapture(cfg.CaptureDir),
		logger:  noopLogger{},
		now:     time.Now,
	}
}

// SetLogger sets the logger for debug and warning output.
func (c *Client) SetLogger(logger Logger) {
	c.loggerMu.Lock()
	defer c.loggerMu.Unlock()
	if logger != nil {
		c.logger = logger
	}
}

func (c *Client) log() Logger {
	c.loggerMu.RLock()
	defer c.loggerMu.RUnlock()
	return c.logger
}

// DeviceType returns the configured type for a device ID.
func (c *Client) DeviceType(deviceID string) (DeviceType, error) {
	dt, ok := c.devices[deviceID]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownDevice, deviceID)
	}
	return dt, nil
}

// FetchReadings polls current status for one device and decodes it
// into observations.
//
// All observations from one poll share the response envelope timestamp.
// Unknown DP codes are logged at debug level and skipped.
func (c *Client) FetchReadings(ctx context.Context, deviceID string) ([]telemetry.Observation, error) {
	deviceType, err := c.DeviceType(deviceID)
	if err != nil {
		return nil, err
	}

	path := fmt.Sprintf("/v1.0/devices/%s/status", deviceID)
	env, err := c.doSigned(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	result, err := env.intoResult()
	if err != nil {
		return nil, fmt.Errorf("fetching status for %s: %w", deviceID, err)
	}

	var props []DeviceProperty
	if err := json.Unmarshal(result, &props); err != nil {
		return nil, fmt.Errorf("decoding status for %s: %w", deviceID, err)
	}

	observedAt := time.UnixMilli(env.T).UTC()
	obs, unknown := mapProperties(deviceType, props, observedAt)
	for _, code := range unknown {
		c.log().Debug("skipping unknown dp code", "device_id", deviceID, "code", code)
	}

	return obs, nil
}

// SendCommand issues an actuator write to a device.
//
// Only relay state and temperature setpoint are writable.
func (c *Client) SendCommand(ctx context.Context, deviceID string, kind telemetry.SensorKind, value telemetry.Value) error {
	deviceType, err := c.DeviceType(deviceID)
	if err != nil {
		return err
	}

	cmd, ok := commandForKind(deviceType, kind, value)
	if !ok {
		return fmt.Errorf("%w: %s for %s", ErrUnsupportedCommand, kind, deviceType)
	}

	body, err := json.Marshal(commandRequest{Commands: []command{cmd}})
	if err != nil {
		return fmt.Errorf("encoding command: %w", err)
	}

	path := fmt.Sprintf("/v1.0/devices/%s/commands", deviceID)
	env, err := c.doSigned(ctx, http.MethodPost, path, body)
	if err != nil {
		return err
	}

	if _, err := env.intoResult(); err != nil {
		return fmt.Errorf("sending command to %s: %w", deviceID, err)
	}

	return nil
}

// token returns a valid access token, refreshing when the cached one is
// missing or within tokenEarlyRefresh of expiry.
func (c *Client) token(ctx context.Context) (string, error) {
	c.tokenMu.Lock()
	defer c.tokenMu.Unlock()

	if c.accessToken != "" && c.now().Before(c.tokenExpiry.Add(-tokenEarlyRefresh)) {
		return c.accessToken, nil
	}

	env, err := c.do(ctx, http.MethodGet, "/v1.0/token?grant_type=1", nil, "")
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTokenRefresh, err)
	}

	result, err := env.intoResult()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTokenRefresh, err)
	}

	var tok tokenResult
	if err := json.Unmarshal(result, &tok); err != nil {
		return "", fmt.Errorf("%w: decoding token: %v", ErrTokenRefresh, err)
	}

	c.accessToken = tok.AccessToken
	c.tokenExpiry = c.now().Add(time.Duration(tok.ExpireTime) * time.Second)
	c.log().Debug("vendor token refreshed", "expires_in", tok.ExpireTime)

	return c.accessToken, nil
}

// doSigned performs a request signed with a fresh access token.
func (c *Client) doSigned(ctx context.Context, method, path string, body []byte) (*envelope, error) {
	accessToken, err := c.token(ctx)
	if err != nil {
		return nil, err
	}
	return c.do(ctx, method, path, body, accessToken)
}

// do performs one signed HTTP request against the vendor API.
// An empty accessToken produces a token-endpoint signature.
func (c *Client) do(ctx context.Context, method, path string, body []byte, accessToken string) (*envelope, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	t := strconv.FormatInt(c.now().UnixMilli(), 10)
	nonce := uuid.NewString()
	sign := signRequest(c.cfg.ClientID, c.cfg.ClientSecret, accessToken, t, nonce, method, path, body)

	req.Header.Set("client_id", c.cfg.ClientID)
	req.Header.Set("sign", sign)
	req.Header.Set("t", t)
	req.Header.Set("sign_method", signMethod)
	req.Header.Set("nonce", nonce)
	if accessToken != "" {
		req.Header.Set("access_token", accessToken)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", ErrRequestFailed, err)
	}

	c.capture.dump(method, path, raw)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s %s returned %d", ErrRequestFailed, method, path, resp.StatusCode)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: decoding envelope: %v", ErrRequestFailed, err)
	}

	return &env, nil
}
