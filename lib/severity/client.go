package severity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bugpredictor/logger"
	"github.com/bugpredictor/models"
	"github.com/sony/gobreaker"
)

// FailMode decides what a failed prediction turns into
type FailMode string

const (
	// FailOpen falls back to NORMAL when the classifier cannot be reached
	FailOpen FailMode = "open"
	// FailClosed surfaces ErrUnavailable to the caller
	FailClosed FailMode = "closed"
)

// ErrUnavailable is returned in FailClosed mode when no label could be obtained
var ErrUnavailable = errors.New("severity classifier unavailable")

// maxLabelBytes bounds how much of the response body is read
const maxLabelBytes = 1024

// labels maps classifier output to a severity. Eclipse-style labels
// "trivial" and "enhancement" fold into MINOR.
var labels = map[string]models.Severity{
	"trivial":     models.SeverityMinor,
	"enhancement": models.SeverityMinor,
	"minor":       models.SeverityMinor,
	"normal":      models.SeverityNormal,
	"major":       models.SeverityMajor,
	"critical":    models.SeverityCritical,
	"blocker":     models.SeverityBlocker,
}

// Options configures a Client
type Options struct {
	BaseURL     string
	ModelChoice string
	Timeout     time.Duration
	FailMode    FailMode
	// HTTPClient overrides the default client, mostly for tests
	HTTPClient *http.Client
}

// Client calls the external /predict endpoint
type Client struct {
	endpoint    string
	modelChoice string
	failMode    FailMode
	httpClient  *http.Client
	breaker     *gobreaker.CircuitBreaker
}

type predictRequest struct {
	BugDescription string `json:"bug_description"`
	ModelChoice    string `json:"model_choice"`
}

// NewClient creates a classifier client with a circuit breaker in front of the endpoint
func NewClient(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	modelChoice := opts.ModelChoice
	if modelChoice == "" {
		modelChoice = "nb"
	}
	failMode := opts.FailMode
	if failMode != FailClosed {
		failMode = FailOpen
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "severity-classifier",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker '%s' changed from '%s' to '%s'", name, from.String(), to.String())
		},
	})

	return &Client{
		endpoint:    strings.TrimRight(opts.BaseURL, "/") + "/predict",
		modelChoice: modelChoice,
		failMode:    failMode,
		httpClient:  httpClient,
		breaker:     breaker,
	}
}

// Predict classifies description into a severity.
// An empty description is NORMAL without a network call. Unknown labels are NORMAL.
func (c *Client) Predict(ctx context.Context, description string) (models.Severity, error) {
	if strings.TrimSpace(description) == "" {
		return models.SeverityNormal, nil
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.call(ctx, description)
	})
	if err != nil {
		if c.failMode == FailClosed {
			return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		logger.Warn("Severity prediction failed, falling back to %s: %v", models.SeverityNormal, err)
		return models.SeverityNormal, nil
	}

	label := result.(string)
	sev, ok := ParseLabel(label)
	if !ok {
		logger.Warn("Unknown severity label %q from classifier, using %s", label, models.SeverityNormal)
		return models.SeverityNormal, nil
	}
	return sev, nil
}

func (c *Client) call(ctx context.Context, description string) (string, error) {
	body, err := json.Marshal(predictRequest{
		BugDescription: description,
		ModelChoice:    c.modelChoice,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("call classifier: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxLabelBytes))
	if err != nil {
		return "", fmt.Errorf("read classifier response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("classifier returned status %d", resp.StatusCode)
	}
	return string(raw), nil
}

// ParseLabel maps a raw classifier response to a severity.
// Surrounding whitespace and JSON string quoting are tolerated.
func ParseLabel(raw string) (models.Severity, bool) {
	label := strings.TrimSpace(raw)
	var unquoted string
	if err := json.Unmarshal([]byte(label), &unquoted); err == nil {
		label = strings.TrimSpace(unquoted)
	}
	label = strings.Trim(label, `"'`)

	sev, ok := labels[strings.ToLower(label)]
	return sev, ok
}
