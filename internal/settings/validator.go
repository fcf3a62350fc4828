package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
)

const probeBody = `{"query":"query Probe { __typename }","operationName":"Probe"}`

// ValidationResult is the outcome of probing one endpoint
type ValidationResult struct {
	Endpoint string        `json:"endpoint"`
	Valid    bool          `json:"valid"`
	Message  string        `json:"message"`
	Latency  time.Duration `json:"latency_ms"`
}

// Validator checks candidate GraphQL endpoints before they are saved
type Validator struct {
	client *resty.Client
}

// NewValidator creates a validator. token, when set, is sent as a bearer token.
func NewValidator(timeout time.Duration, token string) *Validator {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	if token != "" {
		client.SetAuthToken(token)
	}
	return &Validator{client: client}
}

// ValidateEndpointURL accepts absolute http and https URLs with a host
func ValidateEndpointURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid URL %q: scheme must be http or https", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid URL %q: host is required", raw)
	}
	return nil
}

// ProbeEndpoint sends a trivial query and reports whether a GraphQL server answered
func (v *Validator) ProbeEndpoint(ctx context.Context, endpoint string) ValidationResult {
	result := ValidationResult{Endpoint: endpoint}

	if err := ValidateEndpointURL(endpoint); err != nil {
		result.Message = err.Error()
		return result
	}

	start := time.Now()
	err := v.probe(ctx, endpoint)
	result.Latency = time.Since(start)

	if err != nil {
		result.Message = err.Error()
		return result
	}
	result.Valid = true
	result.Message = "Connection successful"
	return result
}

func (v *Validator) probe(ctx context.Context, endpoint string) error {
	resp, err := v.client.R().
		SetContext(ctx).
		SetBody(probeBody).
		Post(endpoint)
	if err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}

	if resp.StatusCode() == 401 || resp.StatusCode() == 403 {
		return errors.New("invalid API token")
	}
	if resp.IsError() {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode())
	}

	var envelope struct {
		Data   json.RawMessage `json:"data"`
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(resp.Body(), &envelope); err != nil {
		return fmt.Errorf("invalid response: %w", err)
	}
	if len(envelope.Errors) > 0 {
		return fmt.Errorf("GraphQL error: %s", envelope.Errors[0].Message)
	}
	return nil
}

// ValidateAll probes every endpoint in order
func (v *Validator) ValidateAll(ctx context.Context, endpoints []string) []ValidationResult {
	results := make([]ValidationResult, 0, len(endpoints))
	for _, e := range endpoints {
		results = append(results, v.ProbeEndpoint(ctx, e))
	}
	return results
}
