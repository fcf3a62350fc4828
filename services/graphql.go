package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	"sophie-analyst/observability"
)

// Operation is a named GraphQL document with its variables
type Operation struct {
	Name      string
	Query     string
	Variables map[string]any
}

type graphQLRequest struct {
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables,omitempty"`
	OperationName string         `json:"operationName,omitempty"`
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
		Path    []any  `json:"path,omitempty"`
	} `json:"errors,omitempty"`
}

// GraphQLClient executes operations against the current endpoint of an EndpointProvider.
// A transport failure moves the provider to the next endpoint and retries once.
type GraphQLClient struct {
	provider *EndpointProvider
	breakers *CircuitBreakerRegistry
	metrics  *observability.Metrics
}

// NewGraphQLClient creates a client. A nil registry disables circuit breaking.
func NewGraphQLClient(provider *EndpointProvider, breakers *CircuitBreakerRegistry, metrics *observability.Metrics) *GraphQLClient {
	if metrics == nil {
		metrics = observability.GetMetrics()
	}
	return &GraphQLClient{
		provider: provider,
		breakers: breakers,
		metrics:  metrics,
	}
}

// Provider exposes the endpoint state for diagnostics
func (c *GraphQLClient) Provider() *EndpointProvider {
	return c.provider
}

// Breakers returns the circuit breaker registry, which may be nil
func (c *GraphQLClient) Breakers() *CircuitBreakerRegistry {
	return c.breakers
}

// Execute runs op and decodes its data into out
func (c *GraphQLClient) Execute(ctx context.Context, op Operation, out any) error {
	timer := c.metrics.NewTimer()
	log := observability.WithOperation(op.Name)

	client, ok := c.provider.Client()
	if !ok {
		c.metrics.RecordGraphQLError(op.Name, "exhausted")
		timer.ObserveGraphQL(op.Name, "error")
		return fmt.Errorf("%s: %w", op.Name, ErrAllEndpointsFailed)
	}

	endpoint := c.provider.Current()
	resp, err := c.post(ctx, client, endpoint, op)

	var terr *transportError
	if errors.As(err, &terr) {
		log.Warn("GraphQL request failed", "endpoint", endpoint, "kind", terr.kind, "error", err)
		c.metrics.RecordGraphQLError(op.Name, terr.kind)

		next, ok := c.provider.Next(err)
		if !ok {
			timer.ObserveGraphQL(op.Name, "error")
			return fmt.Errorf("%s: %w: %v", op.Name, ErrAllEndpointsFailed, err)
		}

		endpoint = c.provider.Current()
		log.Info("retrying GraphQL request", "endpoint", endpoint)
		resp, err = c.post(ctx, next, endpoint, op)
		if errors.As(err, &terr) {
			c.metrics.RecordGraphQLError(op.Name, terr.kind)
			c.provider.recordFailure(endpoint, err)
			timer.ObserveGraphQL(op.Name, "error")
			return fmt.Errorf("%s: %w: retry on %s failed: %v", op.Name, ErrAllEndpointsFailed, endpoint, err)
		}
	}
	if err != nil {
		timer.ObserveGraphQL(op.Name, "error")
		return err
	}

	if len(resp.Errors) > 0 {
		gqlErr := &GraphQLError{Operation: op.Name}
		for _, e := range resp.Errors {
			gqlErr.Messages = append(gqlErr.Messages, e.Message)
		}
		log.Warn("GraphQL response contained errors", "endpoint", endpoint, "errors", gqlErr.Error())
		c.metrics.RecordGraphQLError(op.Name, "graphql")
		timer.ObserveGraphQL(op.Name, "error")
		return gqlErr
	}

	if out != nil && len(resp.Data) > 0 {
		if err := json.Unmarshal(resp.Data, out); err != nil {
			c.metrics.RecordGraphQLError(op.Name, "decode")
			timer.ObserveGraphQL(op.Name, "error")
			return fmt.Errorf("%s: failed to decode data: %w", op.Name, err)
		}
	}

	timer.ObserveGraphQL(op.Name, "success")
	return nil
}

func (c *GraphQLClient) post(ctx context.Context, client *resty.Client, endpoint string, op Operation) (*graphQLResponse, error) {
	send := func() (*graphQLResponse, error) {
		resp, err := client.R().
			SetContext(ctx).
			SetHeader("X-Request-ID", uuid.NewString()).
			SetBody(graphQLRequest{Query: op.Query, Variables: op.Variables, OperationName: op.Name}).
			Post("")
		if err != nil {
			return nil, &transportError{kind: "transport", err: err}
		}
		if resp.IsError() {
			return nil, &transportError{kind: "http", err: fmt.Errorf("HTTP %d from %s", resp.StatusCode(), endpoint)}
		}

		var envelope graphQLResponse
		if err := json.Unmarshal(resp.Body(), &envelope); err != nil {
			return nil, &transportError{kind: "decode", err: fmt.Errorf("invalid GraphQL response from %s: %w", endpoint, err)}
		}
		return &envelope, nil
	}

	if c.breakers == nil {
		resp, err := send()
		return resp, c.contextOr(ctx, err)
	}

	resp, err := WithCircuitBreaker(ctx, c.breakers, BreakerName(endpoint), send)
	if errors.Is(err, ErrCircuitOpen) {
		return nil, &transportError{kind: "circuit", err: err}
	}
	return resp, c.contextOr(ctx, err)
}

// contextOr returns the caller's cancellation in place of a transport error.
// Cancelled requests never advance the endpoint list.
func (c *GraphQLClient) contextOr(ctx context.Context, err error) error {
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

// Probe sends a trivial query through the normal fallback path
func (c *GraphQLClient) Probe(ctx context.Context) error {
	var out struct {
		Typename string `json:"__typename"`
	}
	return c.Execute(ctx, probeOperation(), &out)
}
