// Copyright 2026 The Tableside Authors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

// ClientConfig holds configuration for creating a Client.
type ClientConfig struct {
	// BaseURL is the base URL of the restaurant service
	// (e.g., "http://localhost:5000").
	BaseURL string

	// Token is the bearer token for authenticated endpoints. May be
	// empty for an unauthenticated client; authenticated calls then
	// fail with an unauthorized error before any request is sent.
	Token string

	// HTTPClient is used for all requests. If nil, http.DefaultClient
	// is used.
	HTTPClient *http.Client

	// Logger is used for structured logging. If nil, slog.Default()
	// is used.
	Logger *slog.Logger
}

// Client is a typed client for the restaurant service. It performs no
// caching: every fetch returns the service's current state, and
// callers replace prior state wholesale.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a client for the restaurant service.
func NewClient(config ClientConfig) (*Client, error) {
	if config.BaseURL == "" {
		return nil, fmt.Errorf("api: BaseURL is required")
	}
	if _, err := url.Parse(config.BaseURL); err != nil {
		return nil, fmt.Errorf("api: invalid BaseURL %q: %w", config.BaseURL, err)
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:    strings.TrimRight(config.BaseURL, "/"),
		token:      config.Token,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// Authenticated reports whether the client holds a bearer token. The
// approval poller checks this each tick and skips the fetch entirely
// when no credential is available.
func (c *Client) Authenticated() bool { return c.token != "" }

// Menu fetches the full menu. Unauthenticated.
func (c *Client) Menu(ctx context.Context) ([]MenuItem, error) {
	var items []MenuItem
	if err := c.get(ctx, "/api/menu", false, &items); err != nil {
		return nil, fmt.Errorf("api: fetching menu: %w", err)
	}
	return items, nil
}

// Tables fetches the current table snapshot. Unauthenticated.
func (c *Client) Tables(ctx context.Context) ([]Table, error) {
	var tables []Table
	if err := c.get(ctx, "/api/tables", false, &tables); err != nil {
		return nil, fmt.Errorf("api: fetching tables: %w", err)
	}
	return tables, nil
}

// Orders fetches the diner's orders.
func (c *Client) Orders(ctx context.Context) ([]Order, error) {
	var orders []Order
	if err := c.get(ctx, "/api/orders", true, &orders); err != nil {
		return nil, fmt.Errorf("api: fetching orders: %w", err)
	}
	return orders, nil
}

// SubmitOrder submits a new order and returns the created order with
// its server-assigned identifier and timestamp.
func (c *Client) SubmitOrder(ctx context.Context, items []CartLine, total float64, contactNumber string) (*Order, error) {
	request := submitOrderRequest{
		Items:         items,
		Total:         total,
		Status:        StatusPending,
		ContactNumber: contactNumber,
	}
	var order Order
	if err := c.post(ctx, "/api/orders", request, &order); err != nil {
		return nil, fmt.Errorf("api: submitting order: %w", err)
	}
	return &order, nil
}

// BookTable requests a booking of the given table for the given
// number of hours. A conflict (another diner booked it first) comes
// back as a conflict-category error carrying the server's message.
func (c *Client) BookTable(ctx context.Context, tableID string, hours int) error {
	request := bookTableRequest{TableID: tableID, Hours: hours}
	if err := c.post(ctx, "/api/tables/book", request, nil); err != nil {
		return fmt.Errorf("api: booking table: %w", err)
	}
	return nil
}

// Messages fetches the diner's full chat history.
func (c *Client) Messages(ctx context.Context, userID string) ([]ChatMessage, error) {
	var response messagesResponse
	if err := c.get(ctx, "/api/messages/"+url.PathEscape(userID), true, &response); err != nil {
		return nil, fmt.Errorf("api: fetching messages: %w", err)
	}
	if !response.Success {
		return nil, Internal("api: message history response flagged unsuccessful")
	}
	return response.Messages, nil
}

// SendChat sends a message to the house agent and returns its reply
// text. The clientID travels with the message so the service can echo
// it back in history responses.
func (c *Client) SendChat(ctx context.Context, message, name, clientID string) (string, error) {
	request := chatRequest{Message: message, Name: name, ClientID: clientID}
	var response chatResponse
	if err := c.post(ctx, "/api/ai-chat", request, &response); err != nil {
		return "", fmt.Errorf("api: sending chat message: %w", err)
	}
	return response.Reply, nil
}

// PendingQuestion fetches the outstanding agent question, if any.
// Returns nil with no error when the service reports none. The
// payload is normalized here: downstream code never sees the
// string-or-object wire ambiguity.
func (c *Client) PendingQuestion(ctx context.Context) (*PendingQuestion, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/confirm/question", true, nil)
	if err != nil {
		return nil, fmt.Errorf("api: polling pending question: %w", err)
	}
	question, err := decodeQuestionEnvelope(body)
	if err != nil {
		return nil, fmt.Errorf("api: polling pending question: %w", err)
	}
	return question, nil
}

// AnswerQuestion sends the diner's yes/no decision for the currently
// displayed question. The client does not predict the outcome: the
// next poll is the sole source of truth for whether the question has
// cleared.
func (c *Client) AnswerQuestion(ctx context.Context, accepted bool) error {
	if err := c.post(ctx, "/api/confirm/answer", answerRequest{Answer: accepted}, nil); err != nil {
		return fmt.Errorf("api: answering question: %w", err)
	}
	return nil
}

// get issues a GET and decodes the JSON response body into out.
func (c *Client) get(ctx context.Context, path string, authenticated bool, out any) error {
	body, err := c.do(ctx, http.MethodGet, path, authenticated, nil)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return Internal("parsing response from %s: %w", path, err)
	}
	return nil
}

// post issues an authenticated POST with a JSON body and decodes the
// response into out when out is non-nil.
func (c *Client) post(ctx context.Context, path string, payload any, out any) error {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return Internal("encoding request for %s: %w", path, err)
	}
	body, err := c.do(ctx, http.MethodPost, path, true, encoded)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return Internal("parsing response from %s: %w", path, err)
	}
	return nil
}

// do performs one HTTP round trip and returns the raw response body.
// Non-2xx responses are decoded into a ServiceError and wrapped in the
// category matching their status code. Network failures come back as
// transient errors.
func (c *Client) do(ctx context.Context, method, path string, authenticated bool, body []byte) ([]byte, error) {
	if authenticated && c.token == "" {
		return nil, Unauthorized("no access token for %s %s", method, path)
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	request, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, Internal("building request for %s: %w", path, err)
	}
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if authenticated {
		request.Header.Set("Authorization", "Bearer "+c.token)
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, Transient("%s %s: %w", method, path, err)
	}
	defer response.Body.Close()

	responseBody, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, Transient("reading response from %s: %w", path, err)
	}

	if response.StatusCode < 200 || response.StatusCode > 299 {
		serviceError := &ServiceError{StatusCode: response.StatusCode}
		if err := json.Unmarshal(responseBody, serviceError); err != nil || serviceError.Message == "" {
			serviceError.Message = strings.TrimSpace(string(responseBody))
			if serviceError.Message == "" {
				serviceError.Message = http.StatusText(response.StatusCode)
			}
		}
		c.logger.Debug("service request failed",
			"method", method,
			"path", path,
			"status", response.StatusCode,
		)
		return nil, categorize(serviceError)
	}

	return responseBody, nil
}
