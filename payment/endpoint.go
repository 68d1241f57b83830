package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

// EndpointClient obtains sessions from a remote session-creation endpoint.
// Any non-2xx answer is a failure.
type EndpointClient struct {
	url        string
	httpClient *http.Client
}

// NewEndpointClient returns a client posting to url
func NewEndpointClient(url string, httpClient *http.Client) *EndpointClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &EndpointClient{url: url, httpClient: httpClient}
}

type errorPayload struct {
	Error string `json:"error"`
}

func (c *EndpointClient) CreateSession(ctx context.Context, req SessionRequest) (Session, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return Session{}, errors.Wrap(err, "encode session request")
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return Session{}, errors.Wrap(err, "build session request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if req.AttemptID != "" {
		httpReq.Header.Set("Idempotency-Key", req.AttemptID)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return Session{}, errors.Wrap(ErrSessionCreation, err.Error())
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Session{}, errors.Wrap(ErrSessionCreation, err.Error())
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var payload errorPayload
		msg := resp.Status
		if json.Unmarshal(data, &payload) == nil && payload.Error != "" {
			msg = resp.Status + ": " + payload.Error
		}
		return Session{}, errors.Wrap(ErrSessionCreation, msg)
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return Session{}, errors.Wrap(ErrSessionCreation, "decode session: "+err.Error())
	}
	if session.ID == "" {
		return Session{}, errors.Wrap(ErrSessionCreation, "response without session id")
	}
	return session, nil
}
