// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/MKhiriev/livyflow/internal/config"
	"github.com/MKhiriev/livyflow/internal/logger"
	"github.com/MKhiriev/livyflow/internal/utils"
)

// IdempotencyKeyHeader carries the idempotency key of a replayed mutation.
const IdempotencyKeyHeader = "Idempotency-Key"

const (
	apiPrefix  = "/api/v1"
	healthPath = "/api/health"
)

type httpRemoteAdapter struct {
	client *utils.HTTPClient
	logger *logger.Logger
	now    func() time.Time

	mu    sync.RWMutex
	token string
}

type createdResponse struct {
	ID string `json:"id"`
}

// NewHTTPRemoteAdapter creates a [RemoteAdapter] for the API at
// adapterCfg.HTTPAddress, authenticated with appCfg.AuthToken.
func NewHTTPRemoteAdapter(adapterCfg config.ClientAdapter, appCfg config.ClientApp, logger *logger.Logger) (RemoteAdapter, error) {
	if err := validateAddress(adapterCfg.HTTPAddress); err != nil {
		return nil, fmt.Errorf("invalid adapter http address: %w", err)
	}

	a := &httpRemoteAdapter{
		client: utils.NewHTTPClient(adapterCfg.HTTPAddress, adapterCfg.RequestTimeout),
		logger: logger,
		now:    time.Now,
	}
	a.SetToken(appCfg.AuthToken)

	return a, nil
}

func validateAddress(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return errors.New("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme == "" || u.Host == "" {
		return errors.New("address must include host and scheme")
	}

	return nil
}

// SetToken implements [RemoteAdapter].
func (h *httpRemoteAdapter) SetToken(token string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.token = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(token), "Bearer "))
}

// Token implements [RemoteAdapter].
func (h *httpRemoteAdapter) Token() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.token
}

// CreateRemote implements [RemoteMutator] with POST /api/v1/{collection}.
func (h *httpRemoteAdapter) CreateRemote(ctx context.Context, collection string, data json.RawMessage) (string, error) {
	req, err := h.authedRequest(ctx)
	if err != nil {
		return "", err
	}

	var created createdResponse
	resp, err := req.
		SetHeader("Content-Type", "application/json").
		SetBody([]byte(data)).
		SetResult(&created).
		SetPathParam("collection", collection).
		Post(apiPrefix + "/{collection}")
	if err != nil {
		return "", fmt.Errorf("%w: create %s request: %w", ErrRemoteCallFailed, collection, err)
	}
	if err = mapHTTPError(resp); err != nil {
		h.logger.Err(err).Str("func", "httpRemoteAdapter.CreateRemote").Str("collection", collection).Msg("create rejected")
		return "", err
	}
	if created.ID == "" {
		return "", fmt.Errorf("%w: %w", ErrRemoteCallFailed, ErrEmptyServerID)
	}

	return created.ID, nil
}

// UpdateRemote implements [RemoteMutator] with PUT /api/v1/{collection}/{id}.
// When the response does not name an identity, id is returned.
func (h *httpRemoteAdapter) UpdateRemote(ctx context.Context, collection, id string, data json.RawMessage) (string, error) {
	req, err := h.authedRequest(ctx)
	if err != nil {
		return "", err
	}

	var updated createdResponse
	resp, err := req.
		SetHeader("Content-Type", "application/json").
		SetBody([]byte(data)).
		SetResult(&updated).
		SetPathParams(map[string]string{"collection": collection, "id": id}).
		Put(apiPrefix + "/{collection}/{id}")
	if err != nil {
		return "", fmt.Errorf("%w: update %s/%s request: %w", ErrRemoteCallFailed, collection, id, err)
	}
	if err = mapHTTPError(resp); err != nil {
		h.logger.Err(err).Str("func", "httpRemoteAdapter.UpdateRemote").Str("collection", collection).Str("id", id).Msg("update rejected")
		return "", err
	}

	if updated.ID == "" {
		return id, nil
	}
	return updated.ID, nil
}

// DeleteRemote implements [RemoteMutator] with DELETE /api/v1/{collection}/{id}.
func (h *httpRemoteAdapter) DeleteRemote(ctx context.Context, collection, id string) error {
	req, err := h.authedRequest(ctx)
	if err != nil {
		return err
	}

	resp, err := req.
		SetPathParams(map[string]string{"collection": collection, "id": id}).
		Delete(apiPrefix + "/{collection}/{id}")
	if err != nil {
		return fmt.Errorf("%w: delete %s/%s request: %w", ErrRemoteCallFailed, collection, id, err)
	}

	err = mapHTTPError(resp)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	return err
}

// Ping implements [HealthChecker] with GET /api/health.
func (h *httpRemoteAdapter) Ping(ctx context.Context) error {
	resp, err := h.client.R().SetContext(ctx).Get(healthPath)
	if err != nil {
		return fmt.Errorf("%w: health request: %w", ErrRemoteCallFailed, err)
	}
	return mapHTTPError(resp)
}

// authedRequest prepares a request carrying the bearer token and the
// idempotency key from ctx. An expired token fails fast with ErrUnauthorized.
func (h *httpRemoteAdapter) authedRequest(ctx context.Context) (*resty.Request, error) {
	req := h.client.R().SetContext(ctx)

	if token := h.Token(); token != "" {
		// opaque tokens are passed through; only a readable exp is checked
		if exp, err := utils.TokenExpiry(token); err == nil && !h.now().Before(exp) {
			return nil, fmt.Errorf("%w: %w: identity token expired at %s", ErrRemoteCallFailed, ErrUnauthorized, exp.Format(time.RFC3339))
		}
		req.SetAuthToken(token)
	}

	if key, ok := utils.GetIdempotencyKeyFromContext(ctx); ok {
		req.SetHeader(IdempotencyKeyHeader, key)
	}

	return req, nil
}
