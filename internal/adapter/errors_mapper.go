// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
)

func mapHTTPError(resp *resty.Response) error {
	if resp.StatusCode() >= http.StatusOK && resp.StatusCode() < http.StatusMultipleChoices {
		return nil
	}

	body := strings.TrimSpace(string(resp.Body()))

	var mapped error
	switch resp.StatusCode() {
	case http.StatusBadRequest:
		mapped = ErrBadRequest
	case http.StatusUnauthorized:
		mapped = ErrUnauthorized
	case http.StatusForbidden:
		mapped = ErrForbidden
	case http.StatusNotFound:
		mapped = ErrNotFound
	case http.StatusConflict:
		mapped = ErrConflict
	case http.StatusInternalServerError:
		mapped = ErrInternalServerError
	case http.StatusBadGateway:
		mapped = ErrBadGateway
	case http.StatusServiceUnavailable:
		mapped = ErrServiceUnavailable
	default:
		if body == "" {
			body = http.StatusText(resp.StatusCode())
		}
		return fmt.Errorf("%w: http %d: %s", ErrRemoteCallFailed, resp.StatusCode(), body)
	}

	return fmt.Errorf("%w: %w: %s", ErrRemoteCallFailed, mapped, body)
}
