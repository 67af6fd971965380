package collaborate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/google/uuid"
	apperrors "github.com/jrsteele09/go-collaborate/internal/errors"
	"github.com/jrsteele09/go-collaborate/internal/utils"
	"github.com/rs/zerolog"
)

// RemoteError is returned when the vendor answers with a non-2xx status.
type RemoteError struct {
	Method     string
	Path       string
	StatusCode int
	Reason     string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("collaborate %s %s: %d %s", e.Method, e.Path, e.StatusCode, e.Reason)
}

// Is makes errors.Is(err, ErrRemoteCall) hold for every RemoteError.
func (e *RemoteError) Is(target error) bool {
	return target == apperrors.ErrRemoteCall
}

// StatusCode returns the vendor status carried by err, or 0 when err is not a
// RemoteError.
func StatusCode(err error) int {
	var re *RemoteError
	if apperrors.As(err, &re) {
		return re.StatusCode
	}
	return 0
}

// Do performs one authenticated call against a vendor-relative path. body,
// when non-nil, is sent as JSON; query, when non-empty, becomes the query
// string. A 2xx JSON response is decoded into out when out is non-nil; empty
// bodies are accepted. Calls are made once, without retry.
func (c *Client) Do(ctx context.Context, method, path string, body any, query url.Values, out any) error {
	switch method {
	case http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete:
	default:
		return apperrors.Wrapf(apperrors.ErrInvalidRequest, "unsupported method %q", method)
	}

	tok, err := c.tokens.ValidToken(ctx)
	if err != nil {
		return err
	}

	requestID := uuid.New().String()
	logFailure := func(ev *zerolog.Event) *zerolog.Event {
		return ev.
			Str("request_id", requestID).
			Str("method", method).
			Str("path", path).
			Interface("json", body).
			Str("query", query.Encode())
	}

	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			logFailure(c.logger.Error().Err(err)).Msg("Error calling Collaborate: cannot encode body")
			return fmt.Errorf("%w: encoding %s %s body: %w", apperrors.ErrRemoteCall, method, path, err)
		}
		reqBody = bytes.NewReader(payload)
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return fmt.Errorf("%w: building %s %s: %w", apperrors.ErrRemoteCall, method, path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	tok.SetAuthHeader(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logFailure(c.logger.Error().Err(err)).Msg("Error calling Collaborate")
		return fmt.Errorf("%w: %s %s: %w", apperrors.ErrRemoteCall, method, path, err)
	}
	defer resp.Body.Close()

	if !utils.IsSuccess(resp.StatusCode) {
		remoteErr := &RemoteError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Reason:     utils.ReasonPhrase(resp),
		}
		logFailure(c.logger.Error()).
			Int("status", remoteErr.StatusCode).
			Str("reason", remoteErr.Reason).
			Msg("Error calling Collaborate")
		return remoteErr
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		logFailure(c.logger.Error().Err(err)).Int("status", resp.StatusCode).Msg("Error calling Collaborate: reading response")
		return fmt.Errorf("%w: reading %s %s response: %w", apperrors.ErrRemoteCall, method, path, err)
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		logFailure(c.logger.Error().Err(err)).Int("status", resp.StatusCode).Msg("Error calling Collaborate: undecodable response")
		return fmt.Errorf("%w: decoding %s %s response: %w", apperrors.ErrRemoteCall, method, path, err)
	}
	return nil
}
