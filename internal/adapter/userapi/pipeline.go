package userapi

import (
	"context"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"user-directory/internal/adapter/diagnostics"
	apperrors "user-directory/pkg/errors"
	"user-directory/pkg/logger"
)

// Header names set on every outgoing request.
const (
	HeaderContentType = "Content-Type"
	HeaderAppVersion  = "X-App-Version"
)

// maxDrainBytes bounds how much of an error body is read before closing it.
const maxDrainBytes = 64 << 10

// NewPipeline builds the transport chain shared by every upstream request:
// common headers first, then error logging and translation, then next.
func NewPipeline(next http.RoundTripper, appVersion string, recorder diagnostics.Recorder, log *zap.Logger) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	if recorder == nil {
		recorder = diagnostics.NopRecorder{}
	}

	return &headerTransport{
		appVersion: appVersion,
		next: &errorTransport{
			next:     next,
			recorder: recorder,
			log:      log,
		},
	}
}

// headerTransport applies the common request headers.
type headerTransport struct {
	appVersion string
	next       http.RoundTripper
}

// RoundTrip implements http.RoundTripper
func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	r.Header.Set(HeaderContentType, "application/json")
	r.Header.Set(HeaderAppVersion, t.appVersion)
	return t.next.RoundTrip(r)
}

// errorTransport logs failed requests and converts them to *apperrors.RequestError.
type errorTransport struct {
	next     http.RoundTripper
	recorder diagnostics.Recorder
	log      *zap.Logger
}

// RoundTrip implements http.RoundTripper
func (t *errorTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	resp, err := t.next.RoundTrip(req)
	if err != nil {
		// A caller that went away is not an upstream failure.
		if errors.Is(ctx.Err(), context.Canceled) {
			return nil, ctx.Err()
		}
		translated := apperrors.NewConnectivityError(err)
		t.report(req, 0, err.Error(), translated)
		return nil, translated
	}

	// Redirects are left to http.Client.
	if resp.StatusCode >= http.StatusBadRequest {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrainBytes))
		_ = resp.Body.Close()

		translated := apperrors.FromStatus(resp.StatusCode, resp.Status)
		t.report(req, resp.StatusCode, resp.Status, translated)
		return nil, translated
	}

	return resp, nil
}

func (t *errorTransport) report(req *http.Request, status int, detail string, translated *apperrors.RequestError) {
	ctx := req.Context()

	logger.WithContext(ctx, t.log).Error("HTTP Error",
		zap.String("method", req.Method),
		zap.String("url", req.URL.String()),
		zap.Int("status", status),
		zap.String("detail", detail),
		zap.String("kind", string(translated.Kind)),
	)

	// recording failures are already logged by the recorder
	_ = t.recorder.Record(ctx, diagnostics.Entry{
		RequestID: logger.GetRequestID(ctx),
		Method:    req.Method,
		URL:       req.URL.String(),
		Status:    status,
		Kind:      string(translated.Kind),
		Message:   translated.Message,
		Detail:    detail,
	})
}
