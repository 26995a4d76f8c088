package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestFromStatus(t *testing.T) {
	tests := []struct {
		name       string
		code       int
		statusLine string
		wantKind   Kind
		wantMsg    string
	}{
		{name: "no response", code: 0, wantKind: KindConnectivity, wantMsg: MsgConnectivity},
		{name: "unauthorized", code: 401, statusLine: "401 Unauthorized", wantKind: KindUnauthorized, wantMsg: MsgUnauthorized},
		{name: "forbidden", code: 403, statusLine: "403 Forbidden", wantKind: KindForbidden, wantMsg: MsgForbidden},
		{name: "not found", code: 404, statusLine: "404 Not Found", wantKind: KindNotFound, wantMsg: MsgNotFound},
		{name: "internal", code: 500, statusLine: "500 Internal Server Error", wantKind: KindServer, wantMsg: MsgServer},
		{name: "bad gateway embeds status text", code: 502, statusLine: "502 Bad Gateway", wantKind: KindServer, wantMsg: "Server error (502): Bad Gateway"},
		{name: "teapot", code: 418, statusLine: "418 I'm a teapot", wantKind: KindServer, wantMsg: "Server error (418): I'm a teapot"},
		{name: "missing status text", code: 503, statusLine: "503", wantKind: KindServer, wantMsg: "Server error (503): Unknown error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := FromStatus(tt.code, tt.statusLine)
			assert.Equal(t, tt.wantKind, err.Kind)
			assert.Equal(t, tt.wantMsg, err.Error())
			assert.Equal(t, tt.code, err.Status)
		})
	}
}

func TestConnectivityError_KeepsCause(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := NewConnectivityError(cause)

	assert.Equal(t, MsgConnectivity, err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "", Message(nil))
	assert.Equal(t, MsgNotFound, Message(FromStatus(404, "404 Not Found")))
	assert.Equal(t, MsgNotFound, Message(fmt.Errorf("get user: %w", FromStatus(404, ""))))
	assert.Equal(t, MsgInvalidUserID, Message(ErrInvalidUserID))
	assert.Equal(t, MsgUnexpected, Message(context.Canceled))
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusServiceUnavailable, HTTPStatus(NewConnectivityError(nil)))
	assert.Equal(t, http.StatusUnauthorized, HTTPStatus(FromStatus(401, "")))
	assert.Equal(t, http.StatusForbidden, HTTPStatus(FromStatus(403, "")))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(FromStatus(404, "")))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(FromStatus(502, "502 Bad Gateway")))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(ErrInvalidUserID))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("boom")))
}

func TestGRPCStatus(t *testing.T) {
	st, ok := status.FromError(FromStatus(403, "403 Forbidden"))
	require.True(t, ok)
	assert.Equal(t, codes.PermissionDenied, st.Code())
	assert.Equal(t, MsgForbidden, st.Message())
}

func TestDecodeError(t *testing.T) {
	err := NewDecodeError(200, errors.New("unexpected EOF"))
	assert.Equal(t, KindServer, err.Kind)
	assert.Equal(t, "Server error (200): Http failure during parsing", err.Error())
	assert.Equal(t, KindServer, KindOf(err))
	assert.Equal(t, KindNotFound, KindOf(FromStatus(404, "")))
}
