package dingsdk

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDingSdk_Notify(t *testing.T) {
	var received DingNotify
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		_, _ = w.Write([]byte(`{"errcode":0,"errmsg":"ok"}`))
	}))
	defer server.Close()

	sdk := NewDingSdk(server.URL)
	result, err := sdk.Notify(context.Background(), NewTextNotify("balance 0.25"))
	require.NoError(t, err)
	require.Equal(t, "ok", result.ErrMsg)
	require.Equal(t, "text", received.MsgType)
	require.Equal(t, "balance 0.25", received.Text.Content)
}

func TestDingSdk_NotifyErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/status":
			w.WriteHeader(http.StatusBadGateway)
		case "/code":
			_, _ = w.Write([]byte(`{"errcode":310000,"errmsg":"keywords not in content"}`))
		default:
			_, _ = w.Write([]byte(`not json`))
		}
	}))
	defer server.Close()

	for _, path := range []string{"/status", "/code", "/garbage"} {
		_, err := NewDingSdk(server.URL+path).Notify(context.Background(), NewTextNotify("x"))
		require.Error(t, err, path)
	}
}

func TestDingSdk_Disabled(t *testing.T) {
	sdk := NewDingSdk("")
	require.False(t, sdk.Enabled())
	_, err := sdk.Notify(context.Background(), NewTextNotify("x"))
	require.NoError(t, err)

	var nilSdk *DingSdk
	require.False(t, nilSdk.Enabled())
}
