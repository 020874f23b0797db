package auth

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(keycloakURL string) Config {
	return Config{
		KeycloakURL:  keycloakURL,
		Realm:        "weni",
		ClientID:     "weni-cli",
		CallbackAddr: "127.0.0.1:0",
	}
}

func TestLoginURL(t *testing.T) {
	flow := NewFlow(Config{KeycloakURL: "https://accounts.example.com/auth/", Realm: "weni", ClientID: "weni-cli"})

	parsed, err := url.Parse(flow.LoginURL())
	require.NoError(t, err)
	assert.Equal(t, "accounts.example.com", parsed.Host)
	assert.Equal(t, "/auth/realms/weni/protocol/openid-connect/auth", parsed.Path)

	query := parsed.Query()
	assert.Equal(t, "weni-cli", query.Get("client_id"))
	assert.Equal(t, "code", query.Get("response_type"))
	assert.Equal(t, "http://localhost:8081/sso-callback", query.Get("redirect_uri"))
	assert.Equal(t, flow.state, query.Get("state"))
}

func TestCallbackServer_DeliversOneCode(t *testing.T) {
	flow := NewFlow(testConfig("https://unused"))
	server, err := flow.Listen()
	require.NoError(t, err)
	defer server.Close(context.Background())

	callback := fmt.Sprintf("http://%s%s", server.Addr(), CallbackPath)

	resp, err := http.Get(callback + "?code=first&state=" + flow.state)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "Login successful")

	resp, err = http.Get(callback + "?code=second&state=" + flow.state)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	code, err := server.Wait(context.Background(), time.Second)
	require.NoError(t, err)
	assert.Equal(t, "first", code)

	_, err = server.Wait(context.Background(), 50*time.Millisecond)
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestCallbackServer_RejectsBadRequests(t *testing.T) {
	flow := NewFlow(testConfig("https://unused"))
	server, err := flow.Listen()
	require.NoError(t, err)
	defer server.Close(context.Background())

	callback := fmt.Sprintf("http://%s%s", server.Addr(), CallbackPath)

	resp, err := http.Get(callback)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = http.Get(callback + "?code=abc&state=forged")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = http.Get(callback + "?code=abc")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	_, err = server.Wait(context.Background(), 50*time.Millisecond)
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestCallbackServer_WaitHonorsContext(t *testing.T) {
	flow := NewFlow(testConfig("https://unused"))
	server, err := flow.Listen()
	require.NoError(t, err)
	defer server.Close(context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = server.Wait(ctx, time.Minute)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExchange(t *testing.T) {
	keycloak := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/realms/weni/protocol/openid-connect/token", r.URL.Path)
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "authorization_code", r.PostForm.Get("grant_type"))
		assert.Equal(t, "the-code", r.PostForm.Get("code"))
		assert.Equal(t, "weni-cli", r.PostForm.Get("client_id"))

		w.Header().Set("Content-Type", "application/json")
		if r.PostForm.Get("code") != "the-code" {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, `{"error":"invalid_grant"}`)
			return
		}
		fmt.Fprint(w, `{"access_token":"token-xyz","token_type":"Bearer","expires_in":300}`)
	}))
	defer keycloak.Close()

	flow := NewFlow(testConfig(keycloak.URL))
	token, err := flow.Exchange(context.Background(), "the-code")
	require.NoError(t, err)
	assert.Equal(t, "token-xyz", token)
}

func TestExchange_Failure(t *testing.T) {
	keycloak := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":"invalid_grant"}`)
	}))
	defer keycloak.Close()

	flow := NewFlow(testConfig(keycloak.URL))
	_, err := flow.Exchange(context.Background(), "bad")
	assert.ErrorIs(t, err, ErrNoToken)
}
