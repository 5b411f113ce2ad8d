package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/assetvault/internal/infrastructure/auth"
)

type recordedRequest struct {
	method    string
	path      string
	query     string
	principal string
	auth      string
	idemKey   string
	body      map[string]any
}

func newAPI(t *testing.T, status int, response string) (*httptest.Server, *recordedRequest) {
	t.Helper()

	rec := &recordedRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.method = r.Method
		rec.path = r.URL.Path
		rec.query = r.URL.RawQuery
		rec.principal = r.Header.Get("X-Principal")
		rec.auth = r.Header.Get("Authorization")
		rec.idemKey = r.Header.Get("Idempotency-Key")
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&rec.body)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(srv.Close)
	return srv, rec
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "lon...", truncate("longerstring", 6))
	assert.Equal(t, "lo", truncate("longerstring", 2))
}

func TestPrintJSON(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, printJSON(&out, []byte(`{"a":1}`)))
	assert.Equal(t, "{\n  \"a\": 1\n}\n", out.String())

	out.Reset()
	require.NoError(t, printJSON(&out, []byte("not json")))
	assert.Equal(t, "not json\n", out.String())
}

func TestVaultTVL(t *testing.T) {
	srv, rec := newAPI(t, http.StatusOK, `{"total_value_usd":"2000000000"}`)

	out, err := execute(t, "--url", srv.URL, "vault", "tvl")
	require.NoError(t, err)

	assert.Equal(t, http.MethodGet, rec.method)
	assert.Equal(t, "/api/v1/vault/tvl", rec.path)
	assert.Contains(t, out, `"total_value_usd": "2000000000"`)
}

func TestDepositSendsPrincipalAndIdempotencyKey(t *testing.T) {
	srv, rec := newAPI(t, http.StatusCreated, `{"balance":"1000000"}`)

	_, err := execute(t, "--url", srv.URL, "--as", "alice", "deposit", "0x0000000000000000000000000000000000000000", "1000000000000000000")
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, rec.method)
	assert.Equal(t, "/api/v1/deposits", rec.path)
	assert.Equal(t, "alice", rec.principal)
	assert.NotEmpty(t, rec.idemKey)
	assert.Equal(t, "1000000000000000000", rec.body["amount"])
}

func TestWithdrawRejectsBadAmount(t *testing.T) {
	srv, rec := newAPI(t, http.StatusCreated, `{}`)

	_, err := execute(t, "--url", srv.URL, "withdraw", "0xabc", "ten")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid amount")
	assert.Empty(t, rec.method)
}

func TestTokenTakesPrecedenceOverPrincipal(t *testing.T) {
	srv, rec := newAPI(t, http.StatusOK, `{"paused":true}`)

	_, err := execute(t, "--url", srv.URL, "--as", "alice", "--token", "abc", "admin", "pause")
	require.NoError(t, err)

	assert.Equal(t, "Bearer abc", rec.auth)
	assert.Empty(t, rec.principal)
	assert.Equal(t, "/api/v1/admin/pause", rec.path)
}

func TestHistoryPagination(t *testing.T) {
	srv, rec := newAPI(t, http.StatusOK, `{"transactions":[]}`)

	_, err := execute(t, "--url", srv.URL, "history", "alice", "--limit", "5", "--offset", "10")
	require.NoError(t, err)

	assert.Equal(t, "/api/v1/users/alice/transactions", rec.path)
	assert.Contains(t, rec.query, "limit=5")
	assert.Contains(t, rec.query, "offset=10")
}

func TestGrantRoleBody(t *testing.T) {
	srv, rec := newAPI(t, http.StatusOK, `{}`)

	_, err := execute(t, "--url", srv.URL, "--as", "owner", "admin", "grant", "bob", "admin")
	require.NoError(t, err)

	assert.Equal(t, "/api/v1/admin/roles/grant", rec.path)
	assert.Equal(t, "bob", rec.body["principal"])
	assert.Equal(t, "admin", rec.body["role"])
}

func TestAPIErrorIsReported(t *testing.T) {
	srv, _ := newAPI(t, http.StatusUnprocessableEntity,
		`{"error":"withdrawal failed","code":"WITHDRAWAL_EXCEEDS_LIMIT","message":"withdrawal exceeds limit"}`)

	_, err := execute(t, "--url", srv.URL, "--as", "alice", "withdraw", "0xabc", "5")
	require.Error(t, err)
	assert.Equal(t, "withdrawal failed (WITHDRAWAL_EXCEEDS_LIMIT): withdrawal exceeds limit", err.Error())
}

func TestNonJSONErrorIsTruncated(t *testing.T) {
	srv, _ := newAPI(t, http.StatusBadGateway, strings.Repeat("x", 500))

	_, err := execute(t, "--url", srv.URL, "vault", "capacity")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
	assert.Contains(t, err.Error(), "...")
}

func TestTokenMint(t *testing.T) {
	out, err := execute(t, "token", "alice", "--secret", "test-secret", "--ttl", "1h")
	require.NoError(t, err)

	claims, err := auth.NewJWTManager("test-secret", time.Hour).Verify(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Principal)
}

func TestTokenMintRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := execute(t, "token", "alice")
	assert.Error(t, err)
}
