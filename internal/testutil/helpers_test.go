package testutil_test

import (
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexfrei/go-unifi-controller/internal/testutil"
)

func post(t *testing.T, client *http.Client, target string, form url.Values) (int, string) {
	t.Helper()

	resp, err := client.Post(target, "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp.StatusCode, string(body)
}

func TestMockControllerRequiresLogin(t *testing.T) {
	t.Parallel()

	mc := testutil.NewMockController(t)

	resp, err := mc.Server.Client().Get(mc.BaseURL() + "api/stat/sta")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Empty(t, mc.Requests())
}

func TestMockControllerSession(t *testing.T) {
	t.Parallel()

	mc := testutil.NewMockController(t)
	mc.SetResponse("/api/cmd/stamgr", `{"meta":{"rc":"ok"},"data":[{"done":true}]}`)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	base := *mc.Server.Client()
	base.Jar = jar
	client := &base

	status, body := post(t, client, mc.BaseURL()+"login", url.Values{
		"login":    {"login"},
		"username": {testutil.TestUsername},
		"password": {"wrong"},
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.JSONEq(t, testutil.InvalidLogin, body)
	assert.Zero(t, mc.Logins())

	status, _ = post(t, client, mc.BaseURL()+"login", url.Values{
		"login":    {"login"},
		"username": {testutil.TestUsername},
		"password": {testutil.TestPassword},
	})
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, 1, mc.Logins())

	status, body = post(t, client, mc.BaseURL()+"api/cmd/stamgr", url.Values{"json": {`{"cmd":"kick-sta","mac":"aa:bb:cc:dd:ee:ff"}`}})
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"meta":{"rc":"ok"},"data":[{"done":true}]}`, body)

	requests := mc.RequestsTo("/api/cmd/stamgr")
	require.Len(t, requests, 1)
	assert.Equal(t, http.MethodPost, requests[0].Method)
	assert.Equal(t, map[string]any{"cmd": "kick-sta", "mac": "aa:bb:cc:dd:ee:ff"}, requests[0].Payload)
}
