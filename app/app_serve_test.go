package app

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAppServeIntegration(t *testing.T) {
	t.Parallel()

	tctx, cancel, h := newTestContext(t, 30*time.Second)
	defer cancel()

	app, err := newTestApp(tctx)
	h(assert.NoError(t, err))

	err = app.Run("init")
	h(assert.NoError(t, err))

	match := regexp.MustCompile(`API token: (\S+)\n`).
		FindStringSubmatch(app.stdout.String())
	h(assert.Len(t, match, 2))
	token := match[1]

	// The listen address is dynamic, so extract it from the server log.
	addrCh := make(chan string)
	app.stderr.waitFor(`started listener.*address=(\S+)`, 1, addrCh)

	serveDone := make(chan error, 1)
	go func() {
		serveDone <- app.App.Run(
			[]string{"serve", "--simulate", "--address", "127.0.0.1:0"})
	}()

	var addr string
	select {
	case addr = <-addrCh:
	case <-tctx.Done():
		t.Fatal("timed out waiting for the server to start")
	}

	client := &http.Client{Timeout: 5 * time.Second}
	get := func(path, token string) (int, []byte) {
		req, rerr := http.NewRequestWithContext(tctx, http.MethodGet,
			fmt.Sprintf("http://%s/api/v1%s", addr, path), nil)
		h(assert.NoError(t, rerr))
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}

		resp, rerr := client.Do(req)
		h(assert.NoError(t, rerr))
		defer resp.Body.Close()
		body, rerr := io.ReadAll(resp.Body)
		h(assert.NoError(t, rerr))

		return resp.StatusCode, body
	}

	// Requests without a valid token are rejected.
	code, _ := get("/status", "")
	h(assert.Equal(t, http.StatusUnauthorized, code))
	code, _ = get("/status", "invalid")
	h(assert.Equal(t, http.StatusUnauthorized, code))

	code, body := get("/status", token)
	h(assert.Equal(t, http.StatusOK, code))

	var status struct {
		Version string `json:"version"`
		Device  string `json:"device"`
		Users   int    `json:"users"`
		Events  int    `json:"events"`
	}
	h(assert.NoError(t, json.Unmarshal(body, &status)))
	h(assert.NotEmpty(t, status.Version))
	h(assert.Equal(t, "F45x", status.Device))
	h(assert.Equal(t, 0, status.Users))
	h(assert.Equal(t, 0, status.Events))

	code, body = get("/users", token)
	h(assert.Equal(t, http.StatusOK, code))
	var users struct {
		Users []any `json:"users"`
	}
	h(assert.NoError(t, json.Unmarshal(body, &users)))
	h(assert.Empty(t, users.Users))

	code, _ = get("/events?limit=nope", token)
	h(assert.Equal(t, http.StatusBadRequest, code))

	// Cancelling the app context shuts the service down cleanly.
	cancel()
	select {
	case err = <-serveDone:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("timed out waiting for the server to stop")
	}
}
