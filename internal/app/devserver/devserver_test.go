package devserver

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/notes-client/internal/config"
	"github.com/magabrotheeeer/notes-client/internal/lib/sl"
)

func TestApp_ServesSandboxAndMetrics(t *testing.T) {
	cfg := &config.Config{Sandbox: config.Sandbox{Addr: "127.0.0.1:0"}, Checkout: config.Checkout{Secret: "s"}}
	app, err := New(cfg, sl.Discard(), true)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	base := "http://" + app.Addr()
	body := strings.NewReader(`{"email":"` + DemoEmail + `","password":"` + DemoPassword + `"}`)
	resp, err := http.Post(base+"/api/auth/login", "application/json", body)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(base + "/metrics")
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	require.NoError(t, err)
	assert.Contains(t, string(raw), `notes_sandbox_http_requests_total{code="200",method="post"} 1`)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
