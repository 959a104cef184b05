package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-holder-lab/internal/app"
	"solana-holder-lab/internal/config"
)

func TestRouter(t *testing.T) {
	cfg, err := config.FromEnviron(nil)
	require.NoError(t, err)
	a, err := app.New(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	defer a.Close()

	r := newRouter(a, zerolog.Nop())

	for path, want := range map[string]int{
		"/health":                   http.StatusOK,
		"/metrics":                  http.StatusOK,
		"/api/v1/reports/not-a-key": http.StatusBadRequest,
		"/api/v1/usage":             http.StatusOK,
	} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, want, w.Code, path)
	}
}
