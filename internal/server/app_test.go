package server

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/marketplace/internal/common"
	"github.com/dmitrijs2005/marketplace/internal/logging"
	"github.com/dmitrijs2005/marketplace/internal/server/config"
	"github.com/dmitrijs2005/marketplace/internal/server/rest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	c := &config.Config{}
	c.LoadDefaults()
	c.SecretKey = "s"
	return c
}

func TestNewLogger(t *testing.T) {
	for _, backend := range []string{config.LogBackendSlog, config.LogBackendZap} {
		l, sync, err := NewLogger(backend)
		require.NoError(t, err, backend)
		assert.NotNil(t, l)
		sync()
	}

	_, _, err := NewLogger("logrus")
	assert.Error(t, err)
}

func TestNewApp_RejectsMissingSecret(t *testing.T) {
	c := testConfig()
	c.SecretKey = ""

	called := false
	orig := openDB
	openDB = func(ctx context.Context, dsn string, maxWait time.Duration, l logging.Logger) (*sql.DB, error) {
		called = true
		return nil, errors.New("unreachable")
	}
	t.Cleanup(func() { openDB = orig })

	_, err := NewApp(context.Background(), c)
	assert.ErrorIs(t, err, common.ErrConfiguration)
	assert.False(t, called)
}

func TestNewApp_DBError(t *testing.T) {
	orig := openDB
	openDB = func(ctx context.Context, dsn string, maxWait time.Duration, l logging.Logger) (*sql.DB, error) {
		return nil, errors.New("connection refused")
	}
	t.Cleanup(func() { openDB = orig })

	_, err := NewApp(context.Background(), testConfig())
	assert.ErrorContains(t, err, "db init error: connection refused")
}

func TestRun_StopsOnCancel(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	mock.ExpectClose()

	c := testConfig()
	c.EndpointAddrHTTP = "127.0.0.1:0"
	logger, sync, err := NewLogger(c.LogBackend)
	require.NoError(t, err)

	app := &App{config: c, logger: logger, sync: sync, db: db}
	app.server = rest.NewHTTPServer(c.EndpointAddrHTTP, http.NotFoundHandler(), logger)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop")
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}
