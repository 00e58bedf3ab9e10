package rest

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dmitrijs2005/marketplace/internal/logging"
	"github.com/stretchr/testify/assert"
)

func TestHTTPServer_StopsOnCancel(t *testing.T) {
	s := NewHTTPServer("127.0.0.1:0", http.NotFoundHandler(), logging.Nop{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestHTTPServer_ListenError(t *testing.T) {
	s := NewHTTPServer("bad-address", http.NotFoundHandler(), logging.Nop{})

	err := s.Run(context.Background())
	assert.Error(t, err)
}
