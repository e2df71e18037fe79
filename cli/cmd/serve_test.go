package cmd

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ardnew/hvql/lang"
)

func TestServeRun_Shutdown(t *testing.T) {
	ctx, cancel := context.WithTimeout(t.Context(), 200*time.Millisecond)
	defer cancel()

	s := &Serve{
		Script:  writeFile(t, "team.hvql", teamScript),
		Addr:    "127.0.0.1:0",
		MaxBody: 1 << 10,
		Grace:   time.Second,
	}

	done := make(chan error, 1)

	go func() { done <- s.Run(ctx) }()

	select {
	case err := <-done:
		require.NoError(t, err)

	case <-time.After(5 * time.Second):
		t.Fatal("serve did not stop after its context was done")
	}
}

func TestServeRun_CompileError(t *testing.T) {
	s := &Serve{
		Script: writeFile(t, "bad.hvql", "map {"),
		Addr:   "127.0.0.1:0",
	}

	err := s.Run(t.Context())
	require.Error(t, err)
	require.True(t, errors.Is(err, lang.ErrUnknownStatement), "error = %v", err)
}
