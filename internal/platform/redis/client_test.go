// Copyright (c) 2026 RootLink. All rights reserved.

package redis_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	redisstore "github.com/RuzhenWong/rootlink/internal/platform/redis"
)

/*
TestNewClient verifies URL parsing and the startup ping.
*/
func TestNewClient(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	mr := miniredis.RunT(t)

	client, err := redisstore.NewClient(context.Background(), "redis://"+mr.Addr()+"/0", logger)
	require.NoError(t, err)
	defer client.Close()
	assert.NoError(t, redisstore.Ping(context.Background(), client))

	_, err = redisstore.NewClient(context.Background(), "not-a-url", logger)
	assert.Error(t, err)

	mr.Close()
	_, err = redisstore.NewClient(context.Background(), "redis://"+mr.Addr()+"/0", logger)
	assert.Error(t, err)
}
