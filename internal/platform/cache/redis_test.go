package cache

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPingsServer(t *testing.T) {
	server := miniredis.RunT(t)
	require.NoError(t, server.Set("dashboard:stats", "{}"))

	client, err := New(context.Background(), Options{Addr: server.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	got, err := client.Get(context.Background(), "dashboard:stats").Result()
	require.NoError(t, err)
	assert.Equal(t, "{}", got)
}

func TestNewFailsWhenServerIsDown(t *testing.T) {
	server := miniredis.RunT(t)
	addr := server.Addr()
	server.Close()

	client, err := New(context.Background(), Options{Addr: addr})
	require.Error(t, err)
	assert.Nil(t, client)
	assert.Contains(t, err.Error(), addr)
}
