package database

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestConnectWithRetry_GivesUp(t *testing.T) {
	ctx := context.Background()
	_, err := ConnectWithRetry(ctx, "mongodb://127.0.0.1:1/?serverSelectionTimeoutMS=50", 200*time.Millisecond, 2, time.Millisecond)
	require.Error(t, err)
	require.Contains(t, err.Error(), "giving up after 2 attempts")
}

func TestConnectWithRetry_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := ConnectWithRetry(ctx, "mongodb://127.0.0.1:1/?serverSelectionTimeoutMS=50", 200*time.Millisecond, 3, time.Hour)
	require.Error(t, err)
}

func TestConnectMongo_Integration(t *testing.T) {
	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		t.Skip("MONGODB_URI not set")
	}
	client, err := ConnectMongo(context.Background(), uri, 5*time.Second)
	require.NoError(t, err)
	require.NoError(t, client.Disconnect(context.Background()))
}
