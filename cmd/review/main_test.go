package main

import (
	"context"
	"testing"

	"github.com/alang8/Help-Restaurant-Review/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenStore_RequiresMongo(t *testing.T) {
	svcs, err := openStore(context.Background(), &config.Config{}, nil)
	require.ErrorIs(t, err, errNoStore)
	assert.Nil(t, svcs)
}
