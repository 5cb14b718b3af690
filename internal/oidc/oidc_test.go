package oidc

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/alang8/Help-Restaurant-Review/pkg/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unsigned(payload string) string {
	enc := base64.RawURLEncoding.EncodeToString
	return enc([]byte(`{"alg":"RS256","typ":"JWT"}`)) + "." + enc([]byte(payload)) + ".sig"
}

func TestInsecureVerifier(t *testing.T) {
	tok, err := NewInsecureVerifier().Verify(context.Background(), unsigned(`{"sub":"s1","name":"Ana"}`))
	require.NoError(t, err)
	var claims map[string]interface{}
	require.NoError(t, tok.Claims(&claims))
	assert.Equal(t, "s1", claims["sub"])
	assert.Equal(t, "Ana", claims["name"])

	_, err = NewInsecureVerifier().Verify(context.Background(), "nope")
	require.Error(t, err)
}

type staticVerifier struct{ err error }

func (s staticVerifier) Verify(_ context.Context, raw string) (middleware.Token, error) {
	if s.err != nil {
		return nil, s.err
	}
	return NewInsecureVerifier().Verify(context.Background(), raw)
}

func TestChain(t *testing.T) {
	ctx := context.Background()
	raw := unsigned(`{"sub":"s1"}`)
	first, second := errors.New("first"), errors.New("second")

	_, err := Chain{staticVerifier{err: first}, staticVerifier{err: second}}.Verify(ctx, raw)
	require.ErrorIs(t, err, first)
	require.ErrorIs(t, err, second)

	tok, err := Chain{nil, staticVerifier{err: first}, staticVerifier{}}.Verify(ctx, raw)
	require.NoError(t, err)
	require.NotNil(t, tok)

	_, err = Chain{}.Verify(ctx, raw)
	require.Error(t, err)
}
