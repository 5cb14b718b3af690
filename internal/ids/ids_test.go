package ids

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	a := New("review")
	b := New("review")
	require.True(t, strings.HasPrefix(a, "review."))
	require.NotEqual(t, a, b)
	require.Len(t, a, len("review.")+32)
	require.NotContains(t, New(""), ".")
}

func TestPrefix(t *testing.T) {
	require.Equal(t, "restaurant", Prefix("restaurant.abc"))
	require.Equal(t, "", Prefix("abc"))
	require.Equal(t, "", Prefix(".abc"))
}
