package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blogware/simple-blog/pkg/simpleblog"
)

func TestIssueAndParse(t *testing.T) {
	m := NewManager("test-secret", time.Hour)

	principal := simpleblog.Principal{
		ID:    "alice@example.com",
		Admin: true,
		Theme: "dark",
	}

	token, err := m.Issue(principal)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	parsed, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, principal, parsed)
}

func TestParseRejects(t *testing.T) {
	m := NewManager("test-secret", time.Hour)

	t.Run("garbage", func(t *testing.T) {
		p, err := m.Parse("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
		assert.True(t, p.Anonymous())
	})

	t.Run("empty subject", func(t *testing.T) {
		token, err := m.Issue(simpleblog.Principal{})
		require.NoError(t, err)

		p, err := m.Parse(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
		assert.True(t, p.Anonymous())
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewManager("other-secret", time.Hour)
		token, err := other.Issue(simpleblog.Principal{ID: "alice@example.com"})
		require.NoError(t, err)

		_, err = m.Parse(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		short := NewManager("test-secret", time.Nanosecond)
		token, err := short.Issue(simpleblog.Principal{ID: "alice@example.com"})
		require.NoError(t, err)

		time.Sleep(10 * time.Millisecond)
		_, err = short.Parse(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestNewManagerDefaultTTL(t *testing.T) {
	m := NewManager("s", 0)
	assert.Equal(t, 24*time.Hour, m.ttl)
}
