package cache

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coursehub/platform/internal/config"
	"coursehub/platform/internal/repository"
)

func newTestCache(t *testing.T) (*ResponseCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	cfg := config.CacheConfig{ShortTTL: 60 * time.Second, MediumTTL: 300 * time.Second, LongTTL: time.Hour}
	return New(repository.NewRedisStateStore(client), cfg), mr
}

func TestKey_QueryOrderIndependent(t *testing.T) {
	a, err := url.ParseQuery("category=web&limit=10")
	require.NoError(t, err)
	b, err := url.ParseQuery("limit=10&category=web")
	require.NoError(t, err)

	assert.Equal(t, Key("GET", "/courses", a, ""), Key("GET", "/courses", b, ""))
}

func TestKey_RepeatedValuesOrderIndependent(t *testing.T) {
	a, _ := url.ParseQuery("tag=go&tag=web")
	b, _ := url.ParseQuery("tag=web&tag=go")
	assert.Equal(t, Key("GET", "/courses", a, ""), Key("GET", "/courses", b, ""))
}

func TestKey_Distinguishes(t *testing.T) {
	web, _ := url.ParseQuery("category=web")
	design, _ := url.ParseQuery("category=design")

	base := Key("GET", "/courses", web, "")
	assert.NotEqual(t, base, Key("GET", "/courses", design, ""))
	assert.NotEqual(t, base, Key("GET", "/enquiries", web, ""))
	assert.NotEqual(t, base, Key("GET", "/courses", web, "role:admin"))
	assert.Contains(t, base, "cache:")
}

func TestResponseCache_SaveAndLookup(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()
	key := Key("GET", "/courses", nil, "")

	stored, err := c.Save(ctx, key, Short, &Entry{Status: 200, ContentType: "application/json", Body: []byte(`{"ok":true}`)})
	require.NoError(t, err)
	assert.True(t, stored)

	e, err := c.Lookup(ctx, key)
	require.NoError(t, err)
	require.NotNil(t, e)
	assert.Equal(t, 200, e.Status)
	assert.Equal(t, `{"ok":true}`, string(e.Body))
}

func TestResponseCache_NonSuccessNotStored(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()
	key := Key("GET", "/courses/x", nil, "")

	stored, err := c.Save(ctx, key, Short, &Entry{Status: 404, Body: []byte(`{}`)})
	require.NoError(t, err)
	assert.False(t, stored)

	e, err := c.Lookup(ctx, key)
	require.NoError(t, err)
	assert.Nil(t, e)
}

func TestResponseCache_TierExpiry(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()
	short := Key("GET", "/a", nil, "")
	medium := Key("GET", "/b", nil, "")

	_, err := c.Save(ctx, short, Short, &Entry{Status: 200})
	require.NoError(t, err)
	_, err = c.Save(ctx, medium, Medium, &Entry{Status: 200})
	require.NoError(t, err)

	mr.FastForward(61 * time.Second)

	e, err := c.Lookup(ctx, short)
	require.NoError(t, err)
	assert.Nil(t, e)

	e, err = c.Lookup(ctx, medium)
	require.NoError(t, err)
	assert.NotNil(t, e)
}

func TestResponseCache_StoreUnavailable(t *testing.T) {
	c, mr := newTestCache(t)
	mr.Close()

	_, err := c.Lookup(context.Background(), Key("GET", "/courses", nil, ""))
	assert.ErrorIs(t, err, repository.ErrStoreUnavailable)
}
