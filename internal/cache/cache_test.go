package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

type item struct {
	ID    string `json:"id"`
	Price int64  `json:"price"`
}

func TestGetOrLoadJSONCachesValue(t *testing.T) {
	mr, rdb := newRedis(t)
	c := New(rdb, "test")
	var calls atomic.Int32
	load := func(context.Context) ([]item, error) {
		calls.Add(1)
		return []item{{ID: "van", Price: 5500}}, nil
	}

	for range 3 {
		got, err := GetOrLoadJSON(context.Background(), c, "offerings", time.Minute, load)
		require.NoError(t, err)
		assert.Equal(t, []item{{ID: "van", Price: 5500}}, got)
	}
	assert.Equal(t, int32(1), calls.Load())
	assert.True(t, mr.Exists("test:offerings"))

	mr.FastForward(2 * time.Minute)
	_, err := GetOrLoadJSON(context.Background(), c, "offerings", time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestGetOrLoadCollapsesConcurrentMisses(t *testing.T) {
	_, rdb := newRedis(t)
	c := New(rdb, "")
	var calls atomic.Int32
	release := make(chan struct{})
	load := func(context.Context) ([]byte, error) {
		calls.Add(1)
		<-release
		return []byte("v"), nil
	}

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b, err := c.GetOrLoad(context.Background(), "k", time.Minute, load)
			assert.NoError(t, err)
			assert.Equal(t, []byte("v"), b)
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()
	assert.Equal(t, int32(1), calls.Load())
}

func TestNilClientAlwaysLoads(t *testing.T) {
	c := New(nil, "x")
	var calls int
	for range 2 {
		_, err := GetOrLoadJSON(context.Background(), c, "k", time.Minute, func(context.Context) (int, error) {
			calls++
			return calls, nil
		})
		require.NoError(t, err)
	}
	assert.Equal(t, 2, calls)
	assert.NoError(t, c.Delete(context.Background(), "k"))
}

func TestLoadErrorIsNotCached(t *testing.T) {
	mr, rdb := newRedis(t)
	c := New(rdb, "p")
	boom := errors.New("boom")
	_, err := GetOrLoadJSON(context.Background(), c, "k", time.Minute, func(context.Context) (int, error) {
		return 0, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists("p:k"))
}

func TestDelete(t *testing.T) {
	mr, rdb := newRedis(t)
	c := New(rdb, "p")
	require.NoError(t, mr.Set("p:k", "1"))
	require.NoError(t, c.Delete(context.Background(), "k"))
	assert.False(t, mr.Exists("p:k"))
}
