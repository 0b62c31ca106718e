package shortlink_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/serroba/shortlink-go/internal/shortlink"
	"github.com/serroba/shortlink-go/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(t *testing.T, repo shortlink.Repository, cache shortlink.Cache) *shortlink.Service {
	t.Helper()

	gen, err := shortlink.NewGenerator(shortlink.DefaultCodeLength)
	require.NoError(t, err)

	return shortlink.NewService(repo, cache, gen, zap.NewNop(), shortlink.Config{})
}

func anonymousCreate(target string, expiresAt time.Time) shortlink.CreateRequest {
	return shortlink.CreateRequest{
		TargetURL: target,
		ExpiresAt: expiresAt,
	}
}

func TestServiceCreate(t *testing.T) {
	t.Run("creates link with generated 7-character code", func(t *testing.T) {
		svc := newTestService(t, store.NewMemoryStore(), store.NewMemoryCache())

		link, err := svc.Create(context.Background(), anonymousCreate(testURL, time.Now().Add(time.Hour)))

		require.NoError(t, err)
		assert.Len(t, link.Code, shortlink.DefaultCodeLength)
		assert.Equal(t, testURL, link.TargetURL)
		assert.Nil(t, link.OwnerID)
	})

	t.Run("uses caller-supplied code as-is", func(t *testing.T) {
		svc := newTestService(t, store.NewMemoryStore(), store.NewMemoryCache())

		req := anonymousCreate(testURL, time.Now().Add(time.Hour))
		req.Code = "mycode"

		link, err := svc.Create(context.Background(), req)

		require.NoError(t, err)
		assert.Equal(t, shortlink.Code("mycode"), link.Code)
	})

	t.Run("rejects malformed target url", func(t *testing.T) {
		svc := newTestService(t, store.NewMemoryStore(), store.NewMemoryCache())

		_, err := svc.Create(context.Background(), anonymousCreate("not a url", time.Now().Add(time.Hour)))

		assert.ErrorIs(t, err, shortlink.ErrInvalidTarget)
	})

	t.Run("rejects relative target url", func(t *testing.T) {
		svc := newTestService(t, store.NewMemoryStore(), store.NewMemoryCache())

		_, err := svc.Create(context.Background(), anonymousCreate("/just/a/path", time.Now().Add(time.Hour)))

		assert.ErrorIs(t, err, shortlink.ErrInvalidTarget)
	})

	t.Run("rejects past expiry", func(t *testing.T) {
		svc := newTestService(t, store.NewMemoryStore(), store.NewMemoryCache())

		_, err := svc.Create(context.Background(), anonymousCreate(testURL, time.Now().Add(-time.Hour)))

		assert.ErrorIs(t, err, shortlink.ErrInvalidExpiry)
	})

	t.Run("rejects anonymous expiry beyond 24 hours", func(t *testing.T) {
		svc := newTestService(t, store.NewMemoryStore(), store.NewMemoryCache())

		_, err := svc.Create(context.Background(), anonymousCreate(testURL, time.Now().Add(25*time.Hour)))

		assert.ErrorIs(t, err, shortlink.ErrInvalidExpiry)
	})

	t.Run("accepts owned expiry beyond the anonymous ceiling", func(t *testing.T) {
		svc := newTestService(t, store.NewMemoryStore(), store.NewMemoryCache())
		ownerID := uuid.New()

		req := anonymousCreate(testURL, time.Now().Add(29*24*time.Hour))
		req.OwnerID = &ownerID

		link, err := svc.Create(context.Background(), req)

		require.NoError(t, err)
		require.NotNil(t, link.OwnerID)
		assert.Equal(t, ownerID, *link.OwnerID)
	})

	t.Run("rejects owned expiry beyond 30 days", func(t *testing.T) {
		svc := newTestService(t, store.NewMemoryStore(), store.NewMemoryCache())
		ownerID := uuid.New()

		req := anonymousCreate(testURL, time.Now().Add(31*24*time.Hour))
		req.OwnerID = &ownerID

		_, err := svc.Create(context.Background(), req)

		assert.ErrorIs(t, err, shortlink.ErrInvalidExpiry)
	})

	t.Run("caller-supplied collision is terminal", func(t *testing.T) {
		memStore := store.NewMemoryStore()
		svc := newTestService(t, memStore, store.NewMemoryCache())

		req := anonymousCreate(testURL, time.Now().Add(time.Hour))
		req.Code = "taken"
		_, err := svc.Create(context.Background(), req)
		require.NoError(t, err)

		req2 := anonymousCreate("https://other.example.com", time.Now().Add(time.Hour))
		req2.Code = "taken"
		_, err = svc.Create(context.Background(), req2)

		assert.ErrorIs(t, err, shortlink.ErrCodeTaken)

		// The original mapping is untouched
		link, err := memStore.FindByCode(context.Background(), "taken")
		require.NoError(t, err)
		assert.Equal(t, testURL, link.TargetURL)
	})

	t.Run("retries generated-code collisions with fresh codes", func(t *testing.T) {
		repo := &mockStore{takenTimes: 2}
		svc := newTestService(t, repo, store.NewMemoryCache())

		link, err := svc.Create(context.Background(), anonymousCreate(testURL, time.Now().Add(time.Hour)))

		require.NoError(t, err)
		assert.NotEmpty(t, link.Code)
		assert.Equal(t, 3, repo.insertCalls)
	})

	t.Run("gives up after bounded generation attempts", func(t *testing.T) {
		repo := &mockStore{takenTimes: 10}
		svc := newTestService(t, repo, store.NewMemoryCache())

		_, err := svc.Create(context.Background(), anonymousCreate(testURL, time.Now().Add(time.Hour)))

		assert.ErrorIs(t, err, shortlink.ErrCodeTaken)
		assert.Equal(t, 3, repo.insertCalls)
	})

	t.Run("store failure surfaces as unavailable", func(t *testing.T) {
		repo := &mockStore{insertErr: errMock}
		svc := newTestService(t, repo, store.NewMemoryCache())

		_, err := svc.Create(context.Background(), anonymousCreate(testURL, time.Now().Add(time.Hour)))

		assert.ErrorIs(t, err, shortlink.ErrUnavailable)
	})

	t.Run("cache write failure does not fail the create", func(t *testing.T) {
		cache := &mockCache{setErr: errMock}
		svc := newTestService(t, store.NewMemoryStore(), cache)

		link, err := svc.Create(context.Background(), anonymousCreate(testURL, time.Now().Add(time.Hour)))

		require.NoError(t, err)
		assert.NotEmpty(t, link.Code)
		assert.Equal(t, 1, cache.setCalls)
	})
}

func TestServiceResolve(t *testing.T) {
	t.Run("resolves created link to the exact target", func(t *testing.T) {
		svc := newTestService(t, store.NewMemoryStore(), store.NewMemoryCache())

		link, err := svc.Create(context.Background(), anonymousCreate(testURL, time.Now().Add(time.Hour)))
		require.NoError(t, err)

		target, err := svc.Resolve(context.Background(), link.Code)

		require.NoError(t, err)
		assert.Equal(t, testURL, target)
	})

	t.Run("returns not found for absent code", func(t *testing.T) {
		svc := newTestService(t, store.NewMemoryStore(), store.NewMemoryCache())

		_, err := svc.Resolve(context.Background(), "missing")

		assert.ErrorIs(t, err, shortlink.ErrNotFound)
	})

	t.Run("returns not found for empty code", func(t *testing.T) {
		svc := newTestService(t, store.NewMemoryStore(), store.NewMemoryCache())

		_, err := svc.Resolve(context.Background(), "")

		assert.ErrorIs(t, err, shortlink.ErrNotFound)
	})

	t.Run("expired link is indistinguishable from absent", func(t *testing.T) {
		memStore := store.NewMemoryStore()
		svc := newTestService(t, memStore, store.NewMemoryCache())

		err := memStore.Insert(context.Background(), &shortlink.ShortLink{
			Code:      "expired",
			TargetURL: testURL,
			CreatedAt: time.Now().Add(-2 * time.Hour),
			ExpiresAt: time.Now().Add(-time.Hour),
		})
		require.NoError(t, err)

		_, err = svc.Resolve(context.Background(), "expired")

		assert.ErrorIs(t, err, shortlink.ErrNotFound)
	})

	t.Run("expired link is not served from cache", func(t *testing.T) {
		// The cache is populated at create time and never explicitly
		// invalidated; the TTL attached at write time has to keep a resolve
		// past expiry from returning the stale target.
		svc := newTestService(t, store.NewMemoryStore(), store.NewMemoryCache())

		link, err := svc.Create(context.Background(), anonymousCreate(testURL, time.Now().Add(50*time.Millisecond)))
		require.NoError(t, err)

		// Warm hit before expiry
		target, err := svc.Resolve(context.Background(), link.Code)
		require.NoError(t, err)
		assert.Equal(t, testURL, target)

		time.Sleep(80 * time.Millisecond)

		_, err = svc.Resolve(context.Background(), link.Code)

		assert.ErrorIs(t, err, shortlink.ErrNotFound)
	})

	t.Run("serves from cache without hitting the store", func(t *testing.T) {
		repo := &mockStore{findErr: errMock}
		cache := store.NewMemoryCache()
		svc := newTestService(t, repo, cache)

		link, err := svc.Create(context.Background(), anonymousCreate(testURL, time.Now().Add(time.Hour)))
		require.NoError(t, err)

		target, err := svc.Resolve(context.Background(), link.Code)

		require.NoError(t, err)
		assert.Equal(t, testURL, target)
	})

	t.Run("degrades to store-only reads when cache fails", func(t *testing.T) {
		memStore := store.NewMemoryStore()
		cache := &mockCache{getErr: errMock, setErr: errMock}
		svc := newTestService(t, memStore, cache)

		link, err := svc.Create(context.Background(), anonymousCreate(testURL, time.Now().Add(time.Hour)))
		require.NoError(t, err)

		target, err := svc.Resolve(context.Background(), link.Code)

		require.NoError(t, err)
		assert.Equal(t, testURL, target)
	})

	t.Run("repopulates cache after a miss", func(t *testing.T) {
		memStore := store.NewMemoryStore()
		cache := store.NewMemoryCache()
		svc := newTestService(t, memStore, cache)

		err := memStore.Insert(context.Background(), &shortlink.ShortLink{
			Code:      "warm",
			TargetURL: testURL,
			CreatedAt: time.Now(),
			ExpiresAt: time.Now().Add(time.Hour),
		})
		require.NoError(t, err)

		_, err = svc.Resolve(context.Background(), "warm")
		require.NoError(t, err)

		target, err := cache.Get(context.Background(), "warm")
		require.NoError(t, err)
		assert.Equal(t, testURL, target)
	})

	t.Run("store failure surfaces as unavailable", func(t *testing.T) {
		repo := &mockStore{findErr: errMock}
		svc := newTestService(t, repo, store.NewMemoryCache())

		_, err := svc.Resolve(context.Background(), "abc1234")

		assert.ErrorIs(t, err, shortlink.ErrUnavailable)
	})
}

func TestServiceConcurrentCreate(t *testing.T) {
	t.Run("same supplied code resolves to exactly one winner", func(t *testing.T) {
		memStore := store.NewMemoryStore()
		svc := newTestService(t, memStore, store.NewMemoryCache())

		const racers = 8

		var wg sync.WaitGroup

		results := make([]error, racers)

		for i := 0; i < racers; i++ {
			wg.Add(1)

			go func(i int) {
				defer wg.Done()

				req := anonymousCreate(testURL, time.Now().Add(time.Hour))
				req.Code = "contested"

				_, results[i] = svc.Create(context.Background(), req)
			}(i)
		}

		wg.Wait()

		var wins, taken int

		for _, err := range results {
			switch {
			case err == nil:
				wins++
			case assert.ErrorIs(t, err, shortlink.ErrCodeTaken):
				taken++
			}
		}

		assert.Equal(t, 1, wins)
		assert.Equal(t, racers-1, taken)

		link, err := memStore.FindByCode(context.Background(), "contested")
		require.NoError(t, err)
		assert.Equal(t, testURL, link.TargetURL)
	})
}
