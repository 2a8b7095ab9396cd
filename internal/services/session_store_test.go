package services

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/temcen/storefront/internal/session"
	"github.com/temcen/storefront/pkg/models"
)

func sampleSession() *Session {
	product := models.Product{
		ID:           1004,
		Title:        "Gaming Laptop Pro",
		Highlights:   models.StringList{"RTX graphics"},
		MRP:          decimal.NewFromInt(189999),
		SellingPrice: decimal.NewFromInt(169999),
	}
	return &Session{
		ID: uuid.New(),
		State: session.Snapshot{
			Page:           session.PageDetail,
			CurrentProduct: &product,
			Cart:           []int64{1001, 1004},
			UserID:         7,
		},
		Query:     "laptop",
		Listing:   []models.Product{product},
		CreatedAt: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2024, 3, 1, 10, 5, 0, 0, time.UTC),
	}
}

func assertSameSession(t *testing.T, want, got *Session) {
	t.Helper()
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.Query, got.Query)
	assert.Equal(t, want.State.Page, got.State.Page)
	assert.Equal(t, want.State.Cart, got.State.Cart)
	assert.Equal(t, want.State.UserID, got.State.UserID)
	require.NotNil(t, got.State.CurrentProduct)
	assert.Equal(t, want.State.CurrentProduct.ID, got.State.CurrentProduct.ID)
	assert.True(t, want.State.CurrentProduct.SellingPrice.Equal(got.State.CurrentProduct.SellingPrice))
	assert.Equal(t, []string{"RTX graphics"}, []string(got.Listing[0].Highlights))
	assert.True(t, want.UpdatedAt.Equal(got.UpdatedAt))
}

func TestMemorySessionStore(t *testing.T) {
	store := NewMemorySessionStore(time.Hour)
	ctx := context.Background()
	want := sampleSession()

	_, err := store.Get(ctx, want.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	require.NoError(t, store.Save(ctx, want))
	got, err := store.Get(ctx, want.ID)
	require.NoError(t, err)
	assertSameSession(t, want, got)

	got.State.Cart = append(got.State.Cart, 9999)
	again, err := store.Get(ctx, want.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{1001, 1004}, again.State.Cart, "stored sessions are copies")
}

func TestRedisSessionStore(t *testing.T) {
	addr := os.Getenv("REDIS_SESSIONS_URL")
	if addr == "" {
		addr = "localhost:6379"
	}
	client := redis.NewClient(&redis.Options{Addr: addr, DB: 15})
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available at %s: %v", addr, err)
	}

	store := NewRedisSessionStore(client, time.Minute)
	want := sampleSession()
	defer client.Del(context.Background(), sessionKey(want.ID))

	_, err := store.Get(ctx, want.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	require.NoError(t, store.Save(ctx, want))
	got, err := store.Get(ctx, want.ID)
	require.NoError(t, err)
	assertSameSession(t, want, got)

	ttl, err := client.TTL(ctx, sessionKey(want.ID)).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}

func TestSessionFindProduct(t *testing.T) {
	sess := sampleSession()

	product, ok := sess.FindProduct(1004)
	require.True(t, ok)
	assert.Equal(t, "Gaming Laptop Pro", product.Title)

	product.Title = "changed"
	assert.Equal(t, "Gaming Laptop Pro", sess.Listing[0].Title)

	_, ok = sess.FindProduct(1)
	assert.False(t, ok)
}

func TestSessionLocksSerialize(t *testing.T) {
	locks := newSessionLocks()
	id := uuid.New()
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.lock(id)
			current := counter
			time.Sleep(time.Microsecond)
			counter = current + 1
			unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, counter)
	assert.Empty(t, locks.locks, "released locks are forgotten")
}

func TestMemorySessionStore_Expiry(t *testing.T) {
	store := NewMemorySessionStore(30 * time.Minute)
	clock := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return clock }
	ctx := context.Background()

	kept := sampleSession()
	dropped := sampleSession()
	require.NoError(t, store.Save(ctx, kept))
	require.NoError(t, store.Save(ctx, dropped))

	// Saving again slides the expiry.
	clock = clock.Add(20 * time.Minute)
	require.NoError(t, store.Save(ctx, kept))

	clock = clock.Add(15 * time.Minute)
	_, err := store.Get(ctx, dropped.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = store.Get(ctx, kept.ID)
	require.NoError(t, err)

	clock = clock.Add(time.Hour)
	require.NoError(t, store.Save(ctx, sampleSession()))
	assert.Equal(t, 1, store.Len(), "expired sessions are swept on save")
	_, err = store.Get(ctx, kept.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestMemorySessionStore_ZeroTTLKeepsSessions(t *testing.T) {
	store := NewMemorySessionStore(0)
	clock := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return clock }
	ctx := context.Background()

	want := sampleSession()
	require.NoError(t, store.Save(ctx, want))

	clock = clock.Add(365 * 24 * time.Hour)
	_, err := store.Get(ctx, want.ID)
	assert.NoError(t, err)
}
