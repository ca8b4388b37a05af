// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package catalog

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/paramlab/internal/cache"
	"github.com/ManuGH/paramlab/internal/models"
	"github.com/ManuGH/paramlab/internal/params"
	"github.com/ManuGH/paramlab/internal/ratelimit"
	"github.com/ManuGH/paramlab/internal/store"
)

func newTestService(t *testing.T, opts Options) *Service {
	t.Helper()
	nop := zerolog.Nop()
	opts.Logger = &nop
	s := New(opts)
	require.NoError(t, s.Seed(context.Background()))
	return s
}

func names(ns ...string) []ItemName {
	out := make([]ItemName, 0, len(ns))
	for _, n := range ns {
		out = append(out, ItemName{ItemName: n})
	}
	return out
}

func TestSeed_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryStore()
	s := newTestService(t, Options{Store: kv})

	tags := models.TagSet{"x"}
	_, err := s.PatchItem(ctx, "foo", models.ItemPartialUpdate{Tags: &tags})
	require.NoError(t, err)

	require.NoError(t, s.Seed(ctx))
	it, err := s.GetItem(ctx, "foo")
	require.NoError(t, err)
	assert.Equal(t, models.TagSet{"x"}, it.Tags, "seed must not overwrite existing records")

	entries, err := kv.List(ctx, store.BucketItemNames)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestListItemNames(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t, Options{})

	tests := []struct {
		skip, limit int
		want        []ItemName
	}{
		{0, 10, names("Foo", "Bar", "Spam")},
		{1, 1, names("Bar")},
		{2, 10, names("Spam")},
		{3, 10, names()},
		{10, 10, names()},
		{-1, 2, names("Foo", "Bar")},
	}
	for _, tt := range tests {
		got, err := s.ListItemNames(ctx, tt.skip, tt.limit)
		require.NoError(t, err)
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("ListItemNames(%d, %d) mismatch (-want +got):\n%s", tt.skip, tt.limit, diff)
		}
	}
}

func TestSearchItems(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t, Options{})

	got, err := s.SearchItems(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, names("Foo", "Bar", "Spam"), got)

	got, err = s.SearchItems(ctx, "SPAM")
	require.NoError(t, err)
	assert.Equal(t, names("Spam"), got)

	got, err = s.SearchItems(ctx, "Spa")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSearchItems_UsesCache(t *testing.T) {
	ctx := context.Background()
	mc := cache.NewMemoryCache(0)
	defer func() { _ = mc.Close() }()
	s := newTestService(t, Options{Cache: mc, CacheTTL: time.Minute})

	_, err := s.SearchItems(ctx, "foo")
	require.NoError(t, err)
	_, err = s.SearchItems(ctx, "FOO")
	require.NoError(t, err)

	stats := mc.Stats()
	assert.Equal(t, int64(1), stats.Sets)
	assert.Equal(t, int64(1), stats.Hits, "case-folded queries share a cache entry")
}

func TestSearchItems_Concurrent(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t, Options{Cache: cache.NewMemoryCache(0)})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := s.SearchItems(ctx, "bar")
			assert.NoError(t, err)
			assert.Equal(t, names("Bar"), got)
		}()
	}
	wg.Wait()
}

func TestCreateItem(t *testing.T) {
	s := newTestService(t, Options{})

	tax := params.FlexFloat(3.5)
	got := s.CreateItem(models.Item{Name: "Foo", Price: priceOf(3540), Tax: &tax})
	assert.Equal(t, "importance", got.Importance)
	require.NotNil(t, got.PriceWithTax)
	assert.InDelta(t, 3543.5, *got.PriceWithTax, 1e-9)
	assert.NotNil(t, got.Tags)

	got = s.CreateItem(models.Item{Name: "Bar", Price: priceOf(3540)})
	assert.Nil(t, got.PriceWithTax)
}

func TestUpdateItem(t *testing.T) {
	s := newTestService(t, Options{})
	item := models.Item{Name: "Foo", Price: priceOf(500)}
	opt := "abc"

	res := s.UpdateItem(5, item, nil, "query", &opt)
	require.NotNil(t, res.Item)
	assert.Equal(t, 5, res.Item.ItemID)
	assert.True(t, res.Item.ShippingAvailable)
	assert.Equal(t, params.FlexInt(0), res.Item.Promotion)
	assert.Equal(t, &opt, res.OptQuery)

	res = s.UpdateItem(5, item, &models.ItemOptions{Promotion: 200}, "query", nil)
	require.NotNil(t, res.Item)
	assert.Equal(t, params.FlexInt(200), res.Item.Promotion)
	assert.False(t, res.Item.ShippingAvailable)

	res = s.UpdateItem(5, item, &models.ItemOptions{Hidden: true}, "query", nil)
	assert.Nil(t, res.Item)
	assert.Equal(t, "query", res.Query)
}

func TestPatchItem(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t, Options{})

	price := params.FlexInt(7000)
	got, err := s.PatchItem(ctx, "bar", models.ItemPartialUpdate{Price: &price})
	require.NoError(t, err)
	assert.Equal(t, "Bar", got.Name)
	assert.Equal(t, priceOf(7000), got.Price)
	require.NotNil(t, got.Tax)
	assert.InDelta(t, 20.2, float64(*got.Tax), 1e-9)

	stored, err := s.GetItem(ctx, "bar")
	require.NoError(t, err)
	assert.Equal(t, got.Price, stored.Price)
	assert.Equal(t, got.Description, stored.Description)

	_, err = s.PatchItem(ctx, "nope", models.ItemPartialUpdate{})
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestGetVehicle(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t, Options{})

	v, err := s.GetVehicle(ctx, "2")
	require.NoError(t, err)
	assert.Equal(t, models.VehiclePlane, v.Type)
	require.NotNil(t, v.Size)
	assert.Equal(t, 5, *v.Size)

	v, err = s.GetVehicle(ctx, "1")
	require.NoError(t, err)
	assert.Nil(t, v.Size)

	_, err = s.GetVehicle(ctx, "3")
	var derr *Error
	require.True(t, errors.As(err, &derr))
	assert.Equal(t, 404, derr.Status)
}

func TestRegisterUser(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t, Options{})

	out, err := s.RegisterUser(ctx, models.UserIn{Username: "ana", Email: "ana@example.com", RawPassword: "secret"})
	require.NoError(t, err)
	assert.Equal(t, models.UserOut{Username: "ana", Email: "ana@example.com"}, out)

	rec, err := s.GetUser(ctx, "ana")
	require.NoError(t, err)
	assert.Equal(t, "hashedsecret", rec.HashedPassword)
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t, Options{Throttle: ratelimit.NewLoginThrottle(ratelimit.Config{FailuresPerMinute: 2, Burst: 2})})

	res, err := s.Login(ctx, "10.0.0.1", "ana", LoginPassword)
	require.NoError(t, err)
	assert.Equal(t, LoginResult{Token: "user_token", Username: "ana"}, res)

	_, err = s.Login(ctx, "10.0.0.1", "ana", "wrong")
	assert.ErrorIs(t, err, ErrBadCredentials)
	_, err = s.Login(ctx, "10.0.0.1", "ana", "wrong")
	assert.ErrorIs(t, err, ErrBadCredentials)

	_, err = s.Login(ctx, "10.0.0.1", "ana", LoginPassword)
	assert.ErrorIs(t, err, ErrTooManyAttempts, "throttled clients are rejected even with the right password")
	assert.Equal(t, "There goes my error", ErrBadCredentials.Headers["X-Error"])
}

func priceOf(n int64) *params.FlexInt {
	p := params.FlexInt(n)
	return &p
}
