// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package catalog implements the items, vehicles and users behind the API.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
	"golang.org/x/text/cases"

	"github.com/ManuGH/paramlab/internal/cache"
	"github.com/ManuGH/paramlab/internal/log"
	"github.com/ManuGH/paramlab/internal/models"
	"github.com/ManuGH/paramlab/internal/params"
	"github.com/ManuGH/paramlab/internal/ratelimit"
	"github.com/ManuGH/paramlab/internal/store"
)

// LoginPassword is the only password Login accepts.
const LoginPassword = "password123"

const defaultSearchTTL = time.Minute

// ItemName is one entry of the item name listing.
type ItemName struct {
	ItemName string `json:"item_name"`
}

// Options wires a Service.
type Options struct {
	Store    store.KV
	Cache    cache.Cache
	CacheTTL time.Duration
	Throttle *ratelimit.LoginThrottle
	Logger   *zerolog.Logger
}

// Service holds the catalog operations.
type Service struct {
	kv       store.KV
	cache    cache.Cache
	cacheTTL time.Duration
	throttle *ratelimit.LoginThrottle
	logger   zerolog.Logger

	searches singleflight.Group
}

// New returns a Service. Missing options get in-memory defaults.
func New(opts Options) *Service {
	s := &Service{
		kv:       opts.Store,
		cache:    opts.Cache,
		cacheTTL: opts.CacheTTL,
		throttle: opts.Throttle,
	}
	if s.kv == nil {
		s.kv = store.NewMemoryStore()
	}
	if s.cache == nil {
		s.cache = cache.NoOpCache{}
	}
	if s.cacheTTL <= 0 {
		s.cacheTTL = defaultSearchTTL
	}
	if opts.Logger != nil {
		s.logger = *opts.Logger
	} else {
		s.logger = log.WithComponent("catalog")
	}
	return s
}

func (s *Service) allNames(ctx context.Context) ([]ItemName, error) {
	entries, err := s.kv.List(ctx, store.BucketItemNames)
	if err != nil {
		return nil, fmt.Errorf("list item names: %w", err)
	}
	out := make([]ItemName, 0, len(entries))
	for _, e := range entries {
		var n ItemName
		if err := json.Unmarshal(e.Value, &n); err != nil {
			return nil, fmt.Errorf("decode item name %s: %w", e.Key, err)
		}
		out = append(out, n)
	}
	return out, nil
}

// ListItemNames returns the window [skip, skip+limit) of the item names.
// Negative arguments count as zero.
func (s *Service) ListItemNames(ctx context.Context, skip, limit int) ([]ItemName, error) {
	names, err := s.allNames(ctx)
	if err != nil {
		return nil, err
	}
	skip, limit = max(skip, 0), max(limit, 0)
	if skip >= len(names) {
		return []ItemName{}, nil
	}
	end := min(skip+limit, len(names))
	return names[skip:end], nil
}

// SearchItems returns the names equal to q under Unicode case folding, or
// every name when q is empty. Results are cached and concurrent identical
// searches share one lookup.
func (s *Service) SearchItems(ctx context.Context, q string) ([]ItemName, error) {
	folded := cases.Fold().String(q)
	key := "search:" + folded

	if raw, ok := s.cache.Get(ctx, key); ok {
		var cached []ItemName
		if err := json.Unmarshal(raw, &cached); err == nil {
			return cached, nil
		}
		s.cache.Delete(ctx, key)
	}

	v, err, _ := s.searches.Do(key, func() (any, error) {
		names, err := s.allNames(ctx)
		if err != nil {
			return nil, err
		}
		results := make([]ItemName, 0, len(names))
		for _, n := range names {
			if folded == "" || cases.Fold().String(n.ItemName) == folded {
				results = append(results, n)
			}
		}
		if raw, err := json.Marshal(results); err == nil {
			s.cache.Set(ctx, key, raw, s.cacheTTL)
		}
		return results, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]ItemName), nil
}

// CreatedItem is an item echoed back after creation.
type CreatedItem struct {
	models.Item
	Importance   string   `json:"importance"`
	PriceWithTax *float64 `json:"price_with_tax,omitempty"`
}

// CreateItem returns item with the derived fields filled in.
func (s *Service) CreateItem(item models.Item) CreatedItem {
	out := CreatedItem{Item: item, Importance: "importance"}
	if withTax, ok := item.PriceWithTax(); ok {
		out.PriceWithTax = &withTax
	}
	if out.Tags == nil {
		out.Tags = models.TagSet{}
	}
	return out
}

// UpdatedItem is the item part of an update response.
type UpdatedItem struct {
	ItemID int `json:"item_id"`
	models.Item
	Promotion         params.FlexInt `json:"promotion"`
	ShippingAvailable bool           `json:"shipping_available"`
}

// UpdateResult is returned by UpdateItem. Item is nil for hidden updates.
type UpdateResult struct {
	Query    string       `json:"query"`
	OptQuery *string      `json:"opt_query"`
	Item     *UpdatedItem `json:"item,omitempty"`
}

// UpdateItem merges item and its options. Nil options mean defaults.
func (s *Service) UpdateItem(itemID int, item models.Item, options *models.ItemOptions, q string, optionalQuery *string) UpdateResult {
	opts := models.DefaultItemOptions()
	if options != nil {
		opts = *options
	}
	res := UpdateResult{Query: q, OptQuery: optionalQuery}
	if opts.Hidden {
		return res
	}
	res.Item = &UpdatedItem{
		ItemID:            itemID,
		Item:              item,
		Promotion:         opts.Promotion,
		ShippingAvailable: opts.ShippingAvailable,
	}
	return res
}

// PatchItem applies the set fields of patch to the stored item.
func (s *Service) PatchItem(ctx context.Context, itemID string, patch models.ItemPartialUpdate) (models.Item, error) {
	var stored models.Item
	if err := store.GetJSON(ctx, s.kv, store.BucketItems, itemID, &stored); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.Item{}, ErrItemNotFound
		}
		return models.Item{}, err
	}
	updated := patch.Apply(stored)
	if err := store.PutJSON(ctx, s.kv, store.BucketItems, itemID, updated); err != nil {
		return models.Item{}, err
	}
	s.logger.Info().
		Str("event", "item.patched").
		Str(log.FieldItemID, itemID).
		Msg("item updated")
	return updated, nil
}

// GetItem returns the stored item.
func (s *Service) GetItem(ctx context.Context, itemID string) (models.Item, error) {
	var it models.Item
	if err := store.GetJSON(ctx, s.kv, store.BucketItems, itemID, &it); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.Item{}, ErrItemNotFound
		}
		return models.Item{}, err
	}
	return it, nil
}

// CreateOffer accepts an offer and logs its duration.
func (s *Service) CreateOffer(ctx context.Context, offer models.Offer) models.Offer {
	ev := s.logger.Info().Str("event", "offer.created").Str("name", offer.Name).Int("items", len(offer.Items))
	if d, ok := offer.Duration(); ok {
		ev = ev.Dur("duration", d)
	}
	ev.Msg("offer accepted")
	return offer
}

// CreateImages echoes images after logging each URL.
func (s *Service) CreateImages(ctx context.Context, images []models.Image) []models.Image {
	logger := log.WithContext(ctx, s.logger)
	for _, img := range images {
		logger.Debug().Str("event", "image.received").Str("url", img.URL).Msg("image url")
	}
	if images == nil {
		return []models.Image{}
	}
	return images
}

// GetVehicle looks up vehicle<id>.
func (s *Service) GetVehicle(ctx context.Context, vehicleID string) (models.Vehicle, error) {
	var v models.Vehicle
	if err := store.GetJSON(ctx, s.kv, store.BucketVehicles, "vehicle"+vehicleID, &v); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.Vehicle{}, ErrVehicleNotFound
		}
		return models.Vehicle{}, err
	}
	return v, nil
}

// HashPassword is a placeholder hash.
func HashPassword(raw string) string {
	return "hashed" + raw
}

// RegisterUser stores the user with a hashed password.
func (s *Service) RegisterUser(ctx context.Context, in models.UserIn) (models.UserOut, error) {
	rec := models.UserInDB{
		Username:       in.Username,
		Email:          in.Email,
		FullName:       in.FullName,
		HashedPassword: HashPassword(in.RawPassword),
	}
	if err := store.PutJSON(ctx, s.kv, store.BucketUsers, rec.Username, rec); err != nil {
		return models.UserOut{}, fmt.Errorf("save user: %w", err)
	}
	s.logger.Info().
		Str("event", "user.saved").
		Str(log.FieldUsername, rec.Username).
		Msg("user saved")
	return rec.Out(), nil
}

// GetUser returns a stored user.
func (s *Service) GetUser(ctx context.Context, username string) (models.UserInDB, error) {
	var u models.UserInDB
	if err := store.GetJSON(ctx, s.kv, store.BucketUsers, username, &u); err != nil {
		return models.UserInDB{}, err
	}
	return u, nil
}

// LoginResult is returned on a successful login.
type LoginResult struct {
	Token    string `json:"token"`
	Username string `json:"username"`
}

// Login checks the password for a client. Failures count toward the
// client's throttle.
func (s *Service) Login(ctx context.Context, clientIP, username, password string) (LoginResult, error) {
	if !s.throttle.Allowed(clientIP) {
		s.logger.Warn().
			Str("event", "login.throttled").
			Str(log.FieldRemoteAddr, clientIP).
			Msg("login rejected")
		return LoginResult{}, ErrTooManyAttempts
	}
	if password != LoginPassword {
		s.throttle.RecordFailure(clientIP)
		return LoginResult{}, ErrBadCredentials
	}
	s.throttle.Reset(clientIP)
	return LoginResult{Token: "user_token", Username: username}, nil
}

// Ping checks the store.
func (s *Service) Ping(ctx context.Context) error {
	return s.kv.Ping(ctx)
}
