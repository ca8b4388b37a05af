// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package catalog

import (
	"context"
	"fmt"

	"github.com/ManuGH/paramlab/internal/models"
	"github.com/ManuGH/paramlab/internal/params"
	"github.com/ManuGH/paramlab/internal/store"
)

func ptr[T any](v T) *T { return &v }

// seedNames are listed in this order; keys keep the order stable.
var seedNames = []string{"Foo", "Bar", "Spam"}

var seedItems = map[string]models.Item{
	"foo": {Name: "Foo", Price: ptr(params.FlexInt(50200))},
	"bar": {Name: "Bar", Description: ptr("The bartenders"), Price: ptr(params.FlexInt(6200)), Tax: ptr(params.FlexFloat(20.2))},
	"baz": {Name: "Baz", Price: ptr(params.FlexInt(5020)), Tax: ptr(params.FlexFloat(10.5)), Tags: models.TagSet{}},
}

var seedVehicles = map[string]models.Vehicle{
	"vehicle1": {Description: "All my friends drive a low rider", Type: models.VehicleCar},
	"vehicle2": {Description: "Music is my aeroplane, it's my aeroplane", Type: models.VehiclePlane, Size: ptr(5)},
}

func nameKey(i int) string { return fmt.Sprintf("%06d", i) }

// Seed writes the fixture records that are not present yet.
func (s *Service) Seed(ctx context.Context) error {
	written := 0
	put := func(bucket, key string, v any) error {
		ok, err := store.PutIfAbsent(ctx, s.kv, bucket, key, v)
		if err != nil {
			return fmt.Errorf("seed %s/%s: %w", bucket, key, err)
		}
		if ok {
			written++
		}
		return nil
	}

	for i, name := range seedNames {
		if err := put(store.BucketItemNames, nameKey(i), ItemName{ItemName: name}); err != nil {
			return err
		}
	}
	for id, item := range seedItems {
		if err := put(store.BucketItems, id, item); err != nil {
			return err
		}
	}
	for id, v := range seedVehicles {
		if err := put(store.BucketVehicles, id, v); err != nil {
			return err
		}
	}

	s.logger.Info().
		Str("event", "catalog.seeded").
		Int("written", written).
		Msg("catalog seed applied")
	return nil
}
