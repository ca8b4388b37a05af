// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package models

import (
	"encoding/json"

	"github.com/ManuGH/paramlab/internal/params"
)

// Image is a picture attached to an item.
type Image struct {
	Name string `json:"name" validate:"required"`
	URL  string `json:"url" validate:"required,httpurl"`
}

// TagSet is a list of unique tags kept in order of first appearance.
type TagSet []string

// NewTagSet deduplicates tags.
func NewTagSet(tags ...string) TagSet {
	seen := make(map[string]struct{}, len(tags))
	out := make(TagSet, 0, len(tags))
	for _, t := range tags {
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *TagSet) UnmarshalJSON(data []byte) error {
	var raw []string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = NewTagSet(raw...)
	return nil
}

// MarshalJSON renders a nil set as an empty list.
func (s TagSet) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(s))
}

// Item is a catalog entry. Prices are in the smallest currency unit.
type Item struct {
	Name        string            `json:"name" validate:"required"`
	Description *string           `json:"description"`
	Price       *params.FlexInt   `json:"price" validate:"required,gt=100,lte=99999999" title:"The price of the item." doc:"A positive integer representing how much to charge in the smallest currency unit (e.g., 100 cents to charge €1.00 or 100 to charge ¥100, a zero-decimal currency). The minimum amount is €1.00 and it supports up to eight digits (e.g., a value of 99999999 for a EUR charge of €999,999.99)."`
	Tax         *params.FlexFloat `json:"tax"`
	Tags        TagSet            `json:"tags"`
	Images      []Image           `json:"images" validate:"omitempty,dive"`
}

// PriceWithTax returns price plus tax, and false when there is no tax.
func (it Item) PriceWithTax() (float64, bool) {
	if it.Price == nil || it.Tax == nil || *it.Tax == 0 {
		return 0, false
	}
	return float64(*it.Price) + float64(*it.Tax), true
}

// ItemPartialUpdate carries the fields a PATCH may change; nil means unset.
type ItemPartialUpdate struct {
	Name        *string           `json:"name,omitempty"`
	Description *string           `json:"description,omitempty"`
	Price       *params.FlexInt   `json:"price,omitempty" validate:"omitempty,gt=100,lte=99999999" title:"The price of the item."`
	Tax         *params.FlexFloat `json:"tax,omitempty"`
	Tags        *TagSet           `json:"tags,omitempty"`
	Images      *[]Image          `json:"images,omitempty" validate:"omitempty,dive"`
}

// Apply returns it with every set field of u copied over.
func (u ItemPartialUpdate) Apply(it Item) Item {
	if u.Name != nil {
		it.Name = *u.Name
	}
	if u.Description != nil {
		it.Description = u.Description
	}
	if u.Price != nil {
		price := *u.Price
		it.Price = &price
	}
	if u.Tax != nil {
		it.Tax = u.Tax
	}
	if u.Tags != nil {
		it.Tags = *u.Tags
	}
	if u.Images != nil {
		it.Images = *u.Images
	}
	return it
}

// ItemOptions tunes how an item is sold.
type ItemOptions struct {
	Promotion         params.FlexInt `json:"promotion" title:"A promotion to apply to the price." doc:"The promotion value will be subtracted from the base price, e.g. for a price of 1000 -> 1000 - 100 = 900 which is 9€." example:"200"`
	Hidden            bool           `json:"hidden"`
	ShippingAvailable bool           `json:"shipping_available"`
}

// DefaultItemOptions returns the options used when a client sends none.
func DefaultItemOptions() ItemOptions {
	return ItemOptions{ShippingAvailable: true}
}

// UnmarshalJSON applies defaults to fields the client left out.
func (o *ItemOptions) UnmarshalJSON(data []byte) error {
	type plain ItemOptions
	v := plain(DefaultItemOptions())
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*o = ItemOptions(v)
	return nil
}
