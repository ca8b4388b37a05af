// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package api

import (
	"net/http"

	"github.com/ManuGH/paramlab/internal/metrics"
	"github.com/ManuGH/paramlab/internal/models"
)

func (s *Server) createItem(w http.ResponseWriter, r *http.Request) error {
	var item models.Item
	if err := s.binder.DecodeJSON(r, &item); err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, s.catalog.CreateItem(item))
	return nil
}

type updateItemParams struct {
	ItemID        int     `path:"item_id"`
	Q             string  `query:"q" validate:"min=3,max=50,regex=^[a-zA-Z0-9 ]+"`
	OptionalQuery *string `query:"optional_query" validate:"omitempty,max=3" deprecated:"true"`
}

// updateItemBody is the embedded form {"item": ..., "options": ...}.
type updateItemBody struct {
	Item    *models.Item        `json:"item" validate:"required"`
	Options *models.ItemOptions `json:"options,omitempty"`
}

// updateItem reports parameter and body problems together.
func (s *Server) updateItem(w http.ResponseWriter, r *http.Request) error {
	var (
		p    updateItemParams
		body updateItemBody
	)
	if err := s.bindWithBody(r, &p, &body); err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, s.catalog.UpdateItem(p.ItemID, *body.Item, body.Options, p.Q, p.OptionalQuery))
	return nil
}

type patchItemParams struct {
	ItemID string `path:"item_id"`
}

func (s *Server) patchItem(w http.ResponseWriter, r *http.Request) error {
	var (
		p     patchItemParams
		patch models.ItemPartialUpdate
	)
	if err := s.bindWithBody(r, &p, &patch); err != nil {
		return err
	}
	item, err := s.catalog.PatchItem(r.Context(), p.ItemID, patch)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, item)
	return nil
}

func (s *Server) createOffer(w http.ResponseWriter, r *http.Request) error {
	var offer models.Offer
	if err := s.binder.DecodeJSON(r, &offer); err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, s.catalog.CreateOffer(r.Context(), offer))
	return nil
}

func (s *Server) createImages(w http.ResponseWriter, r *http.Request) error {
	var images []models.Image
	if err := s.binder.DecodeJSON(r, &images); err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, s.catalog.CreateImages(r.Context(), images))
	return nil
}

func (s *Server) createIndexWeights(w http.ResponseWriter, r *http.Request) error {
	var weights models.IndexWeights
	if err := s.binder.DecodeJSON(r, &weights); err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, weights)
	return nil
}

func (s *Server) createUser(w http.ResponseWriter, r *http.Request) error {
	var in models.UserIn
	if err := s.binder.DecodeJSON(r, &in); err != nil {
		return err
	}
	out, err := s.catalog.RegisterUser(r.Context(), in)
	if err != nil {
		return err
	}
	metrics.IncUserRegistered()
	writeJSON(w, http.StatusCreated, out)
	return nil
}
