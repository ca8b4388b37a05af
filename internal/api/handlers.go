// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package api

import (
	"net/http"

	"github.com/ManuGH/paramlab/internal/catalog"
	"github.com/ManuGH/paramlab/internal/log"
	"github.com/ManuGH/paramlab/internal/models"
	"github.com/ManuGH/paramlab/internal/ratelimit"
)

func (s *Server) root(w http.ResponseWriter, _ *http.Request) error {
	writeJSON(w, http.StatusOK, messageResponse{Message: "Hello, world!"})
	return nil
}

type cardParams struct {
	CardID int     `path:"card_id"`
	Short  bool    `query:"short" default:"false"`
	Q      *string `query:"q"`
}

type card struct {
	CardID      int     `json:"card_id"`
	Q           *string `json:"q,omitempty"`
	Description string  `json:"description,omitempty"`
}

func (s *Server) readCard(w http.ResponseWriter, r *http.Request) error {
	var p cardParams
	if err := s.binder.Bind(r, &p); err != nil {
		return err
	}
	out := card{CardID: p.CardID, Q: p.Q}
	if !p.Short {
		out.Description = "An amazing card with an extra long description"
	}
	writeJSON(w, http.StatusOK, out)
	return nil
}

type currentUserParams struct {
	JWTToken string `cookie:"jwt_token"`
}

type currentUser struct {
	UserID string `json:"user_id"`
}

func (s *Server) readUserMe(w http.ResponseWriter, r *http.Request) error {
	var p currentUserParams
	if err := s.binder.Bind(r, &p); err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, currentUser{UserID: "the current user: " + p.JWTToken})
	return nil
}

type greetParams struct {
	Username string `path:"username"`
}

type greeting struct {
	Msg string `json:"msg"`
}

func (s *Server) sayHi(w http.ResponseWriter, r *http.Request) error {
	var p greetParams
	if err := s.binder.Bind(r, &p); err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, greeting{Msg: "hi " + p.Username})
	return nil
}

type modelParams struct {
	ModelName models.ModelName `path:"model_name"`
}

type modelInfo struct {
	ModelName models.ModelName `json:"model_name"`
	Message   string           `json:"message"`
}

func (s *Server) getModel(w http.ResponseWriter, r *http.Request) error {
	var p modelParams
	if err := s.binder.Bind(r, &p); err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, modelInfo{ModelName: p.ModelName, Message: p.ModelName.Message()})
	return nil
}

type keyboardParams struct {
	Q          *string `query:"keyboard-query"`
	KeyboardID int     `path:"keyboard_id" validate:"gte=1,lte=999" title:"The ID of the keyboard to get"`
}

type keyboard struct {
	KeyboardID int     `json:"keyboard_id"`
	Q          *string `json:"q,omitempty"`
}

func (s *Server) readKeyboard(w http.ResponseWriter, r *http.Request) error {
	var p keyboardParams
	if err := s.binder.Bind(r, &p); err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, keyboard{KeyboardID: p.KeyboardID, Q: p.Q})
	return nil
}

type listItemsParams struct {
	Skip  int `query:"skip" default:"0"`
	Limit int `query:"limit" default:"10"`
}

func (s *Server) listItems(w http.ResponseWriter, r *http.Request) error {
	var p listItemsParams
	if err := s.binder.Bind(r, &p); err != nil {
		return err
	}
	names, err := s.catalog.ListItemNames(r.Context(), p.Skip, p.Limit)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, names)
	return nil
}

type userItemParams struct {
	UserID int    `path:"user_id"`
	ItemID string `path:"item_id"`
	Needy  string `query:"needy"`
}

type userItem struct {
	UserID int    `json:"user_id"`
	ItemID string `json:"item_id"`
	Needy  string `json:"needy"`
}

func (s *Server) readUserItem(w http.ResponseWriter, r *http.Request) error {
	var p userItemParams
	if err := s.binder.Bind(r, &p); err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, userItem(p))
	return nil
}

type echoItemsParams struct {
	Q           []string `query:"list-query"`
	HiddenQuery *string  `query:"hidden_query" hidden:"true"`
}

type echoedItems struct {
	Q           []string `json:"q,omitempty"`
	HiddenQuery *string  `json:"hidden_query,omitempty"`
}

func (s *Server) echoItems(w http.ResponseWriter, r *http.Request) error {
	var p echoItemsParams
	if err := s.binder.Bind(r, &p); err != nil {
		return err
	}
	if p.HiddenQuery != nil {
		writeJSON(w, http.StatusOK, map[string]string{"hidden_query": *p.HiddenQuery})
		return nil
	}
	writeJSON(w, http.StatusOK, map[string][]string{"q": p.Q})
	return nil
}

type searchParams struct {
	Q *string `query:"q" validate:"omitempty,min=3,max=50" title:"Query string" doc:"Query string for the items to search in the db."`
}

type searchResults struct {
	Results []catalog.ItemName `json:"results"`
}

func (s *Server) searchItems(w http.ResponseWriter, r *http.Request) error {
	var p searchParams
	if err := s.binder.Bind(r, &p); err != nil {
		return err
	}
	var q string
	if p.Q != nil {
		q = *p.Q
	}
	results, err := s.catalog.SearchItems(r.Context(), q)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, searchResults{Results: results})
	return nil
}

type headerEchoParams struct {
	UserAgent     *string  `header:"user_agent"`
	StrangeHeader *string  `header:"strange_header,raw"`
	XToken        []string `header:"x_token"`
}

type headerEcho struct {
	UserAgent     *string  `json:"User-Agent"`
	StrangeHeader *string  `json:"strange_header"`
	XToken        []string `json:"X-Token values"`
}

func (s *Server) echoHeaders(w http.ResponseWriter, r *http.Request) error {
	var p headerEchoParams
	if err := s.binder.Bind(r, &p); err != nil {
		return err
	}
	out := headerEcho{UserAgent: p.UserAgent, StrangeHeader: p.StrangeHeader}
	if len(p.XToken) > 0 {
		out.XToken = p.XToken
	}
	writeJSON(w, http.StatusOK, out)
	return nil
}

type vehicleParams struct {
	VehicleID string `path:"vehicle_id"`
}

func (s *Server) readVehicle(w http.ResponseWriter, r *http.Request) error {
	var p vehicleParams
	if err := s.binder.Bind(r, &p); err != nil {
		return err
	}
	v, err := s.catalog.GetVehicle(r.Context(), p.VehicleID)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, v)
	return nil
}

type loginParams struct {
	Username string `form:"username"`
	Password string `form:"password"`
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) error {
	var p loginParams
	if err := s.binder.Bind(r, &p); err != nil {
		return err
	}
	res, err := s.catalog.Login(r.Context(), ratelimit.ClientIP(r), p.Username, p.Password)
	if err != nil {
		return err
	}
	logger := log.WithComponentFromContext(r.Context(), "api")
	logger.Info().
		Str(log.FieldEvent, "login.succeeded").
		Str(log.FieldUsername, res.Username).
		Msg("user logged in")
	writeJSON(w, http.StatusOK, res)
	return nil
}

type unicornParams struct {
	Name string `path:"name"`
}

type unicorn struct {
	UnicornName string `json:"unicorn_name"`
}

func (s *Server) readUnicorn(w http.ResponseWriter, r *http.Request) error {
	var p unicornParams
	if err := s.binder.Bind(r, &p); err != nil {
		return err
	}
	if p.Name == "yolo" {
		return &UnicornError{Name: p.Name}
	}
	writeJSON(w, http.StatusOK, unicorn{UnicornName: p.Name})
	return nil
}

type trackParams struct {
	TrackID int `path:"track_id"`
}

type track struct {
	TrackID int `json:"track_id"`
}

func (s *Server) readTrack(w http.ResponseWriter, r *http.Request) error {
	var p trackParams
	if err := s.binder.Bind(r, &p); err != nil {
		return err
	}
	if p.TrackID == 3 {
		return &HTTPError{Status: http.StatusTeapot, Detail: "Nope! I don't like 3."}
	}
	writeJSON(w, http.StatusOK, track(p))
	return nil
}
