// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package api

import (
	"net/http"

	"github.com/ManuGH/paramlab/internal/catalog"
	"github.com/ManuGH/paramlab/internal/models"
	"github.com/ManuGH/paramlab/internal/openapi"
)

// route pairs an operation's documentation with its handler. Both the router
// and the OpenAPI document are built from the same table.
type route struct {
	openapi.Route
	handler handlerFunc
}

const (
	tagItems     = "items"
	tagUsers     = "users"
	tagCards     = "cards"
	tagModels    = "models"
	tagKeyboard  = "keyboard"
	tagOffers    = "offers"
	tagImages    = "images"
	tagVehicles  = "vehicles"
	tagFiles     = "files"
	tagUnicorns  = "unicorns"
	tagTracks    = "tracks"
	tagHeaders   = "headers"
	tagEcho      = "echo"
	tagWeighting = "weights"
)

const createItemDescription = `Create an item with all the information:

- **name**: each item must have a name
- **description**: a long description
- **price**: required
- **tax**: if the item doesn't have tax, you can omit this
- **tags**: a set of unique tag strings for this item`

func bodyExamples(in map[string]models.Example) map[string]openapi.Example {
	out := make(map[string]openapi.Example, len(in))
	for name, ex := range in {
		out[name] = openapi.Example{Summary: ex.Summary, Description: ex.Description, Value: ex.Value}
	}
	return out
}

func (s *Server) routeTable() []route {
	return []route{
		{Route: openapi.Route{
			Method: http.MethodGet, Path: "/", OperationID: "root",
			Summary:  "Says hello world!",
			Response: messageResponse{},
		}, handler: s.root},

		// Path parameters
		{Route: openapi.Route{
			Method: http.MethodGet, Path: "/cards/{card_id}", OperationID: "read_card",
			Tags: []string{tagCards}, Params: cardParams{}, Response: card{},
		}, handler: s.readCard},
		{Route: openapi.Route{
			Method: http.MethodGet, Path: "/users/me", OperationID: "read_user_me",
			Tags: []string{tagUsers}, Params: currentUserParams{}, Response: currentUser{},
		}, handler: s.readUserMe},
		{Route: openapi.Route{
			Method: http.MethodGet, Path: "/users/{username}/hi", OperationID: "say_hi_to_user",
			Tags: []string{tagUsers}, Params: greetParams{}, Response: greeting{},
		}, handler: s.sayHi},
		{Route: openapi.Route{
			Method: http.MethodGet, Path: "/models/{model_name}", OperationID: "get_model",
			Tags: []string{tagModels}, Params: modelParams{}, Response: modelInfo{},
		}, handler: s.getModel},
		{Route: openapi.Route{
			Method: http.MethodGet, Path: "/keyboards/{keyboard_id}/", OperationID: "read_keyboard",
			Tags: []string{tagKeyboard}, Params: keyboardParams{}, Response: keyboard{},
		}, handler: s.readKeyboard},

		// Query parameters
		{Route: openapi.Route{
			Method: http.MethodGet, Path: "/items/", OperationID: "read_items",
			Tags: []string{tagItems}, Params: listItemsParams{}, Response: []catalog.ItemName{},
		}, handler: s.listItems},
		{Route: openapi.Route{
			Method: http.MethodGet, Path: "/users/{user_id}/items/{item_id}", OperationID: "read_user_item",
			Tags: []string{tagUsers}, Params: userItemParams{}, Response: userItem{},
		}, handler: s.readUserItem},
		{Route: openapi.Route{
			Method: http.MethodGet, Path: "/echo/items/", OperationID: "echo_items",
			Tags: []string{tagEcho}, Params: echoItemsParams{}, Response: echoedItems{},
		}, handler: s.echoItems},
		{Route: openapi.Route{
			Method: http.MethodGet, Path: "/search", OperationID: "search_items",
			Tags: []string{tagItems}, Params: searchParams{}, Response: searchResults{},
		}, handler: s.searchItems},

		// Request bodies
		{Route: openapi.Route{
			Method: http.MethodPost, Path: "/items/", OperationID: "create_item",
			Summary: "Create an item", Description: createItemDescription,
			Tags: []string{tagItems},
			Body: models.Item{}, BodyRequired: true,
			BodyExamples:        bodyExamples(models.CreateItemExamples),
			ResponseDescription: "The created item",
			Response:            catalog.CreatedItem{},
		}, handler: s.createItem},
		{Route: openapi.Route{
			Method: http.MethodPut, Path: "/items/{item_id}", OperationID: "update_item",
			Tags:   []string{tagItems},
			Params: updateItemParams{}, Body: updateItemBody{}, BodyRequired: true,
			Response: catalog.UpdateResult{},
		}, handler: s.updateItem},
		{Route: openapi.Route{
			Method: http.MethodPatch, Path: "/items/{item_id}", OperationID: "patch_item",
			Tags:   []string{tagItems},
			Params: patchItemParams{}, Body: models.ItemPartialUpdate{}, BodyRequired: true,
			Response: models.Item{},
		}, handler: s.patchItem},
		{Route: openapi.Route{
			Method: http.MethodPost, Path: "/offers/", OperationID: "create_offer",
			Tags: []string{tagOffers}, Body: models.Offer{}, BodyRequired: true,
			Response: models.Offer{},
		}, handler: s.createOffer},
		{Route: openapi.Route{
			Method: http.MethodPost, Path: "/images/", OperationID: "create_images",
			Tags: []string{tagImages}, Body: []models.Image{}, BodyRequired: true,
			Response: []models.Image{},
		}, handler: s.createImages},
		{Route: openapi.Route{
			Method: http.MethodPost, Path: "/index-weights/", OperationID: "create_index_weights",
			Tags: []string{tagWeighting}, Body: models.IndexWeights{}, BodyRequired: true,
			Response: models.IndexWeights{},
		}, handler: s.createIndexWeights},

		{Route: openapi.Route{
			Method: http.MethodGet, Path: "/headers/echo/", OperationID: "echo_headers",
			Tags: []string{tagHeaders}, Deprecated: true,
			Params: headerEchoParams{}, Response: headerEcho{},
		}, handler: s.echoHeaders},
		{Route: openapi.Route{
			Method: http.MethodPost, Path: "/user/", OperationID: "create_user",
			Tags: []string{tagUsers}, Body: models.UserIn{}, BodyRequired: true,
			Status: http.StatusCreated, Response: models.UserOut{},
		}, handler: s.createUser},
		{Route: openapi.Route{
			Method: http.MethodGet, Path: "/vehicles/{vehicle_id}", OperationID: "read_vehicle",
			Tags: []string{tagVehicles}, Params: vehicleParams{}, Response: models.Vehicle{},
		}, handler: s.readVehicle},
		{Route: openapi.Route{
			Method: http.MethodPost, Path: "/login", OperationID: "login",
			Tags: []string{tagUsers}, Params: loginParams{}, Response: catalog.LoginResult{},
		}, handler: s.login},

		// Files
		{Route: openapi.Route{
			Method: http.MethodPost, Path: "/files/", OperationID: "create_file",
			Tags: []string{tagFiles}, Params: filesParams{}, Response: filesResult{},
		}, handler: s.createFiles},
		{Route: openapi.Route{
			Method: http.MethodPost, Path: "/uploadfile/", OperationID: "create_upload_file",
			Tags: []string{tagFiles}, Params: uploadParams{}, Response: uploadResult{},
		}, handler: s.createUploadFile},

		// Errors
		{Route: openapi.Route{
			Method: http.MethodGet, Path: "/unicorns/{name}", OperationID: "read_unicorn",
			Tags: []string{tagUnicorns}, Params: unicornParams{}, Response: unicorn{},
		}, handler: s.readUnicorn},
		{Route: openapi.Route{
			Method: http.MethodGet, Path: "/tracks/{track_id}", OperationID: "read_track",
			Tags: []string{tagTracks}, Params: trackParams{}, Response: track{},
		}, handler: s.readTrack},
	}
}
