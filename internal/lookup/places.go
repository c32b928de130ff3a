package lookup

import (
	"context"
	"fmt"
	"net/url"
)

// PlaceClient resolves a free-text city into a photo URL using the
// autocomplete, details and photo endpoints of a places API.
type PlaceClient struct {
	base
	language string
}

// NewPlaceClient creates a PlaceClient. Results are requested in Turkish,
// the language the trip cities are typed in.
func NewPlaceClient(opts Options) *PlaceClient {
	return &PlaceClient{base: newBase(opts), language: "tr"}
}

type autocompleteResponse struct {
	Status      string `json:"status"`
	Predictions []struct {
		PlaceID     string `json:"place_id"`
		Description string `json:"description"`
	} `json:"predictions"`
}

type detailsResponse struct {
	Status string `json:"status"`
	Result struct {
		Photos []struct {
			PhotoReference string `json:"photo_reference"`
		} `json:"photos"`
	} `json:"result"`
}

// PhotoURL returns a photo URL for the best match of city.
// Returns ErrNoResult when no place or no photo matches.
func (c *PlaceClient) PhotoURL(ctx context.Context, city string) (string, error) {
	if !c.Enabled() {
		return "", fmt.Errorf("lookup.PlaceClient.PhotoURL: %w", ErrDisabled)
	}

	placeID, err := c.placeID(ctx, city)
	if err != nil {
		return "", fmt.Errorf("lookup.PlaceClient.PhotoURL: %w", err)
	}

	params := url.Values{}
	params.Set("place_id", placeID)
	params.Set("fields", "photos")
	params.Set("key", c.apiKey)

	var details detailsResponse
	if err := c.get(ctx, "/details/json", params, &details); err != nil {
		return "", fmt.Errorf("lookup.PlaceClient.PhotoURL: details: %w", err)
	}
	if len(details.Result.Photos) == 0 || details.Result.Photos[0].PhotoReference == "" {
		return "", fmt.Errorf("lookup.PlaceClient.PhotoURL: %w: no photo for %q", ErrNoResult, city)
	}

	photo := url.Values{}
	photo.Set("maxwidth", "800")
	photo.Set("photo_reference", details.Result.Photos[0].PhotoReference)
	photo.Set("key", c.apiKey)
	return c.baseURL + "/photo?" + photo.Encode(), nil
}

func (c *PlaceClient) placeID(ctx context.Context, city string) (string, error) {
	params := url.Values{}
	params.Set("input", city)
	params.Set("types", "(cities)")
	params.Set("language", c.language)
	params.Set("key", c.apiKey)

	var resp autocompleteResponse
	if err := c.get(ctx, "/autocomplete/json", params, &resp); err != nil {
		return "", fmt.Errorf("autocomplete: %w", err)
	}
	if resp.Status != "OK" || len(resp.Predictions) == 0 {
		return "", fmt.Errorf("%w: no place for %q (status %s)", ErrNoResult, city, resp.Status)
	}
	return resp.Predictions[0].PlaceID, nil
}
