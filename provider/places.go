package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	dbt "tripsynth/db/db"
	"tripsynth/itinerary"
)

// TripAdvisor looks up restaurants through RapidAPI.
type TripAdvisor struct {
	base
}

func NewTripAdvisor(apiKey string, opts ...Option) *TripAdvisor {
	return &TripAdvisor{base: newBase("tripadvisor", "https://tripadvisor16.p.rapidapi.com", "tripadvisor16.p.rapidapi.com", apiKey, opts)}
}

type tripAdvisorLocations struct {
	Data []struct {
		LocationID any `json:"locationId"`
	} `json:"data"`
}

type tripAdvisorRestaurants struct {
	Data struct {
		Data []struct {
			Name          string   `json:"name"`
			AverageRating float64  `json:"averageRating"`
			PriceTag      string   `json:"priceTag"`
			Cuisine       []string `json:"establishmentTypeAndCuisineTags"`
		} `json:"data"`
	} `json:"data"`
}

func (t *TripAdvisor) locationID(ctx context.Context, destination string) (string, error) {
	return t.resolver(ctx, destination, dbt.CategoryLocationID, func(ctx context.Context) (string, error) {
		var out tripAdvisorLocations
		if err := t.getJSON(ctx, "/api/v1/hotels/searchLocation", url.Values{"query": {strings.ToLower(destination)}}, &out); err != nil {
			return "", err
		}
		if len(out.Data) == 0 || out.Data[0].LocationID == nil {
			return "", fmt.Errorf("tripadvisor: no location found for %s", destination)
		}
		// the id arrives as a number or a string depending on the endpoint version
		switch id := out.Data[0].LocationID.(type) {
		case float64:
			return strconv.FormatFloat(id, 'f', -1, 64), nil
		default:
			return fmt.Sprint(id), nil
		}
	})
}

// Restaurants returns up to five restaurants for destination.
func (t *TripAdvisor) Restaurants(ctx context.Context, destination string) ([]itinerary.Record, error) {
	id, err := t.locationID(ctx, destination)
	if err != nil {
		return nil, err
	}
	var out tripAdvisorRestaurants
	if err := t.getJSON(ctx, "/api/v1/restaurant/searchRestaurants", url.Values{"locationId": {id}}, &out); err != nil {
		return nil, err
	}

	var records []itinerary.Record
	for _, r := range out.Data.Data {
		if len(records) == maxResults {
			break
		}
		desc := "Local Cuisine"
		if len(r.Cuisine) > 0 {
			desc = strings.Join(r.Cuisine, ", ")
		}
		if r.PriceTag != "" {
			desc += " (" + r.PriceTag + ")"
		}
		records = append(records, itinerary.Record{
			Name:        r.Name,
			Rating:      formatRating(r.AverageRating),
			Description: desc,
		})
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("tripadvisor: no restaurants found for %s", destination)
	}
	return records, nil
}

// Places runs Google Places text searches for things to do.
type Places struct {
	base
}

func NewPlaces(apiKey string, opts ...Option) *Places {
	return &Places{base: newBase("google places", "https://maps.googleapis.com", "", apiKey, opts)}
}

type placesSearch struct {
	Status  string `json:"status"`
	Results []struct {
		Name             string  `json:"name"`
		Rating           float64 `json:"rating"`
		FormattedAddress string  `json:"formatted_address"`
	} `json:"results"`
	ErrorMessage string `json:"error_message"`
}

// Activities returns up to five attractions for destination.
func (p *Places) Activities(ctx context.Context, destination string) ([]itinerary.Record, error) {
	query := url.Values{
		"query": {"things to do in " + destination},
		"key":   {p.apiKey},
	}
	var out placesSearch
	if err := p.getJSON(ctx, "/maps/api/place/textsearch/json", query, &out); err != nil {
		return nil, err
	}
	switch out.Status {
	case "", "OK", "ZERO_RESULTS":
	case "OVER_QUERY_LIMIT":
		return nil, &HTTPError{Source: p.source, Status: http.StatusTooManyRequests, Body: out.ErrorMessage}
	default:
		return nil, fmt.Errorf("google places: %s %s", out.Status, out.ErrorMessage)
	}

	var records []itinerary.Record
	for _, r := range out.Results {
		if len(records) == maxResults {
			break
		}
		records = append(records, itinerary.Record{
			Name:        r.Name,
			Rating:      formatRating(r.Rating),
			Description: r.FormattedAddress,
		})
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("google places: no activities found for %s", destination)
	}
	return records, nil
}
