package provider

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	dbt "tripsynth/db/db"
	"tripsynth/itinerary"
	"tripsynth/pricing"
)

// HotelQuery describes a one-night availability search.
type HotelQuery struct {
	Destination string
	CheckIn     string
	CheckOut    string
	Adults      int
	Rooms       int
	Tier        pricing.Tier
}

// HotelQueryFor builds the search for the first night of req.
func HotelQueryFor(req itinerary.TripRequest) HotelQuery {
	return HotelQuery{
		Destination: req.Destination,
		CheckIn:     req.Date(1),
		CheckOut:    req.Date(2),
		Adults:      req.PartySize,
		Rooms:       req.Rooms(),
		Tier:        req.Tier(),
	}
}

type HotelSource interface {
	Hotels(ctx context.Context, q HotelQuery) ([]itinerary.Record, error)
}

// priceBand is the nightly INR range searched per tier.
func priceBand(t pricing.Tier) (int, int) {
	switch t {
	case pricing.BudgetFriendly:
		return 0, 50 * 83
	case pricing.Premium:
		return 150 * 83, 500 * 83
	default:
		return 50 * 83, 150 * 83
	}
}

func hotelDescription(price float64, rating string) string {
	desc := fmt.Sprintf("₹%.0f per night", price)
	if rating != "" {
		desc += ", rated " + rating + "/5"
	}
	return desc
}

// Booking searches Booking.com through RapidAPI.
type Booking struct {
	base
}

func NewBooking(apiKey string, opts ...Option) *Booking {
	return &Booking{base: newBase("booking.com", "https://booking-com15.p.rapidapi.com", "booking-com15.p.rapidapi.com", apiKey, opts)}
}

type bookingDestinations struct {
	Data []struct {
		DestID string `json:"dest_id"`
	} `json:"data"`
}

type bookingHotels struct {
	Data struct {
		Hotels []struct {
			Property struct {
				Name           string  `json:"name"`
				ReviewScore    float64 `json:"reviewScore"`
				PriceBreakdown struct {
					GrossPrice struct {
						Value float64 `json:"value"`
					} `json:"grossPrice"`
				} `json:"priceBreakdown"`
			} `json:"property"`
		} `json:"hotels"`
	} `json:"data"`
}

func (b *Booking) destinationID(ctx context.Context, destination string) (string, error) {
	return b.resolver(ctx, destination, dbt.CategoryDestID, func(ctx context.Context) (string, error) {
		var out bookingDestinations
		if err := b.getJSON(ctx, "/api/v1/hotels/searchDestination", url.Values{"query": {destination}}, &out); err != nil {
			return "", err
		}
		if len(out.Data) == 0 || out.Data[0].DestID == "" {
			return "", fmt.Errorf("booking.com: no destination found for %s", destination)
		}
		return out.Data[0].DestID, nil
	})
}

func (b *Booking) Hotels(ctx context.Context, q HotelQuery) ([]itinerary.Record, error) {
	destID, err := b.destinationID(ctx, q.Destination)
	if err != nil {
		return nil, err
	}

	low, high := priceBand(q.Tier)
	query := url.Values{
		"dest_id":        {destID},
		"search_type":    {"CITY"},
		"price_min":      {strconv.Itoa(low)},
		"price_max":      {strconv.Itoa(high)},
		"arrival_date":   {q.CheckIn},
		"departure_date": {q.CheckOut},
		"adults":         {strconv.Itoa(max(q.Adults, 1))},
		"room_qty":       {strconv.Itoa(max(q.Rooms, 1))},
		"currency_code":  {"INR"},
	}
	var out bookingHotels
	if err := b.getJSON(ctx, "/api/v1/hotels/searchHotels", query, &out); err != nil {
		return nil, err
	}

	var records []itinerary.Record
	for _, h := range out.Data.Hotels {
		if len(records) == maxResults {
			break
		}
		p := h.Property
		rating := formatRating(p.ReviewScore / 2)
		records = append(records, itinerary.Record{
			Name:        p.Name,
			Price:       p.PriceBreakdown.GrossPrice.Value,
			Rating:      rating,
			Description: hotelDescription(p.PriceBreakdown.GrossPrice.Value, rating),
		})
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("booking.com: no hotels found for %s", q.Destination)
	}
	return records, nil
}

// HotelsCom searches Hotels.com through RapidAPI.
type HotelsCom struct {
	base
}

func NewHotelsCom(apiKey string, opts ...Option) *HotelsCom {
	return &HotelsCom{base: newBase("hotels.com", "https://hotels-com-provider.p.rapidapi.com", "hotels-com-provider.p.rapidapi.com", apiKey, opts)}
}

type hotelsComRegions struct {
	Data []struct {
		RegionID string `json:"regionId"`
	} `json:"data"`
}

type hotelsComHotels struct {
	Data struct {
		Hotels []struct {
			Name  string `json:"name"`
			Price struct {
				Lead struct {
					Amount float64 `json:"amount"`
				} `json:"lead"`
			} `json:"price"`
			Rating struct {
				Value float64 `json:"value"`
			} `json:"rating"`
		} `json:"hotels"`
	} `json:"data"`
}

func (h *HotelsCom) Hotels(ctx context.Context, q HotelQuery) ([]itinerary.Record, error) {
	regionID, err := h.resolver(ctx, q.Destination, dbt.CategoryRegionID, func(ctx context.Context) (string, error) {
		var out hotelsComRegions
		if err := h.getJSON(ctx, "/v2/regions", url.Values{"query": {q.Destination}, "locale": {"en_US"}}, &out); err != nil {
			return "", err
		}
		if len(out.Data) == 0 || out.Data[0].RegionID == "" {
			return "", fmt.Errorf("hotels.com: no region found for %s", q.Destination)
		}
		return out.Data[0].RegionID, nil
	})
	if err != nil {
		return nil, err
	}

	query := url.Values{
		"region_id":      {regionID},
		"check_in_date":  {q.CheckIn},
		"check_out_date": {q.CheckOut},
		"adults_number":  {strconv.Itoa(max(q.Adults, 1))},
		"room_quantity":  {strconv.Itoa(max(q.Rooms, 1))},
		"currency":       {"INR"},
		"locale":         {"en_US"},
	}
	var out hotelsComHotels
	if err := h.getJSON(ctx, "/v2/hotels/search", query, &out); err != nil {
		return nil, err
	}

	var records []itinerary.Record
	for _, hotel := range out.Data.Hotels {
		if len(records) == maxResults {
			break
		}
		rating := formatRating(hotel.Rating.Value / 2)
		records = append(records, itinerary.Record{
			Name:        hotel.Name,
			Price:       hotel.Price.Lead.Amount,
			Rating:      rating,
			Description: hotelDescription(hotel.Price.Lead.Amount, rating),
		})
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("hotels.com: no hotels found for %s", q.Destination)
	}
	return records, nil
}

// Failover asks Primary first and switches to Secondary when Primary is
// throttled or unavailable.
type Failover struct {
	Primary   HotelSource
	Secondary HotelSource
	Logger    *slog.Logger
}

func (f *Failover) Hotels(ctx context.Context, q HotelQuery) ([]itinerary.Record, error) {
	records, err := f.Primary.Hotels(ctx, q)
	if err == nil || f.Secondary == nil {
		return records, err
	}
	switch StatusOf(err) {
	case http.StatusTooManyRequests, http.StatusServiceUnavailable:
		if f.Logger != nil {
			f.Logger.Warn("primary hotel source unavailable, falling back", "err", err)
		}
		return f.Secondary.Hotels(ctx, q)
	}
	return nil, err
}
