package strategy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	dbt "tripsynth/db/db"
	"tripsynth/fetch"
	"tripsynth/itinerary"
	"tripsynth/parser"
	"tripsynth/provider"
	"tripsynth/reconcile"
)

var ErrNoSources = errors.New("datasource strategy has no providers configured")

const defaultRating = "4.0"

var (
	defaultPrice = decimal.NewFromInt(3000)
	priceRe      = regexp.MustCompile(`₹\s?(\d{3,6})`)
	ratingRe     = regexp.MustCompile(`(\d\.\d)\s?(?:/5|stars?)`)
)

// extractPrice reads the first rupee amount in text, or 3000.
func extractPrice(text string) decimal.Decimal {
	m := priceRe.FindStringSubmatch(text)
	if m == nil {
		return defaultPrice
	}
	d, err := decimal.NewFromString(m[1])
	if err != nil {
		return defaultPrice
	}
	return d
}

// extractRating reads a rating like "4.5/5" or "4.5 stars", or "4.0".
func extractRating(text string) string {
	m := ratingRe.FindStringSubmatch(text)
	if m == nil {
		return defaultRating
	}
	return m[1]
}

type RestaurantSource interface {
	Restaurants(ctx context.Context, destination string) ([]itinerary.Record, error)
}

type ActivitySource interface {
	Activities(ctx context.Context, destination string) ([]itinerary.Record, error)
}

// Datasource composes an itinerary from provider data fetched through the cache.
type Datasource struct {
	fetcher     *fetch.Fetcher
	hotels      provider.HotelSource
	restaurants RestaurantSource
	activities  ActivitySource
	engine      *reconcile.Engine
	logger      *slog.Logger
}

func NewDatasource(fetcher *fetch.Fetcher, hotels provider.HotelSource, restaurants RestaurantSource, activities ActivitySource, engine *reconcile.Engine, logger *slog.Logger) *Datasource {
	if logger == nil {
		logger = slog.Default()
	}
	return &Datasource{
		fetcher:     fetcher,
		hotels:      hotels,
		restaurants: restaurants,
		activities:  activities,
		engine:      engine,
		logger:      logger,
	}
}

func (s *Datasource) Name() string {
	return NameDatasource
}

func (s *Datasource) Generate(ctx context.Context, req itinerary.TripRequest) (*Result, error) {
	if s.hotels == nil || s.restaurants == nil || s.activities == nil {
		return nil, ErrNoSources
	}

	var hotels, meals, activities []itinerary.Record
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		hotels, err = s.fetcher.Fetch(gctx, req.Destination, dbt.CategoryHotels, func(ctx context.Context) ([]itinerary.Record, error) {
			return s.hotels.Hotels(ctx, provider.HotelQueryFor(req))
		})
		return err
	})
	g.Go(func() (err error) {
		meals, err = s.fetcher.Fetch(gctx, req.Destination, dbt.CategoryMeals, func(ctx context.Context) ([]itinerary.Record, error) {
			return s.restaurants.Restaurants(ctx, req.Destination)
		})
		return err
	})
	g.Go(func() (err error) {
		activities, err = s.fetcher.Fetch(gctx, req.Destination, dbt.CategoryActivities, func(ctx context.Context) ([]itinerary.Record, error) {
			return s.activities.Activities(ctx, req.Destination)
		})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("datasource: %w", err)
	}
	if len(hotels) == 0 || len(meals) == 0 || len(activities) == 0 {
		return nil, fmt.Errorf("datasource: incomplete provider data for %s", req.Destination)
	}

	doc := s.Document(req, hotels, meals, activities)
	days := parser.Parse(doc)
	trip := s.engine.Reconcile(ctx, days, req)
	if trip.Hotel != nil && len(hotels) > 0 {
		trip.Hotel.Rating = hotelRating(hotels[0])
	}
	return &Result{Trip: trip, Vibe: parser.ExtractVibe(doc)}, nil
}

func hotelRating(h itinerary.Record) string {
	if h.Rating != "" {
		return h.Rating
	}
	return extractRating(h.Description)
}

func hotelPrice(h itinerary.Record) decimal.Decimal {
	if h.Price > 0 {
		return decimal.NewFromFloat(h.Price).Round(0)
	}
	return extractPrice(h.Description)
}

// Document renders provider data in the plain dialect. Day i uses hotel
// i mod n and the three activities and meals starting at i mod n.
func (s *Datasource) Document(req itinerary.TripRequest, hotels, meals, activities []itinerary.Record) string {
	_, prices := s.engine.Tiers().Lookup(req.Budget)
	activityCosts := prices.ActivitySlotDefaults()
	mealCosts := prices.MealSlotDefaults()

	var d document
	d.vibe(fmt.Sprintf("A memorable %s trip in %s", tripTypeOrDefault(req.TripType), req.Destination))

	for n := 1; n <= req.ExpectedDays(); n++ {
		i := n - 1
		if req.IsTravelDay(n) {
			d.day(n, req.Date(n), "Departure")
			d.section("Transport", transportFor(req, prices, n)...)
			continue
		}

		d.day(n, req.Date(n), fmt.Sprintf("%s with local picks", req.Destination))
		d.section("Transport", transportFor(req, prices, n)...)

		hotel := hotels[i%len(hotels)]
		d.section("Lodging", fmt.Sprintf("%s, rated %s/5 (₹%s per night)",
			hotel.Name, hotelRating(hotel), reconcile.FormatINR(hotelPrice(hotel))))

		var acts []string
		for k, slot := range activitySlotNames[:3] {
			a := activities[(i+k)%len(activities)]
			acts = append(acts, costLine(slot, fmt.Sprintf("Visit %s%s, one of the most popular sights in %s, and take your time exploring.",
				a.Name, ratingNote(a), req.Destination), activityCosts[k]))
		}
		d.section("Activities", acts...)

		var food []string
		for k, slot := range mealSlotNames {
			m := meals[(i+k)%len(meals)]
			desc := m.Description
			if desc == "" {
				desc = "Local Cuisine"
			}
			food = append(food, costLine(slot, fmt.Sprintf("Eat at %s%s serving %s, with %s options on the menu.",
				m.Name, ratingNote(m), desc, foodPreferenceOrDefault(req.FoodPreference)), mealCosts[k]))
		}
		d.section("Meals", food...)
	}
	return d.String()
}

func ratingNote(r itinerary.Record) string {
	if r.Rating == "" {
		return ""
	}
	if _, err := strconv.ParseFloat(r.Rating, 64); err != nil {
		return ""
	}
	return " (rated " + r.Rating + "/5)"
}

func foodPreferenceOrDefault(p string) string {
	if p == "" {
		return "varied"
	}
	return p
}
