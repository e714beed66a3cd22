package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"tripsynth/itinerary"
)

func planCommand() *cobra.Command {
	var (
		req        itinerary.TripRequest
		outputPath string
		pretty     bool
	)
	cmd := &cobra.Command{
		Use:     "plan",
		Short:   "Plan one trip and print the itinerary as JSON",
		Example: `tripsynth plan --destination Goa --start-date 2025-06-11 --duration 3 --people 2 --budget mid-range --strategies heuristic`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := req.Validate(); err != nil {
				return err
			}
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			logger := slog.Default()
			a, err := buildApp(cmd.Context(), cfg, false, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			it := a.assembler.Assemble(cmd.Context(), req)

			var out io.Writer = cmd.OutOrStdout()
			if outputPath != "" {
				f, err := os.Create(outputPath)
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
			}
			enc := json.NewEncoder(out)
			if pretty {
				enc.SetIndent("", "  ")
			}
			if err := enc.Encode(it); err != nil {
				return fmt.Errorf("failed to write itinerary: %w", err)
			}
			if it.Metadata.Fallback {
				logger.Warn("itinerary is a fallback", "reason", it.Metadata.FallbackReason)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&req.Destination, "destination", "", "Where to go")
	f.StringVar(&req.StartDate, "start-date", time.Now().Format(itinerary.DateLayout), "First day, YYYY-MM-DD")
	f.IntVar(&req.Duration, "duration", 3, "Number of days")
	f.StringVar(&req.TripType, "trip-type", "", "Trip type, e.g. relaxation or adventure")
	f.StringVar(&req.FoodPreference, "food", "", "Food preference")
	f.IntVar(&req.PartySize, "people", 1, "Party size")
	f.StringVar(&req.Budget, "budget", "mid-range", "Budget tier (budget-friendly, mid-range, premium)")
	f.BoolVar(&req.FlightIncluded, "flight", false, "Include return flights")
	f.StringVar(&req.FromLocation, "from", "", "Origin for flights")
	f.StringSliceVar(&req.HotelStars, "hotel-stars", nil, "Preferred hotel stars (3, 4, 5)")
	f.StringVarP(&outputPath, "output", "o", "", "Write the itinerary to this file instead of stdout")
	f.BoolVar(&pretty, "pretty", false, "Indent the JSON output")
	addPipelineFlags(cmd)
	return cmd
}
