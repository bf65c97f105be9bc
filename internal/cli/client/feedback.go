package client

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/cloo-solutions/plantrec/internal/domain"
)

type feedbackRequest struct {
	RequestID string         `json:"request_id"`
	Feedback  map[string]any `json:"feedback,omitempty"`
	Rating    *int           `json:"rating,omitempty"`
}

func FeedbackCmd() *cobra.Command {
	var (
		rating  int
		comment string
		fields  []string
	)

	cmd := &cobra.Command{
		Use:   "feedback <request-id>",
		Short: "Rate a recommendation request",
		Args:  cobra.ExactArgs(1),
		Example: `  plantrec feedback 6f1c1a8e-... --rating 4 --comment "great picks"
  plantrec feedback 6f1c1a8e-... --field planted=lavender`,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := buildFeedback(args[0], cmd.Flags().Changed("rating"), rating, comment, fields)
			if err != nil {
				return err
			}

			api, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}
			if _, err := api.Post(cmd.Context(), "/recommendations/feedback", req); err != nil {
				return fmt.Errorf("feedback failed: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Feedback saved.")
			return nil
		},
	}

	cmd.Flags().IntVarP(&rating, "rating", "r", 0, "Rating from 1 to 5")
	cmd.Flags().StringVarP(&comment, "comment", "m", "", "Free-text comment")
	cmd.Flags().StringArrayVar(&fields, "field", nil, "Extra feedback as key=value (repeatable)")

	return cmd
}

func buildFeedback(requestID string, hasRating bool, rating int, comment string, fields []string) (*feedbackRequest, error) {
	req := &feedbackRequest{RequestID: requestID, Feedback: map[string]any{}}

	if hasRating {
		if err := domain.ValidateRating(&rating); err != nil {
			return nil, err
		}
		req.Rating = &rating
	}
	if comment != "" {
		req.Feedback["comment"] = comment
	}
	for _, kv := range fields {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return nil, fmt.Errorf("invalid --field %q: want key=value", kv)
		}
		var decoded any
		if err := json.Unmarshal([]byte(v), &decoded); err == nil {
			req.Feedback[strings.TrimSpace(k)] = decoded
		} else {
			req.Feedback[strings.TrimSpace(k)] = v
		}
	}
	return req, nil
}

func StatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show recommendation and feedback statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}
			resp, err := api.Get(cmd.Context(), "/recommendations/stats", nil)
			if err != nil {
				return fmt.Errorf("stats failed: %w", err)
			}

			var stats domain.RecommendationStats
			if err := json.Unmarshal(resp.Data, &stats); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}

			out := cmd.OutOrStdout()
			if outputJSON, _ := cmd.Flags().GetBool("output"); outputJSON {
				return printJSON(out, stats)
			}
			fmt.Fprintf(out, "Requests:        %d\n", stats.TotalRequests)
			fmt.Fprintf(out, "With feedback:   %d\n", stats.WithFeedback)
			fmt.Fprintf(out, "Rated:           %d\n", stats.RatedRequests)
			if stats.AverageRating != nil {
				fmt.Fprintf(out, "Average rating:  %.2f\n", *stats.AverageRating)
			}
			fmt.Fprintf(out, "Average results: %.1f\n", stats.AverageResults)
			fmt.Fprintf(out, "Average time:    %.1f ms\n", stats.AverageMs)
			return nil
		},
	}
}
