package client

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/cloo-solutions/plantrec/internal/service"
)

// criteriaFlags maps recommend flags onto criteria field names.
var criteriaFlags = []struct {
	flag string
	key  string
}{
	{"sun", "sun_exposure"},
	{"water", "moisture_level"},
	{"soil", "soil_type"},
	{"zone", "hardiness_zone"},
	{"ph", "soil_ph"},
	{"color", "preferred_colors"},
	{"bloom", "bloom_season"},
	{"type", "plant_types"},
	{"maintenance", "maintenance_level"},
	{"budget", "budget_range"},
	{"native", "native_preference"},
	{"deer-resistant", "deer_resistant_required"},
	{"pollinator-friendly", "pollinator_friendly_required"},
	{"max-results", "max_results"},
	{"min-score", "min_score"},
}

func RecommendCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Get plant recommendations for a set of site and design criteria",
		Long: `Get ranked plant recommendations.

Criteria can be given as flags, as a JSON file with --criteria, or both.
Flags override keys from the file.`,
		Example: `  plantrec recommend --sun "full sun" --zone 6 --deer-resistant
  plantrec recommend --criteria site.json --max-results 5`,
		RunE: func(cmd *cobra.Command, args []string) error {
			criteria, err := buildCriteria(cmd.Flags())
			if err != nil {
				return err
			}

			api, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}

			resp, err := api.Post(cmd.Context(), "/recommendations", criteria)
			if err != nil {
				return fmt.Errorf("recommend failed: %w", err)
			}

			var out service.RecommendationResponse
			if err := json.Unmarshal(resp.Data, &out); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}

			if outputJSON, _ := cmd.Flags().GetBool("output"); outputJSON {
				return printJSON(cmd.OutOrStdout(), out)
			}
			printRecommendations(cmd.OutOrStdout(), &out)
			return nil
		},
	}

	fl := cmd.Flags()
	fl.String("criteria", "", "JSON file with criteria fields")
	fl.String("sun", "", "Sun exposure, e.g. \"full sun\", \"partial shade\"")
	fl.String("water", "", "Moisture level: low, moderate, high")
	fl.String("soil", "", "Soil type")
	fl.String("zone", "", "USDA hardiness zone")
	fl.Float64("ph", 0, "Soil pH")
	fl.StringSlice("color", nil, "Preferred bloom or foliage colors")
	fl.String("bloom", "", "Bloom season")
	fl.StringSlice("type", nil, "Plant types, e.g. shrub,perennial")
	fl.String("maintenance", "", "Maintenance level: low, moderate, high")
	fl.String("budget", "", "Budget range: low, medium, high")
	fl.Bool("native", false, "Prefer native plants")
	fl.Bool("deer-resistant", false, "Require deer resistance")
	fl.Bool("pollinator-friendly", false, "Require pollinator friendly plants")
	fl.IntP("max-results", "n", 0, "Maximum number of results (server default when unset)")
	fl.Float64("min-score", 0, "Minimum total score between 0 and 1")

	return cmd
}

// buildCriteria merges the criteria file with the flags that were set.
func buildCriteria(fl *pflag.FlagSet) (map[string]any, error) {
	criteria := map[string]any{}
	if path, _ := fl.GetString("criteria"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read criteria: %w", err)
		}
		if err := json.Unmarshal(data, &criteria); err != nil {
			return nil, fmt.Errorf("parse criteria %s: %w", path, err)
		}
	}

	for _, m := range criteriaFlags {
		f := fl.Lookup(m.flag)
		if f == nil || !f.Changed {
			continue
		}
		var (
			v   any
			err error
		)
		switch f.Value.Type() {
		case "string":
			v, err = fl.GetString(m.flag)
		case "stringSlice":
			v, err = fl.GetStringSlice(m.flag)
		case "bool":
			v, err = fl.GetBool(m.flag)
		case "int":
			v, err = fl.GetInt(m.flag)
		case "float64":
			v, err = fl.GetFloat64(m.flag)
		default:
			v = f.Value.String()
		}
		if err != nil {
			return nil, err
		}
		criteria[m.key] = v
	}

	return criteria, nil
}

func printRecommendations(w io.Writer, r *service.RecommendationResponse) {
	if len(r.Recommendations) == 0 {
		fmt.Fprintf(w, "No plants matched (%d evaluated).\n", r.TotalPlantsEvaluated)
		fmt.Fprintf(w, "Request: %s\n", r.RequestID)
		return
	}

	fmt.Fprintf(w, "%d of %d plants recommended:\n\n", r.RecommendationsCount, r.TotalPlantsEvaluated)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tSCORE\tPLANT\tCATEGORY\tWHY")
	for i, item := range r.Recommendations {
		name := item.Candidate.CommonName
		if name == "" {
			name = item.Candidate.Name
		}
		why := strings.Join(item.Reasons, "; ")
		if len(item.Warnings) > 0 {
			why += " (!) " + strings.Join(item.Warnings, "; ")
		}
		fmt.Fprintf(tw, "%d\t%.2f\t%s\t%s\t%s\n", i+1, item.Score, name, item.Candidate.Category, why)
	}
	_ = tw.Flush()

	fmt.Fprintf(w, "\nRequest: %s\n", r.RequestID)
	fmt.Fprintf(w, "Rate it with: plantrec feedback %s --rating <1-5>\n", r.RequestID)
}
