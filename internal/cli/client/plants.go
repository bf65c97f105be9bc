package client

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/cloo-solutions/plantrec/internal/service"
)

type plantListResponse struct {
	Items   []service.PlantView `json:"items"`
	Cursor  string              `json:"cursor,omitempty"`
	HasMore bool                `json:"has_more"`
}

func PlantsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plants",
		Short: "Browse and edit the plant catalog",
	}
	cmd.AddCommand(plantsListCmd(), plantsGetCmd(), plantsPutCmd(), plantsDeleteCmd())
	return cmd
}

func plantsListCmd() *cobra.Command {
	var (
		category string
		cursor   string
		limit    int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List catalog plants",
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}

			q := url.Values{}
			if category != "" {
				q.Set("category", category)
			}
			if cursor != "" {
				q.Set("cursor", cursor)
			}
			if limit > 0 {
				q.Set("limit", strconv.Itoa(limit))
			}

			resp, err := api.Get(cmd.Context(), "/plants", q)
			if err != nil {
				return fmt.Errorf("list failed: %w", err)
			}
			var page plantListResponse
			if err := json.Unmarshal(resp.Data, &page); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}

			out := cmd.OutOrStdout()
			if outputJSON, _ := cmd.Flags().GetBool("output"); outputJSON {
				return printJSON(out, page)
			}
			printPlantPage(out, &page)
			return nil
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "Filter by category")
	cmd.Flags().StringVar(&cursor, "cursor", "", "Pagination cursor from a previous page")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Page size")

	return cmd
}

func printPlantPage(w io.Writer, page *plantListResponse) {
	if len(page.Items) == 0 {
		fmt.Fprintln(w, "No plants found.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tZONE\tSUN")
	for _, p := range page.Items {
		name := p.Name
		if p.CommonName != "" {
			name = p.CommonName
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", p.ID, name, p.Category, p.HardinessZone, p.SunRequirement)
	}
	_ = tw.Flush()

	if page.HasMore && page.Cursor != "" {
		fmt.Fprintf(w, "\nMore results available. Use --cursor %s\n", page.Cursor)
	}
}

func plantsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one plant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}
			resp, err := api.Get(cmd.Context(), "/plants/"+url.PathEscape(args[0]), nil)
			if err != nil {
				return fmt.Errorf("get failed: %w", err)
			}
			var p service.PlantView
			if err := json.Unmarshal(resp.Data, &p); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}
			return printJSON(cmd.OutOrStdout(), p)
		},
	}
}

func plantsPutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "put <id> <file>",
		Short: "Create or replace a plant from a JSON file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[1])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[1], err)
			}
			var body map[string]any
			if err := json.Unmarshal(data, &body); err != nil {
				return fmt.Errorf("parse %s: %w", args[1], err)
			}

			api, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}
			if _, err := api.Put(cmd.Context(), "/plants/"+url.PathEscape(args[0]), body); err != nil {
				return fmt.Errorf("put failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s.\n", args[0])
			return nil
		},
	}
}

func plantsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Remove a plant from the catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := NewAPIClientWithCmd(cmd)
			if err != nil {
				return err
			}
			if _, err := api.Delete(cmd.Context(), "/plants/"+url.PathEscape(args[0])); err != nil {
				return fmt.Errorf("delete failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s.\n", args[0])
			return nil
		},
	}
}
