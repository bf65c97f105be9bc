package admin

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/cloo-solutions/plantrec/internal/domain"
	"github.com/cloo-solutions/plantrec/internal/service"
)

func CatalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Manage the plant catalog",
	}
	cmd.AddCommand(catalogImportCmd())
	return cmd
}

func catalogImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import plants from a JSON file",
		Long: `Import plants from a JSON array of plant objects. Use "-" to read stdin.

Entries without an id are assigned a new UUID. The import runs in one
transaction: if any entry is invalid nothing is written.`,
		Args: cobra.ExactArgs(1),
		RunE: runCatalogImport,
	}
	return cmd
}

func runCatalogImport(cmd *cobra.Command, args []string) error {
	var in io.Reader = cmd.InOrStdin()
	if args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open %s: %w", args[0], err)
		}
		defer f.Close()
		in = f
	}

	plants, err := readPlants(in, uuid.NewString)
	if err != nil {
		return err
	}

	ctx := context.Background()
	rt, err := newRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	n, err := rt.catalog.Import(ctx, plants)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "imported %d plants\n", n)
	return nil
}

// readPlants decodes a JSON array of plant views. newID fills missing ids.
func readPlants(r io.Reader, newID func() string) ([]*domain.Plant, error) {
	var views []service.PlantView
	if err := json.NewDecoder(r).Decode(&views); err != nil {
		return nil, fmt.Errorf("decode plants: %w", err)
	}

	plants := make([]*domain.Plant, 0, len(views))
	for _, v := range views {
		p := v.Plant()
		if p.ID == "" {
			p.ID = newID()
		}
		plants = append(plants, p)
	}
	return plants, nil
}
