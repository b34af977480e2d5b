package main

import (
	"fmt"

	"farmlink/internal/repository"

	"github.com/spf13/cobra"
)

func seedCmd() *cobra.Command {
	var file, wholesalerID string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load products from a CSV or YAML file into the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			pg, err := connectDB(ctx, cfg)
			if err != nil {
				return err
			}
			defer pg.Close()

			n, err := repository.NewProductRepository(pg.Pool).SeedFromFile(ctx, file, wholesalerID)
			if err != nil {
				return err
			}
			logger.Info("catalog seeded", "file", file, "products", n)
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d products\n", n)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "data/products.csv", "CSV or YAML product file")
	cmd.Flags().StringVar(&wholesalerID, "wholesaler", "", "wholesaler user id that owns the seeded products")
	return cmd
}
