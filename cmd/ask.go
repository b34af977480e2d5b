package main

import (
	"fmt"
	"strings"

	"farmlink/internal/infrastructure"
	"farmlink/internal/repository"
	"farmlink/internal/usecases"

	"github.com/spf13/cobra"
)

func askCmd() *cobra.Command {
	var location string
	cmd := &cobra.Command{
		Use:   "ask [message]",
		Short: "Send one message to VendorGPT and print the reply",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := cfg.ValidateOracle(); err != nil {
				return err
			}

			ctx := cmd.Context()
			pg, err := connectDB(ctx, cfg)
			if err != nil {
				return err
			}
			defer pg.Close()

			aiClient, err := infrastructure.NewAIClient(ctx, cfg)
			if err != nil {
				return err
			}
			vendorGPT := usecases.NewVendorGPT(aiClient, repository.NewProductRepository(pg.Pool), logger,
				usecases.WithOracleTimeout(cfg.OracleTimeout))

			msg := vendorGPT.ProcessMessage(ctx, strings.Join(args, " "), location)
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, msg.Message)
			for i, p := range msg.Products {
				fmt.Fprintf(out, "%d. %s  ₹%.2f  (%s)  %s\n", i+1, p.Name, p.Price, p.City, p.ID)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&location, "location", "", "location hint, e.g. a city")
	return cmd
}
