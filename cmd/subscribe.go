package cmd

import (
	"context"
	"fmt"
	"strings"

	"commentflow/controllers"
	dbpkg "commentflow/db"
	"commentflow/tools"

	"github.com/spf13/cobra"
)

var subscribeTenant string

var subscribeCmd = &cobra.Command{
	Use:   "subscribe",
	Short: "Subscribe a tenant's page to comment and message webhooks",
	RunE: func(cmd *cobra.Command, args []string) error {
		if strings.TrimSpace(subscribeTenant) == "" {
			return fmt.Errorf("--tenant is required")
		}
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		database, err := dbpkg.Connect(cfg, logger.Named("db"))
		if err != nil {
			return err
		}
		defer database.Close()

		ctx, cancel := context.WithTimeout(context.Background(), cfg.GraphTimeout())
		defer cancel()

		graph := tools.NewGraphClient(cfg.Graph.BaseURL, cfg.Graph.ApiVersion, cfg.GraphTimeout())
		sub, err := controllers.SubscribeTenant(ctx, dbpkg.NewStore(database), graph, subscribeTenant)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "subscribed page %s to %s\n", sub.PageID, sub.SubscribedFields)
		return nil
	},
}

func init() {
	subscribeCmd.Flags().StringVar(&subscribeTenant, "tenant", "", "tenant id")
	rootCmd.AddCommand(subscribeCmd)
}
