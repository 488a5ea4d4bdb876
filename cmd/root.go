package main

import (
	"fmt"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/vela-games/lfsbatch/app"
	"github.com/vela-games/lfsbatch/router"
)

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lfsbatch",
		Short: "Git LFS batch API backed by S3 presigned URLs",
		Long: `Answers Git LFS batch requests for a single GitHub repository.

Clients authenticate with their GitHub username and an access token. Objects
are stored in S3 and transferred directly through presigned URLs.

Settings are read from APP_* environment variables; the repository and URL
expirations are read from the config record in the bucket.`,
		SilenceUsage: true,
	}

	cmd.AddCommand(newServeCommand())

	return cmd
}

func newServeCommand() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the batch API server",
		RunE: func(command *cobra.Command, args []string) error {
			appContext, err := app.Build()
			if err != nil {
				return fmt.Errorf("error building application: %w", err)
			}

			if appContext.Settings.DebugMode {
				logger.SetLevel(logger.DebugLevel)
			}

			if command.Flags().Changed("port") {
				appContext.Settings.Port = port
			}

			r := router.NewRouter(appContext.Settings.DebugMode)
			r.InitRoutes(appContext)

			return r.Run(command.Context(), fmt.Sprintf(":%v", appContext.Settings.Port))
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 8080, "Port to listen on (overrides APP_PORT)")

	return cmd
}
