package cli

import (
	"github.com/justsurfingit/jacker/internal/client"
	"github.com/spf13/cobra"
)

// NewRootCmd builds jobtrackctl. apiBaseURL is the default for --api.
func NewRootCmd(apiBaseURL string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "jobtrackctl",
		Short:         "Inspect and edit tracked job applications",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().String("api", apiBaseURL, "Base URL of the jacker API")

	rootCmd.AddCommand(ListCmd())
	rootCmd.AddCommand(SetStatusCmd())
	rootCmd.AddCommand(StatsCmd())
	rootCmd.AddCommand(TrackCmd())
	return rootCmd
}

func apiClient(cmd *cobra.Command) *client.Client {
	base, _ := cmd.Flags().GetString("api")
	return client.New(base)
}
