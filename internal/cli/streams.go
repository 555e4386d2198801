package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var streamsCmd = &cobra.Command{
	Use:   "streams",
	Short: "List the value streams published by the manifest",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, _, err := loadManifest()
		if err != nil {
			return err
		}

		streams := m.Streams()
		if len(streams) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "The manifest publishes no value streams.")
			return nil
		}

		for _, s := range streams {
			fmt.Fprintln(cmd.OutOrStdout(), s)
		}
		return nil
	},
}

func init() {
	streamsCmd.Flags().StringVar(&syncSource, "source", "", "Local source tree to read from (skips clone/pull)")
	streamsCmd.Flags().StringVar(&syncManifest, "manifest", "", "Manifest filename under the source root")
	rootCmd.AddCommand(streamsCmd)
}
