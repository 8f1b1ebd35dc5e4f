package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// NewStatsCmd creates the stats command.
func NewStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print queue and result counts",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().BoolP("json", "j", false, "Output JSON")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	store, _, err := openStore(cmd.Context(), cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	stats, err := store.Stats(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if asJSON {
		return json.NewEncoder(out).Encode(stats)
	}
	fmt.Fprintf(out, "pending:    %d\n", stats.Pending)
	fmt.Fprintf(out, "locked:     %d\n", stats.Locked)
	fmt.Fprintf(out, "classified: %d\n", stats.Classified)
	fmt.Fprintf(out, "failed:     %d\n", stats.Failed)
	return nil
}
