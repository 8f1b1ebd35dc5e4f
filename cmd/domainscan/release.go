package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// defaultReleaseAge is the claim age after which release considers a claim abandoned.
const defaultReleaseAge = time.Hour

// NewReleaseCmd creates the release command.
func NewReleaseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "release",
		Short: "Unlock abandoned claims",
		Long: `Release unlocks queue items that were claimed longer ago than --older-than
and never reached a terminal state, for example because the worker crashed
or was interrupted. Released items are claimed again by the next run.

Do not use a value shorter than the longest time a worker may spend on one
domain, or domains still being processed are claimed twice.`,
		Args: cobra.NoArgs,
		RunE: runReleaseCmd,
	}

	cmd.Flags().Duration("older-than", defaultReleaseAge, "Minimum claim age to release")
	return cmd
}

func runReleaseCmd(cmd *cobra.Command, _ []string) error {
	olderThan, err := cmd.Flags().GetDuration("older-than")
	if err != nil {
		return err
	}
	if olderThan < 0 {
		return errors.New("--older-than must not be negative")
	}

	store, _, err := openStore(cmd.Context(), cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	n, err := store.ReleaseStale(cmd.Context(), olderThan)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Released %d claim(s) older than %s\n", n, olderThan)
	return nil
}
