package main

import (
	"encoding/json"
	"fmt"
	"os"

	"polyfeed/internal/gamma"

	"github.com/spf13/cobra"
)

var (
	eventsTag    string
	eventsSearch string
	eventsLimit  int
	eventsClosed bool
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "List events as JSON lines",
	RunE:  runEvents,
}

func init() {
	eventsCmd.Flags().StringVar(&eventsTag, "tag", "", "filter by tag slug")
	eventsCmd.Flags().StringVar(&eventsSearch, "search", "", "full-text search instead of listing")
	eventsCmd.Flags().IntVar(&eventsLimit, "limit", 0, "maximum events to emit (0 = no cap)")
	eventsCmd.Flags().BoolVar(&eventsClosed, "closed", false, "include closed events")
}

func runEvents(cmd *cobra.Command, _ []string) error {
	client := gamma.New("")
	ctx := cmd.Context()
	enc := json.NewEncoder(os.Stdout)

	if eventsSearch != "" {
		params := gamma.SearchParams{Query: eventsSearch, Limit: eventsLimit}
		if eventsTag != "" {
			params.Tags = []string{eventsTag}
		}
		for event, err := range client.SearchEvents(ctx, params) {
			if err != nil {
				return fmt.Errorf("couldn't search events: %w", err)
			}
			if err := enc.Encode(event); err != nil {
				return err
			}
		}
		return nil
	}

	params := gamma.ListParams{TagSlug: eventsTag, Limit: eventsLimit}
	if !eventsClosed {
		closed := false
		params.Closed = &closed
	}
	for event, err := range client.Events(ctx, params) {
		if err != nil {
			return fmt.Errorf("couldn't list events: %w", err)
		}
		if err := enc.Encode(event); err != nil {
			return err
		}
	}
	return nil
}
