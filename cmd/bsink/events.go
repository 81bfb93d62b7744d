package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/srg/bsink/internal/events"
	"github.com/srg/bsink/internal/sink"
)

// eventsCmd lists the user events
var eventsCmd = &cobra.Command{
	Use:   "events [filter]",
	Short: "List user events and subsystem ranges",
	Long: `List every user event with its identifier and dispatch rules:

  EXEMPT  system-generated, skips the auto switch-off and missed-call bookkeeping
  LIMBO   accepted while the device is powered off

An optional filter keeps events whose name contains it (case-insensitive).
With --ranges, the subsystem identifier ranges are listed instead.
Use --format json for machine-readable output.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runEvents,
}

var (
	eventsRanges bool
	eventsFormat string
)

func init() {
	eventsCmd.Flags().BoolVar(&eventsRanges, "ranges", false, "List subsystem identifier ranges")
	eventsCmd.Flags().StringVarP(&eventsFormat, "format", "f", "table", "Output format (table, json)")
}

type eventInfo struct {
	Name              string `json:"name"`
	ID                string `json:"id"`
	BookkeepingExempt bool   `json:"bookkeeping_exempt"`
	AllowedInLimbo    bool   `json:"allowed_in_limbo"`
}

type rangeInfo struct {
	Name string `json:"name"`
	Base string `json:"base"`
	Top  string `json:"top"`
}

func runEvents(cmd *cobra.Command, args []string) error {
	if eventsFormat != "table" && eventsFormat != "json" {
		return fmt.Errorf("unsupported format %q (must be table or json)", eventsFormat)
	}

	// All arguments validated - don't show usage on runtime errors
	cmd.SilenceUsage = true

	if eventsRanges {
		return printRanges(cmd.OutOrStdout(), eventsFormat)
	}
	filter := ""
	if len(args) == 1 {
		filter = strings.ToLower(args[0])
	}
	return printEvents(cmd.OutOrStdout(), filter, eventsFormat)
}

func printEvents(w io.Writer, filter, format string) error {
	var rows []eventInfo
	for _, id := range events.AllUserEvents() {
		name := id.String()
		if filter != "" && !strings.Contains(strings.ToLower(name), filter) {
			continue
		}
		rows = append(rows, eventInfo{
			Name:              name,
			ID:                fmt.Sprintf("0x%04X", uint16(id)),
			BookkeepingExempt: events.IsBookkeepingExempt(id),
			AllowedInLimbo:    sink.AllowedInLimbo(id),
		})
	}

	if format == "json" {
		return writeJSON(w, rows)
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tID\tEXEMPT\tLIMBO")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.Name, r.ID, yesNo(r.BookkeepingExempt), yesNo(r.AllowedInLimbo))
	}
	return tw.Flush()
}

func printRanges(w io.Writer, format string) error {
	var rows []rangeInfo
	for _, r := range events.Ranges() {
		rows = append(rows, rangeInfo{
			Name: r.Name,
			Base: fmt.Sprintf("0x%04X", uint16(r.Base)),
			Top:  fmt.Sprintf("0x%04X", uint16(r.Top)),
		})
	}

	if format == "json" {
		return writeJSON(w, rows)
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SUBSYSTEM\tBASE\tTOP")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", r.Name, r.Base, r.Top)
	}
	return tw.Flush()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "-"
}
