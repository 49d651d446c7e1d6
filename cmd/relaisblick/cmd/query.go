package cmd

import (
	"fmt"
	"io"
	"slices"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/dbehnke/relaisblick/internal/filter"
	"github.com/dbehnke/relaisblick/internal/format"
	"github.com/dbehnke/relaisblick/internal/loader"
	"github.com/dbehnke/relaisblick/internal/logger"
	"github.com/dbehnke/relaisblick/internal/relais"
	"github.com/dbehnke/relaisblick/internal/viewer"
)

var (
	queryBands    []string
	queryTypes    []string
	queryStates   []string
	queryStatuses []string
	querySearch   string
	queryAll      bool
	querySelect   string
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Load the dataset once and print the filtered repeaters",
	Example: `  relaisblick query --band 70cm --type DMR
  relaisblick query --state Wien,Niederösterreich -q kahlenberg
  relaisblick query --all --select oe1xuu-2m`,
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().StringSliceVar(&queryBands, "band", nil, "bands, e.g. 2m,70cm")
	queryCmd.Flags().StringSliceVar(&queryTypes, "type", nil, "types, e.g. FM,DMR,D-STAR")
	queryCmd.Flags().StringSliceVar(&queryStates, "state", nil, "federal states, e.g. Wien,Tirol")
	queryCmd.Flags().StringSliceVar(&queryStatuses, "status", nil, "statuses (default aktiv)")
	queryCmd.Flags().StringVarP(&querySearch, "search", "q", "", "free text search")
	queryCmd.Flags().BoolVar(&queryAll, "all", false, "do not restrict by status")
	queryCmd.Flags().StringVar(&querySelect, "select", "", "show details for the repeater with this id")
}

// queryFilters is the filter part of the query flags.
type queryFilters struct {
	bands, types, states, statuses []string
	statusSet                      bool // --status was given
	all                            bool
	search                         string
}

// apply edits the session's default filters the way the filter panel does:
// each listed value is toggled on. Explicit statuses or --all first switch
// the default status off.
func (q queryFilters) apply(session *viewer.Session) error {
	bands, err := filter.ParseList(q.bands, relais.ParseBand)
	if err != nil {
		return err
	}
	types, err := filter.ParseList(q.types, relais.ParseType)
	if err != nil {
		return err
	}
	states, err := filter.ParseList(q.states, relais.ParseState)
	if err != nil {
		return err
	}
	var statuses []relais.Status
	if q.statusSet && !q.all {
		if statuses, err = filter.ParseList(q.statuses, relais.ParseStatus); err != nil {
			return err
		}
	}

	session.UpdateFilters(func(spec filter.Spec) filter.Spec {
		if q.all || q.statusSet {
			for _, st := range slices.Clone(spec.Statuses) {
				spec = spec.ToggleStatus(st)
			}
		}
		for _, b := range bands {
			spec = spec.ToggleBand(b)
		}
		for _, t := range types {
			spec = spec.ToggleType(t)
		}
		for _, st := range states {
			spec = spec.ToggleState(st)
		}
		for _, st := range statuses {
			spec = spec.ToggleStatus(st)
		}
		return spec.WithQuery(q.search)
	})
	return nil
}

func runQuery(cmd *cobra.Command, args []string) error {
	session := viewer.NewSession()
	filters := queryFilters{
		bands:     queryBands,
		types:     queryTypes,
		states:    queryStates,
		statuses:  queryStatuses,
		statusSet: cmd.Flags().Changed("status"),
		all:       queryAll,
		search:    querySearch,
	}
	if err := filters.apply(session); err != nil {
		return err
	}

	data := loader.New(loader.Config{
		URL:       cfg.GetDataURL(),
		Timeout:   cfg.GetDataTimeout(),
		UserAgent: cfg.GetDataUserAgent(),
	}, logger.Get())

	if err := data.Load(cmd.Context()); err != nil {
		return err
	}

	session.SetDataset(data.State().Dataset)

	out := cmd.OutOrStdout()
	printTable(out, session.Visible())
	printSummary(out, session, time.Now())

	if querySelect != "" {
		if err := session.Select(querySelect); err != nil {
			return fmt.Errorf("%s: %w", querySelect, err)
		}
		printSelection(out, session)
	}
	return nil
}

func printTable(out io.Writer, records []relais.Relais) {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CALLSIGN\tTYPE\tBAND\tFREQUENCY\tSHIFT\tSITE\tSTATE\tSTATUS")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.Callsign, r.Type, r.Band,
			format.Frequency(r.TxFrequency), format.Shift(r.Shift),
			r.Site, r.State, r.Status)
	}
	tw.Flush()
}

func printSummary(out io.Writer, session *viewer.Session, now time.Time) {
	total, visible := session.Counts()
	ds := session.Dataset()

	age := "unknown"
	if updated, err := ds.Updated(); err == nil {
		age = format.Age(updated, now)
	}

	scope := ""
	if session.Filters().IsUnrestricted() {
		scope = " (unfiltered)"
	}

	fmt.Fprintf(out, "\n%d of %d repeaters%s, dataset %s updated %s, next update %s\n",
		visible, total, scope, ds.Version, age,
		loader.NextScheduledUpdate(now).Format("02.01.2006 15:04 MST"))
}

func printSelection(out io.Writer, session *viewer.Session) {
	r, ok := session.Selected()
	if !ok {
		return
	}

	fmt.Fprintf(out, "\n%s\n", r)
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "  Type\t%s (%s)\n", r.Type, r.Type.Description())
	fmt.Fprintf(tw, "  Band\t%s (%s)\n", r.Band, r.Band.Description())
	fmt.Fprintf(tw, "  TX / RX\t%s / %s\n", format.Frequency(r.TxFrequency), format.Frequency(r.RxFrequency))
	fmt.Fprintf(tw, "  Shift\t%s\n", format.Shift(r.Shift))
	fmt.Fprintf(tw, "  CTCSS\t%s\n", format.CTCSS(r.CTCSS))
	fmt.Fprintf(tw, "  Position\t%s\n", format.Coordinates(r.Coordinates))
	fmt.Fprintf(tw, "  Altitude\t%s\n", format.Altitude(r.Altitude))
	if r.Operator != "" {
		fmt.Fprintf(tw, "  Operator\t%s\n", r.Operator)
	}
	if r.Remark != "" {
		fmt.Fprintf(tw, "  Remark\t%s\n", r.Remark)
	}
	fmt.Fprintf(tw, "  Updated\t%s\n", format.Date(r.LastUpdate))
	tw.Flush()

	if !session.SelectionVisible() {
		fmt.Fprintln(out, "  (hidden by the current filters)")
	}

	if !viewer.InBounds(r.Coordinates) {
		fmt.Fprintln(out, "  (outside the map area)")
	}
}
