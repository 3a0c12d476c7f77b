package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/Sternrassler/bgg-stats/pkg/stats"
	json "github.com/goccy/go-json"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeAggregateReport(w io.Writer, r stats.AggregateReport, members bool) error {
	fmt.Fprintf(w, "%s: %d games, top %d %s\n\n", r.Username, r.TotalItems, len(r.Top), r.Facet)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "COUNT\tNAME")
	for _, e := range r.Top {
		fmt.Fprintf(tw, "%d\t%s\n", e.Count, e.Key)
		if members {
			fmt.Fprintf(tw, "\t  %s\n", strings.Join(e.Members, ", "))
		}
	}
	return tw.Flush()
}

func writeYearReport(w io.Writer, r stats.YearReport, members bool) error {
	fmt.Fprintf(w, "%s: %d games by release year\n\n", r.Username, r.TotalItems)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "YEAR\tCOUNT\t")
	for _, p := range r.Series {
		fmt.Fprintf(tw, "%d\t%d\t%s\n", p.Year, p.Count, strings.Repeat("#", p.Count))
		if members && len(p.Members) > 0 {
			fmt.Fprintf(tw, "\t\t  %s\n", strings.Join(p.Members, ", "))
		}
	}
	return tw.Flush()
}

func writeComparison(w io.Writer, c stats.Comparison) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)

	header := []string{"MECHANIC"}
	for _, d := range c.Datasets {
		header = append(header, d.Username)
	}
	fmt.Fprintln(tw, strings.Join(header, "\t")+"\t")

	for i, label := range c.Labels {
		row := []string{label}
		for _, d := range c.Datasets {
			row = append(row, fmt.Sprintf("%.1f%%", d.Values[i]))
		}
		fmt.Fprintln(tw, strings.Join(row, "\t")+"\t")
	}
	return tw.Flush()
}
