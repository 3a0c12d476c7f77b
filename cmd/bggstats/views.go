package main

import (
	"github.com/Sternrassler/bgg-stats/pkg/stats"
	"github.com/spf13/cobra"
)

const (
	facetCategories = stats.FacetCategories
	facetMechanics  = stats.FacetMechanics
)

func newAggregateCmd(opts *options, name, short string, facet stats.Facet) *cobra.Command {
	return &cobra.Command{
		Use:   name + " USERNAME",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd.Context(), func(a *app) error {
				result, err := a.aggregator.Fetch(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				report := stats.NewAggregateReport(result, facet, opts.topN())
				if opts.jsonOut {
					return writeJSON(cmd.OutOrStdout(), report)
				}
				return writeAggregateReport(cmd.OutOrStdout(), report, opts.members)
			})
		},
	}
}

func newYearsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "years USERNAME",
		Short: "Games per release year, gap-filled",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd.Context(), func(a *app) error {
				result, err := a.aggregator.Fetch(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				report, err := stats.NewYearReport(result)
				if err != nil {
					return err
				}
				if opts.jsonOut {
					return writeJSON(cmd.OutOrStdout(), report)
				}
				return writeYearReport(cmd.OutOrStdout(), report, opts.members)
			})
		},
	}
}

func newRadarCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "radar USERNAME",
		Short: "Top mechanics as a share of the collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd.Context(), func(a *app) error {
				result, err := a.aggregator.Fetch(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				comparison := stats.CompareTopMechanics([]*stats.FetchResult{result}, opts.topN())
				if opts.jsonOut {
					return writeJSON(cmd.OutOrStdout(), comparison)
				}
				return writeComparison(cmd.OutOrStdout(), comparison)
			})
		},
	}
}

func newVersusCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "versus USERNAME1 USERNAME2",
		Short: "Compare the top mechanics of two collections",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd.Context(), func(a *app) error {
				comparison, err := a.aggregator.Compare(cmd.Context(), opts.topN(), args[0], args[1])
				if err != nil {
					return err
				}
				if opts.jsonOut {
					return writeJSON(cmd.OutOrStdout(), comparison)
				}
				return writeComparison(cmd.OutOrStdout(), comparison)
			})
		},
	}
}
