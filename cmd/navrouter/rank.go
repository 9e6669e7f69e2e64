package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/vango-dev/navrouter/pkg/manifest"
	"github.com/vango-dev/navrouter/pkg/router"
)

func rankCmd(root *rootOptions) *cobra.Command {
	var manifestFile string

	cmd := &cobra.Command{
		Use:   "rank",
		Short: "List routes in selection order",
		Long: `List the routes of the manifest most specific first, with the rank
key that orders them. Routes with equal keys keep declaration order.

Examples:
  navrouter rank
  navrouter rank --manifest routes.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			routes, _, err := routeSource(cmd.Context(), root, manifestFile)
			if err != nil {
				return err
			}
			return printRanks(cmd.OutOrStdout(), routes)
		},
	}

	cmd.Flags().StringVarP(&manifestFile, "manifest", "m", "", "Route manifest file (default from navrouter.json)")

	return cmd
}

func printRanks(w io.Writer, routes *router.Router) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tORDER\tPATTERN\tVIEW")
	for _, e := range routes.Ordered() {
		pattern := e.Pattern
		if e.Default {
			pattern = "(default)"
			if e.Pattern != "" {
				pattern += " " + e.Pattern
			}
		}
		view := ""
		if rt, ok := e.Payload.(manifest.Route); ok {
			view = rt.View
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", router.EntryRank(e), e.Index, pattern, view)
	}
	return tw.Flush()
}
