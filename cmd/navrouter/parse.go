package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/vango-dev/navrouter/pkg/location"
)

func parseCmd() *cobra.Command {
	var (
		origin     string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "parse <url>",
		Short: "Decompose a URL into path, query and hash",
		Long: `Decompose a URL the way the location store does: absolute URLs are
reduced to their path, the trailing slash is dropped, and the query is
decoded with later duplicates winning.

Examples:
  navrouter parse '/search/?q=go+lang&page=2#results'
  navrouter parse https://example.com/about --origin https://example.com`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return missingArg("url", "navrouter parse '/search?q=go'")
			}
			loc := location.Parse(args[0], origin)
			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), struct {
					URL   string            `json:"url"`
					Path  string            `json:"path"`
					Query map[string]string `json:"query"`
					Hash  string            `json:"hash,omitempty"`
				}{loc.URL, loc.Path, loc.Query, loc.Hash})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "  Path:   %s\n", loc.Path)
			for _, k := range sortedKeys(loc.Query) {
				fmt.Fprintf(out, "  Query:  %s = %q\n", k, loc.Query[k])
			}
			if loc.Hash != "" {
				fmt.Fprintf(out, "  Hash:   %s\n", loc.Hash)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&origin, "origin", "", "Origin to resolve the URL against")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the result as JSON")

	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
