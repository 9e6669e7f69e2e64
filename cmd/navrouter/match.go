package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vango-dev/navrouter/internal/errors"
	"github.com/vango-dev/navrouter/pkg/location"
	"github.com/vango-dev/navrouter/pkg/manifest"
	"github.com/vango-dev/navrouter/pkg/routepath"
	"github.com/vango-dev/navrouter/pkg/router"
)

// routeSource picks the route table for offline commands: an explicit
// manifest file, or the manifest named by the configuration.
func routeSource(ctx context.Context, root *rootOptions, manifestFile string) (*router.Router, string, error) {
	cfg, err := loadConfig(root.config)
	if err != nil {
		return nil, "", err
	}
	if manifestFile != "" {
		m, err := manifest.LoadFile(manifestFile)
		if err != nil {
			return nil, "", err
		}
		routes, err := manifestRouter(m, cfg.Routes.AllowPartial)
		return routes, cfg.Origin, err
	}
	_, routes, err := loadRoutes(ctx, cfg, newStore(cfg))
	return routes, cfg.Origin, err
}

func matchCmd(root *rootOptions) *cobra.Command {
	var (
		manifestFile string
		jsonOutput   bool
	)

	cmd := &cobra.Command{
		Use:   "match <url>",
		Short: "Show the route selected for a URL",
		Long: `Show the route selected for a URL, its parameters and query, and every
other route that also matches.

Examples:
  navrouter match /users/42
  navrouter match '/search?q=go' --manifest routes.json
  navrouter match /docs/a/b --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return missingArg("url", "navrouter match /users/42")
			}
			routes, origin, err := routeSource(cmd.Context(), root, manifestFile)
			if err != nil {
				return err
			}
			target, err := routepath.CanonicalizeAndValidateNavPath(location.Relative(args[0], origin))
			if err != nil {
				return errors.New("P002").WithSubject(args[0]).Wrap(err)
			}

			res := describeMatch(routes, location.Parse(target, origin))
			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			printMatch(cmd.OutOrStdout(), res)
			return nil
		},
	}

	cmd.Flags().StringVarP(&manifestFile, "manifest", "m", "", "Route manifest file (default from navrouter.json)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the result as JSON")

	return cmd
}

func printMatch(w io.Writer, res matchResult) {
	fmt.Fprintf(w, "  URL:    %s\n", res.URL)
	fmt.Fprintf(w, "  Path:   %s\n", res.Path)
	if res.Route == "" && !res.Default {
		fmt.Fprintln(w, "  Route:  (no match)")
		return
	}

	route := res.Route
	if res.Default {
		route = "(default) " + route
	}
	fmt.Fprintf(w, "  Route:  %s  rank %s\n", strings.TrimSpace(route), res.Rank)
	if res.View != "" {
		fmt.Fprintf(w, "  View:   %s\n", res.View)
	}
	for _, k := range sortedKeys(res.Params) {
		fmt.Fprintf(w, "  Param:  %s = %q\n", k, res.Params[k])
	}
	for _, k := range sortedKeys(res.Query) {
		fmt.Fprintf(w, "  Query:  %s = %q\n", k, res.Query[k])
	}
	if res.Hash != "" {
		fmt.Fprintf(w, "  Hash:   %s\n", res.Hash)
	}
	if len(res.Candidates) > 1 {
		fmt.Fprintf(w, "  Also:   %s\n", strings.Join(res.Candidates[1:], ", "))
	}
}
