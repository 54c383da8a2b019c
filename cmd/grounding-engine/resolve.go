// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/grounding-engine/pkg/types"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve [urls...]",
	Short: "Resolve redirect links to their destinations",
	Long: `Resolve undoes provider and search-engine indirection for each URL and
prints the canonical destination with its derived domain and display name.
URLs that stay on a redirect host are marked unresolved.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runResolve,
}

func init() {
	resolveCmd.Flags().Bool("json", false, "output results as JSON")

	rootCmd.AddCommand(resolveCmd)
}

type resolvedURL struct {
	Raw         string `json:"raw"`
	Resolved    string `json:"resolved"`
	Domain      string `json:"domain,omitempty"`
	DisplayName string `json:"display_name"`
	Unresolved  bool   `json:"unresolved"`
}

func runResolve(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	e, err := newEngine(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer e.Close()

	results := make([]resolvedURL, 0, len(args))
	for _, raw := range args {
		resolved := e.resolver.Resolve(ctx, raw)
		domain := e.normalizer.DeriveDomain(types.RawSource{URL: raw}, resolved)
		results = append(results, resolvedURL{
			Raw:         raw,
			Resolved:    resolved,
			Domain:      domain,
			DisplayName: e.normalizer.DisplayName(domain),
			Unresolved:  e.resolver.Unresolved(resolved),
		})
	}

	out := cmd.OutOrStdout()
	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	for _, r := range results {
		mark := ""
		if r.Unresolved {
			mark = "  (unresolved)"
		}
		fmt.Fprintf(out, "%s\n  -> %s [%s]%s\n", r.Raw, r.Resolved, r.DisplayName, mark)
	}
	return nil
}
