// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/grounding-engine/internal/cache"
	"github.com/pdiddy/grounding-engine/pkg/types"
)

var errNoDurableTier = errors.New("cache backend is memory: nothing persisted to inspect")

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect the durable resolution cache",
	Long: `Cache reads entries from the configured durable tier (sqlite or redis).
Namespaces: canonical_url (raw URL to canonical URL) and page_meta
(canonical URL to page metadata).`,
}

// --- get subcommand ---

var cacheGetCmd = &cobra.Command{
	Use:   "get <namespace> <key>",
	Short: "Print one cache entry",
	Args:  cobra.ExactArgs(2),
	RunE:  runCacheGet,
}

func runCacheGet(cmd *cobra.Command, args []string) error {
	ns, err := parseNamespace(args[0])
	if err != nil {
		return err
	}

	store, err := openDurable(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	e, found, err := store.Get(cmd.Context(), ns, args[1])
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("no %s entry for %q", ns, args[1])
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(e)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s\n(stored %s)\n", e.Value, e.Timestamp.Format("2006-01-02 15:04:05 MST"))
	return nil
}

// --- stats subcommand ---

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print entry counts per namespace (sqlite backend)",
	Args:  cobra.NoArgs,
	RunE:  runCacheStats,
}

func runCacheStats(cmd *cobra.Command, args []string) error {
	if cfg.Cache.Backend != types.CacheSQLite {
		return fmt.Errorf("stats requires the sqlite backend, have %q", cfg.Cache.Backend)
	}
	store, err := cache.NewSQLiteStore(cfg.Cache.SQLitePath)
	if err != nil {
		return err
	}
	defer store.Close()

	counts, err := store.Count(cmd.Context())
	if err != nil {
		return err
	}
	for _, ns := range cache.Namespaces {
		fmt.Fprintf(cmd.OutOrStdout(), "%-14s %d\n", ns, counts[ns])
	}
	return nil
}

func parseNamespace(s string) (cache.Namespace, error) {
	names := make([]string, 0, len(cache.Namespaces))
	for _, ns := range cache.Namespaces {
		if string(ns) == s {
			return ns, nil
		}
		names = append(names, string(ns))
	}
	return "", fmt.Errorf("unknown namespace %q (want one of %s)", s, strings.Join(names, ", "))
}

func openDurable(cmd *cobra.Command) (cache.Store, error) {
	store, err := cache.OpenStore(cmd.Context(), cfg.Cache, logger)
	if err != nil {
		return nil, err
	}
	if store == nil {
		fmt.Fprintln(os.Stderr, "hint: set cache.backend to sqlite or redis")
		return nil, errNoDurableTier
	}
	return store, nil
}

func init() {
	cacheGetCmd.Flags().Bool("json", false, "output the entry as JSON")

	cacheCmd.AddCommand(cacheGetCmd)
	cacheCmd.AddCommand(cacheStatsCmd)
	rootCmd.AddCommand(cacheCmd)
}
