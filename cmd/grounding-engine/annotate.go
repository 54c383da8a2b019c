// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/grounding-engine/internal/grounding"
)

var annotateCmd = &cobra.Command{
	Use:   "annotate [file]",
	Short: "Annotate a grounded answer with inline citations",
	Long: `Annotate reads an answer document (JSON or YAML) from a file or stdin,
resolves and deduplicates its sources, inserts [n] citation markers at
paragraph ends, and prints the result.

The document holds "text" plus one grounding shape: Gemini
"grounding_metadata", OpenRouter "annotations", or flat "sources" and
"segments".`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnnotate,
}

func init() {
	annotateCmd.Flags().String("input-format", grounding.FormatAuto, "input format: auto, json, yaml")
	annotateCmd.Flags().String("format", "text", "output format: text, json, yaml")
	annotateCmd.Flags().Bool("list-items", false, "also annotate enumerated list lines")
	annotateCmd.Flags().Bool("page-metadata", false, "fetch og: metadata for each source")

	rootCmd.AddCommand(annotateCmd)
}

func runAnnotate(cmd *cobra.Command, args []string) error {
	inputFormat, _ := cmd.Flags().GetString("input-format")
	outputFormat, _ := cmd.Flags().GetString("format")

	var in io.Reader = os.Stdin
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("opening input: %w", err)
		}
		defer f.Close()
		in = f
		if inputFormat == grounding.FormatAuto {
			inputFormat = grounding.FormatForPath(args[0])
		}
	}

	doc, err := grounding.DecodeDocument(in, inputFormat)
	if err != nil {
		return err
	}

	c := cfg
	if cmd.Flags().Changed("list-items") {
		c.Citation.AnnotateListItems, _ = cmd.Flags().GetBool("list-items")
	}
	if cmd.Flags().Changed("page-metadata") {
		c.PageMetadata.Enabled, _ = cmd.Flags().GetBool("page-metadata")
	}

	ctx := cmd.Context()
	e, err := newEngine(ctx, c, logger)
	if err != nil {
		return err
	}
	defer e.Close()

	annotated := e.annotator.Annotate(ctx, grounding.ToAnswer(doc))
	return grounding.EncodeAnnotated(cmd.OutOrStdout(), annotated, outputFormat)
}
