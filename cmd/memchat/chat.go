package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/crystallen/memchat/pkg/core"
)

func chatCmd(root *rootOptions) *cobra.Command {
	var (
		userID      string
		turnContext string
		categories  []string
		maxMemories int
		threshold   float64
		jsonOutput  bool
	)
	cmd := &cobra.Command{
		Use:   "chat [message...]",
		Short: "Run one chat turn",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := root.client(cmd)
			if err != nil {
				return err
			}
			defer client.Close()

			var opts []core.ChatOption
			if turnContext != "" {
				opts = append(opts, core.WithContext(turnContext))
			}
			if len(categories) > 0 {
				opts = append(opts, core.WithCategories(categories...))
			}
			if cmd.Flags().Changed("max-memories") {
				opts = append(opts, core.WithMaxMemories(maxMemories))
			}
			if cmd.Flags().Changed("threshold") {
				opts = append(opts, core.WithSimilarityThreshold(threshold))
			}

			result, err := client.Chat(cmd.Context(), userID, strings.Join(args, " "), opts...)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				data, _ := json.MarshalIndent(result, "", "  ")
				fmt.Fprintln(out, string(data))
				return nil
			}
			fmt.Fprintln(out, result.AIResponse)
			if len(result.RelatedMemories) > 0 {
				fmt.Fprintf(out, "\n(%d related memories", len(result.RelatedMemories))
				if result.NewMemoryID != "" {
					fmt.Fprintf(out, ", stored %s", result.NewMemoryID)
				}
				fmt.Fprintln(out, ")")
			} else if result.NewMemoryID != "" {
				fmt.Fprintf(out, "\n(stored %s)\n", result.NewMemoryID)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&userID, "user", "u", "default", "user ID")
	cmd.Flags().StringVarP(&turnContext, "context", "c", "", "extra context for this turn")
	cmd.Flags().StringSliceVar(&categories, "category", nil, "memory categories to search (repeatable)")
	cmd.Flags().IntVarP(&maxMemories, "max-memories", "n", core.DefaultMaxMemories, "number of memories to recall")
	cmd.Flags().Float64Var(&threshold, "threshold", core.DefaultSimilarityThreshold, "minimum similarity of recalled memories")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output the full result as JSON")
	return cmd
}
