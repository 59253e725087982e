package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func memoryCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "memory",
		Short: "View and manage stored memories",
	}
	cmd.AddCommand(memoryAddCmd(root))
	cmd.AddCommand(memoryGetCmd(root))
	cmd.AddCommand(memoryDeleteCmd(root))
	cmd.AddCommand(memoryListCmd(root))
	return cmd
}

func memoryAddCmd(root *rootOptions) *cobra.Command {
	var userID string
	cmd := &cobra.Command{
		Use:   "add [text...]",
		Short: "Store a memory directly",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := root.client(cmd)
			if err != nil {
				return err
			}
			defer client.Close()

			id, err := client.AddMemory(cmd.Context(), userID, strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Stored memory: %s\n", id)
			return nil
		},
	}
	cmd.Flags().StringVarP(&userID, "user", "u", "default", "user ID")
	return cmd
}

func memoryGetCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get [id]",
		Short: "Show a memory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := root.client(cmd)
			if err != nil {
				return err
			}
			defer client.Close()

			rec, err := client.GetMemory(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			data, _ := json.MarshalIndent(rec, "", "  ")
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}

func memoryDeleteCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a memory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := root.client(cmd)
			if err != nil {
				return err
			}
			defer client.Close()

			if err := client.DeleteMemory(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted memory: %s\n", args[0])
			return nil
		},
	}
}

func memoryListCmd(root *rootOptions) *cobra.Command {
	var (
		userID     string
		limit      int
		jsonOutput bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a user's memories, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := root.client(cmd)
			if err != nil {
				return err
			}
			defer client.Close()

			records, err := client.ListMemories(cmd.Context(), userID, limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				data, _ := json.MarshalIndent(records, "", "  ")
				fmt.Fprintln(out, string(data))
				return nil
			}
			if len(records) == 0 {
				fmt.Fprintln(out, "No memories found.")
				return nil
			}

			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintf(tw, "ID\tTEXT\n")
			for _, r := range records {
				fmt.Fprintf(tw, "%s\t%s\n", r.ID, truncateStr(firstLine(r.Text), 60))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVarP(&userID, "user", "u", "default", "user ID")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum number of memories (0 uses the server default)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	return cmd
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func truncateStr(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
