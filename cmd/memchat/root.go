package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/crystallen/memchat/pkg/core"
)

// chatClient is the part of core.Client the commands use.
type chatClient interface {
	Chat(ctx context.Context, userID, input string, opts ...core.ChatOption) (*core.ChatResult, error)
	AddMemory(ctx context.Context, userID, content string) (string, error)
	GetMemory(ctx context.Context, id string) (*core.MemoryRecord, error)
	DeleteMemory(ctx context.Context, id string) error
	ListMemories(ctx context.Context, userID string, limit int) ([]core.MemoryRecord, error)
	Close() error
}

// clientFactory builds a client from the --config path ("" reads the environment).
type clientFactory func(configPath string, logger *slog.Logger) (chatClient, error)

type rootOptions struct {
	configPath string
	verbose    bool
	newClient  clientFactory
}

func newRootCmd(factory clientFactory) *cobra.Command {
	opts := &rootOptions{newClient: factory}
	cmd := &cobra.Command{
		Use:          "memchat",
		Short:        "memchat - chat with an LLM that remembers",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (.json, .yaml or .env); defaults to the environment")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	cmd.AddCommand(chatCmd(opts))
	cmd.AddCommand(memoryCmd(opts))
	return cmd
}

// client builds the configured client, logging to the command's stderr.
func (o *rootOptions) client(cmd *cobra.Command) (chatClient, error) {
	return o.newClient(o.configPath, newLogger(cmd.ErrOrStderr(), o.verbose))
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func newCoreClient(configPath string, logger *slog.Logger) (chatClient, error) {
	var (
		cfg *core.Config
		err error
	)
	if configPath == "" {
		cfg, err = core.LoadConfigFromEnv()
	} else {
		cfg, err = core.LoadConfigFromFile(configPath)
	}
	if err != nil {
		return nil, err
	}
	client, err := core.NewClient(cfg, core.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	return client, nil
}
