// Command chattester performs a single dispatch against the configured
// backend and prints the reply.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zhouzirui/z-chat/internal/cli"
	"github.com/zhouzirui/z-chat/internal/config"
	"github.com/zhouzirui/z-chat/internal/service/dispatch"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		flags cli.DispatchFlags
		text  string
	)

	cmd := &cobra.Command{
		Use:           "chattester",
		Short:         "Send one message to the chat backend and print the reply",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()

			cfg, err := config.Load()
			if err != nil {
				return errors.Wrap(err, "load configuration")
			}

			dispatchCfg, err := flags.Apply(cfg.Dispatch)
			if err != nil {
				return err
			}

			logger, err := cfg.Log.NewLogger()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			return run(cmd.Context(), dispatchCfg, text, cmd.OutOrStdout(), logger)
		},
	}

	flags.Register(cmd)
	cmd.Flags().StringVar(&text, "text", "", "message to send")
	_ = cmd.MarkFlagRequired("text")
	return cmd
}

func run(ctx context.Context, cfg config.DispatchConfig, text string, out io.Writer, logger *zap.Logger) error {
	if strings.TrimSpace(text) == "" {
		return errors.New("--text must not be blank")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	backend, err := dispatch.NewBackend(cfg)
	if err != nil {
		return err
	}

	reply := dispatch.New(backend, logger).Dispatch(ctx, text)
	_, err = fmt.Fprintln(out, reply.Text)
	return err
}
