package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zhouzirui/z-chat/internal/cli"
	"github.com/zhouzirui/z-chat/internal/config"
	"github.com/zhouzirui/z-chat/internal/model/persona"
	"github.com/zhouzirui/z-chat/internal/service/conversation"
	"github.com/zhouzirui/z-chat/internal/service/dispatch"
	"github.com/zhouzirui/z-chat/internal/tui"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		flags   cli.DispatchFlags
		logFile string
	)

	cmd := &cobra.Command{
		Use:           "tui",
		Short:         "Chat with the configured backend in the terminal",
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

			logger, err := cfg.Log.NewFileLogger(logFile)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			return run(cmd.Context(), dispatchCfg, logger)
		},
	}

	flags.Register(cmd)
	cmd.Flags().StringVar(&logFile, "log-file", "", "write logs to this file (discarded when empty)")
	return cmd
}

func run(ctx context.Context, cfg config.DispatchConfig, logger *zap.Logger) error {
	if ctx == nil {
		ctx = context.Background()
	}

	p, ok := persona.Resolve(persona.NewMemoryStore(persona.Seed()), cfg.PersonaID)
	if !ok {
		return errors.Errorf("unknown persona %q", cfg.PersonaID)
	}

	backend, err := dispatch.NewBackend(cfg)
	if err != nil {
		return err
	}
	logger.Info("starting terminal chat", zap.String("backend", backend.Name()), zap.String("personaId", p.ID))

	ctrl := conversation.NewController(conversation.NewStore(), dispatch.New(backend, logger), logger)

	program := tea.NewProgram(tui.New(ctx, ctrl, p), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return errors.Wrap(err, "run terminal ui")
	}
	return nil
}
