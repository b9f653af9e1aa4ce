// Package cli holds the flags shared by the command-line front-ends.
package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/zhouzirui/z-chat/internal/config"
)

// DispatchFlags override the environment's backend selection.
type DispatchFlags struct {
	Backend string
	URL     string
	Persona string
}

// Register adds --backend, --url and --persona to cmd.
func (f *DispatchFlags) Register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.Backend, "backend", "", `chat backend, "local" or "gemini" (default from CHAT_BACKEND)`)
	cmd.Flags().StringVar(&f.URL, "url", "", "local /chat endpoint (default from CHAT_BACKEND_URL)")
	cmd.Flags().StringVar(&f.Persona, "persona", "", "persona id (default from CHAT_PERSONA)")
}

// Apply returns cfg with the set flags applied, validated.
func (f DispatchFlags) Apply(cfg config.DispatchConfig) (config.DispatchConfig, error) {
	if b := strings.TrimSpace(f.Backend); b != "" {
		cfg.Backend = strings.ToLower(b)
	}
	if u := strings.TrimSpace(f.URL); u != "" {
		cfg.ChatURL = u
	}
	if p := strings.TrimSpace(f.Persona); p != "" {
		cfg.PersonaID = p
	}
	return cfg, cfg.Validate()
}
