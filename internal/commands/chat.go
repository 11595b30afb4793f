package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/diogo/routerchat/internal/config"
	"github.com/diogo/routerchat/internal/render"
	"github.com/diogo/routerchat/internal/tui"
)

func newChatCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat session",
		Long: `Start an interactive chat session with an OpenRouter model.

Every message is sent on its own; earlier turns stay on screen but are not
sent back to the model. Type /key to enter a different API key.
Type 'exit', 'quit', or press Ctrl+C to end the session.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(deps)
		},
	}
}

func runChat(deps *Dependencies) error {
	cfg := loadConfig()
	modelName := getModel(cfg)

	if render.SetTUITheme(cfg.TUITheme) {
		tui.UpdateTheme()
	}

	// The TUI owns the terminal, so diagnostics go to a file
	logPath := ""
	if isVerbose(cfg) {
		if _, err := config.EnsureConfigDir(); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
		path, err := config.GetLogPath()
		if err != nil {
			return fmt.Errorf("failed to resolve log path: %w", err)
		}
		logPath = path
	}

	logger, err := newLogger(isVerbose(cfg), logPath)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	completer, closeFn, err := deps.NewCompleter(cfg, modelName, logger)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}
	if closeFn != nil {
		defer closeFn()
	}

	logger.Info("chat started", zap.String("model", modelName))

	return deps.RunChat(completer, tui.ChatOptions{
		ModelName: modelName,
		APIKey:    config.ResolveAPIKey(apiKeyFlag),
		Render:    render.OptionsFromConfig(cfg),
		Logger:    logger,
	})
}
