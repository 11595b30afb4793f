package commands

import (
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/diogo/routerchat/internal/api"
	"github.com/diogo/routerchat/internal/chat"
	"github.com/diogo/routerchat/internal/config"
	"github.com/diogo/routerchat/internal/tui"
)

// CompleterFactory builds the completion source for a run
type CompleterFactory func(cfg config.Config, model string, logger *zap.Logger) (chat.Completer, func(), error)

// Dependencies holds the external dependencies for the commands.
// This allows for dependency injection and easier testing.
type Dependencies struct {
	// NewCompleter builds the completion source
	NewCompleter CompleterFactory

	// RunChat starts the interactive chat
	RunChat func(completer chat.Completer, opts tui.ChatOptions) error

	// ReadAPIKey asks the user for a key when none is configured; nil disables prompting
	ReadAPIKey func() (string, error)

	Stdout io.Writer
	Stderr io.Writer
}

// newAPICompleter builds an OpenRouter client from the configuration
func newAPICompleter(cfg config.Config, model string, logger *zap.Logger) (chat.Completer, func(), error) {
	client, err := api.NewClient(
		api.WithModel(model),
		api.WithEndpoint(cfg.Endpoint),
		api.WithTimeout(cfg.Timeout()),
		api.WithLogger(logger),
	)
	if err != nil {
		return nil, nil, err
	}
	return client, client.Close, nil
}

// NewDependencies creates a new Dependencies struct with default implementations.
func NewDependencies() *Dependencies {
	return &Dependencies{
		NewCompleter: newAPICompleter,
		RunChat:      tui.RunChat,
		ReadAPIKey:   promptForAPIKey,
		Stdout:       os.Stdout,
		Stderr:       os.Stderr,
	}
}
