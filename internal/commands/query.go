package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/diogo/routerchat/internal/chat"
	"github.com/diogo/routerchat/internal/config"
	apierrors "github.com/diogo/routerchat/internal/errors"
	"github.com/diogo/routerchat/internal/models"
	"github.com/diogo/routerchat/internal/render"
)

// Gradient colors for animation
var gradientColors = []lipgloss.Color{
	lipgloss.Color("#ff6b6b"), // Red
	lipgloss.Color("#feca57"), // Yellow
	lipgloss.Color("#48dbfb"), // Cyan
	lipgloss.Color("#ff9ff3"), // Pink
	lipgloss.Color("#54a0ff"), // Blue
	lipgloss.Color("#5f27cd"), // Purple
	lipgloss.Color("#00d2d3"), // Teal
	lipgloss.Color("#1dd1a1"), // Green
}

// copyToClipboard is replaced in tests
var copyToClipboard = clipboard.WriteAll

// spinner handles the animated loading indicator
type spinner struct {
	out     io.Writer
	theme   render.TUITheme
	message string
	stop    chan struct{}
	done    chan struct{}
	mu      sync.Mutex
	frame   int
	stopped bool
}

// newSpinner creates a new animated spinner writing to out
func newSpinner(out io.Writer, message string) *spinner {
	return &spinner{
		out:     out,
		theme:   render.GetTUITheme(),
		message: message,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// start begins the animation
func (s *spinner) start() {
	go func() {
		defer close(s.done)

		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		// Hide cursor
		fmt.Fprint(s.out, "\033[?25l")

		for {
			select {
			case <-s.stop:
				// Clear line and show cursor
				fmt.Fprint(s.out, "\r\033[K\033[?25h")
				return
			case <-ticker.C:
				s.mu.Lock()
				s.render()
				s.frame++
				s.mu.Unlock()
			}
		}
	}()
}

// render draws the current animation frame
func (s *spinner) render() {
	chars := []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}
	barChars := []string{"█", "█", "█", "█", "█", "█", "▓", "▒", "░"}

	spinColor := gradientColors[s.frame%len(gradientColors)]
	spinnerChar := lipgloss.NewStyle().Foreground(spinColor).Bold(true).Render(chars[s.frame%len(chars)])

	barWidth := 16
	var bar strings.Builder
	for i := 0; i < barWidth; i++ {
		colorIdx := (i + s.frame) % len(gradientColors)
		charIdx := (i + s.frame/2) % len(barChars)
		bar.WriteString(lipgloss.NewStyle().Foreground(gradientColors[colorIdx]).Render(barChars[charIdx]))
	}

	var dots strings.Builder
	numDots := (s.frame / 3) % 4
	for i := 0; i < 3; i++ {
		if i < numDots {
			dotColor := gradientColors[(s.frame+i)%len(gradientColors)]
			dots.WriteString(lipgloss.NewStyle().Foreground(dotColor).Render("●"))
		} else {
			dots.WriteString(lipgloss.NewStyle().Foreground(s.theme.TextMute).Render("○"))
		}
	}

	msg := lipgloss.NewStyle().Foreground(s.theme.Text).Render(s.message)

	fmt.Fprintf(s.out, "\r\033[K%s %s %s %s", spinnerChar, bar.String(), msg, dots.String())
}

// stopOnce safely closes the stop channel only once
func (s *spinner) stopOnce() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.stopped {
		close(s.stop)
		s.stopped = true
	}
}

// stopWithSuccess stops the spinner and shows success message
func (s *spinner) stopWithSuccess(message string) {
	s.stopOnce()
	<-s.done

	success := lipgloss.NewStyle().Foreground(s.theme.Secondary)
	fmt.Fprintf(s.out, "%s %s\n", success.Bold(true).Render("✓"), success.Render(message))
}

// stopWithError stops the spinner without a message
func (s *spinner) stopWithError() {
	s.stopOnce()
	<-s.done
}

// runQuery sends prompt as a single-turn conversation and prints the reply.
// If rawOutput is true, only the reply text is printed without decoration.
func runQuery(deps *Dependencies, prompt string, rawOutput bool) error {
	if strings.TrimSpace(prompt) == "" {
		return fmt.Errorf("prompt cannot be empty")
	}

	cfg := loadConfig()
	modelName := getModel(cfg)
	render.SetTUITheme(cfg.TUITheme)

	logger, err := newLogger(isVerbose(cfg), "")
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	apiKey := config.ResolveAPIKey(apiKeyFlag)
	if apiKey == "" && !rawOutput && deps.ReadAPIKey != nil {
		key, err := deps.ReadAPIKey()
		if err != nil {
			logger.Debug("api key prompt skipped", zap.Error(err))
		} else {
			apiKey = key
		}
	}

	completer, closeFn, err := deps.NewCompleter(cfg, modelName, logger)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}
	if closeFn != nil {
		defer closeFn()
	}

	var reply string
	session := chat.NewSession(completer,
		chat.WithCredential(apiKey),
		chat.WithLogger(logger),
		chat.WithRenderer(chat.RendererFunc(func(history []models.Message) {
			if n := len(history); n > 0 {
				reply = history[n-1].Content
			}
		})),
	)

	var spin *spinner
	if !rawOutput {
		spin = newSpinner(deps.Stderr, "Waiting for "+modelName)
		spin.start()
	}

	startTime := time.Now()
	session.Submit(prompt)
	logger.Info("query finished",
		zap.String("model", modelName),
		zap.Duration("took", time.Since(startTime).Round(time.Millisecond)))

	if failure := session.LastError(); failure != nil || !session.HasCredential() {
		if rawOutput {
			fmt.Fprintln(deps.Stderr, reply)
			return errReported
		}
		spin.stopWithError()
		if failure != nil {
			fmt.Fprintln(deps.Stderr, formatErrorMessage(failure, "Request failed"))
		} else {
			warn := lipgloss.NewStyle().Foreground(render.GetTUITheme().Warning)
			fmt.Fprintln(deps.Stderr, warn.Render("⚠ "+reply))
			fmt.Fprintln(deps.Stderr, warn.Render(fmt.Sprintf("  Hint: pass --api-key or set %s", config.APIKeyEnvVar)))
		}
		return errReported
	}

	if rawOutput {
		if outputFlag != "" {
			return writeOutputFile(outputFlag, reply)
		}
		fmt.Fprint(deps.Stdout, reply)
		return nil
	}

	spin.stopWithSuccess("Done")
	fmt.Fprintln(deps.Stderr)

	theme := render.GetTUITheme()
	successStyle := lipgloss.NewStyle().Foreground(theme.Secondary)

	if cfg.CopyToClipboard {
		if err := copyToClipboard(reply); err != nil {
			warnMsg := lipgloss.NewStyle().Foreground(theme.Error).Render(
				fmt.Sprintf("⚠ Failed to copy to clipboard: %v", err),
			)
			fmt.Fprintln(deps.Stderr, warnMsg)
		} else {
			fmt.Fprintln(deps.Stderr, successStyle.Render("✓ Copied to clipboard"))
		}
	}

	if outputFlag != "" {
		if err := writeOutputFile(outputFlag, reply); err != nil {
			return err
		}
		fmt.Fprintln(deps.Stderr, successStyle.Render(fmt.Sprintf("✓ Response saved to %s", outputFlag)))
		return nil
	}

	bubbleWidth := getTerminalWidth() - 4
	if bubbleWidth < 40 {
		bubbleWidth = 40
	}
	if bubbleWidth > 120 {
		bubbleWidth = 120
	}

	labelStyle := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true)
	bubbleStyle := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.Primary).
		Foreground(theme.Text).
		Padding(0, 1).
		MarginTop(1).
		MarginBottom(1)

	renderOpts := render.OptionsFromConfig(cfg).WithWidth(bubbleWidth - 4)

	fmt.Fprintln(deps.Stdout, labelStyle.Render("✦ "+modelName))
	fmt.Fprintln(deps.Stdout, bubbleStyle.Width(bubbleWidth).Render(render.Reply(reply, renderOpts)))

	return nil
}

func writeOutputFile(path, text string) error {
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

// promptForAPIKey reads a key from the terminal without echoing it
func promptForAPIKey() (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("stdin is not a terminal")
	}

	fmt.Fprint(os.Stderr, "OpenRouter API key: ")
	key, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read API key: %w", err)
	}
	return strings.TrimSpace(string(key)), nil
}

// getTerminalWidth returns the terminal width or a default value
func getTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}

// formatErrorMessage formats an error with additional context from structured errors
func formatErrorMessage(err error, context string) string {
	if err == nil {
		return ""
	}

	theme := render.GetTUITheme()
	errorStyle := lipgloss.NewStyle().Foreground(theme.Error)
	dimStyle := lipgloss.NewStyle().Foreground(theme.TextDim)

	var sb strings.Builder
	sb.WriteString(errorStyle.Render(fmt.Sprintf("✗ %s: %v", context, err)))

	if status := apierrors.GetHTTPStatus(err); status > 0 {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("\n  HTTP Status: %d", status)))
	}

	if endpoint := apierrors.GetEndpoint(err); endpoint != "" {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("\n  Endpoint: %s", endpoint)))
	}

	// A kept response body replaces the hint
	if body := apierrors.GetResponseBody(err); body != "" {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("\n\n  %s", strings.ReplaceAll(body, "\n", "\n  "))))
		return sb.String()
	}

	switch {
	case apierrors.IsAuthError(err):
		sb.WriteString(dimStyle.Render(fmt.Sprintf("\n  Hint: Check the key passed with --api-key or %s", config.APIKeyEnvVar)))
	case apierrors.IsRateLimitError(err):
		sb.WriteString(dimStyle.Render("\n  Hint: Rate limit reached. Try again later or use a different model"))
	case apierrors.IsTimeoutError(err):
		sb.WriteString(dimStyle.Render("\n  Hint: Request timed out. Raise timeout_seconds or try again"))
	case apierrors.IsNetworkError(err):
		sb.WriteString(dimStyle.Render("\n  Hint: Check your internet connection and try again"))
	case apierrors.IsParseError(err):
		sb.WriteString(dimStyle.Render("\n  Hint: The service returned an unexpected response"))
	}

	return sb.String()
}
