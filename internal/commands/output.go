package commands

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/diogo/helper/internal/chat"
	"github.com/diogo/helper/internal/config"
	apierrors "github.com/diogo/helper/internal/errors"
	"github.com/diogo/helper/internal/render"
)

const (
	minReplyWidth = 40
	maxReplyWidth = 120
)

// Spinner frame colors
var spinnerColors = []lipgloss.Color{
	lipgloss.Color("#48dbfb"),
	lipgloss.Color("#54a0ff"),
	lipgloss.Color("#5f27cd"),
	lipgloss.Color("#00d2d3"),
}

var (
	colorText    = lipgloss.Color("#c0caf5")
	colorTextDim = lipgloss.Color("#565f89")
	colorSuccess = lipgloss.Color("#9ece6a")
	colorWarning = lipgloss.Color("#e0af68")
	colorError   = lipgloss.Color("#f7768e")
)

var spinnerFrames = []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}

// spinner draws a waiting indicator on stderr while the model is queried
type spinner struct {
	out     io.Writer
	message string
	stopCh  chan struct{}
	done    chan struct{}

	mu      sync.Mutex
	started bool
	stopped bool
}

func newSpinner(out io.Writer, message string) *spinner {
	return &spinner{
		out:     out,
		message: message,
		stopCh:  make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// start begins the animation; later calls and calls after stop are no-ops
func (s *spinner) start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started || s.stopped {
		return
	}
	s.started = true

	go func() {
		defer close(s.done)

		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		msg := lipgloss.NewStyle().Foreground(colorText).Render(s.message)
		fmt.Fprint(s.out, "\033[?25l")
		for frame := 0; ; frame++ {
			select {
			case <-s.stopCh:
				fmt.Fprint(s.out, "\r\033[K\033[?25h")
				return
			case <-ticker.C:
				char := lipgloss.NewStyle().
					Foreground(spinnerColors[frame%len(spinnerColors)]).
					Bold(true).
					Render(spinnerFrames[frame%len(spinnerFrames)])
				fmt.Fprintf(s.out, "\r\033[K%s %s", char, msg)
			}
		}
	}()
}

// stop clears the indicator. It is safe to call more than once and on a
// spinner that never started.
func (s *spinner) stop() {
	s.mu.Lock()
	started := s.started
	if !s.stopped {
		close(s.stopCh)
		s.stopped = true
	}
	s.mu.Unlock()
	if started {
		<-s.done
	}
}

// success stops the spinner and leaves a check-marked line in its place
func (s *spinner) success(message string) {
	s.stop()
	check := lipgloss.NewStyle().Foreground(colorSuccess).Bold(true).Render("✓")
	fmt.Fprintf(s.out, "%s %s\n", check, lipgloss.NewStyle().Foreground(colorSuccess).Render(message))
}

// writeReply prints or saves the reply of a finished run. The spinner is
// stopped before anything is written.
func writeReply(deps *Dependencies, settings config.Settings, res *chat.Result, spin *spinner) error {
	text := res.Reply.Content
	if res.Reply.FunctionCall != nil && text == "" {
		text = fmt.Sprintf("function call: %s(%s)", res.Reply.FunctionCall.Name, res.Reply.FunctionCall.Arguments)
	}

	switch {
	case settings.OutputPath != "":
		if err := os.WriteFile(settings.OutputPath, []byte(text), 0o644); err != nil {
			spin.stop()
			return apierrors.NewIOError("write reply", settings.OutputPath, err)
		}
		if settings.Raw {
			spin.stop()
		} else {
			spin.success("Reply written to " + settings.OutputPath)
		}
	case settings.Raw || !deps.IsTTY():
		spin.stop()
		fmt.Fprint(deps.Stdout, text)
		if !strings.HasSuffix(text, "\n") {
			fmt.Fprintln(deps.Stdout)
		}
	default:
		spin.stop()
		width := clampWidth(deps.TerminalWidth())
		opts := render.FromConfig(settings.Markdown).WithWidth(width)
		fmt.Fprintln(deps.Stdout, render.Reply(settings.Model, text, replyFooter(res), opts))
	}

	if settings.CopyToClipboard && deps.CopyToClipboard != nil {
		if err := deps.CopyToClipboard(text); err != nil {
			warn := lipgloss.NewStyle().Foreground(colorWarning)
			fmt.Fprintln(deps.Stderr, warn.Render(fmt.Sprintf("Warning: failed to copy to clipboard: %v", err)))
		}
	}

	return nil
}

// replyFooter summarizes the conversation and token usage
func replyFooter(res *chat.Result) string {
	parts := []string{fmt.Sprintf("conversation %d", res.ConversationID)}
	if res.Created {
		parts[0] += " (new)"
	}
	if res.Completion != nil && res.Completion.Usage.TotalTokens > 0 {
		parts = append(parts, fmt.Sprintf("%d tokens", res.Completion.Usage.TotalTokens))
	}
	return strings.Join(parts, " · ")
}

func clampWidth(width int) int {
	if width < minReplyWidth {
		return minReplyWidth
	}
	if width > maxReplyWidth {
		return maxReplyWidth
	}
	return width
}

// getTerminalWidth returns the terminal width or a default value
func getTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80 // default width
	}
	return width
}

// isStdoutTTY returns true if stdout is connected to a terminal
func isStdoutTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// formatErrorMessage formats an error with additional context from structured errors
func formatErrorMessage(err error, context string) string {
	if err == nil {
		return ""
	}

	errorStyle := lipgloss.NewStyle().Foreground(colorError)
	dimStyle := lipgloss.NewStyle().Foreground(colorTextDim)

	var sb strings.Builder
	sb.WriteString(errorStyle.Render(fmt.Sprintf("✗ %s: %v", context, err)))

	if status := apierrors.GetHTTPStatus(err); status > 0 {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("\n  HTTP Status: %d", status)))
	}

	if endpoint := apierrors.GetEndpoint(err); endpoint != "" {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("\n  Endpoint: %s", endpoint)))
	}

	// Show response body if available
	if body := apierrors.GetResponseBody(err); body != "" {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("\n\n  %s", strings.ReplaceAll(body, "\n", "\n  "))))
		return sb.String()
	}

	// Provide helpful hints based on error type only if no body
	switch {
	case apierrors.IsAuthError(err):
		sb.WriteString(dimStyle.Render("\n  Hint: Set " + config.EnvAPIKey + " to a valid API key"))
	case apierrors.IsRateLimitError(err):
		sb.WriteString(dimStyle.Render("\n  Hint: Rate limit reached. Try again later or use a different model"))
	case apierrors.IsNetworkError(err):
		sb.WriteString(dimStyle.Render("\n  Hint: Check your connection and the API base URL"))
	case apierrors.KindOf(err) == apierrors.KindConflict:
		sb.WriteString(dimStyle.Render("\n  Hint: Another helper run saved the history first. Send the message again"))
	case apierrors.KindOf(err) == apierrors.KindLookup:
		sb.WriteString(dimStyle.Render("\n  Hint: Run 'helper history list' to see conversation ids"))
	}

	return sb.String()
}
