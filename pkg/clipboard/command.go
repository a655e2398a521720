package clipboard

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"
)

// CommandTimeout bounds clipboard helper execution. The OS clipboard can
// stall briefly under contention; anything beyond this is treated as a
// failure so the sync path never hangs on a wedged helper process.
const CommandTimeout = 500 * time.Millisecond

// CommandConfig holds configuration for clipboard command execution.
type CommandConfig struct {
	// Timeout for command execution (default: CommandTimeout).
	Timeout time.Duration

	// MaxOutputSize limits the amount of data read (default: MaxClipboardSize).
	MaxOutputSize int
}

// DefaultCommandConfig returns config with production defaults.
func DefaultCommandConfig() *CommandConfig {
	return &CommandConfig{
		Timeout:       CommandTimeout,
		MaxOutputSize: MaxClipboardSize,
	}
}

// runCommand executes a clipboard read helper and returns its output.
func runCommand(name string, args []string, config *CommandConfig) ([]byte, error) {
	if config == nil {
		config = DefaultCommandConfig()
	}

	ctx, cancel := context.WithTimeout(context.Background(), config.Timeout)
	defer cancel()

	output, err := exec.CommandContext(ctx, name, args...).Output()

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return nil, fmt.Errorf("command %s timed out after %v", name, config.Timeout)
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			// Exit code 1 with no output means an empty clipboard on
			// several platforms.
			if exitErr.ExitCode() == 1 && len(output) == 0 {
				return []byte{}, nil
			}
			return nil, fmt.Errorf("command %s failed with exit code %d: %w",
				name, exitErr.ExitCode(), err)
		}
		return nil, fmt.Errorf("command %s failed: %w", name, err)
	}

	if len(output) > config.MaxOutputSize {
		return nil, fmt.Errorf("command output exceeds maximum size of %d bytes",
			config.MaxOutputSize)
	}

	return output, nil
}

// runCommandWithInput executes a clipboard write helper, piping input to
// its stdin.
func runCommandWithInput(name string, args []string, input []byte, config *CommandConfig) error {
	if config == nil {
		config = DefaultCommandConfig()
	}

	ctx, cancel := context.WithTimeout(context.Background(), config.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, name, args...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("failed to create stdin pipe: %w", err)
	}

	defer func() {
		if stdin != nil {
			_ = stdin.Close()
		}
		if cmd.Process != nil {
			_ = cmd.Process.Kill()
		}
	}()

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", name, err)
	}

	if _, err := stdin.Write(input); err != nil {
		return fmt.Errorf("failed to write to %s: %w", name, err)
	}

	if err := stdin.Close(); err != nil {
		return fmt.Errorf("failed to close stdin: %w", err)
	}
	stdin = nil // prevent double close in defer

	if err := cmd.Wait(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("command %s timed out after %v", name, config.Timeout)
		}
		return fmt.Errorf("%s failed: %w", name, err)
	}

	return nil
}
