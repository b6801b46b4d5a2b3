// Package cli wires the agent, the builtin tools, and the terminal front
// ends into a runnable command.
package cli

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/joho/godotenv"

	"github.com/glasshouse/diffagent/internal/core/agent"
	"github.com/glasshouse/diffagent/internal/tools"
	"github.com/glasshouse/diffagent/internal/tui"
	"github.com/glasshouse/diffagent/pkg/fsio"
)

// Run executes the agent using the provided CLI arguments. It returns a
// POSIX-style exit code indicating whether execution succeeded.
func Run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if stdin == nil {
		stdin = strings.NewReader("")
	}
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}

	if err := godotenv.Load(); err != nil {
		// A missing .env file is fine, but other errors should be surfaced to
		// help with debugging.
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			fmt.Fprintf(stderr, "failed to load .env: %v\n", err)
			return 1
		}
	}

	defaultModel := os.Getenv("OPENAI_MODEL")
	if defaultModel == "" {
		// Use a widely-supported, tool-capable model by default.
		defaultModel = "gpt-4o"
	}
	defaultBaseURL := os.Getenv("OPENAI_BASE_URL")

	flagSet := flag.NewFlagSet("diffagent", flag.ContinueOnError)
	flagSet.SetOutput(stderr)
	model := flagSet.String("model", defaultModel, "model identifier to use for responses")
	baseURL := flagSet.String("openai-base-url", defaultBaseURL, "override the OpenAI API base URL (optional)")
	prompt := flagSet.String("prompt", "", "submit this prompt, print the answer, and exit")
	basePath := flagSet.String("base-path", "", "base directory for resolving relative file paths (default: working directory)")
	maxSteps := flagSet.Int("max-steps", 0, "maximum model round-trips per prompt (0 = default)")
	verbose := flagSet.Bool("verbose", false, "log debug output to stderr")
	useTUI := flagSet.Bool("tui", false, "start the interactive terminal UI")

	if err := flagSet.Parse(args); err != nil {
		return 2
	}

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		fmt.Fprintln(stderr, "OPENAI_API_KEY must be set in the environment.")
		return 1
	}

	root := strings.TrimSpace(*basePath)
	if root == "" {
		cwd, err := os.Getwd()
		if err != nil {
			fmt.Fprintf(stderr, "failed to determine working directory: %v\n", err)
			return 1
		}
		root = cwd
	}

	var logger agent.Logger = &agent.NoOpLogger{}
	if *verbose {
		logger = agent.NewStdLogger(agent.LogLevelDebug, stderr)
	}

	registry := agent.NewRegistry()
	if err := tools.RegisterAll(registry, fsio.OS(), root); err != nil {
		fmt.Fprintf(stderr, "failed to register tools: %v\n", err)
		return 1
	}

	assistant, err := agent.New(agent.Options{
		Config: agent.Config{
			APIKey:  apiKey,
			Model:   *model,
			BaseURL: strings.TrimSpace(*baseURL),
		},
		MaxSteps: *maxSteps,
		Registry: registry,
		Logger:   logger,
		Metrics:  agent.NewInMemoryMetrics(),
	})
	if err != nil {
		fmt.Fprintf(stderr, "failed to create agent: %v\n", err)
		return 1
	}

	if *useTUI {
		defer assistant.Close()
		if err := tui.Run(ctx, assistant); err != nil {
			fmt.Fprintf(stderr, "tui error: %v\n", err)
			return 1
		}
		return 0
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		printEvents(assistant.Events(), stdout)
	}()
	// Closing the agent ends the event stream, which lets the printer exit.
	defer func() {
		assistant.Close()
		wg.Wait()
	}()

	if p := strings.TrimSpace(*prompt); p != "" {
		answer, err := assistant.Ask(ctx, p)
		if err != nil {
			fmt.Fprintf(stderr, "agent error: %v\n", err)
			return 1
		}
		fmt.Fprintln(stdout, answer)
		return 0
	}

	return repl(ctx, assistant, stdin, stdout, stderr)
}

func repl(ctx context.Context, assistant *agent.Agent, stdin io.Reader, stdout, stderr io.Writer) int {
	scanner := bufio.NewScanner(stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	fmt.Fprintln(stdout, "Type a prompt, or 'exit' to quit.")
	for {
		fmt.Fprint(stdout, "> ")
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				fmt.Fprintf(stderr, "input error: %v\n", err)
				return 1
			}
			return 0
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		switch strings.ToLower(line) {
		case "exit", "quit", "/exit", "/quit":
			return 0
		}

		answer, err := assistant.Ask(ctx, line)
		if err != nil {
			fmt.Fprintf(stderr, "agent error: %v\n", err)
			if ctx.Err() != nil {
				return 1
			}
			continue
		}
		fmt.Fprintln(stdout, answer)
	}
}

func printEvents(events <-chan agent.Event, stdout io.Writer) {
	for evt := range events {
		switch evt.Type {
		case agent.EventTypeAssistantMessage:
			// The final answer is printed by the prompt loop itself.
		case agent.EventTypeToolCall:
			fmt.Fprintf(stdout, "[tool] %s\n", evt.Message)
		case agent.EventTypeToolResult:
			fmt.Fprintf(stdout, "[result] %s\n", evt.Message)
		default:
			level := string(evt.Level)
			if level != "" {
				fmt.Fprintf(stdout, "[%s:%s] %s\n", evt.Type, level, evt.Message)
			} else {
				fmt.Fprintf(stdout, "[%s] %s\n", evt.Type, evt.Message)
			}
		}
	}
}
