package agent

import (
	"errors"
	"strings"
)

const defaultSystemPrompt = "You are a coding assistant. You can read files, " +
	"apply unified-diff patches, and perform batched literal edits through the " +
	"provided tools. Prefer tools over guessing file contents, keep answers " +
	"concise, and report tool failures honestly."

// Options configures an Agent. Zero values select sensible defaults; only
// the client configuration is mandatory.
type Options struct {
	Config Config

	// SystemPrompt seeds the conversation. Empty selects the default prompt.
	SystemPrompt string
	// MaxSteps bounds the number of model round-trips per Ask call.
	MaxSteps int

	// Registry supplies the tools advertised to the model. Nil means an empty
	// registry: the agent degenerates to plain chat.
	Registry *Registry

	Logger  Logger
	Metrics Metrics

	// EventBuffer controls the capacity of the event channel.
	EventBuffer int
}

func (o *Options) setDefaults() {
	if strings.TrimSpace(o.SystemPrompt) == "" {
		o.SystemPrompt = defaultSystemPrompt
	}
	if o.MaxSteps <= 0 {
		o.MaxSteps = 10
	}
	if o.Registry == nil {
		o.Registry = NewRegistry()
	}
	if o.Logger == nil {
		o.Logger = &NoOpLogger{}
	}
	if o.Metrics == nil {
		o.Metrics = &NoOpMetrics{}
	}
	if o.EventBuffer <= 0 {
		o.EventBuffer = 64
	}
}

func (o *Options) validate() error {
	if o.Config.APIKey == "" {
		return errors.New("agent: API key is required")
	}
	if o.Config.Model == "" {
		return errors.New("agent: model is required")
	}
	return nil
}
