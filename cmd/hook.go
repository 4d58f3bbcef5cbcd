package cmd

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/recallkit/recallkit/internal/adapters/spawn"
	"github.com/recallkit/recallkit/internal/application"
)

// hookOutput follows the host's hook protocol: a single JSON object on stdout
// whose additionalContext is appended to the submitted prompt. Any other
// stdout content, and any nonzero exit, would disturb the user's session.
type hookOutput struct {
	HookSpecificOutput hookSpecificOutput `json:"hookSpecificOutput"`
}

type hookSpecificOutput struct {
	HookEventName     string `json:"hookEventName"`
	AdditionalContext string `json:"additionalContext"`
}

func newHookCmd(app *app) *cobra.Command {
	hookCmd := &cobra.Command{
		Use:    "hook",
		Short:  "Hook entry points invoked by the agent host",
		Hidden: true,
	}

	hookCmd.AddCommand(
		newUserPromptSubmitCmd(app),
		newSessionEndCmd(app),
		newHandoffBgCmd(app),
	)

	return hookCmd
}

func newUserPromptSubmitCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:           "user-prompt-submit",
		Short:         "Inject relevant memories into a submitted prompt",
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in := readHookInput(cmd.InOrStdin(), stdinReadBudget)
			log := app.hookLogger("user-prompt-submit", in.session())
			defer logPanic(log)

			service := application.NewRetrievalService(app.store, app.memories, app.clock, log, application.RetrievalConfig{
				Limit:         app.cfg.searchLimit,
				MinSimilarity: app.cfg.minSimilarity,
				Domain:        app.cfg.searchDomain,
			})

			injected := service.Inject(cmd.Context(), in.session(), in.Prompt, in.CWD)
			if injected == "" {
				return nil
			}

			out := hookOutput{hookSpecificOutput{
				HookEventName:     "UserPromptSubmit",
				AdditionalContext: injected,
			}}
			if err := json.NewEncoder(cmd.OutOrStdout()).Encode(out); err != nil {
				log.Warn("write hook output", "error", err)
			}
			return nil
		},
	}
}

func newSessionEndCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:           "session-end",
		Short:         "Correlate feedback and store a session summary",
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in := readHookInput(cmd.InOrStdin(), stdinReadBudget)
			log := app.hookLogger("session-end", in.session())
			defer logPanic(log)

			feedback := application.NewFeedbackService(app.store, app.memories, log)
			chain := application.NewSummaryChain(
				application.NewLLMSummarizer(app.llm, app.cfg.model, app.cfg.summaryTimeout, log),
				application.FallbackSummarizer{},
			)
			extractor := application.NewKeyDecisionExtractor(app.llm, app.cfg.model, app.cfg.decisionsTimeout, log)

			service := application.NewSessionEndService(app.reader, feedback, chain, extractor, app.memories, log)
			service.Run(cmd.Context(), in.session(), in.TranscriptPath, in.CWD)
			return nil
		},
	}
}

func newHandoffBgCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:           "handoff-bg <payload-path>",
		Short:         "Run the detached handoff worker",
		Hidden:        true,
		Args:          cobra.ExactArgs(1),
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := spawn.ReadPayload(args[0])
			if err != nil {
				log := app.hookLogger("handoff-bg", "unknown")
				log.Warn("handoff payload unreadable", "path", args[0], "error", err)
				return nil
			}

			log := app.hookLogger("handoff-bg", payload.SessionID)
			defer logPanic(log)

			summarizer := application.NewLLMSummarizer(app.llm, app.cfg.handoffModel, app.cfg.handoffTimeout, log)
			worker := application.NewHandoffWorker(app.reader, summarizer, app.memories, log)
			worker.Run(cmd.Context(), payload)
			return nil
		},
	}
}

func logPanic(log *slog.Logger) {
	if r := recover(); r != nil {
		log.Error("recovered from panic", "panic", fmt.Sprint(r))
	}
}
