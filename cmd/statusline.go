package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/recallkit/recallkit/internal/adapters/render/statusline"
	"github.com/recallkit/recallkit/internal/application"
	"github.com/recallkit/recallkit/internal/ports"
)

// The statusline doubles as the handoff trigger: it is the only hook the host
// calls with context-window data, so threshold detection rides along with
// rendering.
func newStatuslineCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:           "statusline",
		Short:         "Render the context-window status line",
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in := readHookInput(cmd.InOrStdin(), stdinReadBudget)
			log := app.hookLogger("statusline", in.session())
			defer logPanic(log)

			service := application.NewHandoffService(app.store, app.detacher, app.cfg.threshold, log)
			report := service.Check(cmd.Context(), in.session(), in.window(), ports.HandoffPayload{
				SessionID:      in.session(),
				TranscriptPath: in.TranscriptPath,
				CWD:            in.CWD,
				UsedPercentage: in.window().UsedPercentage,
				TotalCostUSD:   in.Cost.TotalCostUSD,
			})

			fmt.Fprintln(cmd.OutOrStdout(), statusline.Render(report))
			return nil
		},
	}
}
