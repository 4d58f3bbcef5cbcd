package cmd

import "github.com/spf13/cobra"

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "recallkit",
		Short:         "Session memory hooks for coding agents",
		Long:          "recallkit wires a coding agent's session lifecycle to a local memory service: it injects relevant memories into prompts, correlates feedback at session end, and hands off context to a fresh session before the window fills up.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	app, err := wireApp()
	if err != nil {
		rootCmd.RunE = func(_ *cobra.Command, _ []string) error {
			return err
		}
		return rootCmd
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newHookCmd(app),
		newStatuslineCmd(app),
	)

	return rootCmd
}
