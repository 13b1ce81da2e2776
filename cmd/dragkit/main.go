// Command dragkit runs the interactive diagram editing demo: a terminal
// canvas where cells can be moved, resized, rotated and rerouted with
// the mouse.
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"dragkit/diagram"
	"dragkit/interaction"
	"dragkit/terminal"
)

func main() {
	if err := rootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCommand() *cobra.Command {
	var (
		verbose    bool
		configPath string
	)

	root := &cobra.Command{
		Use:          "dragkit",
		Short:        "Interactive diagram manipulation demo",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				log.SetLevel(log.DebugLevel)
			}
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a toml options file")

	demo := &cobra.Command{
		Use:   "demo",
		Short: "Run the interactive terminal demo",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := interaction.DefaultOptions()
			if configPath != "" {
				loaded, err := interaction.LoadOptions(configPath)
				if err != nil {
					return err
				}
				opts = loaded
			}
			return runDemo(opts)
		},
	}
	root.AddCommand(demo)
	return root
}

func runDemo(opts *interaction.Options) error {
	model := diagram.NewModel()
	terminal.SeedDiagram(model)

	surface := interaction.NewSurface(model)
	surface.Opts = opts

	shell, err := terminal.NewShell(surface)
	if err != nil {
		return fmt.Errorf("starting demo: %w", err)
	}
	return shell.Run()
}
