package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/stalexteam/audioswitch/pkg/audioswitch"
)

const exitFailure = -1

const ambientHelpText = "\n" +
	"-v, --verbose   log to stderr\n" +
	"-c, --config    path to audioswitch.yaml\n"

// swapped out by tests, there's no audio system to talk to there
var newAudioSystem = audioswitch.NewAudioSystem

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout io.Writer, stderr io.Writer) int {
	var (
		next       bool
		list       bool
		verbose    bool
		configPath string
	)

	rootCmd := &cobra.Command{
		Use:           "audioswitch [-n | -l | <index>]",
		Short:         "Default sound device switcher",
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			command := audioswitch.ResolveCommand(audioswitch.Options{
				Next: next,
				List: list,
				Args: args,
			})

			if command.Kind == audioswitch.CommandHelp {
				return cmd.Help()
			}

			return execute(command, verbose, configPath, cmd.OutOrStdout())
		},
	}

	flags := rootCmd.Flags()
	flags.BoolVarP(&next, "next", "n", false, "select next")
	flags.BoolVarP(&list, "list", "l", false, "list all devices")
	flags.BoolVarP(&verbose, "verbose", "v", false, "log to stderr")
	flags.StringVarP(&configPath, "config", "c", "", "path to audioswitch.yaml")

	rootCmd.SetHelpFunc(func(cmd *cobra.Command, _ []string) {
		fmt.Fprint(cmd.OutOrStdout(), audioswitch.HelpText+ambientHelpText)
	})

	// negative indices and unknown flags end up here, they get the help text like any other bad input
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, _ error) error {
		return cmd.Help()
	})

	if args == nil {
		args = []string{}
	}

	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(stderr, err)
		return exitFailure
	}

	return 0
}

func execute(command audioswitch.Command, verbose bool, configPath string, out io.Writer) error {
	bootstrapLogger, err := audioswitch.NewLogger(verbose, "")
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}

	config, err := audioswitch.NewConfig(bootstrapLogger, configPath)
	if err != nil {
		return fmt.Errorf("create config: %w", err)
	}

	if err := config.Load(); err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := audioswitch.NewLogger(verbose, config.LogFile)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger = logger.Named("audioswitch")
	logger.Debugw("Starting", "command", command)

	notifier, err := audioswitch.NewNotifier(logger, config.Notify)
	if err != nil {
		return fmt.Errorf("create notifier: %w", err)
	}

	system, err := newAudioSystem(logger)
	if err != nil {
		return err
	}
	defer releaseAudioSystem(logger, system)

	switcher := audioswitch.NewSwitcher(logger, system, notifier, config)

	return switcher.Run(command, out)
}

func releaseAudioSystem(logger *zap.SugaredLogger, system audioswitch.AudioSystem) {
	if err := system.Release(); err != nil {
		logger.Warnw("Failed to release audio system", "error", err)
	}
}
