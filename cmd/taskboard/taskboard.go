package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	cmds "github.com/tasklist/taskboard/internal/cmd"
	"github.com/tasklist/taskboard/internal/cmd/serve"
	"github.com/tasklist/taskboard/internal/cmd/tasks"
	"github.com/tasklist/taskboard/internal/cmd/update"
	"github.com/tasklist/taskboard/internal/cmd/watch"
	"github.com/tasklist/taskboard/internal/msg"
	"github.com/tasklist/taskboard/internal/version"
	"github.com/tasklist/taskboard/internal/viper"
)

var (
	cmdUse   = "taskboard [OPTIONS] COMMAND [ARG...]"
	cmdShort = "taskboard"
	cmdLong  = `A small task list with a live view that notices new deployments.

Run the backend with 'taskboard serve' and point clients at it with
--backend, TASKBOARD_BACKEND_URL or the backendUrl key of a config file.`
)

func main() {
	cmd := &cobra.Command{
		Use:              cmdUse,
		Short:            cmdShort,
		Long:             cmdLong,
		SilenceUsage:     true,
		SilenceErrors:    true,
		TraverseChildren: true,
		Version:          fmt.Sprintf("%s\n(build %s)", version.Version, version.GitCommit),
	}

	cmd.SetVersionTemplate("taskboard version {{.Version}}\n")
	cmd.Flags().BoolP("version", "v", false, "print version")

	verbosity := cmd.PersistentFlags().Bool("verbose", false, "turn on verbose logging")
	noColor := cmd.PersistentFlags().Bool("no-color", false, "disable colorized output")
	cmd.PersistentFlags().StringP("config", "c", "", "Specifies which config file to use")
	_ = viper.BindPFlag(cmds.KeyConfigFile, cmd.PersistentFlags().Lookup("config"))

	cmd.PersistentPreRun = func(c *cobra.Command, _ []string) {
		setupLogging(*verbosity, *noColor)
		log.Debug().Str("command", cmds.FullName(c)).Msg("Starting.")
	}

	cmd.AddCommand(
		serve.Command(cmd.PersistentPreRun),
		tasks.Command(cmd.PersistentPreRun),
		watch.Command(cmd.PersistentPreRun),
		update.Command(cmd.PersistentPreRun),
	)

	if err := cmd.ExecuteContext(newContext()); err != nil {
		msg.Error(err)
		os.Exit(1)
	}
}

func setupLogging(verbose bool, noColor bool) {
	color.NoColor = color.NoColor || noColor
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	zerolog.DurationFieldInteger = true
	timeFormat := "15:04:05"
	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		zerolog.TimeFieldFormat = time.RFC3339Nano
		timeFormat = "15:04:05.000"
	}

	zerolog.TimestampFunc = func() time.Time {
		return time.Now().In(time.Local)
	}

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: timeFormat, NoColor: color.NoColor})
}

// newContext returns a new context that is canceled when a SIGINT is received.
func newContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt)

	go func() {
		for range signals {
			if ctx.Err() != nil {
				os.Exit(1)
			}

			println("\nWaiting for any in-progress actions to stop... (press Ctrl-c again to exit without waiting)\n")
			cancel()
		}
	}()

	return ctx
}
