package watch

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	cmds "github.com/tasklist/taskboard/internal/cmd"
	"github.com/tasklist/taskboard/internal/http"
	"github.com/tasklist/taskboard/internal/notification"
	"github.com/tasklist/taskboard/internal/task"
	"github.com/tasklist/taskboard/internal/versioncheck"
)

type options struct {
	Interval     time.Duration
	InitialDelay time.Duration
	Timeout      time.Duration
}

// Command creates the `watch` command.
func Command(preRun func(cmd *cobra.Command, args []string)) *cobra.Command {
	opts := options{}

	cmd := &cobra.Command{
		Use:          "watch",
		Short:        "Shows the live task list and announces newly deployed versions",
		SilenceUsage: true,
		PreRun: func(cmd *cobra.Command, args []string) {
			if preRun != nil {
				preRun(cmd, args)
			}
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := cmds.ClientConfig(cmd)
			if err != nil {
				return err
			}
			if cfg.IsDevBuild() {
				log.Debug().Msg("Development build, update detection disabled.")
			}

			versions := http.NewVersionService(cfg.BackendURL, opts.Timeout)
			poller := versioncheck.New(&versions, versioncheck.Options{
				Baseline:     cfg.Version,
				Interval:     opts.Interval,
				InitialDelay: opts.InitialDelay,
			})

			tasks := http.NewTaskService(cfg.BackendURL, opts.Timeout)
			watcher := http.NewTaskWatcher(cfg.BackendURL)

			v := &view{
				tasks:  &tasks,
				banner: notification.NewBanner(poller, notification.ExecReloader{BeforeExec: poller.Stop}),
				out:    os.Stdout,
				clear:  isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()),
			}

			return run(cmd.Context(), poller, &watcher, v, os.Stdin)
		},
	}

	flags := cmd.Flags()
	flags.String("backend", "", "Base URL of the taskboard backend, e.g. http://localhost:8080")
	flags.DurationVar(&opts.Interval, "interval", versioncheck.DefaultInterval, "Time between two checks for a new version")
	flags.DurationVar(&opts.InitialDelay, "initial-delay", versioncheck.DefaultInitialDelay, "Time before the first check for a new version")
	flags.DurationVar(&opts.Timeout, "timeout", 10*time.Second, "Timeout of a single backend request")

	return cmd
}

type watcher interface {
	Watch(ctx context.Context, fn func(task.Event)) error
}

// run drives the view until ctx is done. The task list is redrawn on every task event and on every
// version check state change. Lines read from in answer the update banner.
func run(ctx context.Context, poller *versioncheck.Poller, w watcher, v *view, in io.Reader) error {
	poller.Start(ctx)
	defer poller.Stop()

	refresh := make(chan struct{}, 1)
	lines := make(chan string)

	// Reading from in cannot be interrupted, so the reader is not part of the group.
	go readLines(ctx, in, lines)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return w.Watch(ctx, func(ev task.Event) {
			log.Debug().Str("kind", string(ev.Kind)).Str("id", ev.TaskID).Msg("Task event.")
			select {
			case refresh <- struct{}{}:
			default:
			}
		})
	})
	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-refresh:
			case <-poller.Changes():
			case line := <-lines:
				if _, err := v.banner.HandleInput(line); err != nil {
					log.Warn().Err(err).Msg("Cannot handle input.")
					continue
				}
			}
			if err := v.render(ctx); err != nil {
				log.Warn().Err(err).Msg("Failed to refresh the task list.")
			}
		}
	})

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func readLines(ctx context.Context, in io.Reader, lines chan<- string) {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		select {
		case lines <- scanner.Text():
		case <-ctx.Done():
			return
		}
	}
}
