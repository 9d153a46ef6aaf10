package watch

import (
	"context"
	"fmt"
	"io"

	"github.com/tasklist/taskboard/internal/notification"
	"github.com/tasklist/taskboard/internal/tables"
	"github.com/tasklist/taskboard/internal/task"
)

// clearScreen moves the cursor home and erases the display.
const clearScreen = "\033[H\033[2J"

type view struct {
	tasks  task.Service
	banner *notification.Banner
	out    io.Writer
	// clear redraws in place, only sensible on a terminal.
	clear bool
}

func (v *view) render(ctx context.Context) error {
	tt, err := v.tasks.List(ctx)
	if err != nil {
		return err
	}

	if v.clear {
		_, _ = fmt.Fprint(v.out, clearScreen)
	}
	if v.banner.Render(v.out) {
		_, _ = fmt.Fprintln(v.out)
	}
	_, _ = fmt.Fprintln(v.out, tables.Tasks(tt))

	return nil
}
