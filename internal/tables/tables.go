package tables

import (
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/tasklist/taskboard/internal/task"
)

var DefaultTableStyle = table.Style{
	Name: "taskboard",
	Box: table.BoxStyle{
		BottomLeft:       "└",
		BottomRight:      "┘",
		BottomSeparator:  "",
		EmptySeparator:   text.RepeatAndTrim(" ", text.RuneCount("+")),
		Left:             "│",
		LeftSeparator:    "",
		MiddleHorizontal: "─",
		MiddleSeparator:  "",
		MiddleVertical:   "",
		PaddingLeft:      " ",
		PaddingRight:     " ",
		PageSeparator:    "\n",
		Right:            "│",
		RightSeparator:   "",
		TopLeft:          "┌",
		TopRight:         "┐",
		TopSeparator:     "",
		UnfinishedRow:    " ...",
	},
	Color: table.ColorOptionsDefault,
	Format: table.FormatOptions{
		Footer: text.FormatDefault,
		Header: text.FormatDefault,
		Row:    text.FormatDefault,
	},
	HTML: table.DefaultHTMLOptions,
	Options: table.Options{
		DrawBorder:      false,
		SeparateColumns: false,
		SeparateFooter:  true,
		SeparateHeader:  true,
		SeparateRows:    false,
	},
	Title: table.TitleOptionsDefault,
}

// Tasks renders tasks as a table, in the given order.
func Tasks(tasks []task.Task) string {
	if len(tasks) == 0 {
		return "No tasks yet. Add one with 'taskboard tasks add TEXT'."
	}

	t := table.NewWriter()
	t.SetStyle(DefaultTableStyle)

	t.AppendHeader(table.Row{
		"ID", "Done", "Task", "Created",
	})

	done := 0
	for _, item := range tasks {
		mark := ""
		if item.Completed {
			mark = "✔"
			done++
		}
		// the order of values must match the order of the header
		t.AppendRow(table.Row{
			item.ID,
			mark,
			item.Text,
			item.CreatedAt.In(time.Local).Format("2006-01-02 15:04"),
		})
	}
	t.AppendFooter(table.Row{
		fmt.Sprintf("%d tasks, %d done", len(tasks), done),
	})

	return t.Render()
}
