package report

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/rkharel/annoreport/internal/stats"
)

var (
	clrHighlight = lipgloss.AdaptiveColor{Light: "#0F766E", Dark: "#2DD4BF"}
	clrSubtle    = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#666666"}
	clrDim       = lipgloss.AdaptiveColor{Light: "#999999", Dark: "#555555"}

	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(clrHighlight)
	headerStyle = lipgloss.NewStyle().Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(clrDim)
)

// RenderTerminal renders the daily delta as styled tables for the
// terminal, used by `annoreport preview` and dry runs.
func RenderTerminal(data Data) string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render(fmt.Sprintf("%s annotation report, %s", data.ProjectName, data.Date)))
	sb.WriteString("\n\n")

	if data.Delta == nil {
		sb.WriteString(dimStyle.Render("No previous snapshot found; comparison skipped."))
		sb.WriteString("\n")
	} else {
		sb.WriteString(headerStyle.Render("New tasks"))
		sb.WriteString("\n")
		if len(data.Delta.New) == 0 {
			sb.WriteString(dimStyle.Render("  none"))
			sb.WriteString("\n")
		} else {
			sb.WriteString(newTasksTable(data.Delta.New))
			sb.WriteString("\n")
		}

		sb.WriteString("\n")
		sb.WriteString(headerStyle.Render("Changed tasks"))
		sb.WriteString("\n")
		if len(data.Delta.Changed) == 0 {
			sb.WriteString(dimStyle.Render("  none"))
			sb.WriteString("\n")
		} else {
			sb.WriteString(changedTasksTable(data.Delta.Changed))
			sb.WriteString("\n")
		}
	}

	sb.WriteString("\n")
	if data.SnapshotPath != "" {
		sb.WriteString(dimStyle.Render("Snapshot: " + data.SnapshotPath))
	} else {
		sb.WriteString(dimStyle.Render("Snapshot: not saved"))
	}
	sb.WriteString("\n")

	if len(data.Filenames) > 0 {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("Downloaded %d annotation files to %s/%s", len(data.Filenames), data.AnnotationsDir, data.Date)))
		sb.WriteString("\n")
	}

	return sb.String()
}

func newTasksTable(rows []stats.TaskStats) string {
	t := baseTable().Headers("ID", "JOB", "NAME", "ASSIGNEE", "FRAMES ANN", "UNIQUE OBJ", "TOTAL OBJ")
	for _, r := range rows {
		t.Row(
			strconv.Itoa(r.TaskID),
			strconv.Itoa(r.JobID),
			r.TaskName,
			assigneeCell(r.Assignee),
			strconv.Itoa(r.FramesAnnotated),
			strconv.Itoa(r.UniqueObjAnnotated),
			strconv.Itoa(r.TotalObjAnnotated),
		)
	}
	return t.Render()
}

func changedTasksTable(rows []stats.ChangedTask) string {
	t := baseTable().Headers("ID", "NAME", "ASSIGNEE", "FRAMES ANN", "TOTAL OBJ", "FRAMES +", "OBJ +")
	for _, r := range rows {
		t.Row(
			strconv.Itoa(r.TaskID),
			r.TaskName,
			assigneeCell(r.Assignee),
			strconv.Itoa(r.FramesAnnotated),
			strconv.Itoa(r.TotalObjAnnotated),
			signed(r.FramesAdded),
			signed(r.ObjAdded),
		)
	}
	return t.Render()
}

func baseTable() *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(clrSubtle)).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
}

func assigneeCell(assignee string) string {
	if assignee == "" {
		return dimStyle.Render("unassigned")
	}
	return assignee
}

// signed formats a delta with an explicit plus for gains.
func signed(n int) string {
	if n > 0 {
		return "+" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}
