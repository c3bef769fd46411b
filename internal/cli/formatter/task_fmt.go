package formatter

import (
	"strconv"

	"github.com/alexanderramin/tplans/internal/domain"
)

const progressWidth = 10

// FormatTaskList renders tasks in the order given.
func FormatTaskList(planName string, tasks []*domain.Task) string {
	if len(tasks) == 0 {
		return RenderBox(planName, Dim("No tasks yet. Submit a create-task request to add one."))
	}
	headers := []string{"#", "ID", "TITLE", "STATUS", "PROGRESS"}
	rows := make([][]string, 0, len(tasks))
	for _, t := range tasks {
		rows = append(rows, []string{
			Dim(orderLabel(t.Order)),
			TruncID(t.ID),
			Bold(t.Title),
			TaskStatusLabel(t.Status),
			RenderProgress(t.Progress, progressWidth),
		})
	}
	return RenderBox(planName, RenderTable(headers, rows))
}

// TaskStatusLabel colors the free-form task status by a few known values.
func TaskStatusLabel(status string) string {
	switch status {
	case domain.DefaultTaskStatus:
		return StyleBlue.Render(status)
	case "In Progress":
		return StyleYellow.Render(status)
	case "Done", "Completed":
		return StyleGreen.Render(status)
	default:
		return StyleFg.Render(status)
	}
}

func orderLabel(order int) string {
	if order == domain.DefaultTaskOrder {
		return "-"
	}
	return itoa(order)
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
