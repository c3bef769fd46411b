package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/tplans/internal/domain"
)

// NameFunc resolves a user handle to something readable.
type NameFunc func(userID string) string

// FormatPendingRequests renders the approval queue, oldest first.
func FormatPendingRequests(planName string, reqs []*domain.ChangeRequest, name NameFunc) string {
	if len(reqs) == 0 {
		return RenderBox(planName+" pending", Dim("No pending requests."))
	}
	headers := []string{"ID", "REQUEST", "BY", "SUBMITTED"}
	rows := make([][]string, 0, len(reqs))
	for _, r := range reqs {
		rows = append(rows, []string{
			TruncID(r.ID),
			Bold(r.Summary()),
			name(r.RequestedBy),
			Dim(HumanTimestamp(r.CreatedAt)),
		})
	}
	return RenderBox(planName+" pending", RenderTable(headers, rows))
}

// FormatHistory renders every request of a plan with its approval details.
func FormatHistory(planName string, reqs []*domain.ChangeRequest, name NameFunc) string {
	if len(reqs) == 0 {
		return RenderBox(planName+" history", Dim("No requests yet."))
	}
	headers := []string{"ID", "REQUEST", "STATUS", "BY", "APPROVED BY", "WHEN"}
	rows := make([][]string, 0, len(reqs))
	for _, r := range reqs {
		approvedBy := Dim("--")
		when := r.CreatedAt
		if r.ApprovedAt != nil {
			approvedBy = name(r.ApprovedBy)
			when = *r.ApprovedAt
		}
		rows = append(rows, []string{
			TruncID(r.ID),
			r.Summary(),
			RequestStatusPill(r.Status),
			name(r.RequestedBy),
			approvedBy,
			Dim(HumanTimestamp(when)),
		})
	}
	return RenderBox(planName+" history", RenderTable(headers, rows))
}

// FormatRequestDetail renders a single request with its decoded payload.
func FormatRequestDetail(r *domain.ChangeRequest, name NameFunc) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", Bold(string(r.Type)), RequestStatusPill(r.Status))
	fmt.Fprintf(&b, "%s %s\n", Dim("id:       "), r.ID)
	fmt.Fprintf(&b, "%s %s\n", Dim("requested:"), name(r.RequestedBy))
	if r.ApprovedAt != nil {
		fmt.Fprintf(&b, "%s %s (%s)\n", Dim("approved: "), name(r.ApprovedBy), HumanTimestamp(*r.ApprovedAt))
	}
	if p, err := r.DecodePayload(); err == nil {
		for _, line := range payloadLines(p) {
			fmt.Fprintf(&b, "  %s\n", line)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func payloadLines(p domain.TaskPayload) []string {
	var lines []string
	if p.TaskID != "" {
		lines = append(lines, Dim("task: ")+ShortID(p.TaskID))
	}
	if p.Title != nil {
		lines = append(lines, Dim("title: ")+*p.Title)
	}
	if p.Description != nil {
		lines = append(lines, Dim("description: ")+*p.Description)
	}
	if p.Status != nil {
		lines = append(lines, Dim("status: ")+*p.Status)
	}
	if p.Progress != nil {
		lines = append(lines, Dim("progress: ")+fmt.Sprintf("%d%%", *p.Progress))
	}
	if p.Order != nil {
		lines = append(lines, Dim("order: ")+itoa(*p.Order))
	}
	return lines
}
