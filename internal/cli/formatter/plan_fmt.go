package formatter

import (
	"github.com/alexanderramin/tplans/internal/domain"
	"github.com/alexanderramin/tplans/internal/service"
)

// FormatPlanList renders the plans visible to userID with the user's role in
// each.
func FormatPlanList(plans []*domain.Plan, userID string) string {
	headers := []string{"ID", "NAME", "ROLE", "MEMBERS", "CREATED"}
	rows := make([][]string, 0, len(plans))
	for _, p := range plans {
		role, _ := p.RoleOf(userID)
		rows = append(rows, []string{
			TruncID(p.ID),
			Bold(p.Name),
			RoleBadge(role),
			StyleFg.Render(itoa(len(p.Members))),
			Dim(HumanTimestamp(p.CreatedAt)),
		})
	}
	return RenderBox("Plans", RenderTable(headers, rows))
}

// FormatMembers renders a plan's membership, owner first.
func FormatMembers(plan *domain.Plan, members []service.MemberView) string {
	headers := []string{"USER", "NAME", "EMAIL", "ROLE"}
	rows := make([][]string, 0, len(members))
	for _, m := range members {
		rows = append(rows, []string{
			TruncID(m.UserID),
			OrDash(m.Name),
			OrDash(m.Email),
			RoleBadge(m.Role),
		})
	}
	return RenderBox(plan.Name+" members", RenderTable(headers, rows))
}
