package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/tplans/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// Gruvbox-inspired color palette.
var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorPurple = lipgloss.Color("#d3869b")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
	ColorHeader = lipgloss.Color("#fe8019")
)

// Predefined lipgloss styles.
var (
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue   = lipgloss.NewStyle().Foreground(ColorBlue)
	StylePurple = lipgloss.NewStyle().Foreground(ColorPurple)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleFg     = lipgloss.NewStyle().Foreground(ColorFg)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold   = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
)

// RoleStyle returns the style used for a member role.
func RoleStyle(role domain.Role) lipgloss.Style {
	switch role {
	case domain.RoleOwner:
		return StyleHeader
	case domain.RoleApprover:
		return StylePurple
	case domain.RoleEditor:
		return StyleBlue
	case domain.RoleViewer:
		return StyleFg
	default:
		return StyleDim
	}
}

// RoleBadge renders a role such as "◆ owner".
func RoleBadge(role domain.Role) string {
	switch role {
	case domain.RoleOwner:
		return RoleStyle(role).Render("◆ owner")
	case domain.RoleApprover:
		return RoleStyle(role).Render("✔ approver")
	case domain.RoleEditor:
		return RoleStyle(role).Render("✎ editor")
	case domain.RoleViewer:
		return RoleStyle(role).Render("○ viewer")
	default:
		return StyleDim.Render("? " + string(role))
	}
}

// RequestStatusPill returns a colored indicator for a change request status.
func RequestStatusPill(status domain.ChangeRequestStatus) string {
	switch status {
	case domain.RequestPending:
		return StyleYellow.Render("● Pending")
	case domain.RequestApproved:
		return StyleGreen.Render("✔ Approved")
	default:
		return StyleDim.Render(string(status))
	}
}

// Header renders a section header with the orange header style and an underline.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", len(upper))
	return fmt.Sprintf("%s\n%s", StyleHeader.Render(upper), StyleDim.Render(line))
}

// Dim renders text in the muted/dim color.
func Dim(text string) string {
	return StyleDim.Render(text)
}

// Bold renders text in bold with the foreground color.
func Bold(text string) string {
	return StyleBold.Render(text)
}

// Success prefixes msg with a green check.
func Success(msg string) string {
	return StyleGreen.Render("✔") + " " + msg
}
