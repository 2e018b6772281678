package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/fakeyudi/glint/internal/presence"
)

const cardWidth = 44

var (
	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1).
			Width(cardWidth)

	cardHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86"))

	imageStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	smallImageStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Background(lipgloss.Color("237")).
			Padding(0, 1)

	detailsStyle = lipgloss.NewStyle().Bold(true)
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	timeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("178"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
)

// CardRenderer draws the activity roughly the way the Discord profile card
// shows it. Now defaults to time.Now.
type CardRenderer struct {
	Now func() time.Time
}

func (r *CardRenderer) Render(p *Preview) ([]byte, error) {
	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	return []byte(Card(p.Activity, now()) + "\n" + footer(p) + "\n"), nil
}

// Card renders a as a bordered box. It is shared with the dashboard.
func Card(a presence.Activity, now time.Time) string {
	var lines []string
	lines = append(lines, cardHeader.Render("PLAYING A GAME"))

	images := imageStyle.Render(orDash(a.LargeImage))
	if a.SmallImage != "" {
		images = lipgloss.JoinHorizontal(lipgloss.Top, images, " ", smallImageStyle.Render(a.SmallImage))
	}
	lines = append(lines, images)

	if a.LargeText != "" {
		lines = append(lines, dimStyle.Render(a.LargeText))
	}
	lines = append(lines, detailsStyle.Render(a.Details))
	if strings.TrimSpace(a.State) != "" {
		lines = append(lines, a.State)
	}
	if a.Start != 0 {
		lines = append(lines, timeStyle.Render(Elapsed(time.Unix(a.Start, 0), now)+" elapsed"))
	}
	return cardStyle.Render(strings.Join(lines, "\n"))
}

func footer(p *Preview) string {
	if p.Suppressed {
		return warnStyle.Render("suppressed") + dimStyle.Render(" by an ignore rule, sending the idle baseline")
	}
	return dimStyle.Render("case: " + p.Case)
}

// Elapsed formats the time since start as mm:ss, or h:mm:ss past an hour.
// A start in the future counts as zero.
func Elapsed(start, now time.Time) string {
	d := now.Sub(start)
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	h, m, s := total/3600, total/60%60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

func orDash(v string) string {
	if v == "" {
		return "-"
	}
	return v
}
