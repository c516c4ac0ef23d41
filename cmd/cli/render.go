package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/and161185/factshare/internal/client/controller"
	"github.com/and161185/factshare/internal/client/probe"
	"github.com/and161185/factshare/internal/convert"
	"github.com/and161185/factshare/internal/errs"
	"github.com/and161185/factshare/internal/model"
)

var (
	colorOK     = lipgloss.Color("#30d158")
	colorError  = lipgloss.Color("#ff453a")
	colorWarn   = lipgloss.Color("#ffd60a")
	colorMuted  = lipgloss.Color("#808080")
	colorAccent = lipgloss.Color("#e91e63")

	badgeStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	bannerStyle = lipgloss.NewStyle().
			Foreground(colorError).
			Bold(true).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorError).
			Padding(0, 1)
	mutedStyle  = lipgloss.NewStyle().Foreground(colorMuted)
	accentStyle = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

// badge renders the connection status, e.g. "● Connected".
func badge(s probe.Status, label string) string {
	c := colorMuted
	switch s {
	case probe.StatusConnected:
		c = colorOK
	case probe.StatusDisconnected:
		c = colorError
	case probe.StatusUnknown:
		if label != probe.LabelIdle {
			c = colorWarn
		}
	}
	return badgeStyle.Foreground(c).Render("● " + label)
}

// banner renders msg in an error box; empty msg renders nothing.
func banner(msg string) string {
	if msg == "" {
		return ""
	}
	return bannerStyle.Render(msg)
}

// renderError turns a command failure into one line for stderr.
func renderError(err error) string {
	return lipgloss.NewStyle().Foreground(colorError).Render("Error: " + errs.Message(err, err.Error()))
}

func shortID(f model.Fact) string { return f.ID.String()[:8] }

func author(f model.Fact) string {
	switch {
	case f.Author.Name != "" && f.Author.Email != "":
		return fmt.Sprintf("%s <%s>", f.Author.Name, f.Author.Email)
	case f.Author.Name != "":
		return f.Author.Name
	}
	return f.Author.Email
}

// renderFacts writes the facts as a table; rows the viewer can edit are starred.
func renderFacts(w io.Writer, facts []model.Fact, canEdit func(model.Fact) bool) error {
	if len(facts) == 0 {
		_, err := fmt.Fprintln(w, mutedStyle.Render("No facts yet."))
		return err
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderTop(false).BorderBottom(false).BorderLeft(false).BorderRight(false).
		BorderColumn(false).
		BorderStyle(mutedStyle).
		Headers("", "ID", "TITLE", "CATEGORY", "AUTHOR", "POSTED").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	for _, f := range facts {
		mark := ""
		if canEdit != nil && canEdit(f) {
			mark = "*"
		}
		t.Row(mark, shortID(f), oneLine(f.Title, 40), string(f.Category), author(f), f.CreatedAt.Local().Format(time.DateTime))
	}
	_, err := fmt.Fprintln(w, t.Render())
	return err
}

// renderFact writes one fact in full.
func renderFact(w io.Writer, f model.Fact) {
	fmt.Fprintln(w, accentStyle.Render(f.Title))
	fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("%s · %s · %s · %s", f.ID, f.Category, author(f), f.CreatedAt.Local().Format(time.DateTime))))
	fmt.Fprintln(w, f.Content)
}

// renderState writes the status badge, the signed-in user, the error banner and the list.
func renderState(w io.Writer, st controller.State, canEdit func(model.Fact) bool) {
	who := mutedStyle.Render("not signed in")
	if st.Session != nil {
		who = fmt.Sprintf("signed in as %s <%s>", st.Session.Name, st.Session.Email)
	}
	fmt.Fprintf(w, "%s  %s\n", badge(st.Connection, st.ConnectionLabel), who)
	if b := banner(st.ErrorMessage); b != "" {
		fmt.Fprintln(w, b)
	}
	if st.Session != nil {
		_ = renderFacts(w, st.Facts, canEdit)
	}
}

// printJSON writes facts in their wire form, indented.
func printJSON(w io.Writer, facts []model.Fact) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(convert.ToRPCFacts(facts))
}

func oneLine(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	if r := []rune(s); len(r) > max {
		return string(r[:max-1]) + "…"
	}
	return s
}
