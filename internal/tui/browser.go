// Package tui is a two-pane terminal browser over the workspace archive:
// conversations on the left, the selected conversation's content on the
// right. It reads through the archive store only; no mutation.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/HelloDave666/mcp-workspace/internal/archive"
	"github.com/HelloDave666/mcp-workspace/internal/models"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7D56F4"))

	paneStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7D56F4"))

	labelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00BFFF"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))
)

// Browser runs the archive TUI over a loaded store.
type Browser struct {
	store *archive.Store
}

func NewBrowser(store *archive.Store) *Browser {
	return &Browser{store: store}
}

func (b *Browser) Run() error {
	m := initialModel(b.store)
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

type listItem struct {
	conversation *models.Conversation
	projectName  string
}

func (i listItem) FilterValue() string {
	return i.conversation.Summary
}

func (i listItem) Title() string {
	return i.conversation.Summary
}

func (i listItem) Description() string {
	desc := fmt.Sprintf("%s | %s | %s",
		i.conversation.Phase,
		i.conversation.ArchiveType,
		i.conversation.Timestamp.Format("2006-01-02 15:04"))
	if i.projectName != "" {
		desc = fmt.Sprintf("%s | %s", i.projectName, desc)
	}
	return desc
}

type model struct {
	store        *archive.Store
	list         list.Model
	viewport     viewport.Model
	selectedConv *models.Conversation
	width        int
	height       int
	ready        bool
}

func initialModel(store *archive.Store) model {
	names := map[string]string{}
	for _, p := range store.Projects() {
		names[p.ID] = p.Name
	}

	items := []list.Item{}
	for _, c := range store.Conversations() {
		items = append(items, listItem{conversation: c, projectName: names[c.ProjectID]})
	}

	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = true

	l := list.New(items, delegate, 0, 0)
	l.Title = "Archived conversations"
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = titleStyle

	vp := viewport.New(0, 0)

	return model{
		store:    store,
		list:     l,
		viewport: vp,
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		cmd  tea.Cmd
		cmds []tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

		listWidth := m.width / 3
		m.list.SetSize(listWidth, m.height-2)

		m.viewport.Width = m.width - listWidth - 4
		m.viewport.Height = m.height - 4

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit

		case "enter":
			if item, ok := m.list.SelectedItem().(listItem); ok {
				m.selectedConv = item.conversation
				m.updateViewport()
			}
		}
	}

	m.list, cmd = m.list.Update(msg)
	cmds = append(cmds, cmd)

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m *model) updateViewport() {
	if m.selectedConv == nil {
		m.viewport.SetContent("Select a conversation to view")
		return
	}

	c := m.selectedConv

	var content strings.Builder
	content.WriteString(titleStyle.Render(c.Summary))
	content.WriteString("\n\n")
	content.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Phase:"), c.Phase))
	content.WriteString(fmt.Sprintf("%s %s", labelStyle.Render("Archived:"), c.ArchiveType))
	if c.ArchiveType == models.ArchiveTypeSummary {
		content.WriteString(fmt.Sprintf(" (%d of %d characters kept)", len(c.Content), c.OriginalLength))
	}
	content.WriteString("\n")
	content.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Imported:"),
		c.Timestamp.Format("2006-01-02 15:04:05")))
	if c.OriginalID != "" {
		content.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Original id:"), c.OriginalID))
	}
	content.WriteString("\n" + strings.Repeat("─", 40) + "\n\n")
	content.WriteString(c.Content)

	m.viewport.SetContent(content.String())
	m.viewport.GotoTop()
}

func (m model) View() string {
	if !m.ready {
		return "\n  Initializing..."
	}

	listView := paneStyle.
		Width(m.width/3 - 2).
		Height(m.height - 2).
		Render(m.list.View())

	contentView := paneStyle.
		Width(m.width - m.width/3 - 2).
		Height(m.height - 2).
		Render(m.viewport.View())

	help := helpStyle.Render("  j/k: navigate • enter: select • /: filter • q: quit")

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		listView,
		contentView,
	) + "\n" + help
}
