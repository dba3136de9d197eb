package tui

import (
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// MenuType is which popup is open.
type MenuType int

const (
	MenuNone MenuType = iota
	MenuSlashCommands
	MenuStorePicker
)

type item struct {
	title, desc string
}

func (i item) Title() string       { return i.title }
func (i item) Description() string { return i.desc }
func (i item) FilterValue() string { return i.title }

var slashCommands = []list.Item{
	item{title: "/help", desc: "Show commands and keys"},
	item{title: "/why", desc: "Explain the last match"},
	item{title: "/entries", desc: "Show what has been learned"},
	item{title: "/stores", desc: "Switch to another chatbot"},
	item{title: "/save", desc: "Export the conversation to Markdown"},
	item{title: "/clear", desc: "Clear the screen"},
	item{title: "/quit", desc: "Exit"},
}

type MenuModel struct {
	list     list.Model
	active   bool
	menuType MenuType
}

func NewMenuModel() MenuModel {
	d := list.NewDefaultDelegate()
	d.Styles.SelectedTitle = lipgloss.NewStyle().
		Foreground(LightTeal).
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(LightTeal).
		PaddingLeft(1)
	d.Styles.SelectedDesc = d.Styles.SelectedTitle.Foreground(DeepTeal)

	l := list.New(slashCommands, d, 40, 14)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = TitleStyle.MarginLeft(2)

	m := MenuModel{list: l}
	m.showCommands()
	return m
}

func (m *MenuModel) showCommands() {
	m.menuType = MenuSlashCommands
	m.list.Title = "Commands"
	m.list.SetItems(slashCommands)
	m.list.ResetSelected()
	m.list.ResetFilter()
}

// showStores fills the picker with the given store profiles.
func (m *MenuModel) showStores(stores []item) {
	items := make([]list.Item, len(stores))
	for i, s := range stores {
		items[i] = s
	}
	m.menuType = MenuStorePicker
	m.list.Title = "Chatbots"
	m.list.SetItems(items)
	m.list.ResetSelected()
	m.list.ResetFilter()
	m.active = true
}

// selected returns the highlighted item title.
func (m MenuModel) selected() (string, bool) {
	it, ok := m.list.SelectedItem().(item)
	if !ok {
		return "", false
	}
	return it.title, true
}

func (m MenuModel) Init() tea.Cmd {
	return nil
}

func (m MenuModel) Update(msg tea.Msg) (MenuModel, tea.Cmd) {
	if !m.active {
		return m, nil
	}
	if k, ok := msg.(tea.KeyMsg); ok && k.String() == "esc" {
		m.active = false
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m MenuModel) View() string {
	if !m.active {
		return ""
	}
	return MenuBoxStyle.Render(m.list.View())
}
