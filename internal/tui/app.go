package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	log "github.com/sirupsen/logrus"

	"github.com/jeanpaul/learnbot/internal/config"
	"github.com/jeanpaul/learnbot/internal/engine"
	"github.com/jeanpaul/learnbot/internal/explain"
)

const (
	headerHeight = 3
	inputHeight  = 3
	footerHeight = 1
	menuHeight   = 16
)

// StoreOpener opens the engine for a named store profile. The store picker
// is disabled when it is nil.
type StoreOpener func(ctx context.Context, name string) (*engine.Engine, *config.StoreProfile, error)

// StoreLister lists the profile names the picker offers.
type StoreLister func() ([]string, error)

type Model struct {
	width, height int
	viewport      viewport.Model
	textarea      textarea.Model
	renderer      *glamour.TermRenderer
	menu          MenuModel
	messages      []chatMessage

	ctx     context.Context
	eng     *engine.Engine
	profile *config.StoreProfile
	open    StoreOpener
	list    StoreLister

	teaching  bool
	lastQuery string
	quitting  bool
}

type chatMessage struct {
	role    string
	content string
}

func NewModel(ctx context.Context, eng *engine.Engine, profile *config.StoreProfile, open StoreOpener, list StoreLister) Model {
	ta := textarea.New()
	ta.Focus()
	ta.CharLimit = 0
	ta.SetHeight(1)
	ta.ShowLineNumbers = false
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Base = lipgloss.NewStyle().Foreground(White)
	ta.FocusedStyle.Placeholder = lipgloss.NewStyle().Foreground(MidGray)

	r, _ := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)

	m := Model{
		viewport: viewport.New(80, 20),
		textarea: ta,
		renderer: r,
		menu:     NewMenuModel(),
		ctx:      ctx,
		open:     open,
		list:     list,
	}
	m.viewport.MouseWheelEnabled = true
	m.attach(eng, profile)
	return m
}

// attach switches the conversation to eng and resets the screen.
func (m *Model) attach(eng *engine.Engine, profile *config.StoreProfile) {
	m.eng = eng
	m.profile = profile
	m.teaching = false
	m.lastQuery = ""
	m.textarea.Placeholder = profile.Placeholder
	m.textarea.Reset()
	m.messages = []chatMessage{{
		role: "welcome",
		content: fmt.Sprintf("Welcome to %s. Ask me anything; if I don't know the answer you can teach me.\nType '%s' to leave, or / for commands.",
			m.title(), eng.Options().ExitWord),
	}}
	m.rebuildView()
}

func (m Model) title() string {
	if m.profile != nil && m.profile.Title != "" {
		return m.profile.Title
	}
	return "Chatbot"
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, tea.EnableMouseCellMotion)
}

// storeOpenedMsg carries the result of switching stores.
type storeOpenedMsg struct {
	eng     *engine.Engine
	profile *config.StoreProfile
	err     error
}

func (m Model) openStore(name string) tea.Cmd {
	open, ctx := m.open, m.ctx
	return func() tea.Msg {
		eng, profile, err := open(ctx, name)
		return storeOpenedMsg{eng: eng, profile: profile, err: err}
	}
}

func (m *Model) layout() {
	menuH := 0
	if m.menu.active {
		menuH = menuHeight
	}
	m.viewport.Width = max(m.width-2, 10)
	m.viewport.Height = max(m.height-headerHeight-inputHeight-footerHeight-menuH, 3)
	m.textarea.SetWidth(max(m.width-8, 10))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		m.rebuildView()

	case storeOpenedMsg:
		if msg.err != nil {
			m.messages = append(m.messages, chatMessage{role: "error", content: msg.err.Error()})
			m.rebuildView()
			return m, nil
		}
		m.attach(msg.eng, msg.profile)
		return m, nil

	case tea.KeyMsg:
		if m.menu.active {
			return m.updateMenu(msg)
		}

		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.quitting = true
			return m, tea.Quit
		case tea.KeyPgUp:
			m.viewport.HalfViewUp()
			return m, nil
		case tea.KeyPgDown:
			m.viewport.HalfViewDown()
			return m, nil
		case tea.KeyEnter:
			if msg.Alt {
				break
			}
			return m.submit()
		}

		if msg.String() == "/" && m.textarea.Value() == "" && !m.teaching {
			m.menu.showCommands()
			m.menu.active = true
			m.layout()
			m.rebuildView()
			return m, nil
		}

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	if !m.menu.active {
		var cmd tea.Cmd
		m.textarea, cmd = m.textarea.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func (m Model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "enter" {
		choice, ok := m.menu.selected()
		kind := m.menu.menuType
		m.menu.active = false
		m.layout()
		if !ok {
			m.rebuildView()
			return m, nil
		}
		if kind == MenuStorePicker {
			m.messages = append(m.messages, chatMessage{role: "system", content: "Opening " + choice + "..."})
			m.rebuildView()
			return m, m.openStore(choice)
		}
		return m.runCommand(choice)
	}

	var cmd tea.Cmd
	m.menu, cmd = m.menu.Update(msg)
	if !m.menu.active {
		m.layout()
		m.rebuildView()
	}
	return m, cmd
}

// submit handles Enter: a teaching answer, a slash command or a question.
func (m Model) submit() (tea.Model, tea.Cmd) {
	raw := m.textarea.Value()
	text := strings.TrimSpace(raw)

	if m.teaching {
		m.textarea.Reset()
		m.textarea.Placeholder = m.profile.Placeholder
		m.teaching = false
		if text != "" {
			m.messages = append(m.messages, chatMessage{role: "user", content: text})
		}
		out, err := m.eng.Teach(m.ctx, raw)
		if err != nil {
			m.messages = append(m.messages, chatMessage{role: "error", content: err.Error()})
		} else {
			m.showOutcome(out)
		}
		m.rebuildView()
		return m, nil
	}

	if text == "" {
		return m, nil
	}
	m.textarea.Reset()

	if strings.HasPrefix(text, "/") {
		return m.runCommand(text)
	}

	m.messages = append(m.messages, chatMessage{role: "user", content: text})
	out := m.eng.Submit(m.ctx, text)
	if out.Kind == engine.Exited {
		m.quitting = true
		return m, tea.Quit
	}
	m.lastQuery = text
	m.showOutcome(out)
	m.rebuildView()
	return m, nil
}

func (m *Model) showOutcome(out engine.Outcome) {
	switch out.Kind {
	case engine.Answered:
		m.messages = append(m.messages, chatMessage{role: "bot", content: out.Text})
	case engine.NeedsTeaching:
		m.teaching = true
		m.textarea.Placeholder = fmt.Sprintf("Teach me the answer, or type '%s'", m.eng.Options().SkipWord)
		m.messages = append(m.messages, chatMessage{role: "teach", content: out.Text})
	case engine.Learned:
		m.messages = append(m.messages, chatMessage{role: "bot", content: out.Text})
		if out.Warning != nil {
			log.WithError(out.Warning).Debug("learned entry kept in memory only")
			m.messages = append(m.messages, chatMessage{
				role:    "warning",
				content: "Learned for this session only; it could not be saved: " + out.Warning.Error(),
			})
		}
	case engine.Skipped:
		m.messages = append(m.messages, chatMessage{role: "bot", content: out.Text})
	}
}

// runCommand handles /commands.
func (m Model) runCommand(text string) (tea.Model, tea.Cmd) {
	parts := strings.Fields(text)
	arg := strings.TrimSpace(strings.TrimPrefix(text, parts[0]))

	switch parts[0] {
	case "/help":
		m.messages = append(m.messages, chatMessage{role: "system", content: helpText(m.eng.Options())})

	case "/why":
		q := arg
		if q == "" {
			q = m.lastQuery
		}
		if q == "" {
			m.messages = append(m.messages, chatMessage{role: "error", content: "Nothing to explain yet. Usage: /why [question]"})
			break
		}
		ex := explain.Explain(m.eng.Store(), q, m.eng.Options().Threshold)
		m.messages = append(m.messages, chatMessage{role: "system", content: ex.String()})

	case "/entries":
		m.messages = append(m.messages, chatMessage{role: "system", content: formatEntries(m.eng.Store().Entries(), 20)})

	case "/stores":
		if m.open == nil || m.list == nil {
			m.messages = append(m.messages, chatMessage{role: "error", content: "Switching chatbots is not available in this session."})
			break
		}
		names, err := m.list()
		if err != nil {
			m.messages = append(m.messages, chatMessage{role: "error", content: err.Error()})
			break
		}
		items := make([]item, 0, len(names))
		for _, n := range names {
			desc := ""
			if p, err := config.LoadStoreProfile(n); err == nil {
				desc = p.Description
			}
			items = append(items, item{title: n, desc: desc})
		}
		m.menu.showStores(items)
		m.layout()

	case "/save":
		path := arg
		if path == "" {
			path = fmt.Sprintf("learnbot-%s.md", m.eng.Transcript().ID()[:8])
		}
		if err := os.WriteFile(path, []byte(m.eng.Transcript().Markdown(m.title())), 0644); err != nil {
			m.messages = append(m.messages, chatMessage{role: "error", content: err.Error()})
		} else {
			m.messages = append(m.messages, chatMessage{role: "success", content: "Saved to " + path})
		}

	case "/clear":
		m.messages = nil

	case "/quit":
		m.quitting = true
		return m, tea.Quit

	default:
		m.messages = append(m.messages, chatMessage{
			role:    "error",
			content: fmt.Sprintf("Unknown command: %s (type /help for available commands)", parts[0]),
		})
	}

	m.rebuildView()
	return m, nil
}

func (m *Model) rebuildView() {
	var sb strings.Builder
	for _, msg := range m.messages {
		switch msg.role {
		case "welcome":
			sb.WriteString(SystemMsgStyle.Render(msg.content) + "\n\n")
		case "user":
			sb.WriteString(UserBlockStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
				RoleHeaderStyle.Foreground(Green).Render("YOU"),
				UserMsgStyle.Render(msg.content),
			)) + "\n")
		case "bot":
			sb.WriteString(m.renderBotBlock(msg.content) + "\n")
		case "teach":
			sb.WriteString(TeachStyle.Render("? "+msg.content) + "\n\n")
		case "system":
			sb.WriteString(SystemMsgStyle.Render(msg.content) + "\n\n")
		case "success":
			sb.WriteString(SuccessStyle.Render(msg.content) + "\n\n")
		case "warning":
			sb.WriteString(WarningStyle.Render("! "+msg.content) + "\n\n")
		case "error":
			sb.WriteString(ErrorStyle.Render("x "+msg.content) + "\n\n")
		}
	}

	wasAtBottom := m.viewport.AtBottom()
	m.viewport.SetContent(sb.String())
	if wasAtBottom || len(m.messages) <= 1 {
		m.viewport.GotoBottom()
	}
}

func (m *Model) renderBotBlock(content string) string {
	body := content
	if m.renderer != nil {
		if rendered, err := m.renderer.Render(content); err == nil {
			body = strings.Trim(rendered, "\n")
		}
	}
	return BotBlockStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		RoleHeaderStyle.Foreground(Teal).Render("BOT"),
		BotMsgStyle.Render(body),
	))
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	entries := fmt.Sprintf("%d entries", m.eng.Store().Len())
	header := lipgloss.JoinHorizontal(lipgloss.Center,
		TitleStyle.Render(" "+m.title()+" "),
		StatusStoreStyle.Render(m.eng.Store().Key()),
		StatusBarStyle.Render(entries),
	)

	prompt := lipgloss.NewStyle().Foreground(Green).Bold(true).Render("> ")
	box := InputBoxStyle
	if m.teaching {
		prompt = TeachStyle.Render("? ")
		box = TeachInputStyle
	}
	input := box.Width(max(m.width-4, 20)).Render(lipgloss.JoinHorizontal(lipgloss.Top, prompt, m.textarea.View()))

	help := HelpStyle.Render("Enter: send  •  /: commands  •  PgUp/PgDn: scroll  •  Esc: quit")

	view := lipgloss.JoinVertical(lipgloss.Left,
		header,
		ViewportStyle.Render(m.viewport.View()),
		input,
		help,
	)
	if m.menu.active {
		return lipgloss.JoinVertical(lipgloss.Left, view, m.menu.View())
	}
	return view
}

// Run starts the full-screen chat.
func Run(ctx context.Context, eng *engine.Engine, profile *config.StoreProfile, open StoreOpener, list StoreLister) error {
	p := tea.NewProgram(NewModel(ctx, eng, profile, open, list), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
