package tui

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"videre/config"
	verr "videre/internal/errors"
	"videre/internal/session"
)

const (
	fieldIP = iota
	fieldPort
)

// ConnectResult carries a finished sign-in back to the connector.
type ConnectResult struct {
	Result session.Result
	Err    error // set when Connect refused to start
}

// ConnectorModel asks for the player's IP and port and signs in.
type ConnectorModel struct {
	ctx     context.Context
	session *session.Session

	inputs     []textinput.Model
	focus      int
	connecting bool
	status     string
	failed     bool
}

// NewConnectorModel builds the form, prefilled from d.
func NewConnectorModel(d Deps) *ConnectorModel {
	ip := textinput.New()
	ip.Placeholder = "192.168.0.10"
	ip.CharLimit = 15
	ip.Width = 20
	ip.Prompt = ""
	if d.Host != "" && config.MatchPartialIP(d.Host) {
		ip.SetValue(d.Host)
	}
	ip.Focus()

	port := textinput.New()
	port.Placeholder = strconv.Itoa(config.DefaultPort)
	port.CharLimit = 5
	port.Width = 8
	port.Prompt = ""
	p := d.Port
	if p == 0 {
		p = config.DefaultPort
	}
	port.SetValue(strconv.Itoa(p))

	ctx := d.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	m := &ConnectorModel{
		ctx:     ctx,
		session: d.Session,
		inputs:  []textinput.Model{ip, port},
	}
	if d.Session != nil && d.Session.IsConnected() {
		m.status = "connected to " + d.Session.RemoteAddr()
	}
	return m
}

func (m *ConnectorModel) Init() tea.Cmd { return textinput.Blink }

func (m *ConnectorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if res, ok := msg.(ConnectResult); ok {
		m.connecting = false
		switch {
		case res.Err != nil:
			m.setStatus(humanize(res.Err), true)
		case res.Result.Err != nil:
			m.setStatus(humanize(res.Result.Err), true)
		default:
			m.setStatus("connected to "+res.Result.Addr, false)
		}
		return m, nil
	}

	k, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(k, keys.tab), key.Matches(k, keys.down):
		m.setFocus((m.focus + 1) % len(m.inputs))
		return m, nil
	case key.Matches(k, keys.backtab), key.Matches(k, keys.up):
		m.setFocus((m.focus + len(m.inputs) - 1) % len(m.inputs))
		return m, nil
	case key.Matches(k, keys.disconnect):
		if m.session != nil {
			if err := m.session.Disconnect(); err != nil {
				m.setStatus(err.Error(), true)
			} else {
				m.setStatus("disconnected", false)
			}
			m.connecting = false
		}
		return m, nil
	case key.Matches(k, keys.enter):
		return m, m.submit()
	}

	return m, m.edit(k)
}

// edit applies k to the focused input, undoing it if the result is not
// an acceptable prefix for that field.
func (m *ConnectorModel) edit(k tea.KeyMsg) tea.Cmd {
	in := m.inputs[m.focus]
	before, pos := in.Value(), in.Position()

	updated, cmd := in.Update(k)
	if !acceptable(m.focus, updated.Value()) {
		updated.SetValue(before)
		updated.SetCursor(pos)
		cmd = nil
	}
	m.inputs[m.focus] = updated
	return cmd
}

func acceptable(field int, v string) bool {
	if field == fieldIP {
		return config.MatchPartialIP(v)
	}
	for _, r := range v {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func (m *ConnectorModel) submit() tea.Cmd {
	if m.connecting {
		return nil
	}
	if m.session == nil {
		m.setStatus("no session", true)
		return nil
	}

	typed := strings.TrimSpace(m.inputs[fieldIP].Value())
	host, ok := config.CanonicalIPv4(typed)
	if !ok {
		m.setStatus(fmt.Sprintf("%q is not a complete IPv4 address", typed), true)
		return nil
	}
	port, err := strconv.Atoi(m.inputs[fieldPort].Value())
	if err != nil {
		m.setStatus("port must be a number", true)
		return nil
	}
	if err := config.ValidatePort(port); err != nil {
		m.setStatus(err.Error(), true)
		return nil
	}

	ch, err := m.session.Connect(m.ctx, host, port)
	if err != nil {
		m.setStatus(humanize(err), true)
		return nil
	}
	m.connecting = true
	m.setStatus("connecting to "+net.JoinHostPort(host, strconv.Itoa(port))+"…", false)
	return waitResult(ch)
}

// waitResult turns the sign-in channel into a message.
func waitResult(ch <-chan session.Result) tea.Cmd {
	return func() tea.Msg {
		res, ok := <-ch
		if !ok {
			return ConnectResult{Err: errors.New("sign-in ended without a result")}
		}
		return ConnectResult{Result: res}
	}
}

func (m *ConnectorModel) setFocus(i int) {
	m.inputs[m.focus].Blur()
	m.focus = i
	m.inputs[m.focus].Focus()
}

func (m *ConnectorModel) setStatus(s string, failed bool) {
	m.status = s
	m.failed = failed
}

func humanize(err error) string {
	switch {
	case verr.Is(err, verr.ErrAlreadyConnected):
		return "already connected, disconnect first (ctrl+d)"
	case verr.Is(err, verr.ErrConnectInProgress):
		return "still connecting…"
	case verr.Is(err, context.Canceled):
		return "connect cancelled"
	}
	return err.Error()
}

func (m *ConnectorModel) View() string {
	var b strings.Builder
	b.WriteString("IP    │ [")
	b.WriteString(m.inputs[fieldIP].View())
	b.WriteString("]\n")
	b.WriteString("Port  │ [")
	b.WriteString(m.inputs[fieldPort].View())
	b.WriteString("]\n")

	if m.connecting {
		b.WriteString("\n[Connecting...]\n")
	} else {
		b.WriteString("\n[Connect]\n")
	}
	if m.status != "" {
		b.WriteString("\n")
		if m.failed {
			b.WriteString(errorStyle.Render("Error: " + m.status))
		} else {
			b.WriteString(okStyle.Render(m.status))
		}
	}
	return renderPage("CONNECTOR", strings.TrimRight(b.String(), "\n"),
		"tab: next field │ enter: connect │ ctrl+d: disconnect")
}
