package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	verr "videre/internal/errors"
	"videre/internal/remote"
	"videre/internal/session"
)

// RemoteModel sends playback commands on single keys.
type RemoteModel struct {
	session *session.Session
	remote  *remote.Remote

	status string
	failed bool
}

// NewRemoteModel binds the screen to d's remote.
func NewRemoteModel(d Deps) *RemoteModel {
	return &RemoteModel{session: d.Session, remote: d.Remote}
}

func (m *RemoteModel) Init() tea.Cmd { return nil }

func (m *RemoteModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(k, keys.play):
		m.send(remote.Play)
	case key.Matches(k, keys.pause):
		m.send(remote.Pause)
	case key.Matches(k, keys.toggle):
		m.send(remote.PauseOrResume)
	case key.Matches(k, keys.disconnect):
		if m.session != nil {
			m.session.Disconnect() //nolint:errcheck
			m.status, m.failed = "disconnected", false
		}
	}
	return m, nil
}

func (m *RemoteModel) send(cmd remote.Command) {
	if m.remote == nil {
		m.status, m.failed = "no session", true
		return
	}
	if err := m.remote.Send(cmd); err != nil {
		if verr.Is(err, verr.ErrNotConnected) {
			m.status = "not connected, open the Connector"
		} else {
			m.status = "connection lost: " + err.Error()
		}
		m.failed = true
		return
	}
	m.status, m.failed = "sent "+cmd.String(), false
}

func (m *RemoteModel) View() string {
	conn := "not connected"
	if m.session != nil && m.session.IsConnected() {
		conn = "connected to " + m.session.RemoteAddr()
	}

	body := conn
	if m.status != "" {
		body += "\n\n"
		if m.failed {
			body += errorStyle.Render(m.status)
		} else {
			body += okStyle.Render(m.status)
		}
	}
	return renderPage("REMOTE", body, "p: play │ space: play/pause │ s: pause │ ctrl+d: disconnect")
}
