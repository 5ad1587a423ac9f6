package chat

import (
	"errors"
	"io"

	"github.com/bnema/cascade-chat/internal/domain"
	tea "github.com/charmbracelet/bubbletea"
)

var ErrUnexpectedRenderModel = errors.New("unexpected final bubbletea model type")

type renderReadyMsg struct{}

type transcriptModel struct {
	transcript domain.Transcript
	renderer   Renderer
	output     string
}

func (m transcriptModel) Init() tea.Cmd {
	return func() tea.Msg {
		return renderReadyMsg{}
	}
}

func (m transcriptModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg.(type) {
	case renderReadyMsg:
		m.output = renderTranscript(m.transcript, m.renderer)
		return m, tea.Quit
	default:
		return m, nil
	}
}

func (m transcriptModel) View() string {
	return m.output
}

// RenderTranscript renders a saved conversation for the history command.
func (r Renderer) RenderTranscript(transcript domain.Transcript) (string, error) {
	p := tea.NewProgram(
		transcriptModel{transcript: transcript, renderer: r},
		tea.WithInput(nil),
		tea.WithOutput(io.Discard),
	)

	finalModel, err := p.Run()
	if err != nil {
		return "", err
	}

	rendered, ok := finalModel.(transcriptModel)
	if !ok {
		return "", ErrUnexpectedRenderModel
	}

	return rendered.View(), nil
}
