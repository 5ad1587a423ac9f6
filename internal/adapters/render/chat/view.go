package chat

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bnema/cascade-chat/internal/application"
	"github.com/bnema/cascade-chat/internal/domain"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

// Renderer formats the lines of the interactive chat.
type Renderer struct {
	agentName string
	userName  string
	primary   domain.ModelID
	s         styles
}

func NewRenderer(agentName, userName string, primary domain.ModelID) Renderer {
	return Renderer{agentName: agentName, userName: userName, primary: primary, s: newStyles()}
}

func (r Renderer) Banner(pool domain.ModelPool) string {
	return r.s.banner.Render(lipgloss.JoinVertical(
		lipgloss.Left,
		fmt.Sprintf("%s - MULTI-MODEL MODE", strings.ToUpper(r.agentName)),
		r.s.header.Render("Pool: "+pool.String()),
	))
}

func (r Renderer) Prompt() string {
	return "\n" + r.s.user.Render(fmt.Sprintf("[%s]:", r.userName)) + " "
}

// Reply names the model only when a fallback answered.
func (r Renderer) Reply(delivery application.Delivery) string {
	suffix := ""
	if delivery.Model != "" && delivery.Model != r.primary {
		suffix = r.s.modelSuffix.Render(fmt.Sprintf(" (%s)", delivery.Model))
	}
	prefix := r.s.agent.Render("["+r.agentName) + suffix + r.s.agent.Render("]:")

	text := strings.TrimSpace(delivery.Reply.Text)
	if text == "" {
		return prefix + " " + r.s.empty.Render("(action executed)")
	}
	return prefix + " " + text
}

func (r Renderer) QuotaAlert(model domain.ModelID) string {
	return r.s.alert.Render(fmt.Sprintf("[ALERT] Quota exhausted on model %s...", model))
}

func (r Renderer) Migrated(to domain.ModelID) string {
	return r.s.system.Render(fmt.Sprintf("[SYSTEM] Migrating context to backup: %s", to))
}

func (r Renderer) Failure(err error) string {
	lines := []string{r.s.failure.Render("[ERROR]: ") + err.Error()}

	switch {
	case errors.Is(err, domain.ErrPoolExhausted):
		lines = append(lines, r.s.hint.Render("Hint: wait a minute for the quotas of every model to reset."))
	case errors.Is(err, domain.ErrMigrationFailed):
		lines = append(lines, r.s.hint.Render("Hint: the session could not move to the next model; restart the chat."))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (r Renderer) Goodbye() string {
	return r.s.header.Render("Closing...")
}

// Models lists the models visible to the key and marks pool members.
func (r Renderer) Models(models []domain.ModelInfo, pool domain.ModelPool) string {
	if len(models) == 0 {
		return r.s.empty.Render("No models available.")
	}

	inPool := make(map[domain.ModelID]struct{}, pool.Len())
	for _, member := range pool.Members() {
		inPool[member] = struct{}{}
	}

	lines := []string{r.s.header.Render(fmt.Sprintf("models: %d", len(models)))}
	for _, model := range models {
		marker := "  "
		if _, ok := inPool[model.ID]; ok {
			marker = r.s.agent.Render("* ")
		}
		line := marker + "ID: " + string(model.ID)
		if model.DisplayName != "" {
			line += r.s.member.Render(" - " + model.DisplayName)
		}
		lines = append(lines, line)
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderTranscript(transcript domain.Transcript, r Renderer) string {
	lines := []string{
		r.s.header.Render(fmt.Sprintf("transcript: %s", transcript.ID)),
		r.s.header.Render(fmt.Sprintf("active model: %s", valueOr(string(transcript.ActiveModel), "n/a"))),
		r.s.header.Render(fmt.Sprintf("updated: %s", formatUpdated(transcript.UpdatedAt))),
	}

	for _, migration := range transcript.Migrations {
		lines = append(lines, r.s.system.Render(fmt.Sprintf("migrated %s -> %s at %s", migration.From, migration.To, formatStamp(migration.At))))
	}

	if len(transcript.History) == 0 {
		lines = append(lines, r.s.empty.Render("No messages yet."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	for _, turn := range transcript.History {
		if line := r.turnLine(turn); line != "" {
			lines = append(lines, line)
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (r Renderer) turnLine(turn domain.Turn) string {
	switch turn.Role {
	case domain.RoleUser:
		return r.s.user.Render(fmt.Sprintf("[%s]:", r.userName)) + " " + turn.Text()
	case domain.RoleTool:
		names := make([]string, 0, len(turn.Parts))
		for _, part := range turn.Parts {
			if part.FunctionResponse != nil {
				names = append(names, part.FunctionResponse.Name)
			}
		}
		return r.s.tool.Render(fmt.Sprintf("  <- %s", strings.Join(names, ", ")))
	default:
		if text := turn.Text(); text != "" {
			return r.s.agent.Render(fmt.Sprintf("[%s]:", r.agentName)) + " " + text
		}
		names := make([]string, 0, len(turn.Parts))
		for _, part := range turn.Parts {
			if part.FunctionCall != nil {
				names = append(names, part.FunctionCall.Name)
			}
		}
		if len(names) == 0 {
			return ""
		}
		return r.s.tool.Render(fmt.Sprintf("  -> %s", strings.Join(names, ", ")))
	}
}

func formatStamp(value time.Time) string {
	if value.IsZero() {
		return "unknown"
	}
	return value.Local().Format("2006-01-02 15:04")
}

func formatUpdated(value time.Time) string {
	if value.IsZero() {
		return formatStamp(value)
	}
	return fmt.Sprintf("%s (%s)", formatStamp(value), humanize.Time(value))
}

func valueOr(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
