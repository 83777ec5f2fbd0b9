package view

import (
	"github.com/charmbracelet/lipgloss"

	"svcctl/internal/services"
)

// StatusIndicator renders a service state with icon and text
type StatusIndicator struct {
	State    services.ServiceState
	Text     string
	ShowIcon bool
	ShowText bool
}

// NewStatusIndicator creates a new status indicator
func NewStatusIndicator(state services.ServiceState) *StatusIndicator {
	return &StatusIndicator{
		State:    state,
		ShowIcon: true,
		ShowText: true,
	}
}

// WithText overrides the state name
func (s *StatusIndicator) WithText(text string) *StatusIndicator {
	s.Text = text
	return s
}

// IconOnly shows only the icon
func (s *StatusIndicator) IconOnly() *StatusIndicator {
	s.ShowIcon = true
	s.ShowText = false
	return s
}

// TextOnly shows only the text
func (s *StatusIndicator) TextOnly() *StatusIndicator {
	s.ShowIcon = false
	s.ShowText = true
	return s
}

// Render returns the styled status indicator
func (s *StatusIndicator) Render() string {
	style := StateStyle(s.State)

	out := ""
	if s.ShowIcon {
		out = SafeIcon(StateIcon(s.State))
	}
	if s.ShowText {
		text := s.Text
		if text == "" {
			text = s.State.String()
		}
		out += text
	}
	return style.Render(out)
}

// StateIcon returns the icon for a service state
func StateIcon(state services.ServiceState) string {
	switch state {
	case services.StateRunning:
		return IconCheck
	case services.StateError:
		return IconCross
	case services.StateStarting:
		return IconHourglass
	case services.StateStopping:
		return IconWarning
	case services.StateStopped:
		return IconStop
	default:
		return IconQuestion
	}
}

// StateStyle returns the text style for a service state
func StateStyle(state services.ServiceState) lipgloss.Style {
	switch state {
	case services.StateRunning:
		return TextSuccessStyle
	case services.StateError:
		return TextErrorStyle
	case services.StateStarting, services.StateStopping:
		return TextWarningStyle
	case services.StateStopped:
		return TextSecondaryStyle
	default:
		return TextStyle
	}
}
