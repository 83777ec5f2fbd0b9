package view

import (
	"fmt"
	"strings"
	"time"

	"svcctl/internal/config"
	"svcctl/internal/container"
	"svcctl/internal/events"
	"svcctl/internal/services"
)

const maxColumnWidth = 40

// ServicesTable renders the registered services of a container, one per line.
func ServicesTable(infos []container.ServiceInfo) string {
	if len(infos) == 0 {
		return TextSecondaryStyle.Render("No services registered") + "\n"
	}

	rows := make([][]string, 0, len(infos))
	states := make([]services.ServiceState, 0, len(infos))
	for _, info := range infos {
		rows = append(rows, []string{info.Name, info.Type, SafeIcon(StateIcon(info.State)) + info.State.String()})
		states = append(states, info.State)
	}

	return renderTable([]string{"NAME", "TYPE", "STATE"}, rows, func(row, col int, cell string) string {
		if col == 2 {
			return StateStyle(states[row]).Render(cell)
		}
		return cell
	})
}

// DefinitionsTable renders configured services.
func DefinitionsTable(defs []config.ServiceDefinition) string {
	if len(defs) == 0 {
		return TextSecondaryStyle.Render("No services configured") + "\n"
	}

	rows := make([][]string, 0, len(defs))
	for _, def := range defs {
		enabled := "no"
		if def.Enabled {
			enabled = "yes"
		}
		rows = append(rows, []string{def.Name, string(def.Kind), enabled, definitionDetail(def)})
	}
	return renderTable([]string{"NAME", "KIND", "ENABLED", "SETTINGS"}, rows, nil)
}

func definitionDetail(def config.ServiceDefinition) string {
	var parts []string
	if def.Interval > 0 {
		parts = append(parts, "interval="+def.Interval.String())
	}
	if def.Lifetime > 0 {
		parts = append(parts, "lifetime="+def.Lifetime.String())
	}
	if def.StartDelay > 0 {
		parts = append(parts, "startDelay="+def.StartDelay.String())
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, " ")
}

// renderTable aligns cells by display width. style, when set, decorates a
// cell after it has been padded.
func renderTable(header []string, rows [][]string, style func(row, col int, cell string) string) string {
	widths := make([]int, len(header))
	measure := func(cells []string) {
		for i, cell := range cells {
			if w := displayWidth(truncate(cell, maxColumnWidth)); w > widths[i] {
				widths[i] = w
			}
		}
	}
	measure(header)
	for _, row := range rows {
		measure(row)
	}

	var b strings.Builder
	for i, h := range header {
		if i > 0 {
			b.WriteString("  ")
		}
		b.WriteString(HeaderStyle.Render(padRight(h, widths[i])))
	}
	b.WriteString("\n")

	for r, row := range rows {
		for i, cell := range row {
			if i > 0 {
				b.WriteString("  ")
			}
			cell = padRight(truncate(cell, maxColumnWidth), widths[i])
			if style != nil {
				cell = style(r, i, cell)
			}
			b.WriteString(cell)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// EventLine renders a lifecycle event as a single log-style line.
func EventLine(evt events.Event) string {
	ts := evt.Timestamp.Format(time.TimeOnly)
	line := fmt.Sprintf("%s %-18s %s", ts, evt.Type, evt.Source)
	if evt.Err != nil {
		line += ": " + evt.Err.Error()
	}

	switch evt.Severity {
	case events.SeverityError:
		return TextErrorStyle.Render(line)
	case events.SeverityWarn:
		return TextWarningStyle.Render(line)
	case events.SeverityDebug:
		return TextSecondaryStyle.Render(line)
	default:
		return TextInfoStyle.Render(line)
	}
}
