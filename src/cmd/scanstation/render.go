package main

import (
	"clubdesk/src/scanner"
	"clubdesk/src/types"
	"fmt"
	"strings"
	"time"
)

const stationTimeFormat = "Mon 02 Jan 15:04"

func renderState(state scanner.State, reason string) string {
	switch state {
	case scanner.StateActive:
		return successStyle.Render(iconSuccess+" Camera active.") + " " +
			mutedStyle.Render("Point it at a code or type one below.")
	case scanner.StatePermissionPrompt:
		return infoStyle.Render(iconInfo + " " + reason + " Type :grant to allow the camera.")
	case scanner.StatePermissionDenied, scanner.StateCameraUnavailable:
		return warningStyle.Render(iconWarning+" "+reason) + " " +
			mutedStyle.Render("Type :retry to try the camera again.")
	case scanner.StateNotSecure:
		return warningStyle.Render(iconWarning + " " + reason)
	}
	return mutedStyle.Render(string(state))
}

// renderResult formats a finished submission for the door operator.
func renderResult(res scanner.Result) string {
	if res.Outcome == nil {
		return errorStyle.Render(iconError + " " + res.Err.Error())
	}
	outcome := res.Outcome
	var b strings.Builder
	if outcome.Success {
		b.WriteString(successStyle.Render(iconSuccess + " ADMITTED"))
	} else {
		b.WriteString(errorStyle.Render(fmt.Sprintf("%s %s", iconError, outcome.ErrorCode)))
		b.WriteString("\n")
		b.WriteString(outcome.ErrorMessage)
	}
	lines := outcomeDetails(outcome)
	if len(lines) > 0 {
		b.WriteString("\n")
		b.WriteString(strings.Join(lines, "\n"))
	}
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(fmt.Sprintf("%s (%s)", res.Code, res.Source)))

	style := cardStyle.BorderForeground(colorError)
	if outcome.Success {
		style = cardStyle.BorderForeground(colorSuccess)
	}
	return style.Render(b.String())
}

func outcomeDetails(outcome *types.ScanOutcome) []string {
	var lines []string
	if outcome.Guest != nil {
		line := "Guest: " + outcome.Guest.Name
		if outcome.Guest.Document != "" {
			line += " (" + outcome.Guest.Document + ")"
		}
		lines = append(lines, line)
	}
	if outcome.Event != nil {
		lines = append(lines, fmt.Sprintf("Event: %s, %s", outcome.Event.Name, outcome.Event.DateTime.Local().Format(stationTimeFormat)))
	}
	if outcome.Table != nil {
		line := "Table: " + outcome.Table.Name
		if outcome.Table.Sector != "" {
			line += " / " + outcome.Table.Sector
		}
		lines = append(lines, line)
	}
	if outcome.Package != nil {
		lines = append(lines, "Package: "+outcome.Package.Name)
	}
	if outcome.ScannedBy != nil {
		line := "Scanned by: " + outcome.ScannedBy.Name
		if outcome.UsedAt != nil {
			line += " at " + outcome.UsedAt.Local().Format(time.Kitchen)
		}
		lines = append(lines, line)
	}
	return lines
}
