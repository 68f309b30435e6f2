package chat

import "fmt"

// Mode selects the audience the assistant answers for.
type Mode string

const (
	// ModeAdmin answers operators with a structured bullet-point brief.
	ModeAdmin Mode = "admin"
	// ModeUser answers residents in plain, reassuring language.
	ModeUser Mode = "user"
)

const adminInstruction = "\n\nIMPORTANT: Respond ONLY with short bullet points. Structure:\n" +
	"- **Past Precautions**: 2-3 bullets on what was tried\n" +
	"- **Why They Failed**: 2-3 bullets\n" +
	"- **What Should Be Done**: 2-3 actionable bullets\n" +
	"Keep each bullet under 15 words. Be location-specific."

const userInstruction = "\n\nIMPORTANT: Respond in simple, non-technical language. " +
	"Give a short meaningful summary (3-5 sentences max). Use everyday words. " +
	"No technical jargon. Be helpful and reassuring."

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeAdmin, ModeUser:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("unknown chat mode %q (supported: admin, user)", s)
	}
}

// SystemInstruction is the system message sent first in every request.
func (m Mode) SystemInstruction() string {
	if m == ModeUser {
		return userInstruction
	}
	return adminInstruction
}

// Title is the panel title for the mode.
func (m Mode) Title() string {
	if m == ModeUser {
		return "Air Quality Helper"
	}
	return "AI Pollution Analyst"
}

// EmptyHint is shown before the first turn.
func (m Mode) EmptyHint(cityName string) string {
	if m == ModeUser {
		return fmt.Sprintf("Ask anything about air quality in %s. We'll keep it simple!", cityName)
	}
	return fmt.Sprintf("Ask about pollution predictions or policy insights for %s.", cityName)
}

// QuickAction is a canned prompt offered by the panel.
type QuickAction struct {
	Label  string
	Prompt string
}

// QuickActions returns the canned prompts for a mode and city.
func QuickActions(m Mode, cityName string) []QuickAction {
	if m == ModeUser {
		return []QuickAction{
			{Label: "Air Quality", Prompt: fmt.Sprintf("How is the air quality in %s right now? Is it safe to go outside?", cityName)},
			{Label: "Health Tips", Prompt: fmt.Sprintf("What health precautions should I take in %s today?", cityName)},
		}
	}
	return []QuickAction{
		{Label: "6h Forecast", Prompt: fmt.Sprintf("Predict pollution levels for %s in the next 6 hours.", cityName)},
		{Label: "12h Forecast", Prompt: fmt.Sprintf("Predict pollution levels for %s in the next 12 hours.", cityName)},
		{Label: "Policy Insights", Prompt: fmt.Sprintf("For %s: What past precautions were taken for pollution? Why did they fail? What should be done next?", cityName)},
	}
}
