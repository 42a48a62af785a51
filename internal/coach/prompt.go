// Package coach builds the system prompt for the sports-career coaching
// persona.
package coach

import (
	"fmt"
	"strings"

	"github.com/sidelinehq/coach-backend/internal/types"
)

const basePrompt = `You are Sideline, a career coach for athletes transitioning out of competitive sports.

You help athletes translate the skills they built on the field into careers off it: discipline, performance under pressure, teamwork, leadership, and coachability. You are practical and specific. You recommend concrete next steps, not platitudes.

Guidelines:
- Keep answers focused on the athlete's situation; ask a clarifying question when their goal is unclear.
- When discussing resumes, reframe athletic experience in terms hiring managers understand.
- When discussing networking, suggest channels athletes actually have access to (alumni networks, team staff, boosters, sponsors).
- Never invent facts about the athlete that they did not share.`

// resumeExcerptLimit bounds how much pasted resume text goes into the prompt.
const resumeExcerptLimit = 6000

// BuildSystemPrompt assembles the system prompt from the base persona plus
// whatever background the client supplied.
func BuildSystemPrompt(profile *types.AthleteProfile, resumeText string) string {
	var b strings.Builder
	b.WriteString(basePrompt)

	if profile != nil {
		b.WriteString("\n\nAthlete background:")
		if profile.Sport != "" {
			fmt.Fprintf(&b, "\n- Sport: %s", profile.Sport)
		}
		if profile.Level != "" {
			fmt.Fprintf(&b, "\n- Competition level: %s", profile.Level)
		}
		if profile.YearsCompeting > 0 {
			fmt.Fprintf(&b, "\n- Years competing: %d", profile.YearsCompeting)
		}
		if profile.TargetIndustry != "" {
			fmt.Fprintf(&b, "\n- Target industry: %s", profile.TargetIndustry)
		}
	}

	if resumeText = strings.TrimSpace(resumeText); resumeText != "" {
		if len(resumeText) > resumeExcerptLimit {
			resumeText = resumeText[:resumeExcerptLimit]
		}
		b.WriteString("\n\nThe athlete shared this resume:\n")
		b.WriteString(resumeText)
	}

	return b.String()
}
