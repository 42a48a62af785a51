package coach

import (
	"strings"
	"testing"

	"github.com/sidelinehq/coach-backend/internal/types"
)

func TestBuildSystemPrompt_BaseOnly(t *testing.T) {
	prompt := BuildSystemPrompt(nil, "")
	if !strings.Contains(prompt, "career coach for athletes") {
		t.Fatalf("base persona missing from prompt")
	}
	if strings.Contains(prompt, "Athlete background") {
		t.Fatalf("empty profile produced a background section")
	}
}

func TestBuildSystemPrompt_IncludesProfile(t *testing.T) {
	prompt := BuildSystemPrompt(&types.AthleteProfile{
		Sport:          "basketball",
		Level:          "college",
		YearsCompeting: 4,
		TargetIndustry: "sales",
	}, "")

	for _, want := range []string{"Sport: basketball", "Competition level: college", "Years competing: 4", "Target industry: sales"} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q", want)
		}
	}
}

func TestBuildSystemPrompt_TruncatesLongResume(t *testing.T) {
	resume := strings.Repeat("x", resumeExcerptLimit+500)
	prompt := BuildSystemPrompt(nil, resume)

	if !strings.Contains(prompt, "shared this resume") {
		t.Fatalf("resume section missing")
	}
	if strings.Count(prompt, "x") != resumeExcerptLimit {
		t.Fatalf("resume text not truncated to %d bytes", resumeExcerptLimit)
	}
}
