package analysis

import (
	"encoding/json"
	"fmt"
	"strings"

	"charterlens/internal/model"
)

const systemPrompt = `You are a web analytics consultant for a yacht charter business. You respond with a single JSON object and nothing else: no markdown, no commentary.`

const outputContract = `Respond with exactly this JSON structure:
{
  "summary": "2-4 sentence executive summary of the week",
  "trends": {
    "traffic": "one line on traffic movement vs the previous week",
    "engagement": "one line on engagement (bounce rate, session duration)",
    "conversions": "one line on conversion events"
  },
  "page_insights": [
    {"page": "/path", "observation": "what the data shows", "suggestion": "what to change"}
  ],
  "traffic_analysis": {
    "drivers": "what drove traffic this week",
    "concerns": "what looks worrying"
  },
  "quick_wins": ["small improvement doable this week"],
  "hypotheses": [
    {
      "title": "short actionable title",
      "problem": "what is underperforming and the evidence",
      "solution": "concrete change to test",
      "expected_impact": "what should improve and roughly how much",
      "priority": "high|medium|low",
      "category": "conversion|content|seo|ux|performance"
    }
  ]
}
Hypotheses must be ordered most important first. If the previous week is absent, describe trends from the current week alone and say the comparison is unavailable.`

// buildPrompt renders the user message: site context plus the raw
// weekly numbers as JSON blocks the model can quote from.
func buildPrompt(input *model.AnalysisInput) (string, error) {
	current, err := json.MarshalIndent(input.CurrentWeek, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode current week: %w", err)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Site: %s (%s)\n", input.Site.SiteName, input.Site.SiteType)
	fmt.Fprintf(&sb, "Conversion events tracked: %s\n", strings.Join(input.Site.ConversionEvents, ", "))
	fmt.Fprintf(&sb, "Pages: %s\n\n", strings.Join(input.Site.Pages, ", "))

	fmt.Fprintf(&sb, "Current week metrics:\n%s\n\n", current)

	if input.PreviousWeek != nil {
		previous, err := json.MarshalIndent(input.PreviousWeek, "", "  ")
		if err != nil {
			return "", fmt.Errorf("failed to encode previous week: %w", err)
		}
		fmt.Fprintf(&sb, "Previous week metrics (comparison baseline):\n%s\n\n", previous)
	} else {
		sb.WriteString("Previous week metrics: unavailable for this run.\n\n")
	}

	sb.WriteString(outputContract)
	return sb.String(), nil
}
