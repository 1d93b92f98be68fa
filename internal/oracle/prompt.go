package oracle

import (
	"encoding/json"
	"fmt"
	"strings"

	"grantmatch-backend-go/internal/models"
)

// SystemPrompt frames every ranking request.
const SystemPrompt = "You are a grant matching AI expert. Analyze startup profiles and match them with relevant grants. " +
	"Return only valid JSON array."

const rankingInstructions = `Please analyze and return a JSON array of the top 10 matching grants with the following structure:
[
  {
    "grant_id": "001",
    "name": "Grant Name",
    "relevance_score": 95,
    "reason": "Detailed explanation of why this grant matches, including eligibility criteria, sector alignment, stage compatibility, funding amount suitability and any demographic or location requirements."
  }
]

Consider these factors for matching:
1. Sector alignment between the startup's industry and the grant's sector focus.
2. Stage of startup against the grant's target stage.
3. Specific eligibility requirements.
4. Demographic focus such as woman-owned businesses.
5. Funding amount suitability for the startup's size and needs.
6. Location and regional focus.
7. Entity type requirements.
8. Track record against the grant's expectations.

Return ONLY the JSON array, no other text.`

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}

// BuildPrompt renders the ranking request for a profile and its candidate
// grants.
func BuildPrompt(profile models.ScreeningAnswers, candidates []models.Grant) (string, error) {
	grants, err := json.MarshalIndent(candidates, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode candidate grants: %w", err)
	}

	pastGrants := profile.PastGrantExperience
	if pastGrants == "" {
		pastGrants = "No"
	}

	var b strings.Builder
	b.WriteString("You are an AI grant matching expert. Given a startup profile and a list of grants, ")
	b.WriteString("rank the top 10 most relevant grants for this startup and provide detailed reasons for each match.\n\n")
	b.WriteString("Startup Profile:\n")
	fmt.Fprintf(&b, "- Name: %s\n", orNA(profile.StartupName))
	fmt.Fprintf(&b, "- Industry: %s\n", orNA(profile.Industry))
	fmt.Fprintf(&b, "- Stage: %s\n", orNA(profile.Stage))
	fmt.Fprintf(&b, "- Revenue: $%.0f\n", profile.Revenue)
	fmt.Fprintf(&b, "- Entity Type: %s\n", orNA(profile.EntityType))
	fmt.Fprintf(&b, "- Location: %s\n", orNA(profile.Location))
	fmt.Fprintf(&b, "- Demographic: %s\n", orNA(profile.Demographic))
	fmt.Fprintf(&b, "- Stability: %s\n", orNA(profile.Stability))
	fmt.Fprintf(&b, "- Track Record: %d previous projects\n", profile.TrackRecord)
	fmt.Fprintf(&b, "- Past Grant Experience: %s\n", pastGrants)
	fmt.Fprintf(&b, "- Company Size: %d employees\n", profile.CompanySize)
	fmt.Fprintf(&b, "- Description: %s\n\n", orNA(profile.Description))
	b.WriteString("Grants Database:\n")
	b.Write(grants)
	b.WriteString("\n\n")
	b.WriteString(rankingInstructions)
	return b.String(), nil
}
