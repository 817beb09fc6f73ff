package analysis

import (
	"fmt"
	"strings"

	"github.com/amlaw/client-portal/internal/domain"
)

// SystemPrompt frames every section request
const SystemPrompt = "You are a legal research assistant for a South African law firm. " +
	"Answer with practical, well-structured guidance grounded in South African law."

var requirements = []string{
	"Reference relevant SA Acts and Regulations",
	"Consider Constitutional Court rulings",
	"Include practical court procedure guidance",
	"Note provincial legal variations if applicable",
	"Suggest local legal aid resources",
}

// BuildPrompt renders the request context for one section
func BuildPrompt(section domain.AnalysisSection, req domain.AnalysisRequest) string {
	var sb strings.Builder

	sb.WriteString("South African Legal Matter:\n")
	fmt.Fprintf(&sb, "- Case Type: %s\n", req.CaseType)
	fmt.Fprintf(&sb, "- Jurisdiction: %s\n", req.Jurisdiction)
	fmt.Fprintf(&sb, "- Involved Parties: %s\n", req.InvolvedParties)
	fmt.Fprintf(&sb, "- Existing Documentation: %s\n", req.ExistingDocs)

	sb.WriteString("\nLegal Question:\n")
	sb.WriteString(req.LegalQuestion)
	sb.WriteString("\n\n")

	fmt.Fprintf(&sb, "Analysis Requirements (%s):\n", section.Prompt)
	for _, r := range requirements {
		fmt.Fprintf(&sb, "- %s\n", r)
	}

	return sb.String()
}
