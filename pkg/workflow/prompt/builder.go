package prompt

import (
	"fmt"
	"strings"
)

// Builder renders the three prompts of the consultancy pipeline. All
// three are plain text; the agent personas live in the system
// instructions, not here.
type Builder struct{}

func NewBuilder() *Builder {
	return &Builder{}
}

// ResearchInitial is the first Pedro pass over the raw company
// description.
func (b *Builder) ResearchInitial(companyInfo string) string {
	var p strings.Builder

	p.WriteString("<company_description>\n")
	p.WriteString(companyInfo)
	p.WriteString("\n</company_description>\n\n")
	p.WriteString("Produce your first technical research finding for this company.")

	return p.String()
}

// ResearchFollowUp is the second Pedro pass; it receives the literal
// text of the first finding and is expected to deepen it, not repeat it.
func (b *Builder) ResearchFollowUp(companyInfo, previousFinding string) string {
	var p strings.Builder

	p.WriteString("<company_description>\n")
	p.WriteString(companyInfo)
	p.WriteString("\n</company_description>\n\n")
	p.WriteString("<previous_finding>\n")
	p.WriteString(previousFinding)
	p.WriteString("\n</previous_finding>\n\n")
	p.WriteString("Drill into the most material point of the previous finding. Do not repeat it.")

	return p.String()
}

// Synthesis is the single Juan pass over the full ordered research
// sequence, rendered as a numbered list.
func (b *Builder) Synthesis(companyInfo string, researchResults []string) string {
	var p strings.Builder

	p.WriteString("<company_description>\n")
	p.WriteString(companyInfo)
	p.WriteString("\n</company_description>\n\n")

	p.WriteString("<research_findings>\n")
	for i, result := range researchResults {
		p.WriteString(fmt.Sprintf("%d. %s\n", i+1, result))
	}
	p.WriteString("</research_findings>\n\n")
	p.WriteString("Write the final business report for the client.")

	return p.String()
}
