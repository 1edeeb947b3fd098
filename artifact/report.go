package artifact

import (
	"fmt"
	"strings"

	"github.com/BaSui01/userboard/types"
)

// ReportInput collects everything the markdown report renders.
type ReportInput struct {
	RunID      string
	Clusters   []types.Cluster
	PainPoints []types.PainPoint
	Personas   []types.Persona
	Features   []types.FeatureProposal
	Transcript []types.DiscussionTurn
	Summary    string
}

// RenderReport produces the human-readable run report.
func RenderReport(in ReportInput) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# User Board Report — run %s\n\n", in.RunID)

	sb.WriteString("## Clusters\n\n")
	sb.WriteString("| ID | Size | Avg rating | Avg sentiment | Urgency | Keywords |\n")
	sb.WriteString("|---:|-----:|-----------:|--------------:|--------:|----------|\n")
	for _, c := range in.Clusters {
		fmt.Fprintf(&sb, "| %d | %d | %.2f | %.2f | %.2f | %s |\n",
			c.ID, c.Size, c.AverageRating, c.AverageSentiment, c.UrgencyScore,
			strings.Join(c.Keywords, ", "))
	}

	if len(in.PainPoints) > 0 {
		sb.WriteString("\n## Pain points\n\n")
		for _, pp := range in.PainPoints {
			fmt.Fprintf(&sb, "- **%s** — severity %.2f, %d reviews, clusters %v\n",
				pp.Category, pp.Severity, pp.TotalCount, pp.AffectedClusters)
		}
	}

	sb.WriteString("\n## Personas\n\n")
	for _, p := range in.Personas {
		fmt.Fprintf(&sb, "### %s (cluster %d)\n\n%s\n\n", p.Name, p.ClusterSource, p.Background)
		if len(p.PainPoints) > 0 {
			fmt.Fprintf(&sb, "Pain points: %s\n\n", strings.Join(p.PainPoints, "; "))
		}
	}

	sb.WriteString("## Feature proposals\n\n")
	for i, f := range in.Features {
		fmt.Fprintf(&sb, "%d. **%s** — %s (for: %s)\n",
			i+1, f.Name, f.Description, strings.Join(f.TargetPersonas, ", "))
	}

	sb.WriteString("\n## Transcript\n\n")
	for _, turn := range in.Transcript {
		fmt.Fprintf(&sb, "**%s** (round %d, %s): %s\n\n", turn.Speaker, turn.Round, turn.Kind, turn.Text)
	}

	sb.WriteString("## Summary\n\n")
	sb.WriteString(in.Summary)
	sb.WriteString("\n")
	return sb.String()
}
