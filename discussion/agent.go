package discussion

import (
	"context"
	"fmt"
	"strings"

	"github.com/BaSui01/userboard/types"
)

// Responder is the single-call LLM surface an agent speaks through.
type Responder interface {
	Ask(ctx context.Context, prompt, system string) (string, error)
}

// Agent is one seat at the board: a fixed identity bound to a responder.
// The identity is baked in at creation and never changes per turn, so it
// cannot drift as the shared history grows.
type Agent struct {
	name      string
	system    string
	responder Responder
}

// Name returns the agent's speaker name.
func (a *Agent) Name() string { return a.name }

// Respond sends prompt under the agent's fixed system identity.
func (a *Agent) Respond(ctx context.Context, prompt string) (string, error) {
	return a.responder.Ask(ctx, prompt, a.system)
}

// NewFacilitatorAgent seats the facilitator.
func NewFacilitatorAgent(responder Responder) *Agent {
	return &Agent{
		name:      types.FacilitatorName,
		responder: responder,
		system: "You are a professional user-research facilitator running a feedback " +
			"panel about proposed app features. Keep the discussion moving, stay " +
			"neutral, and be concise.",
	}
}

// NewPersonaAgent seats one synthesized persona.
func NewPersonaAgent(p types.Persona, responder Responder) *Agent {
	var sb strings.Builder
	fmt.Fprintf(&sb, "You are %s, a %d-year-old %s from %s, taking part in a user feedback panel.\n",
		p.Name, p.Profile.Age, p.Profile.Role, p.Profile.Location)
	fmt.Fprintf(&sb, "Background: %s\n", p.Background)
	fmt.Fprintf(&sb, "How you use the app: %s\n", p.UsagePattern)
	if len(p.PainPoints) > 0 {
		fmt.Fprintf(&sb, "Your pain points: %s\n", strings.Join(p.PainPoints, "; "))
	}
	if len(p.Needs) > 0 {
		fmt.Fprintf(&sb, "What you need: %s\n", strings.Join(p.Needs, "; "))
	}
	sb.WriteString("Stay in character, speak in first person, ground opinions in your " +
		"own experience, and keep answers to a few sentences.")

	return &Agent{name: p.Name, system: sb.String(), responder: responder}
}
