package discussion

// NoFollowupMarker is the literal string the facilitator emits when a
// persona's answer needs no probing. Detection is a plain substring
// check, never another model call.
const NoFollowupMarker = "NO_FOLLOWUP"

// coreQuestions is the fixed agenda. Rounds beyond its length reuse
// genericQuestion.
var coreQuestions = []string{
	"What is your first reaction to these proposed features?",
	"Which of these features would be most valuable to you personally, and why?",
	"What concerns or doubts do you have about any of these proposals?",
	"Would any of these features change how often or how you use the app?",
	"If you could change one thing about these proposals, what would it be?",
}

const genericQuestion = "Let's continue. What else should the product team know " +
	"about these proposals from your perspective?"

// questionForRound returns the agenda entry for a 1-based round.
func questionForRound(round int) string {
	if round >= 1 && round <= len(coreQuestions) {
		return coreQuestions[round-1]
	}
	return genericQuestion
}
