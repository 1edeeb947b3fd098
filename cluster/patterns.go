package cluster

import (
	"regexp"

	"github.com/BaSui01/userboard/types"
)

// featurePattern is one named regex group run over every cleaned review
// text. A review may match zero, one, or several categories.
type featurePattern struct {
	category types.FeatureCategory
	re       *regexp.Regexp
}

var featurePatterns = []featurePattern{
	{types.CategoryUI, regexp.MustCompile(
		`\b(interface|design|layout|button|buttons|screen|display|theme|font|dark mode|ugly|look)\b`)},
	{types.CategoryFunctionality, regexp.MustCompile(
		`\b(feature|features|option|options|missing|wish|add|ability|support for|would be (nice|great))\b`)},
	{types.CategoryPerformance, regexp.MustCompile(
		`\b(slow|lag|laggy|freeze|freezes|frozen|speed|performance|battery|memory|loading|load time)\b`)},
	{types.CategoryBugReports, regexp.MustCompile(
		`\b(crash|crashes|crashed|crashing|bug|bugs|buggy|error|errors|broken|glitch|force clos\w*|not work\w*|fix)\b`)},
	{types.CategorySyncBackup, regexp.MustCompile(
		`\b(sync|syncing|backup|restore|export|import|cloud|transfer|lost (my )?data)\b`)},
	{types.CategoryMonetization, regexp.MustCompile(
		`\b(ads?|advert\w*|premium|subscription|subscribe|price|pricing|pay|paid|purchase|expensive|free version)\b`)},
	{types.CategoryActivation, regexp.MustCompile(
		`\b(login|log in|sign in|signin|account|password|register|registration|activation|verify|verification)\b`)},
}
