package artifact

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BaSui01/userboard/types"
)

func TestFSWriter_WriteAndWriteJSON(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "artifacts")
	w, err := NewFSWriter(dir, nil)
	require.NoError(t, err)
	assert.Equal(t, dir, w.Dir())

	loc, err := w.Write("summary.md", []byte("## Summary\nall good"))
	require.NoError(t, err)
	content, err := os.ReadFile(loc)
	require.NoError(t, err)
	assert.Equal(t, "## Summary\nall good", string(content))

	loc, err = WriteJSON(w, "personas.json", []types.Persona{{Name: "Marcus", ClusterSource: 2}})
	require.NoError(t, err)
	content, err = os.ReadFile(loc)
	require.NoError(t, err)
	assert.Contains(t, string(content), `"name": "Marcus"`)
	assert.Contains(t, string(content), `"cluster_source": 2`)
}

func TestStore_RunLifecycle(t *testing.T) {
	db, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	store, err := NewStore(db, nil)
	require.NoError(t, err)

	run, err := store.CreateRun()
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, RunStatusRunning, run.Status)

	require.NoError(t, store.RecordArtifact(run.ID, "clusters.json", "/tmp/clusters.json"))
	require.NoError(t, store.RecordArtifact(run.ID, "report.md", "/tmp/report.md"))

	run.ReviewCount = 120
	run.ClusterCount = 4
	require.NoError(t, store.FinishRun(run, RunStatusSuccess, ""))

	got, artifacts, err := store.GetRun(run.ID)
	require.NoError(t, err)
	assert.Equal(t, RunStatusSuccess, got.Status)
	assert.Empty(t, got.Cause)
	assert.Equal(t, 120, got.ReviewCount)
	require.Len(t, artifacts, 2)
	assert.Equal(t, "clusters.json", artifacts[0].Name)
	assert.Equal(t, "report.md", artifacts[1].Name)
}

func TestStore_FailedRunKeepsCause(t *testing.T) {
	db, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	store, err := NewStore(db, nil)
	require.NoError(t, err)

	run, err := store.CreateRun()
	require.NoError(t, err)
	require.NoError(t, store.FinishRun(run, RunStatusFailed, "DATA_QUALITY: corpus too small"))

	got, _, err := store.GetRun(run.ID)
	require.NoError(t, err)
	assert.Equal(t, RunStatusFailed, got.Status)
	assert.Contains(t, got.Cause, "DATA_QUALITY")
}

func TestRenderReport(t *testing.T) {
	report := RenderReport(ReportInput{
		RunID: "run-1",
		Clusters: []types.Cluster{
			{ID: 0, Size: 15, AverageRating: 1.2, AverageSentiment: -0.7, UrgencyScore: 0.9,
				Keywords: []string{"crash", "data"}},
		},
		PainPoints: []types.PainPoint{
			{Category: types.CategoryBugReports, Severity: 1.1, TotalCount: 15, AffectedClusters: []int{0}},
		},
		Personas: []types.Persona{
			{Name: "Marcus", ClusterSource: 0, Background: "Marcus runs ops.",
				PainPoints: []string{"crashes daily"}},
		},
		Features: []types.FeatureProposal{
			{Name: "Crash Shield", Description: "automatic crash recovery", TargetPersonas: []string{"Marcus"}},
		},
		Transcript: []types.DiscussionTurn{
			{Speaker: types.FacilitatorName, Round: 0, Kind: types.TurnQuestion, Text: "welcome"},
			{Speaker: "Marcus", Round: 1, Kind: types.TurnAnswer, Text: "I need this"},
		},
		Summary: "## Recommendation\nGo.",
	})

	for _, want := range []string{
		"# User Board Report — run run-1",
		"| 0 | 15 | 1.20 | -0.70 | 0.90 | crash, data |",
		"**bug_reports** — severity 1.10",
		"### Marcus (cluster 0)",
		"**Crash Shield** — automatic crash recovery (for: Marcus)",
		"**facilitator** (round 0, question): welcome",
		"## Recommendation\nGo.",
	} {
		assert.True(t, strings.Contains(report, want), "missing %q", want)
	}
}
