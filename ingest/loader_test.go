package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BaSui01/userboard/types"
)

func TestLoader_LoadCSV(t *testing.T) {
	data := strings.Join([]string{
		"review_id,content,score",
		`r1,"This app is great and works really well for me",5`,
		`r2,"",3`,
		`r3,"short",2`,
		`r4,"The app crashes constantly and loses my data",1`,
		`r5,"Decent app but the sync feature needs work badly",4`,
		`r6,"rating is not a number here at all sadly",x`,
	}, "\n")

	loader := NewLoader(zap.NewNop())
	reviews, err := loader.LoadCSV(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, reviews, 3)

	assert.Equal(t, "r1", reviews[0].ID)
	assert.Equal(t, 5, reviews[0].Rating)
	assert.NotEmpty(t, reviews[0].CleanedText)
	assert.Equal(t, types.SentimentPositive, reviews[0].Sentiment.Label())

	assert.Equal(t, "r4", reviews[1].ID)
	assert.Equal(t, types.SentimentNegative, reviews[1].Sentiment.Label())
}

func TestLoader_LoadCSV_HeaderAliases(t *testing.T) {
	data := "id,text,stars\nr1,\"A perfectly reasonable review body here\",4\n"
	loader := NewLoader(nil)
	reviews, err := loader.LoadCSV(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, 4, reviews[0].Rating)
}

func TestLoader_LoadCSV_MissingColumns(t *testing.T) {
	loader := NewLoader(nil)
	_, err := loader.LoadCSV(strings.NewReader("a,b\n1,2\n"))
	require.Error(t, err)
	assert.Equal(t, types.ErrDataQuality, types.GetErrorCode(err))
}

func TestLoader_LoadCSV_NothingSurvives(t *testing.T) {
	loader := NewLoader(nil)
	_, err := loader.LoadCSV(strings.NewReader("review_id,content,score\nr1,tiny,5\n"))
	require.Error(t, err)
	assert.Equal(t, types.ErrDataQuality, types.GetErrorCode(err))
}

func TestNewReview_Bounds(t *testing.T) {
	_, ok := NewReview("r1", "long enough review body for the filter", 0)
	assert.False(t, ok)
	_, ok = NewReview("r1", "long enough review body for the filter", 6)
	assert.False(t, ok)
	rv, ok := NewReview("r1", "long enough review body for the filter", 3)
	require.True(t, ok)
	assert.Equal(t, rv.CleanedText, Clean(rv.RawText))
}
