package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/BaSui01/userboard/types"
)

// MinCleanedLength is the minimum cleaned-text length a row must keep to
// survive ingestion. Shorter rows carry no clusterable signal.
const MinCleanedLength = 10

// Loader reads a tabular review corpus and produces immutable Reviews.
type Loader struct {
	logger *zap.Logger
}

// NewLoader creates a corpus loader.
func NewLoader(logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{logger: logger.With(zap.String("component", "ingest"))}
}

// LoadCSV reads reviews from CSV data with at least the columns
// review_id, content and score. Rows with empty content, content shorter
// than MinCleanedLength after cleaning, or an unparseable score are
// dropped. Returns a DATA_QUALITY error if nothing survives.
func (l *Loader) LoadCSV(r io.Reader) ([]types.Review, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, types.NewError(types.ErrDataQuality, "reading CSV header").WithCause(err)
	}

	idCol, contentCol, scoreCol := -1, -1, -1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "review_id", "reviewid", "id":
			idCol = i
		case "content", "review", "text", "body":
			contentCol = i
		case "score", "rating", "stars":
			scoreCol = i
		}
	}
	if idCol < 0 || contentCol < 0 || scoreCol < 0 {
		return nil, types.NewError(types.ErrDataQuality,
			fmt.Sprintf("missing required columns in header %v", header))
	}

	var reviews []types.Review
	dropped := 0
	row := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, types.NewError(types.ErrDataQuality, "reading CSV row").WithCause(err)
		}
		row++
		if len(record) <= idCol || len(record) <= contentCol || len(record) <= scoreCol {
			dropped++
			continue
		}

		rv, ok := l.buildReview(record[idCol], record[contentCol], record[scoreCol], row)
		if !ok {
			dropped++
			continue
		}
		reviews = append(reviews, rv)
	}

	l.logger.Info("corpus loaded",
		zap.Int("accepted", len(reviews)),
		zap.Int("dropped", dropped),
	)

	if len(reviews) == 0 {
		return nil, types.NewError(types.ErrDataQuality, "no reviews survived ingestion filters")
	}
	return reviews, nil
}

// NewReview builds a single review from raw fields, applying cleaning and
// sentiment scoring. It returns false when the row should be dropped.
func NewReview(id, content string, rating int) (types.Review, bool) {
	cleaned := Clean(content)
	if len(cleaned) < MinCleanedLength || rating < 1 || rating > 5 {
		return types.Review{}, false
	}
	return types.Review{
		ID:          id,
		RawText:     content,
		CleanedText: cleaned,
		Rating:      rating,
		Sentiment:   ScoreSentiment(cleaned),
	}, true
}

func (l *Loader) buildReview(id, content, score string, row int) (types.Review, bool) {
	id = strings.TrimSpace(id)
	if id == "" {
		id = fmt.Sprintf("row_%d", row)
	}
	rating, err := strconv.Atoi(strings.TrimSpace(score))
	if err != nil {
		return types.Review{}, false
	}
	return NewReview(id, content, rating)
}
