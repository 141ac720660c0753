package faq

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"sort"

	"github.com/google/uuid"

	apperrors "github.com/yanqian/faq-engine/pkg/errors"
	"github.com/yanqian/faq-engine/pkg/util"
)

var exportColumns = []string{"Question ID", "Question", "Answer", "Category", "Added By", "Created At"}

func (s *service) Export(ctx context.Context, req ExportRequest) (ExportResult, error) {
	records, err := s.store.FindAll(ctx, Projection{OmitEmbedding: true})
	if err != nil {
		return ExportResult{}, apperrors.Wrap(apperrors.CodeStoreUnavailable, "failed to load faqs", err)
	}

	kind := "all"
	if req.Limit > 0 {
		limit := req.Limit
		if limit > maxRecent {
			limit = maxRecent
		}
		sortByRecency(records)
		if len(records) > limit {
			records = records[:limit]
		}
		kind = fmt.Sprintf("recent_%d", limit)
	} else {
		sortByIdentifier(records)
	}

	data, err := WriteCSV(records)
	if err != nil {
		return ExportResult{}, apperrors.Wrap(apperrors.CodeInternal, "failed to render export", err)
	}
	key := fmt.Sprintf("exports/faqs_%s_%s_%s.csv", kind, util.NowUTC().Format("20060102_150405"), uuid.NewString())
	result := ExportResult{Key: key, Rows: len(records), Data: data}
	if s.exports != nil {
		location, err := s.exports.Put(ctx, key, data, "text/csv")
		if err != nil {
			s.logger.Warn("faq export upload failed, returning inline only", "key", key, "error", err)
		} else {
			result.Location = location
		}
	}
	return result, nil
}

// WriteCSV renders records with the export header.
func WriteCSV(records []Record) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(exportColumns); err != nil {
		return nil, err
	}
	for _, rec := range records {
		addedBy := rec.AddedBy
		if addedBy == "" {
			addedBy = "system"
		}
		row := []string{rec.Identifier, rec.Question, rec.Answer, rec.Category, addedBy, util.FormatTimestamp(rec.CreatedAt)}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// sortByIdentifier orders parseable identifiers numerically and puts malformed ones last.
func sortByIdentifier(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		a, errA := ParseIdentifier(records[i].Identifier)
		b, errB := ParseIdentifier(records[j].Identifier)
		switch {
		case errA != nil && errB != nil:
			return records[i].Identifier < records[j].Identifier
		case errA != nil:
			return false
		case errB != nil:
			return true
		case a.Category != b.Category:
			return a.Category < b.Category
		default:
			return a.Sequence < b.Sequence
		}
	})
}
