package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/naruebet/worklog-api/internal/models"
)

// IndexWorklog upserts one entry into the search index, keyed by row id.
func IndexWorklog(ctx context.Context, es *elasticsearch.Client, index string, w *models.Worklog) error {
	doc, err := json.Marshal(w)
	if err != nil {
		return err
	}

	res, err := es.Index(
		index,
		bytes.NewReader(doc),
		es.Index.WithDocumentID(strconv.FormatUint(uint64(w.ID), 10)),
		es.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("index worklog: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index worklog: %s", res.Status())
	}
	return nil
}

func DeleteWorklog(ctx context.Context, es *elasticsearch.Client, index string, id uint) error {
	res, err := es.Delete(
		index,
		strconv.FormatUint(uint64(id), 10),
		es.Delete.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("deindex worklog: %w", err)
	}
	defer res.Body.Close()

	// 404 is fine, the entry may never have been indexed
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("deindex worklog: %s", res.Status())
	}
	return nil
}

// Worklogs runs a fuzzy full-text query over the caller's own entries.
func Worklogs(ctx context.Context, es *elasticsearch.Client, index string, ownerID uint, query string, from, size int) (int64, []models.Worklog, error) {
	body := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must": map[string]interface{}{
					"multi_match": map[string]interface{}{
						"query":     query,
						"fields":    []string{"content^2", "date"},
						"fuzziness": "AUTO",
					},
				},
				"filter": map[string]interface{}{
					"term": map[string]interface{}{"user_id": ownerID},
				},
			},
		},
		"from": from,
		"size": size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, err
	}

	res, err := es.Search(
		es.Search.WithContext(ctx),
		es.Search.WithIndex(index),
		es.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("search worklogs: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return 0, nil, fmt.Errorf("search worklogs: %s", res.Status())
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source models.Worklog `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, err
	}

	logs := make([]models.Worklog, len(r.Hits.Hits))
	for i, hit := range r.Hits.Hits {
		logs[i] = hit.Source
	}
	return r.Hits.Total.Value, logs, nil
}
