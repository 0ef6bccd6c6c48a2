// internal/history/archive.go
package history

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/elastic/go-elasticsearch/v8"

	standarderrors "green-genie/internal/common/errors"
	"green-genie/internal/common/logger"
	"green-genie/internal/models"
)

// Archive indexes interactions into Elasticsearch for full-text search
// over free text, prompts and explanations.
type Archive struct {
	client *elasticsearch.Client
	index  string
	logger logger.Logger
}

func NewArchive(client *elasticsearch.Client, index string, log logger.Logger) *Archive {
	return &Archive{
		client: client,
		index:  index,
		logger: log.With(map[string]interface{}{
			"component": "history_archive",
			"index":     index,
		}),
	}
}

// Index stores one interaction document keyed by its ID.
func (a *Archive) Index(ctx context.Context, it models.Interaction) error {
	body, err := json.Marshal(it)
	if err != nil {
		return standarderrors.NewHistoryWriteFailedError(err)
	}

	res, err := a.client.Index(
		a.index,
		bytes.NewReader(body),
		a.client.Index.WithDocumentID(it.ID),
		a.client.Index.WithContext(ctx),
	)
	if err != nil {
		return standarderrors.NewHistoryWriteFailedError(err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return standarderrors.NewHistoryWriteFailedError(fmt.Errorf("index response: %s", res.Status()))
	}
	return nil
}

// Search runs a full-text query over free text, prompts and explanations
// and returns matching interactions, best match first.
func (a *Archive) Search(ctx context.Context, query string, limit int) ([]models.Interaction, error) {
	if limit <= 0 {
		limit = 20
	}

	body, err := json.Marshal(map[string]interface{}{
		"size": limit,
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  query,
				"fields": []string{"text", "prompt", "explanation", "sector"},
			},
		},
	})
	if err != nil {
		return nil, standarderrors.NewSearchQueryFailedError(err)
	}

	res, err := a.client.Search(
		a.client.Search.WithContext(ctx),
		a.client.Search.WithIndex(a.index),
		a.client.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, standarderrors.NewSearchQueryFailedError(err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, standarderrors.NewSearchQueryFailedError(fmt.Errorf("search response: %s", res.Status()))
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source models.Interaction `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, standarderrors.NewSearchQueryFailedError(err)
	}

	out := make([]models.Interaction, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}
