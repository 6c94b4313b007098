package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/elastic/go-elasticsearch/v9"
)

type ElasticSink struct {
	Client *elasticsearch.Client
	Index  string
}

// NewElasticClient connects and checks the cluster answers.
func NewElasticClient(url, user, password string) (*elasticsearch.Client, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{url},
		Username:  user,
		Password:  password,
	})
	if err != nil {
		return nil, fmt.Errorf("elasticsearch: new client: %w", err)
	}

	res, err := client.Info()
	if err != nil {
		return nil, fmt.Errorf("elasticsearch: info: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("elasticsearch: %s: %s", res.Status(), body)
	}
	return client, nil
}

func (s *ElasticSink) Write(ctx context.Context, a Activity) error {
	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("elasticsearch: json.Marshal failed: %w", err)
	}

	res, err := s.Client.Index(s.Index, bytes.NewReader(data), s.Client.Index.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("elasticsearch: index: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return fmt.Errorf("elasticsearch: index %s: %s", res.Status(), body)
	}
	return nil
}
