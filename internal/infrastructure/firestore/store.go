package firestore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/suraksha/efir-anchor"
	"github.com/suraksha/efir-anchor/internal/infrastructure/cache"
	"github.com/suraksha/efir-anchor/internal/domain"
)

var tracer = otel.Tracer("firestore")

const (
	collection   = "firs"
	listCacheKey = "efir:firs:list"

	fieldCreatedAt = "createdAt"
	fieldStatus    = "status"
)

// Store persists records in a Firebase RTDB style JSON store over HTTP:
// one document per record under the firs collection, keyed by firId.
type Store struct {
	client  *http.Client
	baseURL string
	secret  string
	cache   cache.Cache
}

func New(baseURL, secret string, timeout time.Duration, listCache cache.Cache) *Store {
	return &Store{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
		secret:  secret,
		cache:   listCache,
	}
}

// Put upserts the record document, adding the server-side creation timestamp
// and registration status. The submitted fields are stored as-is.
func (s *Store) Put(ctx context.Context, id string, fields map[string]string) (efir.Record, error) {
	ctx, span := tracer.Start(ctx, "Firestore.Store.Put")
	defer span.End()

	createdAt := time.Now().UTC()

	doc := make(map[string]string, len(fields)+2)
	for k, v := range fields {
		doc[k] = v
	}
	doc[fieldCreatedAt] = createdAt.Format(time.RFC3339)
	doc[fieldStatus] = efir.StatusRegistered

	body, err := json.Marshal(doc)
	if err != nil {
		return efir.Record{}, &domain.StoreError{Op: "put", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, s.documentURL(id), bytes.NewReader(body))
	if err != nil {
		return efir.Record{}, &domain.StoreError{Op: "put", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		span.RecordError(err)
		return efir.Record{}, &domain.StoreError{Op: "put", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("unexpected status %d", resp.StatusCode)
		span.RecordError(err)
		return efir.Record{}, &domain.StoreError{Op: "put", Err: err}
	}

	if s.cache != nil {
		s.cache.Delete(listCacheKey)
	}

	return efir.Record{
		FIRID:     id,
		Fields:    fields,
		CreatedAt: createdAt,
		Status:    efir.StatusRegistered,
	}, nil
}

// ListAll fetches the whole collection. Order is whatever the store returns;
// callers sort. A short TTL cache fronts the fetch and is invalidated by Put.
func (s *Store) ListAll(ctx context.Context) ([]efir.Record, error) {
	ctx, span := tracer.Start(ctx, "Firestore.Store.ListAll")
	defer span.End()

	if s.cache != nil {
		if buf, ok := s.cache.Get(listCacheKey); ok {
			var cached []efir.Record
			if err := json.Unmarshal(buf, &cached); err == nil {
				return cached, nil
			}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.collectionURL(), nil)
	if err != nil {
		return nil, &domain.StoreError{Op: "listAll", Err: err}
	}

	resp, err := s.client.Do(req)
	if err != nil {
		span.RecordError(err)
		return nil, &domain.StoreError{Op: "listAll", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("unexpected status %d", resp.StatusCode)
		span.RecordError(err)
		return nil, &domain.StoreError{Op: "listAll", Err: err}
	}

	buf, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.StoreError{Op: "listAll", Err: err}
	}

	records, err := parseCollection(buf)
	if err != nil {
		span.RecordError(err)
		return nil, &domain.StoreError{Op: "listAll", Err: err}
	}

	if s.cache != nil {
		if encoded, err := json.Marshal(records); err == nil {
			s.cache.Set(listCacheKey, encoded)
		}
	}

	return records, nil
}

// parseCollection converts the store's {id: document} object into records.
// An empty collection comes back as JSON null.
func parseCollection(buf []byte) ([]efir.Record, error) {
	var raw map[string]map[string]string
	if err := json.Unmarshal(buf, &raw); err != nil {
		return nil, fmt.Errorf("decode collection: %w", err)
	}
	if raw == nil {
		return []efir.Record{}, nil
	}

	records := make([]efir.Record, 0, len(raw))
	for id, doc := range raw {
		record := efir.Record{
			FIRID:  id,
			Fields: make(map[string]string, len(doc)),
			Status: doc[fieldStatus],
		}
		if ts, err := time.Parse(time.RFC3339, doc[fieldCreatedAt]); err == nil {
			record.CreatedAt = ts
		}
		for k, v := range doc {
			if k == fieldCreatedAt || k == fieldStatus {
				continue
			}
			record.Fields[k] = v
		}
		if fid := doc[efir.FieldFIRID]; fid != "" {
			record.FIRID = fid
		}
		records = append(records, record)
	}
	return records, nil
}

func (s *Store) documentURL(id string) string {
	return fmt.Sprintf("%s/%s/%s.json?auth=%s", s.baseURL, collection, url.PathEscape(id), url.QueryEscape(s.secret))
}

func (s *Store) collectionURL() string {
	return fmt.Sprintf("%s/%s.json?auth=%s", s.baseURL, collection, url.QueryEscape(s.secret))
}
