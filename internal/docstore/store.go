package docstore

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"infinite-experiment/clanhall/internal/logging"
	"infinite-experiment/clanhall/internal/metrics"
)

// TimestampLayout is the layout of createdAt/updatedAt values.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// ErrInvalidCollection is returned for collection names outside [A-Za-z0-9_-].
var ErrInvalidCollection = errors.New("docstore: invalid collection name")

var collectionNamePattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// Store keeps every loaded collection in memory and writes the whole
// collection through the backend after each mutation.
type Store struct {
	backend Backend
	logger  *zap.SugaredLogger
	metrics *metrics.MetricsRegistry
	now     func() time.Time
	newID   func() string

	mu          sync.Mutex
	defaults    map[string]Document
	collections map[string][]Document
}

type Option func(*Store)

func WithLogger(logger *zap.SugaredLogger) Option {
	return func(s *Store) { s.logger = logger }
}

func WithMetrics(reg *metrics.MetricsRegistry) Option {
	return func(s *Store) { s.metrics = reg }
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithIDGenerator(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

// New creates a store over backend. Collections are loaded lazily.
func New(backend Backend, opts ...Option) *Store {
	s := &Store{
		backend:     backend,
		now:         time.Now,
		newID:       func() string { return uuid.New().String() },
		defaults:    make(map[string]Document),
		collections: make(map[string][]Document),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logging.GetLogger()
	}
	return s
}

// Declare registers the default field template merged under Create input.
func (s *Store) Declare(collection string, defaults Document) error {
	if !collectionNamePattern.MatchString(collection) {
		return fmt.Errorf("%w: %q", ErrInvalidCollection, collection)
	}
	norm, err := normalize(defaults)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.defaults[collection] = norm
	return nil
}

// Load reads a collection into memory. A missing collection is created empty.
// Calling Load again is a no-op.
func (s *Store) Load(ctx context.Context, collection string) error {
	defer s.observe("load", collection, time.Now())
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.loadLocked(ctx, collection)
	return err
}

func (s *Store) loadLocked(ctx context.Context, collection string) ([]Document, error) {
	if docs, ok := s.collections[collection]; ok {
		return docs, nil
	}
	if !collectionNamePattern.MatchString(collection) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCollection, collection)
	}

	raw, err := s.backend.Read(ctx, collection)
	switch {
	case errors.Is(err, ErrMissing):
		if err := s.backend.Write(ctx, collection, []byte("[]")); err != nil {
			return nil, fmt.Errorf("docstore: initialise %s: %w", collection, err)
		}
		s.logger.Infow("Created empty collection", "collection", collection)
		s.collections[collection] = []Document{}
		return s.collections[collection], nil
	case err != nil:
		return nil, fmt.Errorf("docstore: read %s: %w", collection, err)
	}

	docs, dropped, ok := decodeCollection(raw)
	if !ok {
		s.logger.Warnw("Malformed collection data, treating as empty",
			"collection", collection,
			"bytes", len(raw),
		)
		docs = []Document{}
	} else if dropped > 0 {
		s.logger.Warnw("Dropped non-object entries from collection",
			"collection", collection,
			"dropped", dropped,
		)
	}
	s.collections[collection] = docs
	return docs, nil
}

// FindOne returns a copy of the first matching document, or nil.
func (s *Store) FindOne(ctx context.Context, collection string, q Query) (Document, error) {
	defer s.observe("find_one", collection, time.Now())
	if err := q.Validate(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	docs, err := s.loadLocked(ctx, collection)
	if err != nil {
		return nil, err
	}
	for _, d := range docs {
		if q.Matches(d) {
			return d.Clone(), nil
		}
	}
	return nil, nil
}

// FindByID is FindOne on the id field.
func (s *Store) FindByID(ctx context.Context, collection string, id any) (Document, error) {
	return s.FindOne(ctx, collection, Eq(FieldID, id))
}

// Find returns copies of every matching document in insertion order.
func (s *Store) Find(ctx context.Context, collection string, q Query) ([]Document, error) {
	defer s.observe("find", collection, time.Now())
	if err := q.Validate(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	docs, err := s.loadLocked(ctx, collection)
	if err != nil {
		return nil, err
	}
	out := make([]Document, 0)
	for _, d := range docs {
		if q.Matches(d) {
			out = append(out, d.Clone())
		}
	}
	return out, nil
}

func (s *Store) Count(ctx context.Context, collection string, q Query) (int, error) {
	if err := q.Validate(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	docs, err := s.loadLocked(ctx, collection)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, d := range docs {
		if q.Matches(d) {
			n++
		}
	}
	return n, nil
}

// Create merges fields over the collection defaults, assigns a fresh id and
// timestamps, appends and persists. Caller supplied ids are ignored.
func (s *Store) Create(ctx context.Context, collection string, fields Document) (Document, error) {
	defer s.observe("create", collection, time.Now())
	s.mu.Lock()
	defer s.mu.Unlock()
	docs, err := s.loadLocked(ctx, collection)
	if err != nil {
		return nil, err
	}

	merged := s.defaults[collection].Clone()
	if merged == nil {
		merged = Document{}
	}
	for k, v := range fields {
		merged[k] = v
	}
	ts := s.timestamp()
	merged[FieldID] = s.newID()
	merged[FieldCreatedAt] = ts
	merged[FieldUpdatedAt] = ts

	doc, err := normalize(merged)
	if err != nil {
		return nil, err
	}

	next := make([]Document, len(docs), len(docs)+1)
	copy(next, docs)
	next = append(next, doc)
	if err := s.commitLocked(ctx, collection, next); err != nil {
		return nil, err
	}
	return doc.Clone(), nil
}

// Save upserts doc by id: a document without id gets one, createdAt is kept
// when present, updatedAt is refreshed. The whole document is replaced.
func (s *Store) Save(ctx context.Context, collection string, doc Document) (Document, error) {
	defer s.observe("save", collection, time.Now())
	s.mu.Lock()
	defer s.mu.Unlock()
	docs, err := s.loadLocked(ctx, collection)
	if err != nil {
		return nil, err
	}

	record, err := normalize(doc)
	if err != nil {
		return nil, err
	}
	if record.ID() == "" {
		record[FieldID] = s.newID()
	}
	ts := s.timestamp()
	if v, ok := canonical(record[FieldCreatedAt]); !ok || v == "" {
		record[FieldCreatedAt] = ts
	}
	record[FieldUpdatedAt] = ts

	id := record.ID()
	next := make([]Document, len(docs), len(docs)+1)
	copy(next, docs)
	replaced := false
	for i, d := range next {
		if d.ID() == id {
			next[i] = record
			replaced = true
			break
		}
	}
	if !replaced {
		next = append(next, record)
	}
	if err := s.commitLocked(ctx, collection, next); err != nil {
		return nil, err
	}
	return record.Clone(), nil
}

// UpdateMany sets the given fields on every match and persists once when
// anything matched. It returns the number of matched documents.
func (s *Store) UpdateMany(ctx context.Context, collection string, q Query, set Document) (int, error) {
	defer s.observe("update_many", collection, time.Now())
	if err := q.Validate(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	docs, err := s.loadLocked(ctx, collection)
	if err != nil {
		return 0, err
	}
	patch, err := normalize(set)
	if err != nil {
		return 0, err
	}
	delete(patch, FieldID)

	ts := s.timestamp()
	next := make([]Document, len(docs))
	copy(next, docs)
	matched := 0
	for i, d := range next {
		if !q.Matches(d) {
			continue
		}
		updated := d.Clone()
		for k, v := range patch {
			updated[k] = cloneValue(v)
		}
		updated[FieldUpdatedAt] = ts
		next[i] = updated
		matched++
	}
	if matched == 0 {
		return 0, nil
	}
	if err := s.commitLocked(ctx, collection, next); err != nil {
		return 0, err
	}
	return matched, nil
}

// DeleteOne removes the first match and reports whether anything was removed.
func (s *Store) DeleteOne(ctx context.Context, collection string, q Query) (bool, error) {
	defer s.observe("delete_one", collection, time.Now())
	if err := q.Validate(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	docs, err := s.loadLocked(ctx, collection)
	if err != nil {
		return false, err
	}
	idx := -1
	for i, d := range docs {
		if q.Matches(d) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false, nil
	}
	next := make([]Document, 0, len(docs)-1)
	next = append(next, docs[:idx]...)
	next = append(next, docs[idx+1:]...)
	if err := s.commitLocked(ctx, collection, next); err != nil {
		return false, err
	}
	return true, nil
}

// Ping checks the backend.
func (s *Store) Ping(ctx context.Context) error {
	return s.backend.Ping(ctx)
}

// Close releases the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}

// commitLocked persists next and only then makes it the in-memory state, so a
// failed write leaves both memory and the backend at the previous version.
func (s *Store) commitLocked(ctx context.Context, collection string, next []Document) error {
	raw, err := encodeCollection(next)
	if err != nil {
		return fmt.Errorf("docstore: encode %s: %w", collection, err)
	}
	if err := s.backend.Write(ctx, collection, raw); err != nil {
		if s.metrics != nil {
			s.metrics.StoreWriteErrorsTotal.WithLabelValues(collection).Inc()
		}
		s.logger.Errorw("Failed to persist collection",
			"collection", collection,
			"error", err.Error(),
		)
		return fmt.Errorf("docstore: write %s: %w", collection, err)
	}
	s.collections[collection] = next
	return nil
}

func (s *Store) timestamp() string {
	return s.now().UTC().Format(TimestampLayout)
}

func (s *Store) observe(op, collection string, start time.Time) {
	if s.metrics == nil {
		return
	}
	s.metrics.StoreOperationsTotal.WithLabelValues(collection, op).Inc()
	s.metrics.StoreOperationDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
