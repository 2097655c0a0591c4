package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"strings"
	"sync"

	"github.com/panjf2000/ants/v2"
	"gocloud.dev/blob"
	"gocloud.dev/gcerrors"

	"github.com/poiesic/helpdesk/storage"
)

const (
	metadataSuffix = "/metadata.json"
	messagesSuffix = "/messages.json"
)

// ConversationStore implements storage.ConversationStore on a blob
// bucket. Each conversation is two independent JSON documents under a
// common key prefix: a metadata document and a messages document holding
// the full ordered message array.
//
// The backend offers no partial-document update and no compare-and-swap,
// so AddMessage is a whole-document read-modify-write; see the package
// storage doc for the concurrency implications.
type ConversationStore struct {
	bucket *blob.Bucket
	prefix string
	pool   *ants.Pool
	logger *slog.Logger
}

var _ storage.ConversationStore = (*ConversationStore)(nil)

// Option configures a ConversationStore.
type Option func(*options)

type options struct {
	poolSize int
	logger   *slog.Logger
}

// WithPoolSize sets the worker pool size used to fan out per-key
// document fetches during prefix scans. Default is half the CPUs, with
// a minimum of 1.
func WithPoolSize(size int) Option {
	return func(o *options) {
		if size < 1 {
			size = 1
		}
		o.poolSize = size
	}
}

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// NewConversationStore creates a conversation store over bucket with
// keys under prefix. The store takes ownership of the bucket and closes
// it on Close.
func NewConversationStore(bucket *blob.Bucket, prefix string, opts ...Option) (*ConversationStore, error) {
	if bucket == nil {
		return nil, fmt.Errorf("%w: nil bucket", storage.ErrInvalidQuery)
	}
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	o := &options{
		poolSize: max(runtime.NumCPU()/2, 1),
		logger:   slog.Default().With("component", "blob-store"),
	}
	for _, opt := range opts {
		opt(o)
	}

	pool, err := ants.NewPool(o.poolSize)
	if err != nil {
		return nil, err
	}

	return &ConversationStore{
		bucket: bucket,
		prefix: prefix,
		pool:   pool,
		logger: o.logger,
	}, nil
}

// Close releases the worker pool and the bucket.
func (s *ConversationStore) Close() error {
	s.pool.Release()
	return s.bucket.Close()
}

func (s *ConversationStore) metadataKey(conversationID string) string {
	return s.prefix + conversationID + metadataSuffix
}

func (s *ConversationStore) messagesKey(conversationID string) string {
	return s.prefix + conversationID + messagesSuffix
}

// loadDoc reads a whole document. Absence of the key is the ErrNotFound
// signal; any other driver failure is ErrBackendUnavailable, never
// conflated with absence.
func (s *ConversationStore) loadDoc(ctx context.Context, key string) ([]byte, error) {
	data, err := s.bucket.ReadAll(ctx, key)
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("%w: read %s: %w", storage.ErrBackendUnavailable, key, err)
	}
	return data, nil
}

// saveDoc overwrites a whole document.
func (s *ConversationStore) saveDoc(ctx context.Context, key string, data []byte) error {
	opts := &blob.WriterOptions{ContentType: "application/json"}
	if err := s.bucket.WriteAll(ctx, key, data, opts); err != nil {
		return fmt.Errorf("%w: write %s: %w", storage.ErrBackendUnavailable, key, err)
	}
	return nil
}

// listKeys walks every key under the store prefix. This is the backend's
// structural cost: customer listings and statistics are O(total
// conversations), not O(matching conversations).
func (s *ConversationStore) listKeys(ctx context.Context) ([]string, error) {
	var keys []string
	iter := s.bucket.List(&blob.ListOptions{Prefix: s.prefix})
	for {
		obj, err := iter.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: list %s: %w", storage.ErrBackendUnavailable, s.prefix, err)
		}
		keys = append(keys, obj.Key)
	}
	return keys, nil
}

func isMetadataKey(key string) bool {
	return strings.HasSuffix(key, metadataSuffix)
}

func isMessagesKey(key string) bool {
	return strings.HasSuffix(key, messagesSuffix)
}

// metadataKeys filters a key listing down to metadata documents.
func metadataKeys(keys []string) []string {
	var out []string
	for _, key := range keys {
		if isMetadataKey(key) {
			out = append(out, key)
		}
	}
	return out
}

// fanOut runs fn for each key on the worker pool and waits for all of
// them. fn must synchronize its own writes; the first error wins.
func (s *ConversationStore) fanOut(keys []string, fn func(key string) error) error {
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	record := func(err error) {
		mu.Lock()
		defer mu.Unlock()
		if firstErr == nil {
			firstErr = err
		}
	}

	for _, key := range keys {
		key := key
		wg.Add(1)
		if err := s.pool.Submit(func() {
			defer wg.Done()
			if err := fn(key); err != nil {
				record(err)
			}
		}); err != nil {
			wg.Done()
			record(err)
		}
	}
	wg.Wait()
	return firstErr
}
