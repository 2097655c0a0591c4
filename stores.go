// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package helpdesk

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	gcblob "gocloud.dev/blob"
	_ "gocloud.dev/blob/s3blob"

	"github.com/poiesic/helpdesk/storage"
	"github.com/poiesic/helpdesk/storage/badger"
	"github.com/poiesic/helpdesk/storage/blob"
	"github.com/poiesic/helpdesk/storage/sqlite"
)

// Stores bundles the two entity stores behind one construction point.
// Backend selection happens here and only here; everything downstream
// works against the storage interfaces.
type Stores struct {
	conversations storage.ConversationStore
	orders        storage.OrderStore
	closers       []func() error
	logger        *slog.Logger
}

// StoresOption configures Open.
type StoresOption func(*storesOptions)

type storesOptions struct {
	bucket *gcblob.Bucket
	logger *slog.Logger
}

// WithBucket injects a pre-opened blob bucket for the object-store
// backend instead of opening one from the config. The Stores take
// ownership and close it.
func WithBucket(bucket *gcblob.Bucket) StoresOption {
	return func(o *storesOptions) {
		o.bucket = bucket
	}
}

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) StoresOption {
	return func(o *storesOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Open validates cfg and constructs both stores. Construction is
// fail-fast: any backend that cannot be opened tears down the ones
// already opened and returns the error.
func Open(ctx context.Context, cfg *Config, opts ...StoresOption) (*Stores, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	options := &storesOptions{
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}

	s := &Stores{logger: options.logger}

	// A single SQLite handle backs both stores when both are relational.
	var shared *sqlite.Store
	openShared := func() (*sqlite.Store, error) {
		if shared != nil {
			return shared, nil
		}
		store, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		shared = store
		s.closers = append(s.closers, store.Close)
		return shared, nil
	}

	switch cfg.ConversationBackend {
	case BackendRelational:
		store, err := openShared()
		if err != nil {
			return nil, s.fail(err)
		}
		s.conversations = store.ConversationStore()
	case BackendObjectStore:
		bucket := options.bucket
		if bucket == nil {
			var err error
			bucket, err = openS3Bucket(ctx, cfg)
			if err != nil {
				return nil, s.fail(err)
			}
		}
		store, err := blob.NewConversationStore(bucket, cfg.Prefix, blob.WithLogger(options.logger))
		if err != nil {
			bucket.Close()
			return nil, s.fail(err)
		}
		s.conversations = store
		s.closers = append(s.closers, store.Close)
	}

	switch cfg.OrderBackend {
	case BackendRelational:
		store, err := openShared()
		if err != nil {
			return nil, s.fail(err)
		}
		s.orders = store.OrderStore()
	case BackendWideColumn:
		backend, err := badger.OpenBackend(cfg.TablePath, false)
		if err != nil {
			return nil, s.fail(err)
		}
		s.closers = append(s.closers, backend.Close)
		store, err := badger.NewOrderStore(backend)
		if err != nil {
			return nil, s.fail(err)
		}
		s.orders = store
		// Appended after the backend so reverse-order close releases
		// the ID sequence before the database shuts down.
		s.closers = append(s.closers, store.Close)
	}

	s.logger.Info("stores opened",
		"conversation_backend", cfg.ConversationBackend,
		"order_backend", cfg.OrderBackend)
	return s, nil
}

func openS3Bucket(ctx context.Context, cfg *Config) (*gcblob.Bucket, error) {
	u := url.URL{Scheme: "s3", Host: cfg.Bucket}
	if cfg.Region != "" {
		q := url.Values{}
		q.Set("region", cfg.Region)
		u.RawQuery = q.Encode()
	}
	bucket, err := gcblob.OpenBucket(ctx, u.String())
	if err != nil {
		return nil, fmt.Errorf("%w: open bucket %s: %w", storage.ErrBackendUnavailable, cfg.Bucket, err)
	}
	return bucket, nil
}

// Conversations returns the conversation store.
func (s *Stores) Conversations() storage.ConversationStore {
	return s.conversations
}

// Orders returns the order store.
func (s *Stores) Orders() storage.OrderStore {
	return s.orders
}

// fail closes whatever was opened so far and returns err.
func (s *Stores) fail(err error) error {
	if closeErr := s.Close(); closeErr != nil {
		s.logger.Error("error during teardown", "err", closeErr)
	}
	return err
}

// Close shuts the stores down in reverse construction order.
func (s *Stores) Close() error {
	var firstErr error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			s.logger.Error("error closing store", "err", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	s.closers = nil
	return firstErr
}
