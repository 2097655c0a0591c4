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
	"fmt"
	"os"
)

// Backend identifies a storage adapter. Selection happens once at
// construction; there is no runtime switching.
type Backend string

const (
	// BackendRelational stores entities in an embedded SQLite database.
	BackendRelational Backend = "relational"
	// BackendObjectStore stores conversations as JSON documents in a
	// blob bucket. Not available for orders.
	BackendObjectStore Backend = "object_store"
	// BackendWideColumn stores orders in an embedded BadgerDB key-value
	// store with secondary indexes. Not available for conversations.
	BackendWideColumn Backend = "wide_column"
)

// Config selects and parameterizes the storage backends.
type Config struct {
	ConversationBackend Backend
	OrderBackend        Backend

	// SQLitePath is the database file for the relational backend.
	SQLitePath string

	// Bucket, Region, and Prefix configure the object-store backend.
	Bucket string
	Region string
	Prefix string

	// TablePath is the data directory for the wide-column backend.
	TablePath string
}

// DefaultConfig returns a relational-only configuration with local
// file paths.
func DefaultConfig() *Config {
	return &Config{
		ConversationBackend: BackendRelational,
		OrderBackend:        BackendRelational,
		SQLitePath:          "helpdesk.db",
		Prefix:              "conversations/",
		TablePath:           "helpdesk-orders",
	}
}

// ConfigFromEnv builds a config from environment variables, starting
// from DefaultConfig. Unset variables keep their defaults; invalid
// values surface later through Validate.
func ConfigFromEnv() *Config {
	cfg := DefaultConfig()
	if v := os.Getenv("CONVERSATION_STORAGE"); v != "" {
		cfg.ConversationBackend = Backend(v)
	}
	if v := os.Getenv("ORDER_STORAGE"); v != "" {
		cfg.OrderBackend = Backend(v)
	}
	if v := os.Getenv("SQLITE_DB_PATH"); v != "" {
		cfg.SQLitePath = v
	}
	if v := os.Getenv("S3_BUCKET_NAME"); v != "" {
		cfg.Bucket = v
	}
	if v := os.Getenv("S3_REGION"); v != "" {
		cfg.Region = v
	}
	if v := os.Getenv("S3_PREFIX"); v != "" {
		cfg.Prefix = v
	}
	if v := os.Getenv("BADGER_PATH"); v != "" {
		cfg.TablePath = v
	}
	return cfg
}

// Validate fails fast on unknown backend names and missing backend
// parameters so that misconfiguration never silently falls back to a
// different store.
func (c *Config) Validate() error {
	switch c.ConversationBackend {
	case BackendRelational:
		if c.SQLitePath == "" {
			return fmt.Errorf("relational conversation backend requires a database path")
		}
	case BackendObjectStore:
		if c.Bucket == "" {
			return fmt.Errorf("object store conversation backend requires a bucket name")
		}
	default:
		return fmt.Errorf("unknown conversation backend %q", c.ConversationBackend)
	}

	switch c.OrderBackend {
	case BackendRelational:
		if c.SQLitePath == "" {
			return fmt.Errorf("relational order backend requires a database path")
		}
	case BackendWideColumn:
		if c.TablePath == "" {
			return fmt.Errorf("wide column order backend requires a data directory")
		}
	default:
		return fmt.Errorf("unknown order backend %q", c.OrderBackend)
	}

	return nil
}
