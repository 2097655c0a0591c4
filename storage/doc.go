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


// Package storage provides the storage abstraction layer for helpdesk.
//
// This package defines the store interfaces that decouple persistence from
// business logic. Three backends implement them interchangeably: an embedded
// relational store (sqlite), a cloud object store (blob), and a wide-column
// key-value store with secondary indexes (badger).
//
// # Constructor Return Type Pattern
//
// This package follows a strict "return interface" pattern for all public
// constructors to enforce abstraction and keep callers backend-agnostic:
//
//	store, err := sqlite.Open(path)        // concrete handle
//	convs := store.ConversationStore()     // storage.ConversationStore interface
//
// Backend choice is branched exactly once, at construction time, by the
// selector in the root package. No call site inspects configuration after
// that.
//
// # Consistency Model
//
// Each adapter inherits the concurrency semantics of its backend rather
// than layering coordination on top:
//
//   - sqlite: every contract operation is one short transaction; same-row
//     mutations are serialized by the engine, so single-row updates never
//     lose writes.
//   - blob: no concurrency control. Appending a message is a whole-document
//     read-modify-write with no compare-and-swap; two concurrent appends to
//     one conversation can race and the last writer wins. Callers needing
//     lossless concurrent append must serialize per-conversation writes
//     externally.
//   - badger: single-item writes are atomic; secondary-index reads follow
//     the general wide-column model and may briefly trail the primary
//     write path.
//
// # Error Taxonomy
//
// ErrNotFound means the entity is absent. ErrBackendUnavailable means the
// store could not be reached; adapters never report it as ErrNotFound.
// Create collisions are signaled as a false boolean, not an error, so
// callers can branch without error handling. No operation retries
// internally; retry and backoff policy belongs to the transport client
// under each adapter.
package storage
