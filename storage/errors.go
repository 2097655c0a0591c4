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


package storage

import "errors"

var (
	// ErrNotFound indicates that the requested entity or key is absent.
	// It is never used for transport failures; see ErrBackendUnavailable.
	ErrNotFound = errors.New("not found")

	// ErrBackendUnavailable indicates a transport or connectivity failure
	// reaching the backing store. Callers must be able to distinguish
	// "no such record" from "could not reach the store", so adapters never
	// mask this condition as ErrNotFound.
	ErrBackendUnavailable = errors.New("backend unavailable")

	// ErrSerializationFailed indicates malformed stored data encountered
	// on read, or a failure to encode data for writing.
	ErrSerializationFailed = errors.New("serialization failed")

	// ErrStorageClosed indicates that the storage backend is closed.
	ErrStorageClosed = errors.New("storage is closed")

	// ErrInvalidQuery indicates invalid query parameters.
	ErrInvalidQuery = errors.New("invalid query parameters")
)
