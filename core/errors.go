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


package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidSenderType indicates an unknown SenderType value.
	ErrInvalidSenderType = errors.New("invalid sender type")

	// ErrInvalidOrderStatus indicates a status outside the closed enumeration.
	ErrInvalidOrderStatus = errors.New("invalid order status")

	// ErrEmptyContent indicates a message with no content.
	ErrEmptyContent = errors.New("content cannot be empty")

	// ErrEmptyConversationID indicates a missing conversation identifier.
	ErrEmptyConversationID = errors.New("conversation id cannot be empty")

	// ErrEmptyOrderID indicates a missing order identifier.
	ErrEmptyOrderID = errors.New("order id cannot be empty")

	// ErrNoItems indicates an order with no line items.
	ErrNoItems = errors.New("order must contain at least one item")
)
