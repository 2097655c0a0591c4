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

import (
	"fmt"
	"strings"
)

// ValidationErrors collects every violation found in an input rather
// than failing on the first one, so callers can report all problems
// at once.
type ValidationErrors []string

func (v ValidationErrors) Error() string {
	return strings.Join(v, "; ")
}

// Violations returns the individual violation messages.
func (v ValidationErrors) Violations() []string {
	return []string(v)
}

// ValidateSenderType validates membership in the sender enumeration.
func ValidateSenderType(sender SenderType) error {
	switch sender {
	case SenderUser, SenderAgent, SenderSystem:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidSenderType, sender)
}

// ValidateOrderStatus validates membership in the status enumeration.
// Transition legality is deliberately NOT checked: stores accept any
// target status from any current status, matching the store contract.
func ValidateOrderStatus(status OrderStatus) error {
	for _, s := range OrderStatuses() {
		if status == s {
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrInvalidOrderStatus, status)
}

// ParseOrderStatus converts a raw string to an OrderStatus, validating
// membership at the boundary.
func ParseOrderStatus(raw string) (OrderStatus, error) {
	status := OrderStatus(raw)
	if err := ValidateOrderStatus(status); err != nil {
		return "", err
	}
	return status, nil
}

// ValidateMessage validates a message before it is appended.
//
// Validation rules:
//   - ConversationID must not be empty
//   - Content must not be empty
//   - Sender must be a valid SenderType
//
// NOT validated (populated by stores):
//   - ID (backend-assigned)
//   - Timestamp (stamped on append)
func ValidateMessage(msg *Message) error {
	if msg == nil {
		return fmt.Errorf("message is nil")
	}
	if msg.ConversationID == "" {
		return ErrEmptyConversationID
	}
	if msg.Content == "" {
		return ErrEmptyContent
	}
	return ValidateSenderType(msg.Sender)
}

// ValidateOrderItems checks every line item and collects all violations.
// Returns nil when every item is well formed.
func ValidateOrderItems(items []OrderItem) error {
	var violations ValidationErrors
	if len(items) == 0 {
		return ValidationErrors{ErrNoItems.Error()}
	}
	for _, item := range items {
		name := strings.TrimSpace(item.ItemName)
		if name == "" {
			violations = append(violations, "empty item name provided")
			continue
		}
		if item.Quantity <= 0 {
			violations = append(violations,
				fmt.Sprintf("invalid quantity for %q: quantity must be a positive integer", name))
		}
		if item.UnitPrice < 0 {
			violations = append(violations,
				fmt.Sprintf("negative unit price for %q", name))
		}
	}
	if len(violations) > 0 {
		return violations
	}
	return nil
}
