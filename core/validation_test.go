package core

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateSenderType(t *testing.T) {
	for _, sender := range []SenderType{SenderUser, SenderAgent, SenderSystem} {
		if err := ValidateSenderType(sender); err != nil {
			t.Fatalf("expected %q to be valid: %v", sender, err)
		}
	}

	err := ValidateSenderType("robot")
	if !errors.Is(err, ErrInvalidSenderType) {
		t.Fatalf("expected ErrInvalidSenderType, got %v", err)
	}
}

func TestParseOrderStatus(t *testing.T) {
	status, err := ParseOrderStatus("Being prepared")
	if err != nil {
		t.Fatalf("failed to parse valid status: %v", err)
	}
	if status != StatusPreparing {
		t.Fatalf("expected %q, got %q", StatusPreparing, status)
	}

	// Membership is exact, not case-insensitive
	if _, err := ParseOrderStatus("pending"); !errors.Is(err, ErrInvalidOrderStatus) {
		t.Fatalf("expected ErrInvalidOrderStatus, got %v", err)
	}
}

func TestTerminalStatuses(t *testing.T) {
	if !StatusCompleted.Terminal() || !StatusCancelled.Terminal() {
		t.Fatal("expected Completed and Cancelled to be terminal")
	}
	if StatusPending.Terminal() || StatusReady.Terminal() {
		t.Fatal("expected Pending and Ready for pickup to be non-terminal")
	}
}

func TestValidateMessage(t *testing.T) {
	msg := &Message{
		ConversationID: "conv-1",
		Sender:         SenderUser,
		Content:        "hello",
	}
	if err := ValidateMessage(msg); err != nil {
		t.Fatalf("expected valid message: %v", err)
	}

	if err := ValidateMessage(&Message{Sender: SenderUser, Content: "x"}); !errors.Is(err, ErrEmptyConversationID) {
		t.Fatalf("expected ErrEmptyConversationID, got %v", err)
	}
	if err := ValidateMessage(&Message{ConversationID: "c", Sender: SenderUser}); !errors.Is(err, ErrEmptyContent) {
		t.Fatalf("expected ErrEmptyContent, got %v", err)
	}
}

func TestValidateOrderItemsCollectsAllViolations(t *testing.T) {
	items := []OrderItem{
		{ItemName: "", Quantity: 1, UnitPrice: 1.00},
		{ItemName: "Coffee", Quantity: 0, UnitPrice: 3.50},
		{ItemName: "Sandwich", Quantity: 2, UnitPrice: -1.00},
	}
	err := ValidateOrderItems(items)
	if err == nil {
		t.Fatal("expected validation to fail")
	}

	var violations ValidationErrors
	if !errors.As(err, &violations) {
		t.Fatalf("expected ValidationErrors, got %T", err)
	}
	if len(violations) != 3 {
		t.Fatalf("expected 3 violations, got %d: %v", len(violations), violations)
	}
	if !strings.Contains(violations.Error(), "; ") {
		t.Fatalf("expected joined message, got %q", violations.Error())
	}
}

func TestValidateOrderItemsEmpty(t *testing.T) {
	err := ValidateOrderItems(nil)
	var violations ValidationErrors
	if !errors.As(err, &violations) || len(violations) != 1 {
		t.Fatalf("expected single violation for empty items, got %v", err)
	}
}

func TestMoneyHelpers(t *testing.T) {
	if got := ItemSubtotal(3, 3.50); got != 10.50 {
		t.Fatalf("expected 10.50, got %v", got)
	}

	// 2*3.50 + 8.99 accumulates cleanly through decimal arithmetic
	items := []OrderItem{
		{ItemName: "Coffee", Quantity: 2, UnitPrice: 3.50},
		{ItemName: "Sandwich", Quantity: 1, UnitPrice: 8.99},
	}
	if got := OrderTotal(items); got != 15.99 {
		t.Fatalf("expected 15.99, got %v", got)
	}

	if got := RoundMoney(10.005); got != 10.01 {
		t.Fatalf("expected 10.01, got %v", got)
	}
}
