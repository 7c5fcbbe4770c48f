package enums

import (
	"fmt"
	"testing"
)

var (
	_ fmt.Stringer = OutboxEventType("")
	_ fmt.Stringer = OutboxAggregateType("")
)

func TestOutboxEventTypeRoundTrip(t *testing.T) {
	for _, eventType := range validOutboxEventTypes {
		parsed, err := ParseOutboxEventType(eventType.String())
		if err != nil {
			t.Fatalf("parse %q: %v", eventType, err)
		}
		if parsed != eventType {
			t.Fatalf("expected %q, got %q", eventType, parsed)
		}
	}
	if _, err := ParseOutboxEventType("order_exploded"); err == nil {
		t.Fatal("expected error for unknown event type")
	}
}

func TestOutboxAggregateTypeRoundTrip(t *testing.T) {
	for _, aggregate := range validAggregateTypes {
		parsed, err := ParseOutboxAggregateType(aggregate.String())
		if err != nil {
			t.Fatalf("parse %q: %v", aggregate, err)
		}
		if parsed != aggregate {
			t.Fatalf("expected %q, got %q", aggregate, parsed)
		}
	}
	if !AggregateOrder.IsValid() {
		t.Fatal("order aggregate should be valid")
	}
	if OutboxAggregateType("ledger").IsValid() {
		t.Fatal("unknown aggregate should be invalid")
	}
}
