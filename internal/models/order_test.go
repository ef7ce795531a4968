package models

import "testing"

func TestCanTransitionHappyPath(t *testing.T) {
	steps := []struct {
		from OrderStatus
		to   OrderStatus
	}{
		{OrderStatusPending, OrderStatusAwaitingPayment},
		{OrderStatusAwaitingPayment, OrderStatusPaid},
		{OrderStatusPaid, OrderStatusProcessing},
		{OrderStatusProcessing, OrderStatusShipped},
		{OrderStatusShipped, OrderStatusDelivered},
	}
	for _, step := range steps {
		if !CanTransition(step.from, step.to) {
			t.Fatalf("expected %s -> %s to be allowed", step.from, step.to)
		}
	}
}

func TestCanTransitionPendingStraightToPaid(t *testing.T) {
	// A gateway notification may arrive before the redirect flipped the
	// order to awaiting_payment.
	if !CanTransition(OrderStatusPending, OrderStatusPaid) {
		t.Fatal("expected pending -> paid to be allowed")
	}
}

func TestCanTransitionRejectsRepeatAndBackward(t *testing.T) {
	if CanTransition(OrderStatusPaid, OrderStatusPaid) {
		t.Fatal("re-applying paid must not be a transition")
	}
	if CanTransition(OrderStatusShipped, OrderStatusPaid) {
		t.Fatal("backward transition must be rejected")
	}
	if CanTransition(OrderStatusDelivered, OrderStatusProcessing) {
		t.Fatal("delivered is terminal")
	}
	if CanTransition(OrderStatusPending, OrderStatusShipped) {
		t.Fatal("skipping the fulfilment chain must be rejected")
	}
}

func TestPayableStatuses(t *testing.T) {
	payable := map[OrderStatus]bool{}
	for _, s := range PayableStatuses() {
		payable[s] = true
	}
	if !payable[OrderStatusPending] || !payable[OrderStatusAwaitingPayment] {
		t.Fatalf("expected pending and awaiting_payment to be payable, got %v", payable)
	}
	if payable[OrderStatusPaid] {
		t.Fatal("paid must not be payable again")
	}
}

func TestOrderStatusIsValid(t *testing.T) {
	if !OrderStatusProcessing.IsValid() {
		t.Fatal("processing should be valid")
	}
	if OrderStatus("cancelled").IsValid() {
		t.Fatal("cancelled is not a known status")
	}
}
