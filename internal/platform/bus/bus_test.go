package bus

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
)

func TestPublish_SynchronousInOrderFanOut(t *testing.T) {
	b := New()

	var seen []string
	b.Subscribe(func(_ context.Context, e Event) {
		seen = append(seen, "a:"+e.EventName())
	})
	b.Subscribe(func(_ context.Context, e Event) {
		seen = append(seen, "b:"+e.EventName())
	})

	b.Publish(context.Background(), MedicationDeleted{MedicationID: "m1"})
	b.Publish(context.Background(), IntakeCompleted{MedicationID: "m1", Dose: decimal.NewFromInt(1)})

	want := []string{
		"a:medication.deleted", "b:medication.deleted",
		"a:intake.completed", "b:intake.completed",
	}
	if len(seen) != len(want) {
		t.Fatalf("got %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("got %v, want %v", seen, want)
		}
	}
}

func TestSubscribe_OnlySeesLaterEvents(t *testing.T) {
	b := New()
	b.Publish(context.Background(), MedicationDeleted{MedicationID: "before"})

	var got []Event
	b.Subscribe(func(_ context.Context, e Event) { got = append(got, e) })

	b.Publish(context.Background(), MedicationDeleted{MedicationID: "after"})

	if len(got) != 1 {
		t.Fatalf("expected 1 event, got %d", len(got))
	}
	if got[0].(MedicationDeleted).MedicationID != "after" {
		t.Fatalf("subscriber saw event published before subscribing: %+v", got[0])
	}
}

func TestSubscribeChan_DropsWhenFull(t *testing.T) {
	b := New()
	ch := b.SubscribeChan(1)

	b.Publish(context.Background(), MedicationDeleted{MedicationID: "m1"})
	// El buffer está lleno; este no debe bloquear al publicador.
	b.Publish(context.Background(), MedicationDeleted{MedicationID: "m2"})

	e := <-ch
	if e.(MedicationDeleted).MedicationID != "m1" {
		t.Fatalf("got %+v", e)
	}
	select {
	case e := <-ch:
		t.Fatalf("expected second event dropped, got %+v", e)
	default:
	}
}
