package events

import (
	"testing"

	"github.com/remarqUK/sixstones/types"
)

func TestBus_DeliversInSubscriptionOrder(t *testing.T) {
	b := NewBus()
	var got []string
	b.Subscribe("turn_ended", func(types.Event) { got = append(got, "first") })
	b.Subscribe("turn_ended", func(types.Event) { got = append(got, "second") })
	b.Subscribe("pieces_matched", func(types.Event) { got = append(got, "other") })

	b.Publish(types.Event{Type: "turn_ended"})

	if len(got) != 2 || got[0] != "first" || got[1] != "second" {
		t.Fatalf("unexpected delivery order: %v", got)
	}
}

func TestBus_WildcardSeesEverything(t *testing.T) {
	b := NewBus()
	var seen []string
	b.Subscribe(Wildcard, func(e types.Event) { seen = append(seen, e.Type) })

	b.Publish(types.Event{Type: "a"})
	b.Publish(types.Event{Type: "b"})

	if len(seen) != 2 || seen[0] != "a" || seen[1] != "b" {
		t.Fatalf("wildcard got %v", seen)
	}
}

func TestBus_NestedPublishIsDeferred(t *testing.T) {
	b := NewBus()
	var order []string
	b.Subscribe("outer", func(types.Event) {
		order = append(order, "outer-start")
		b.Publish(types.Event{Type: "inner"})
		order = append(order, "outer-end")
	})
	b.Subscribe("inner", func(types.Event) { order = append(order, "inner") })

	b.Publish(types.Event{Type: "outer"})

	want := []string{"outer-start", "outer-end", "inner"}
	if len(order) != len(want) {
		t.Fatalf("got %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("got %v, want %v", order, want)
		}
	}
}

func TestBus_NoSubscribers(t *testing.T) {
	b := NewBus()
	b.Publish(types.Event{Type: "nobody_listens"}) // must not block or panic
}

func TestDispatch_SinglePass(t *testing.T) {
	count := 0
	handlers := map[string][]Handler{
		"score_changed": {func(types.Event) { count++ }},
	}
	evts := []types.Event{
		{Type: "score_changed"},
		{Type: "turn_passed"},
		{Type: "score_changed"},
	}

	Dispatch(evts, handlers)

	if count != 2 {
		t.Errorf("expected 2 deliveries, got %d", count)
	}
}
