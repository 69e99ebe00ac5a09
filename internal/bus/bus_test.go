package bus

import (
	"errors"
	"testing"
)

func TestPublish_RegistrationOrder(t *testing.T) {
	b := New()

	var order []int
	for i := 0; i < 5; i++ {
		i := i
		b.Subscribe(TypeSegmentStarted, func(Event) error {
			order = append(order, i)
			return nil
		})
	}

	if err := b.Publish(SegmentStarted{}); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	for i, got := range order {
		if got != i {
			t.Fatalf("handler order = %v, want ascending registration order", order)
		}
	}
}

func TestPublish_NoSubscribersIsNoOp(t *testing.T) {
	b := New()
	if err := b.Publish(ScheduleFinished{}); err != nil {
		t.Errorf("Publish() with no subscribers error = %v, want nil", err)
	}
}

func TestPublish_ReentrantDepthFirst(t *testing.T) {
	b := New()

	var trace []string
	b.Subscribe(TypeSegmentStarted, func(Event) error {
		trace = append(trace, "outer-begin")
		if err := b.Publish(SegmentSetPointChanged{Kelvin: 500}); err != nil {
			return err
		}
		trace = append(trace, "outer-end")
		return nil
	})
	b.Subscribe(TypeSegmentSetPointChanged, func(Event) error {
		trace = append(trace, "nested")
		return nil
	})

	if err := b.Publish(SegmentStarted{}); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	want := []string{"outer-begin", "nested", "outer-end"}
	if len(trace) != len(want) {
		t.Fatalf("trace = %v, want %v", trace, want)
	}
	for i := range want {
		if trace[i] != want[i] {
			t.Fatalf("trace = %v, want %v (nested publish must complete before outer returns)", trace, want)
		}
	}
}

func TestPublish_HandlerErrorAbortsDispatch(t *testing.T) {
	b := New()
	boom := errors.New("handler failed")

	var secondCalled bool
	b.Subscribe(TypeKilnUpdateTriggered, func(Event) error { return boom })
	b.Subscribe(TypeKilnUpdateTriggered, func(Event) error {
		secondCalled = true
		return nil
	})

	err := b.Publish(KilnUpdateTriggered{})
	if !errors.Is(err, boom) {
		t.Fatalf("Publish() error = %v, want wrapped %v", err, boom)
	}
	if secondCalled {
		t.Error("handler after failing handler was invoked; dispatch should abort")
	}
}

func TestUnsubscribe_RemovesSingleRegistration(t *testing.T) {
	b := New()

	var count int
	handler := func(Event) error { count++; return nil }

	sub1 := b.Subscribe(TypeSegmentFinished, handler)
	b.Subscribe(TypeSegmentFinished, handler)

	b.Unsubscribe(sub1)

	if err := b.Publish(SegmentFinished{}); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if count != 1 {
		t.Errorf("handler invoked %d times after removing one of two registrations, want 1", count)
	}

	// Unsubscribing the same token again is a no-op.
	b.Unsubscribe(sub1)
	if got := b.SubscriberCount(TypeSegmentFinished); got != 1 {
		t.Errorf("SubscriberCount = %d, want 1", got)
	}
}

func TestUnsubscribe_MidDispatch(t *testing.T) {
	b := New()

	var selfCalls int
	var sub Subscription
	sub = b.Subscribe(TypeKilnTemperatureChanged, func(Event) error {
		selfCalls++
		b.Unsubscribe(sub)
		return nil
	})

	var laterCalls int
	b.Subscribe(TypeKilnTemperatureChanged, func(Event) error {
		laterCalls++
		return nil
	})

	// First publish: both handlers run; the first removes itself but its
	// effect within this dispatch stands.
	if err := b.Publish(KilnTemperatureChanged{Kelvin: 300}); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if selfCalls != 1 || laterCalls != 1 {
		t.Fatalf("first dispatch: selfCalls=%d laterCalls=%d, want 1 and 1", selfCalls, laterCalls)
	}

	// Second publish: the unsubscribed handler is excluded.
	if err := b.Publish(KilnTemperatureChanged{Kelvin: 301}); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if selfCalls != 1 {
		t.Errorf("unsubscribed handler ran again: selfCalls=%d, want 1", selfCalls)
	}
	if laterCalls != 2 {
		t.Errorf("remaining handler calls = %d, want 2", laterCalls)
	}
}

func TestEventType_String(t *testing.T) {
	tests := []struct {
		t    EventType
		want string
	}{
		{TypeKilnInitialised, "kiln_initialised"},
		{TypeScheduleNextSegment, "schedule_next_segment"},
		{TypeZoneHeaterPowerChanged, "zone_heater_power_changed"},
		{TypeAlarmRaised, "alarm_raised"},
		{EventType(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.t.String(); got != tt.want {
			t.Errorf("EventType(%d).String() = %q, want %q", tt.t, got, tt.want)
		}
	}
}
