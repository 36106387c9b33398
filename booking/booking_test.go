package booking

import (
	"errors"
	"testing"
)

func TestBooking_Collides(t *testing.T) {
	t.Parallel()

	existing := Booking{Start: NewTimeOfDay(8, 30), End: NewTimeOfDay(12, 0)}

	cases := []struct {
		name  string
		start TimeOfDay
		end   TimeOfDay
		want  bool
	}{
		{"ends exactly at existing start", NewTimeOfDay(8, 0), NewTimeOfDay(8, 30), false},
		{"one minute past existing start", NewTimeOfDay(8, 0), NewTimeOfDay(8, 31), true},
		{"starts exactly at existing end", NewTimeOfDay(12, 0), NewTimeOfDay(13, 0), false},
		{"one minute before existing end", NewTimeOfDay(11, 59), NewTimeOfDay(13, 0), true},
		{"identical range", NewTimeOfDay(8, 30), NewTimeOfDay(12, 0), true},
		{"contained inside existing", NewTimeOfDay(9, 0), NewTimeOfDay(10, 0), true},
		{"contains existing", NewTimeOfDay(8, 0), NewTimeOfDay(13, 0), true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := existing.Collides(tc.start, tc.end); got != tc.want {
				t.Fatalf("Collides(%s, %s) = %v, want %v", tc.start, tc.end, got, tc.want)
			}
		})
	}
}

func TestState_Transition(t *testing.T) {
	t.Parallel()

	open := State{Status: StatusToHappen}

	cancelled, err := open.Transition(StatusCancelled, "front-desk")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cancelled.Status != StatusCancelled || cancelled.UpdatedBy != "front-desk" {
		t.Fatalf("unexpected state %+v", cancelled)
	}

	paid, err := open.Transition(StatusPaid, "accountant")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if paid.Status != StatusPaid || paid.UpdatedBy != "accountant" {
		t.Fatalf("unexpected state %+v", paid)
	}
}

func TestState_Transition_TerminalStatesReject(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		from Status
		to   Status
	}{
		{"cancel a paid booking", StatusPaid, StatusCancelled},
		{"charge a cancelled booking", StatusCancelled, StatusPaid},
		{"cancel twice", StatusCancelled, StatusCancelled},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := State{Status: tc.from}.Transition(tc.to, "front-desk")
			if !errors.Is(err, ErrInvalidTransition) {
				t.Fatalf("expected ErrInvalidTransition, got %v", err)
			}
		})
	}
}

func TestState_Transition_RejectsReopening(t *testing.T) {
	t.Parallel()

	_, err := State{Status: StatusToHappen}.Transition(StatusToHappen, "front-desk")
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestState_Terminal(t *testing.T) {
	t.Parallel()

	if (State{Status: StatusToHappen}).Terminal() {
		t.Fatal("to-happen must not be terminal")
	}
	if !(State{Status: StatusCancelled}).Terminal() || !(State{Status: StatusPaid}).Terminal() {
		t.Fatal("cancelled and paid must be terminal")
	}
}
