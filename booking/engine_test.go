package booking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"salonbook-backend/models"
)

func iso(t time.Time) string {
	return t.Format(time.RFC3339)
}

func TestNew_RejectsBadPolicy(t *testing.T) {
	_, err := New(newMemStore(), ist, WithSearchPolicy(SearchPolicy{Granularity: 0, Horizon: time.Hour}))
	if err == nil {
		t.Fatalf("expected error for zero granularity")
	}
	if _, err := New(nil, ist); err == nil {
		t.Fatalf("expected error for nil store")
	}
}

func TestCheckAvailability_FreeSlot(t *testing.T) {
	f := newFixture(t, at(14, 8, 0))

	av, err := f.engine.CheckAvailability(context.Background(), AvailabilityRequest{
		Salon:         "Elegant Cuts",
		Service:       "Haircut",
		RequestedTime: "2030-01-14T10:00:00+05:30",
	})
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !av.Available {
		t.Fatalf("expected available, got %s (%s)", av.Reason, av.Message)
	}
	if !av.Start.Equal(at(14, 10, 0)) || !av.End.Equal(at(14, 10, 30)) {
		t.Fatalf("unexpected interval %s - %s", av.Start, av.End)
	}
	if av.SuggestedNext != nil {
		t.Fatalf("expected no suggestion")
	}
}

func TestCheckAvailability_ConflictSuggestsNextSlot(t *testing.T) {
	f := newFixture(t, at(14, 8, 0))
	f.store.book(f.salon, f.service, at(14, 10, 0), models.AppointmentStatusScheduled)

	av, err := f.engine.CheckAvailability(context.Background(), AvailabilityRequest{
		Salon:         "Elegant Cuts",
		Service:       "Haircut",
		RequestedTime: "2030-01-14T10:15:00+05:30",
	})
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if av.Available || av.Reason != ReasonSlotConflict {
		t.Fatalf("expected slot_conflict, got available=%v reason=%s", av.Available, av.Reason)
	}
	if av.SuggestedNext == nil || !av.SuggestedNext.Equal(at(14, 10, 30)) {
		t.Fatalf("expected suggestion 10:30, got %v", av.SuggestedNext)
	}
	if av.NoSlotFound() {
		t.Fatalf("expected a slot to be found")
	}
}

func TestCheckAvailability_AdjacentSlotIsFree(t *testing.T) {
	f := newFixture(t, at(14, 8, 0))
	f.store.book(f.salon, f.service, at(14, 10, 0), models.AppointmentStatusScheduled)

	av, err := f.engine.CheckAvailability(context.Background(), AvailabilityRequest{
		Salon:         "Elegant Cuts",
		Service:       "Haircut",
		RequestedTime: iso(at(14, 10, 30)),
	})
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !av.Available {
		t.Fatalf("expected adjacent slot to be free, got %s", av.Reason)
	}
}

func TestCheckAvailability_BusinessRules(t *testing.T) {
	cases := []struct {
		name      string
		requested string
		reason    Reason
		next      time.Time
	}{
		{"after closing", "2030-01-14T18:00:00+05:30", ReasonOutsideHours, at(15, 9, 0)},
		{"yesterday", "2030-01-13T10:00:00+05:30", ReasonInPast, at(15, 9, 0)},
		{"ends after closing", "2030-01-14T16:45:00+05:30", ReasonWouldEndAfterHours, at(15, 9, 0)},
		{"zone-less utc after closing", "2030-01-14T12:30:00", ReasonOutsideHours, at(15, 9, 0)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, at(14, 8, 0))
			av, err := f.engine.CheckAvailability(context.Background(), AvailabilityRequest{
				Salon:         "Elegant Cuts",
				Service:       "Haircut",
				RequestedTime: tc.requested,
			})
			if err != nil {
				t.Fatalf("check: %v", err)
			}
			if av.Available || av.Reason != tc.reason {
				t.Fatalf("expected %s, got available=%v reason=%s", tc.reason, av.Available, av.Reason)
			}
			if av.SuggestedNext == nil || !av.SuggestedNext.Equal(tc.next) {
				t.Fatalf("expected suggestion %s, got %v", tc.next, av.SuggestedNext)
			}
		})
	}
}

func TestCheckAvailability_Errors(t *testing.T) {
	f := newFixture(t, at(14, 8, 0))
	ctx := context.Background()

	cases := []struct {
		req  AvailabilityRequest
		want error
	}{
		{AvailabilityRequest{Salon: "Elegant Cuts", Service: "Haircut", RequestedTime: "soon"}, ErrInvalidTimeFormat},
		{AvailabilityRequest{Salon: "Nowhere", Service: "Haircut", RequestedTime: iso(at(14, 10, 0))}, ErrSalonNotFound},
		{AvailabilityRequest{Salon: "Elegant Cuts", Service: "Perm", RequestedTime: iso(at(14, 10, 0))}, ErrServiceNotFound},
	}
	for _, tc := range cases {
		if _, err := f.engine.CheckAvailability(ctx, tc.req); !errors.Is(err, tc.want) {
			t.Fatalf("%+v: expected %v, got %v", tc.req, tc.want, err)
		}
	}

	f.store.listErr = errors.New("connection refused")
	_, err := f.engine.CheckAvailability(ctx, AvailabilityRequest{Salon: "Elegant Cuts", Service: "Haircut", RequestedTime: iso(at(14, 10, 0))})
	if !errors.Is(err, ErrPersistenceUnavailable) {
		t.Fatalf("expected ErrPersistenceUnavailable, got %v", err)
	}
}

func TestCheckAvailability_ServiceLongerThanDay(t *testing.T) {
	f := newFixture(t, at(14, 8, 0))
	f.store.addService(f.salon, "Marathon", 9*60)

	av, err := f.engine.CheckAvailability(context.Background(), AvailabilityRequest{
		Salon:         "Elegant Cuts",
		Service:       "Marathon",
		RequestedTime: iso(at(14, 9, 0)),
	})
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if av.Available || av.Reason != ReasonServiceNotBookable {
		t.Fatalf("expected service_not_bookable, got %s", av.Reason)
	}
}

func TestBookAppointment_Success(t *testing.T) {
	f := newFixture(t, at(14, 8, 0))

	res, err := f.engine.BookAppointment(context.Background(), BookingRequest{
		Salon:         "Elegant Cuts",
		Service:       "Haircut",
		Customer:      "Asha",
		RequestedTime: "2030-01-14T10:00:00+05:30",
	})
	if err != nil {
		t.Fatalf("book: %v", err)
	}
	if res.Status != StatusSuccess {
		t.Fatalf("expected success, got %s (%s)", res.Status, res.Reason)
	}
	if res.Appointment == nil || res.Appointment.Status != models.AppointmentStatusScheduled {
		t.Fatalf("expected a scheduled appointment, got %+v", res.Appointment)
	}
	if !res.Appointment.StartTime.Equal(at(14, 10, 0)) || !res.Appointment.EndTime.Equal(at(14, 10, 30)) {
		t.Fatalf("unexpected interval %s - %s", res.Appointment.StartTime, res.Appointment.EndTime)
	}
	if res.Appointment.CustomerName != "Asha" {
		t.Fatalf("unexpected customer %q", res.Appointment.CustomerName)
	}
	if got := f.store.occupying(); len(got) != 1 {
		t.Fatalf("expected one stored appointment, got %d", len(got))
	}
}

func TestCheckThenBookSameInstant(t *testing.T) {
	f := newFixture(t, at(14, 8, 0))
	ctx := context.Background()
	requested := "2030-01-14T04:30:00Z"

	av, err := f.engine.CheckAvailability(ctx, AvailabilityRequest{Salon: "Elegant Cuts", Service: "Haircut", RequestedTime: requested})
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !av.Available {
		t.Fatalf("expected available")
	}

	res, err := f.engine.BookAppointment(ctx, BookingRequest{Salon: "Elegant Cuts", Service: "Haircut", Customer: "Asha", RequestedTime: requested})
	if err != nil {
		t.Fatalf("book: %v", err)
	}
	if res.Status != StatusSuccess {
		t.Fatalf("expected success, got %s", res.Status)
	}
	if !res.Appointment.StartTime.Equal(av.Start) {
		t.Fatalf("booked %s but checked %s", res.Appointment.StartTime, av.Start)
	}
}

func TestBookAppointment_ConflictWritesNothing(t *testing.T) {
	f := newFixture(t, at(14, 8, 0))
	f.store.book(f.salon, f.service, at(14, 10, 0), models.AppointmentStatusConfirmed)

	res, err := f.engine.BookAppointment(context.Background(), BookingRequest{
		Salon:         "Elegant Cuts",
		Service:       "Haircut",
		Customer:      "Asha",
		RequestedTime: iso(at(14, 10, 0)),
	})
	if err != nil {
		t.Fatalf("book: %v", err)
	}
	if res.Status != StatusSlotUnavailable || res.Reason != ReasonSlotConflict {
		t.Fatalf("expected slot_unavailable/slot_conflict, got %s/%s", res.Status, res.Reason)
	}
	if res.SuggestedNext == nil || !res.SuggestedNext.Equal(at(14, 10, 30)) {
		t.Fatalf("expected suggestion 10:30, got %v", res.SuggestedNext)
	}
	if res.Appointment != nil {
		t.Fatalf("expected no appointment")
	}
	if got := f.store.occupying(); len(got) != 1 {
		t.Fatalf("expected nothing written, got %d appointments", len(got))
	}
}

func TestBookAppointment_RejectedWritesNothing(t *testing.T) {
	f := newFixture(t, at(14, 8, 0))

	res, err := f.engine.BookAppointment(context.Background(), BookingRequest{
		Salon:         "Elegant Cuts",
		Service:       "Haircut",
		Customer:      "Asha",
		RequestedTime: iso(at(14, 18, 0)),
	})
	if err != nil {
		t.Fatalf("book: %v", err)
	}
	if res.Status != StatusRejected || res.Reason != ReasonOutsideHours {
		t.Fatalf("expected rejected/outside_business_hours, got %s/%s", res.Status, res.Reason)
	}
	if res.SuggestedNext == nil || !res.SuggestedNext.Equal(at(15, 9, 0)) {
		t.Fatalf("expected next day 09:00, got %v", res.SuggestedNext)
	}
	if got := f.store.occupying(); len(got) != 0 {
		t.Fatalf("expected nothing written, got %d", len(got))
	}
}

func TestBookAppointment_NoSlotFound(t *testing.T) {
	f := newFixture(t, at(14, 8, 0), WithSearchPolicy(SearchPolicy{Granularity: 15 * time.Minute, Horizon: 3 * time.Hour}))
	long := f.store.addService(f.salon, "Full Day", 8*60)
	f.store.book(f.salon, long, at(14, 9, 0), models.AppointmentStatusScheduled)

	res, err := f.engine.BookAppointment(context.Background(), BookingRequest{
		Salon:         "Elegant Cuts",
		Service:       "Haircut",
		Customer:      "Asha",
		RequestedTime: iso(at(14, 11, 0)),
	})
	if err != nil {
		t.Fatalf("book: %v", err)
	}
	if res.Status != StatusSlotUnavailable || !res.NoSlotFound() {
		t.Fatalf("expected unavailable with no slot found, got %s suggestion=%v", res.Status, res.SuggestedNext)
	}
}

func TestBookAppointment_MissingCustomer(t *testing.T) {
	f := newFixture(t, at(14, 8, 0))
	_, err := f.engine.BookAppointment(context.Background(), BookingRequest{
		Salon:         "Elegant Cuts",
		Service:       "Haircut",
		RequestedTime: iso(at(14, 10, 0)),
	})
	if !errors.Is(err, ErrMissingCustomer) {
		t.Fatalf("expected ErrMissingCustomer, got %v", err)
	}
}

func TestConfirmNextSlot_BooksSuggestion(t *testing.T) {
	f := newFixture(t, at(14, 8, 0))
	f.store.book(f.salon, f.service, at(14, 10, 0), models.AppointmentStatusScheduled)
	ctx := context.Background()

	first, err := f.engine.BookAppointment(ctx, BookingRequest{Salon: "Elegant Cuts", Service: "Haircut", Customer: "Asha", RequestedTime: iso(at(14, 10, 0))})
	if err != nil {
		t.Fatalf("book: %v", err)
	}
	if first.SuggestedNext == nil {
		t.Fatalf("expected a suggestion")
	}

	res, err := f.engine.ConfirmNextSlot(ctx, BookingRequest{
		Salon:         "Elegant Cuts",
		Service:       "Haircut",
		Customer:      "Asha",
		RequestedTime: ist.Format(*first.SuggestedNext),
	})
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if res.Status != StatusSuccess || !res.Appointment.StartTime.Equal(at(14, 10, 30)) {
		t.Fatalf("expected 10:30 booked, got %s %+v", res.Status, res.Appointment)
	}
}

func TestCommit_ConcurrentSameInstant(t *testing.T) {
	f := newFixture(t, at(14, 8, 0))
	// Both committers read an empty snapshot, so only the insert can tell
	// them apart.
	f.store.stale(2)

	var (
		wg      sync.WaitGroup
		results [2]*Result
		errs    [2]error
	)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = f.engine.BookAppointment(context.Background(), BookingRequest{
				Salon:         "Elegant Cuts",
				Service:       "Haircut",
				Customer:      fmt.Sprintf("customer-%d", i),
				RequestedTime: iso(at(14, 10, 0)),
			})
		}(i)
	}
	wg.Wait()

	var won, lost *Result
	for i, res := range results {
		if errs[i] != nil {
			t.Fatalf("commit %d: %v", i, errs[i])
		}
		switch res.Status {
		case StatusSuccess:
			won = res
		case StatusSlotUnavailable:
			lost = res
		}
	}
	if won == nil || lost == nil {
		t.Fatalf("expected one success and one loss, got %s and %s", results[0].Status, results[1].Status)
	}
	if lost.Reason != ReasonSlotTaken {
		t.Fatalf("expected slot_taken, got %s", lost.Reason)
	}
	if lost.SuggestedNext == nil || lost.SuggestedNext.Equal(won.Appointment.StartTime) {
		t.Fatalf("expected a distinct suggestion, got %v", lost.SuggestedNext)
	}
	if !lost.SuggestedNext.Equal(at(14, 10, 30)) {
		t.Fatalf("expected suggestion 10:30, got %s", lost.SuggestedNext)
	}
	if got := f.store.occupying(); len(got) != 1 {
		t.Fatalf("expected exactly one stored appointment, got %d", len(got))
	}
}

func TestCommit_NoOverlapAfterManyBookings(t *testing.T) {
	f := newFixture(t, at(14, 8, 0))
	f.store.addService(f.salon, "Colour", 75)
	ctx := context.Background()

	services := []string{"Haircut", "Colour"}
	for i := 0; i < 30; i++ {
		minute := 9*60 + (i*37)%(8*60)
		req := BookingRequest{
			Salon:         "Elegant Cuts",
			Service:       services[i%2],
			Customer:      fmt.Sprintf("c%d", i),
			RequestedTime: iso(at(14+i%3, minute/60, minute%60)),
		}
		res, err := f.engine.BookAppointment(ctx, req)
		if err != nil {
			t.Fatalf("book %d: %v", i, err)
		}
		if res.Status == StatusSlotUnavailable && res.SuggestedNext != nil {
			req.RequestedTime = ist.Format(*res.SuggestedNext)
			if _, err := f.engine.ConfirmNextSlot(ctx, req); err != nil {
				t.Fatalf("confirm %d: %v", i, err)
			}
		}
	}

	booked := f.store.occupying()
	if len(booked) == 0 {
		t.Fatalf("expected some bookings")
	}
	assertNoOverlap(t, booked)
}

func TestCommit_ConcurrentOverlappingStarts(t *testing.T) {
	f := newFixture(t, at(14, 8, 0))
	f.store.stale(2)

	starts := []time.Time{at(14, 10, 0), at(14, 10, 15)}
	results := make([]*Result, len(starts))
	errs := make([]error, len(starts))
	var wg sync.WaitGroup
	for i, start := range starts {
		wg.Add(1)
		go func(i int, start time.Time) {
			defer wg.Done()
			results[i], errs[i] = f.engine.BookAppointment(context.Background(), BookingRequest{
				Salon:         "Elegant Cuts",
				Service:       "Haircut",
				Customer:      fmt.Sprintf("customer-%d", i),
				RequestedTime: iso(start),
			})
		}(i, start)
	}
	wg.Wait()

	var won, lost int
	for i, res := range results {
		if errs[i] != nil {
			t.Fatalf("commit %d: %v", i, errs[i])
		}
		switch {
		case res.Status == StatusSuccess:
			won++
		case res.Status == StatusSlotUnavailable && res.Reason == ReasonSlotTaken:
			lost++
			if res.SuggestedNext == nil {
				t.Fatalf("expected a suggestion for the losing request")
			}
		default:
			t.Fatalf("unexpected result %s/%s", res.Status, res.Reason)
		}
	}
	if won != 1 || lost != 1 {
		t.Fatalf("expected one success and one slot_taken, got %d and %d", won, lost)
	}
	assertNoOverlap(t, f.store.occupying())
}

func TestCommit_NoOverlapUnderConcurrentStaggeredBookings(t *testing.T) {
	f := newFixture(t, at(14, 8, 0))
	f.store.addService(f.salon, "Colour", 75)

	const workers = 8
	f.store.stale(workers)

	services := []string{"Haircut", "Colour"}
	results := make([]*Result, workers)
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			// 10:00, 10:15, ... 11:45: every neighbour overlaps.
			results[i], errs[i] = f.engine.BookAppointment(context.Background(), BookingRequest{
				Salon:         "Elegant Cuts",
				Service:       services[i%2],
				Customer:      fmt.Sprintf("c%d", i),
				RequestedTime: iso(at(14, 10, 0).Add(time.Duration(i) * 15 * time.Minute)),
			})
		}(i)
	}
	wg.Wait()

	var won int
	for i, res := range results {
		if errs[i] != nil {
			t.Fatalf("commit %d: %v", i, errs[i])
		}
		switch {
		case res.Status == StatusSuccess:
			won++
		case res.Reason != ReasonSlotTaken:
			t.Fatalf("commit %d: expected slot_taken on loss, got %s", i, res.Reason)
		}
	}
	booked := f.store.occupying()
	if won == 0 || won != len(booked) {
		t.Fatalf("expected successes to match stored rows, got %d and %d", won, len(booked))
	}
	assertNoOverlap(t, booked)
}

func assertNoOverlap(t *testing.T, booked []models.Appointment) {
	t.Helper()
	for i := range booked {
		for j := i + 1; j < len(booked); j++ {
			a, b := intervalOf(&booked[i]), intervalOf(&booked[j])
			if a.Overlaps(b) {
				t.Fatalf("overlapping appointments %s-%s and %s-%s", a.Start, a.End, b.Start, b.End)
			}
		}
	}
}
