package services

import (
	"errors"
	"strings"
	"testing"
)

func TestCreateTrip(t *testing.T) {
	db := openTestDB(t)
	driver := seedDriver(t, db, 4)
	svc := NewTripService(db, true)

	trip, err := svc.Create(driver.ID, validInput(3))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if trip.AvailableSeats != 3 || trip.TotalSeats != 3 {
		t.Errorf("seats = %d/%d, want 3/3", trip.AvailableSeats, trip.TotalSeats)
	}
	if trip.IsFull {
		t.Error("new trip must not be full")
	}
	if trip.DriverID != driver.ID {
		t.Errorf("driverID = %d, want %d", trip.DriverID, driver.ID)
	}
}

func TestCreateTrip_FieldValidation(t *testing.T) {
	db := openTestDB(t)
	driver := seedDriver(t, db, 4)
	svc := NewTripService(db, true)

	cases := []struct {
		name   string
		mutate func(*TripInput)
	}{
		{"missing start location", func(in *TripInput) { in.StartLocation = "" }},
		{"missing end location", func(in *TripInput) { in.EndLocation = "" }},
		{"missing time", func(in *TripInput) { in.DepartureTime = "" }},
		{"bad hour", func(in *TripInput) { in.DepartureTime = "25:00" }},
		{"bad minutes", func(in *TripInput) { in.DepartureTime = "10:61" }},
		{"not a clock time", func(in *TripInput) { in.DepartureTime = "7h30" }},
		{"zero seats", func(in *TripInput) { in.AvailableSeats = 0 }},
		{"negative seats", func(in *TripInput) { in.AvailableSeats = -2 }},
		{"zero price", func(in *TripInput) { in.Price = 0 }},
		{"negative price", func(in *TripInput) { in.Price = -10 }},
	}
	for _, tc := range cases {
		in := validInput(2)
		tc.mutate(&in)
		if _, err := svc.Create(driver.ID, in); !errors.Is(err, ErrValidation) {
			t.Errorf("%s: err = %v, want ErrValidation", tc.name, err)
		}
	}
}

func TestCreateTrip_CapacityExceeded(t *testing.T) {
	db := openTestDB(t)
	driver := seedDriver(t, db, 3)
	svc := NewTripService(db, true)

	if _, err := svc.Create(driver.ID, validInput(4)); !errors.Is(err, ErrCapacityExceeded) {
		t.Fatalf("err = %v, want ErrCapacityExceeded", err)
	}
}

func TestCreateTrip_PassengerRejected(t *testing.T) {
	db := openTestDB(t)
	passenger := seedPassenger(t, db)
	svc := NewTripService(db, true)

	if _, err := svc.Create(passenger.ID, validInput(2)); !errors.Is(err, ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}
}

func TestCreateTrip_UnknownDriver(t *testing.T) {
	db := openTestDB(t)
	svc := NewTripService(db, true)

	if _, err := svc.Create(9999, validInput(2)); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestCreateTrip_SingleActivePolicy(t *testing.T) {
	db := openTestDB(t)
	driver := seedDriver(t, db, 4)
	svc := NewTripService(db, true)

	if _, err := svc.Create(driver.ID, validInput(2)); err != nil {
		t.Fatalf("first trip: %v", err)
	}
	if _, err := svc.Create(driver.ID, validInput(2)); !errors.Is(err, ErrDuplicateActiveTrip) {
		t.Fatalf("second trip err = %v, want ErrDuplicateActiveTrip", err)
	}
}

func TestCreateTrip_MultiTripPolicy(t *testing.T) {
	db := openTestDB(t)
	driver := seedDriver(t, db, 4)
	svc := NewTripService(db, false)

	if _, err := svc.Create(driver.ID, validInput(2)); err != nil {
		t.Fatalf("first trip: %v", err)
	}
	if _, err := svc.Create(driver.ID, validInput(2)); err != nil {
		t.Fatalf("second trip with policy off: %v", err)
	}
}

func TestCreateTrip_RouteGeometry(t *testing.T) {
	db := openTestDB(t)
	driver := seedDriver(t, db, 4)
	svc := NewTripService(db, true)

	in := validInput(2)
	in.Route = `{"type":"LineString","coordinates":[[-74.08,4.64],[-74.05,4.66]]}`
	trip, err := svc.Create(driver.ID, in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(trip.Route) == 0 {
		t.Fatal("route geometry was not stored")
	}

	decoded, err := DecodeRoute(trip.Route)
	if err != nil {
		t.Fatalf("decode stored route: %v", err)
	}
	if !strings.Contains(decoded, "LineString") {
		t.Errorf("decoded route = %q, want a LineString", decoded)
	}
}

func TestCreateTrip_BadRouteGeometry(t *testing.T) {
	db := openTestDB(t)
	driver := seedDriver(t, db, 4)
	svc := NewTripService(db, true)

	in := validInput(2)
	in.Route = `{"type":"Nonsense"}`
	if _, err := svc.Create(driver.ID, in); !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}

func TestUpdateTrip(t *testing.T) {
	db := openTestDB(t)
	driver := seedDriver(t, db, 4)
	trip := seedTrip(t, db, driver.ID, 2)
	svc := NewTripService(db, true)

	in := validInput(4)
	in.StartLocation = "Campus Sur"
	updated, err := svc.Update(trip.ID, driver.ID, in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.StartLocation != "Campus Sur" {
		t.Errorf("startLocation = %q, want %q", updated.StartLocation, "Campus Sur")
	}
	if updated.AvailableSeats != 4 || updated.IsFull {
		t.Errorf("seats = %d full=%v, want 4 seats and not full", updated.AvailableSeats, updated.IsFull)
	}
}

func TestUpdateTrip_WrongDriver(t *testing.T) {
	db := openTestDB(t)
	owner := seedDriver(t, db, 4)
	other := seedDriver(t, db, 4)
	trip := seedTrip(t, db, owner.ID, 2)
	svc := NewTripService(db, true)

	if _, err := svc.Update(trip.ID, other.ID, validInput(2)); !errors.Is(err, ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}
}

func TestUpdateTrip_NotFound(t *testing.T) {
	db := openTestDB(t)
	driver := seedDriver(t, db, 4)
	svc := NewTripService(db, true)

	if _, err := svc.Update(777, driver.ID, validInput(2)); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestUpdateTrip_CapacityExceeded(t *testing.T) {
	db := openTestDB(t)
	driver := seedDriver(t, db, 3)
	trip := seedTrip(t, db, driver.ID, 2)
	svc := NewTripService(db, true)

	if _, err := svc.Update(trip.ID, driver.ID, validInput(5)); !errors.Is(err, ErrCapacityExceeded) {
		t.Fatalf("err = %v, want ErrCapacityExceeded", err)
	}
}

func TestDeleteTrip_CascadesReservations(t *testing.T) {
	db := openTestDB(t)
	driver := seedDriver(t, db, 4)
	passenger := seedPassenger(t, db)
	trip := seedTrip(t, db, driver.ID, 4)

	resSvc := NewReservationService(db)
	if _, err := resSvc.Reserve(trip.ID, passenger.ID, 2, []string{"Calle 100", "Calle 80"}); err != nil {
		t.Fatalf("reserve: %v", err)
	}

	svc := NewTripService(db, true)
	if err := svc.Delete(trip.ID, driver.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := svc.Get(trip.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("trip still loadable after delete: %v", err)
	}
	remaining, err := resSvc.ListByTrip(trip.ID)
	if err != nil {
		t.Fatalf("list reservations: %v", err)
	}
	if len(remaining) != 0 {
		t.Errorf("orphan reservations after trip delete: %d", len(remaining))
	}
}

func TestDeleteTrip_WrongDriver(t *testing.T) {
	db := openTestDB(t)
	owner := seedDriver(t, db, 4)
	other := seedDriver(t, db, 4)
	trip := seedTrip(t, db, owner.ID, 2)
	svc := NewTripService(db, true)

	if err := svc.Delete(trip.ID, other.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}
}

func TestListTrips(t *testing.T) {
	db := openTestDB(t)
	svc := NewTripService(db, false)
	resSvc := NewReservationService(db)
	passenger := seedPassenger(t, db)

	a := seedDriver(t, db, 4)
	b := seedDriver(t, db, 4)
	c := seedDriver(t, db, 4)

	openTrip := seedTrip(t, db, a.ID, 3)

	in := validInput(2)
	in.StartLocation = "Campus Sur"
	if _, err := svc.Create(b.ID, in); err != nil {
		t.Fatalf("create: %v", err)
	}

	fullTrip := seedTrip(t, db, c.ID, 1)
	if _, err := resSvc.Reserve(fullTrip.ID, passenger.ID, 1, []string{"Calle 26"}); err != nil {
		t.Fatalf("fill trip: %v", err)
	}

	trips, err := svc.List(TripFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(trips) != 2 {
		t.Errorf("default list = %d trips, want 2 (full trip excluded)", len(trips))
	}

	trips, err = svc.List(TripFilter{MinSeats: 3})
	if err != nil {
		t.Fatalf("list with min seats: %v", err)
	}
	if len(trips) != 1 || trips[0].ID != openTrip.ID {
		t.Errorf("minSeats=3 returned %d trips", len(trips))
	}

	trips, err = svc.List(TripFilter{StartLocation: "Campus Sur"})
	if err != nil {
		t.Fatalf("list by start: %v", err)
	}
	if len(trips) != 1 || trips[0].StartLocation != "Campus Sur" {
		t.Errorf("startLocation filter returned %d trips", len(trips))
	}

	trips, err = svc.List(TripFilter{IncludeFull: true})
	if err != nil {
		t.Fatalf("list including full: %v", err)
	}
	if len(trips) != 3 {
		t.Errorf("includeFull list = %d trips, want 3", len(trips))
	}
}

func TestDriverTrip(t *testing.T) {
	db := openTestDB(t)
	driver := seedDriver(t, db, 4)
	passenger := seedPassenger(t, db)
	trip := seedTrip(t, db, driver.ID, 3)

	resSvc := NewReservationService(db)
	if _, err := resSvc.Reserve(trip.ID, passenger.ID, 1, []string{"Carrera 7"}); err != nil {
		t.Fatalf("reserve: %v", err)
	}

	svc := NewTripService(db, true)
	got, err := svc.DriverTrip(driver.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != trip.ID {
		t.Errorf("trip id = %d, want %d", got.ID, trip.ID)
	}
	if len(got.Reservations) != 1 {
		t.Errorf("reservations = %d, want 1", len(got.Reservations))
	}

	if _, err := svc.DriverTrip(passenger.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("no-trip driver err = %v, want ErrNotFound", err)
	}
}
