package routes

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/nethmeehapugoda/back-end-royal-palms/models"
	"github.com/nethmeehapugoda/back-end-royal-palms/utils"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// overlaps mirrors the inclusive-boundary conflict rule that countConflicts
// expresses in SQL: a checkout on the same day as a new check-in counts as
// a conflict.
func overlaps(existingIn, existingOut, requestedIn, requestedOut time.Time) bool {
	return !existingIn.After(requestedOut) && !existingOut.Before(requestedIn)
}

func intPtr(v int) *int { return &v }

func TestOverlapInclusiveBoundary(t *testing.T) {
	existingIn := date(2024, 6, 1)
	existingOut := date(2024, 6, 5)

	tests := []struct {
		name     string
		reqIn    time.Time
		reqOut   time.Time
		conflict bool
	}{
		{"checkout day equals new checkin day conflicts", date(2024, 6, 5), date(2024, 6, 8), true},
		{"day after checkout is free", date(2024, 6, 6), date(2024, 6, 8), false},
		{"fully inside conflicts", date(2024, 6, 2), date(2024, 6, 4), true},
		{"fully covering conflicts", date(2024, 5, 30), date(2024, 6, 10), true},
		{"ends on existing checkin conflicts", date(2024, 5, 28), date(2024, 6, 1), true},
		{"entirely before is free", date(2024, 5, 20), date(2024, 5, 31), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := overlaps(existingIn, existingOut, tt.reqIn, tt.reqOut)
			if got != tt.conflict {
				t.Fatalf("overlaps(%s-%s vs %s-%s) = %v, want %v",
					existingIn.Format("2006-01-02"), existingOut.Format("2006-01-02"),
					tt.reqIn.Format("2006-01-02"), tt.reqOut.Format("2006-01-02"),
					got, tt.conflict)
			}
		})
	}
}

func TestNightsAndPriceDeterminism(t *testing.T) {
	checkIn := date(2024, 6, 1)
	checkOut := date(2024, 6, 4)

	nights := nightsBetween(checkIn, checkOut)
	if nights != 3 {
		t.Fatalf("expected 3 nights, got %d", nights)
	}

	categoryPrice := 100.0
	total := float64(nights) * categoryPrice
	if total != 300 {
		t.Fatalf("expected total 300, got %v", total)
	}
}

func TestNightsBetweenCeilsPartialDays(t *testing.T) {
	checkIn := time.Date(2024, 6, 1, 15, 0, 0, 0, time.UTC)
	checkOut := time.Date(2024, 6, 3, 11, 0, 0, 0, time.UTC)

	if nights := nightsBetween(checkIn, checkOut); nights != 2 {
		t.Fatalf("expected partial days to round up to 2 nights, got %d", nights)
	}
}

func TestMissingBookingFields(t *testing.T) {
	input := CreateBookingInput{}
	missing := missingBookingFields(input)

	want := []string{"room", "category", "checkInDate", "checkOutDate", "billing"}
	if len(missing) != len(want) {
		t.Fatalf("expected %v, got %v", want, missing)
	}
	for i, field := range want {
		if missing[i] != field {
			t.Fatalf("expected %v, got %v", want, missing)
		}
	}
}

func TestMissingBillingFieldsAreEnumerated(t *testing.T) {
	input := CreateBookingInput{
		Room:         1,
		Category:     1,
		CheckInDate:  "2024-06-01",
		CheckOutDate: "2024-06-04",
		Billing: &BillingInput{
			FullName: "Amara Silva",
			Email:    "amara@example.com",
		},
	}

	missing := missingBookingFields(input)
	want := []string{"billing.address", "billing.city", "billing.state", "billing.zip", "billing.cardNumber"}
	if len(missing) != len(want) {
		t.Fatalf("expected %v, got %v", want, missing)
	}
	for i, field := range want {
		if missing[i] != field {
			t.Fatalf("expected %v, got %v", want, missing)
		}
	}
}

func TestResolveGuestCounts(t *testing.T) {
	tests := []struct {
		name         string
		adults       *int
		children     *int
		wantAdults   int
		wantChildren int
		wantProblem  bool
	}{
		{"defaults when absent", nil, nil, 1, 0, false},
		{"explicit valid counts", intPtr(2), intPtr(3), 2, 3, false},
		{"zero adults rejected", intPtr(0), nil, 0, 0, true},
		{"five adults rejected", intPtr(5), nil, 5, 0, true},
		{"five children rejected", intPtr(2), intPtr(5), 2, 5, true},
		{"four and four allowed", intPtr(4), intPtr(4), 4, 4, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adults, children, problem := resolveGuestCounts(tt.adults, tt.children)
			if (problem != "") != tt.wantProblem {
				t.Fatalf("problem = %q, want problem: %v", problem, tt.wantProblem)
			}
			if !tt.wantProblem {
				if adults != tt.wantAdults || children != tt.wantChildren {
					t.Fatalf("got %d adults %d children, want %d and %d",
						adults, children, tt.wantAdults, tt.wantChildren)
				}
			}
		})
	}
}

func TestNormalizeBilling(t *testing.T) {
	billing := normalizeBilling(BillingInput{
		FullName:   "  Amara Silva  ",
		Email:      " Amara.Silva@Example.COM ",
		Address:    " 12 Palm Grove ",
		City:       " Colombo ",
		State:      " Western ",
		Zip:        " 00300 ",
		CardNumber: "4242 4242\t4242 4242",
	})

	if billing.FullName != "Amara Silva" {
		t.Errorf("full name not trimmed: %q", billing.FullName)
	}
	if billing.Email != "amara.silva@example.com" {
		t.Errorf("email not normalized: %q", billing.Email)
	}
	if billing.CardNumber != "4242424242424242" {
		t.Errorf("card number not stripped: %q", billing.CardNumber)
	}
	if billing.City != "Colombo" || billing.State != "Western" || billing.Zip != "00300" {
		t.Errorf("address fields not trimmed: %+v", billing)
	}

	if masked := billing.MaskedCardNumber(); masked != "**** **** **** 4242" {
		t.Errorf("unexpected masked card number: %q", masked)
	}
}

func TestValidateStay(t *testing.T) {
	now := time.Date(2024, 6, 10, 15, 30, 0, 0, time.UTC)

	tests := []struct {
		name     string
		checkIn  time.Time
		checkOut time.Time
		rejected bool
	}{
		{"yesterday check-in rejected", date(2024, 6, 9), date(2024, 6, 12), true},
		{"today check-in accepted", date(2024, 6, 10), date(2024, 6, 12), false},
		{"tomorrow check-in accepted", date(2024, 6, 11), date(2024, 6, 12), false},
		{"checkout equal to checkin rejected", date(2024, 6, 11), date(2024, 6, 11), true},
		{"checkout before checkin rejected", date(2024, 6, 12), date(2024, 6, 11), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			problem := validateStay(tt.checkIn, tt.checkOut, now)
			if (problem != "") != tt.rejected {
				t.Fatalf("validateStay(%s, %s) = %q, want rejected: %v",
					tt.checkIn.Format("2006-01-02"), tt.checkOut.Format("2006-01-02"),
					problem, tt.rejected)
			}
		})
	}
}

func TestLooseGuestCountParsing(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		adults      *int
		wantDefault bool
	}{
		{"numeric value", `{"numberOfAdults": 2}`, intPtr(2), false},
		{"quoted number", `{"numberOfAdults": "3"}`, intPtr(3), false},
		{"junk falls back to default", `{"numberOfAdults": "abc"}`, nil, true},
		{"null falls back to default", `{"numberOfAdults": null}`, nil, true},
		{"absent falls back to default", `{}`, nil, true},
		{"explicit zero is kept for the bounds check", `{"numberOfAdults": 0}`, intPtr(0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var input CreateBookingInput
			if err := json.Unmarshal([]byte(tt.body), &input); err != nil {
				t.Fatalf("unmarshal should never fail on guest counts: %v", err)
			}
			if tt.wantDefault {
				if input.NumberOfAdults.value != nil {
					t.Fatalf("expected absent value, got %d", *input.NumberOfAdults.value)
				}
				adults, children, problem := resolveGuestCounts(input.NumberOfAdults.value, input.NumberOfChildren.value)
				if problem != "" || adults != 1 || children != 0 {
					t.Fatalf("defaults not applied: %d adults %d children problem %q", adults, children, problem)
				}
				return
			}
			if input.NumberOfAdults.value == nil || *input.NumberOfAdults.value != *tt.adults {
				t.Fatalf("expected %d, got %v", *tt.adults, input.NumberOfAdults.value)
			}
		})
	}
}

func TestParseBookingDate(t *testing.T) {
	if _, err := parseBookingDate("2024-06-01"); err != nil {
		t.Fatalf("calendar date rejected: %v", err)
	}
	if _, err := parseBookingDate("2024-06-01T00:00:00Z"); err != nil {
		t.Fatalf("RFC3339 date rejected: %v", err)
	}
	if _, err := parseBookingDate("June 1st"); err == nil {
		t.Fatal("expected error for unparseable date")
	}
}

func TestDeriveRoomStatus(t *testing.T) {
	tests := []struct {
		bookingStatus string
		roomStatus    string
	}{
		{models.BookingConfirmed, models.RoomOccupied},
		{models.BookingCancelled, models.RoomAvailable},
		{models.BookingPending, models.RoomAvailable},
	}

	for _, tt := range tests {
		if got := deriveRoomStatus(tt.bookingStatus); got != tt.roomStatus {
			t.Errorf("deriveRoomStatus(%s) = %s, want %s", tt.bookingStatus, got, tt.roomStatus)
		}
	}
}

func TestCanAccessBooking(t *testing.T) {
	booking := &models.Booking{UserID: 7}

	owner := &utils.AccessToken{ID: 7, Role: models.RoleUser}
	stranger := &utils.AccessToken{ID: 8, Role: models.RoleUser}
	admin := &utils.AccessToken{ID: 9, Role: models.RoleAdmin}

	if !canAccessBooking(owner, booking) {
		t.Error("owner should access their booking")
	}
	if canAccessBooking(stranger, booking) {
		t.Error("non-owner non-admin should be denied")
	}
	if !canAccessBooking(admin, booking) {
		t.Error("admin should access any booking")
	}
}
