package routes

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/nethmeehapugoda/back-end-royal-palms/models"
	"github.com/nethmeehapugoda/back-end-royal-palms/services"
	"github.com/nethmeehapugoda/back-end-royal-palms/storage"
	"github.com/nethmeehapugoda/back-end-royal-palms/utils"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
	"golang.org/x/exp/slices"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Booking engine endpoints: creation, availability, lifecycle and reporting.

var bookingStatuses = []string{models.BookingPending, models.BookingConfirmed, models.BookingCancelled}

type BillingInput struct {
	FullName   string `json:"fullName"`
	Email      string `json:"email"`
	Address    string `json:"address"`
	City       string `json:"city"`
	State      string `json:"state"`
	Zip        string `json:"zip"`
	CardNumber string `json:"cardNumber"`
}

// looseCount tolerates the loose typing of older clients, which send guest
// counts as numbers or quoted numbers. Anything unparseable counts as
// absent so the defaults apply; bounds are enforced in resolveGuestCounts.
type looseCount struct {
	value *int
}

func (lc *looseCount) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		lc.value = &n
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if parsed, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			lc.value = &parsed
		}
	}
	return nil
}

type CreateBookingInput struct {
	Room             uint          `json:"room"`
	Category         uint          `json:"category"`
	CheckInDate      string        `json:"checkInDate"`
	CheckOutDate     string        `json:"checkOutDate"`
	NumberOfAdults   looseCount    `json:"numberOfAdults"`
	NumberOfChildren looseCount    `json:"numberOfChildren"`
	TotalPrice       float64       `json:"totalPrice"` // ignored, price is computed server-side
	Billing          *BillingInput `json:"billing"`
}

type UpdateBookingInput struct {
	CheckInDate      *string       `json:"checkInDate"`
	CheckOutDate     *string       `json:"checkOutDate"`
	NumberOfAdults   *int          `json:"numberOfAdults"`
	NumberOfChildren *int          `json:"numberOfChildren"`
	Status           *string       `json:"status"`
	Billing          *BillingInput `json:"billing"`
}

// requestError carries an HTTP mapping for failures raised inside the
// create transaction.
type requestError struct {
	status int
	title  string
	detail string
}

func (e *requestError) Error() string { return e.detail }

// missingBookingFields collects every absent required field instead of
// aborting on the first one.
func missingBookingFields(input CreateBookingInput) []string {
	var missing []string
	if input.Room == 0 {
		missing = append(missing, "room")
	}
	if input.Category == 0 {
		missing = append(missing, "category")
	}
	if input.CheckInDate == "" {
		missing = append(missing, "checkInDate")
	}
	if input.CheckOutDate == "" {
		missing = append(missing, "checkOutDate")
	}
	if input.Billing == nil {
		missing = append(missing, "billing")
		return missing
	}
	return append(missing, missingBillingFields(*input.Billing)...)
}

func missingBillingFields(billing BillingInput) []string {
	var missing []string
	fields := []struct {
		name  string
		value string
	}{
		{"billing.fullName", billing.FullName},
		{"billing.email", billing.Email},
		{"billing.address", billing.Address},
		{"billing.city", billing.City},
		{"billing.state", billing.State},
		{"billing.zip", billing.Zip},
		{"billing.cardNumber", billing.CardNumber},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

// parseBookingDate accepts plain calendar dates; RFC3339 instants are
// tolerated because older clients send both.
func parseBookingDate(value string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// validateStay enforces the calendar rules on a requested stay: check-in on
// or after the current day, check-out strictly after check-in.
func validateStay(checkIn, checkOut, now time.Time) string {
	if checkIn.Before(startOfDay(now)) {
		return "Check-in date cannot be in the past"
	}
	if !checkOut.After(checkIn) {
		return "Check-out date must be after check-in date"
	}
	return ""
}

// nightsBetween is the ceiling of the stay length in whole days.
func nightsBetween(checkIn, checkOut time.Time) int {
	return int(math.Ceil(checkOut.Sub(checkIn).Hours() / 24))
}

// resolveGuestCounts applies defaults (1 adult, 0 children when absent) and
// enforces the 1..4 adults / 0..4 children bounds.
func resolveGuestCounts(adults, children *int) (int, int, string) {
	a, c := 1, 0
	if adults != nil {
		a = *adults
	}
	if children != nil {
		c = *children
	}
	if a < 1 {
		return a, c, "At least one adult is required"
	}
	if a > 4 || c > 4 {
		return a, c, "Maximum 4 adults and 4 children allowed"
	}
	if c < 0 {
		return a, c, "Number of children cannot be negative"
	}
	return a, c, ""
}

func stripWhitespace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

func normalizeBilling(in BillingInput) models.Billing {
	return models.Billing{
		FullName:   strings.TrimSpace(in.FullName),
		Email:      strings.ToLower(strings.TrimSpace(in.Email)),
		Address:    strings.TrimSpace(in.Address),
		City:       strings.TrimSpace(in.City),
		State:      strings.TrimSpace(in.State),
		Zip:        strings.TrimSpace(in.Zip),
		CardNumber: stripWhitespace(in.CardNumber),
	}
}

// canAccessBooking is the single ownership predicate for booking reads and
// lifecycle mutations.
func canAccessBooking(claims *utils.AccessToken, booking *models.Booking) bool {
	return claims.Role.IsAdmin() || claims.ID == booking.UserID
}

// deriveRoomStatus maps a booking status onto the room status written after
// a lifecycle change: confirmed occupies the room, everything else frees it.
func deriveRoomStatus(bookingStatus string) string {
	if bookingStatus == models.BookingConfirmed {
		return models.RoomOccupied
	}
	return models.RoomAvailable
}

func countConflicts(db *gorm.DB, roomID uint, checkIn, checkOut time.Time) (int64, error) {
	var conflicts int64
	err := db.Model(&models.Booking{}).
		Where("room_id = ? AND status <> ? AND check_in_date <= ? AND check_out_date >= ?",
			roomID, models.BookingCancelled, checkOut, checkIn).
		Count(&conflicts).Error
	return conflicts, err
}

func CreateBooking(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	var input CreateBookingInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	if missing := missingBookingFields(input); len(missing) > 0 {
		utils.CreateMissingFieldsError(missing, ctx)
		return
	}

	checkIn, checkInErr := parseBookingDate(input.CheckInDate)
	checkOut, checkOutErr := parseBookingDate(input.CheckOutDate)
	if checkInErr != nil || checkOutErr != nil {
		utils.CreateError(iris.StatusBadRequest, "Invalid Input", "Invalid date format", ctx)
		return
	}

	if problem := validateStay(checkIn, checkOut, time.Now().UTC()); problem != "" {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", problem, ctx)
		return
	}

	// The overlap check and the insert must behave as if atomic for a given
	// room: hold the per-room guard across both, and take a row lock on the
	// room so concurrent processes serialize at the database.
	release := bookingGuard.acquire(input.Room)
	defer release()

	var booking models.Booking
	var roomNumber string
	txErr := storage.DB.Transaction(func(tx *gorm.DB) error {
		var room models.Room
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&room, input.Room).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &requestError{iris.StatusNotFound, "Not Found", "Room not found"}
			}
			return err
		}
		if room.Status != models.RoomAvailable {
			return &requestError{iris.StatusConflict, "Conflict", "Room is not available"}
		}

		var category models.Category
		if err := tx.First(&category, input.Category).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &requestError{iris.StatusNotFound, "Not Found", "Category not found"}
			}
			return err
		}

		conflicts, err := countConflicts(tx, room.ID, checkIn, checkOut)
		if err != nil {
			return err
		}
		if conflicts > 0 {
			return &requestError{
				iris.StatusConflict, "Conflict",
				fmt.Sprintf("Room is not available for the selected dates (%d conflicting bookings)", conflicts),
			}
		}

		adults, children, problem := resolveGuestCounts(input.NumberOfAdults.value, input.NumberOfChildren.value)
		if problem != "" {
			return &requestError{iris.StatusBadRequest, "Validation Error", problem}
		}

		// Price is computed here regardless of any client-supplied total.
		nights := nightsBetween(checkIn, checkOut)
		totalPrice := float64(nights) * category.Price

		booking = models.Booking{
			UserID:           claims.ID, // owner comes from the token, never the body
			RoomID:           room.ID,
			CategoryID:       category.ID,
			CheckInDate:      checkIn,
			CheckOutDate:     checkOut,
			NumberOfAdults:   adults,
			NumberOfChildren: children,
			TotalPrice:       totalPrice,
			Status:           models.BookingPending,
			Billing:          normalizeBilling(*input.Billing),
		}
		roomNumber = room.RoomNumber

		return tx.Create(&booking).Error
	})

	if txErr != nil {
		var rerr *requestError
		if errors.As(txErr, &rerr) {
			utils.CreateError(rerr.status, rerr.title, rerr.detail, ctx)
			return
		}
		utils.LogInternalServerError(txErr, ctx)
		return
	}

	if err := storage.DB.Preload("User").Preload("Room").Preload("Category").
		First(&booking, booking.ID).Error; err != nil {
		log.Printf("failed to reload booking %d with associations: %v", booking.ID, err)
	}

	// Confirmation mail is fire-and-forget: the booking is already durable
	// and a slow or failing mail transport must not affect the response.
	mailer := services.NewEmailService()
	go mailer.SendBookingConfirmation(
		booking.Billing.Email,
		booking.Billing.FullName,
		booking.ID,
		booking.TotalPrice,
		services.BookingDetails{
			Room:         roomNumber,
			CheckInDate:  checkIn.Format("2006-01-02"),
			CheckOutDate: checkOut.Format("2006-01-02"),
			Guests:       fmt.Sprintf("%d Adults, %d Children", booking.NumberOfAdults, booking.NumberOfChildren),
		})

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(iris.Map{
		"message": "Booking created successfully",
		"booking": &booking,
	})
}

// CheckRoomAvailability answers read-only availability queries. Public, no
// side effects.
func CheckRoomAvailability(ctx iris.Context) {
	roomIDStr := ctx.URLParam("roomId")
	checkInStr := ctx.URLParam("checkInDate")
	checkOutStr := ctx.URLParam("checkOutDate")

	if roomIDStr == "" || checkInStr == "" || checkOutStr == "" {
		utils.CreateError(iris.StatusBadRequest, "Validation Error",
			"Room ID, check-in date, and check-out date are required", ctx)
		return
	}

	roomID, roomIDErr := strconv.ParseUint(roomIDStr, 10, 32)
	if roomIDErr != nil {
		utils.CreateError(iris.StatusBadRequest, "Invalid Input", "Invalid room ID", ctx)
		return
	}

	checkIn, checkInErr := parseBookingDate(checkInStr)
	checkOut, checkOutErr := parseBookingDate(checkOutStr)
	if checkInErr != nil || checkOutErr != nil {
		utils.CreateError(iris.StatusBadRequest, "Invalid Input", "Invalid date format", ctx)
		return
	}

	var room models.Room
	if err := storage.DB.First(&room, roomID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.CreateError(iris.StatusNotFound, "Not Found", "Room not found", ctx)
			return
		}
		utils.LogInternalServerError(err, ctx)
		return
	}

	// An occupied or maintenance room is never offerable, independent of
	// date overlap.
	if room.Status != models.RoomAvailable {
		ctx.JSON(iris.Map{
			"available": false,
			"message":   "Room is currently not available",
		})
		return
	}

	conflicts, err := countConflicts(storage.DB, room.ID, checkIn, checkOut)
	if err != nil {
		utils.LogInternalServerError(err, ctx)
		return
	}

	available := conflicts == 0
	message := "Room is available for the selected dates"
	if !available {
		message = "Room is not available for the selected dates"
	}

	ctx.JSON(iris.Map{
		"available":           available,
		"message":             message,
		"conflictingBookings": conflicts,
	})
}

func GetBookings(ctx iris.Context) {
	var bookings []models.Booking
	res := storage.DB.Preload("User").Preload("Room").Preload("Category").
		Order("created_at DESC").Find(&bookings)
	if res.Error != nil {
		utils.LogInternalServerError(res.Error, ctx)
		return
	}

	ctx.JSON(bookings)
}

func GetBookingByID(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)
	id := ctx.Params().Get("id")

	var booking models.Booking
	if err := storage.DB.Preload("User").Preload("Room").Preload("Category").First(&booking, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.CreateError(iris.StatusNotFound, "Not Found", "Booking not found", ctx)
			return
		}
		utils.LogInternalServerError(err, ctx)
		return
	}

	if !canAccessBooking(claims, &booking) {
		utils.CreateForbidden(ctx)
		return
	}

	ctx.JSON(&booking)
}

func UpdateBooking(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)
	id := ctx.Params().Get("id")

	var input UpdateBookingInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var booking models.Booking
	if err := storage.DB.First(&booking, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.CreateError(iris.StatusNotFound, "Not Found", "Booking not found", ctx)
			return
		}
		utils.LogInternalServerError(err, ctx)
		return
	}

	if !canAccessBooking(claims, &booking) {
		utils.CreateForbidden(ctx)
		return
	}

	before := booking

	if input.CheckInDate != nil {
		checkIn, err := parseBookingDate(*input.CheckInDate)
		if err != nil {
			utils.CreateError(iris.StatusBadRequest, "Invalid Input", "Invalid date format", ctx)
			return
		}
		booking.CheckInDate = checkIn
	}
	if input.CheckOutDate != nil {
		checkOut, err := parseBookingDate(*input.CheckOutDate)
		if err != nil {
			utils.CreateError(iris.StatusBadRequest, "Invalid Input", "Invalid date format", ctx)
			return
		}
		booking.CheckOutDate = checkOut
	}
	if input.NumberOfAdults != nil {
		booking.NumberOfAdults = *input.NumberOfAdults
	}
	if input.NumberOfChildren != nil {
		booking.NumberOfChildren = *input.NumberOfChildren
	}
	if input.Status != nil {
		if !slices.Contains(bookingStatuses, *input.Status) {
			utils.CreateError(iris.StatusBadRequest, "Validation Error", "Invalid booking status", ctx)
			return
		}
		booking.Status = *input.Status
	}
	if input.Billing != nil {
		if missing := missingBillingFields(*input.Billing); len(missing) > 0 {
			utils.CreateMissingFieldsError(missing, ctx)
			return
		}
		booking.Billing = normalizeBilling(*input.Billing)
	}

	// Full-document validation re-run, not partial.
	if !booking.CheckOutDate.After(booking.CheckInDate) {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "Check-out date must be after check-in date", ctx)
		return
	}
	if _, _, problem := resolveGuestCounts(&booking.NumberOfAdults, &booking.NumberOfChildren); problem != "" {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", problem, ctx)
		return
	}

	if err := storage.DB.Save(&booking).Error; err != nil {
		utils.LogInternalServerError(err, ctx)
		return
	}

	// Room status follows the booking status. This is a separate,
	// non-transactional write; on failure the booking stays updated and the
	// mismatch is logged as an inconsistency.
	if input.Status != nil {
		roomStatus := deriveRoomStatus(booking.Status)
		if err := storage.DB.Model(&models.Room{}).Where("id = ?", booking.RoomID).
			Update("status", roomStatus).Error; err != nil {
			log.Printf("room status inconsistency: booking %d updated to %s but room %d not set to %s: %v",
				booking.ID, booking.Status, booking.RoomID, roomStatus, err)
		}
	}

	utils.Audit(ctx, "booking.update", "booking", booking.ID, &before, &booking)

	storage.DB.Preload("User").Preload("Room").Preload("Category").First(&booking, booking.ID)
	ctx.JSON(iris.Map{
		"message": "Booking updated successfully",
		"booking": &booking,
	})
}

func DeleteBooking(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)
	id := ctx.Params().Get("id")

	var booking models.Booking
	if err := storage.DB.First(&booking, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.CreateError(iris.StatusNotFound, "Not Found", "Booking not found", ctx)
			return
		}
		utils.LogInternalServerError(err, ctx)
		return
	}

	if !canAccessBooking(claims, &booking) {
		utils.CreateForbidden(ctx)
		return
	}

	// Deletion always frees the room, whatever the booking status was.
	if err := storage.DB.Model(&models.Room{}).Where("id = ?", booking.RoomID).
		Update("status", models.RoomAvailable).Error; err != nil {
		log.Printf("room status inconsistency: booking %d deleted but room %d not freed: %v",
			booking.ID, booking.RoomID, err)
	}

	if err := storage.DB.Delete(&booking).Error; err != nil {
		utils.LogInternalServerError(err, ctx)
		return
	}

	utils.Audit(ctx, "booking.delete", "booking", booking.ID, &booking, nil)

	ctx.JSON(iris.Map{"message": "Booking deleted successfully"})
}

func GetUserBookings(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	var user models.User
	if err := storage.DB.First(&user, claims.ID).Error; err != nil {
		utils.CreateError(iris.StatusUnauthorized, "Unauthorized", "User not found", ctx)
		return
	}

	var bookings []models.Booking
	res := storage.DB.Preload("Room").Preload("Category").
		Where("user_id = ?", claims.ID).
		Order("created_at DESC").Find(&bookings)
	if res.Error != nil {
		utils.LogInternalServerError(res.Error, ctx)
		return
	}

	ctx.JSON(bookings)
}

// GetMonthlyRevenue folds confirmed bookings into per-month totals keyed by
// 0-based month of creation, summing each booking's stored total price.
func GetMonthlyRevenue(ctx iris.Context) {
	var bookings []models.Booking
	res := storage.DB.Where("status = ?", models.BookingConfirmed).Find(&bookings)
	if res.Error != nil {
		utils.LogInternalServerError(res.Error, ctx)
		return
	}

	revenue := make(map[int]float64)
	for _, booking := range bookings {
		month := int(booking.CreatedAt.Month()) - 1
		revenue[month] += booking.TotalPrice
	}

	ctx.JSON(revenue)
}
