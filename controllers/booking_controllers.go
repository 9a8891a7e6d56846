package controllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-booking/forms"
	"github.com/yeremiapane/restaurant-booking/realtime"
	"github.com/yeremiapane/restaurant-booking/reports"
	"github.com/yeremiapane/restaurant-booking/services"
	"github.com/yeremiapane/restaurant-booking/utils"
	"gorm.io/gorm"
)

// accepted date-time layouts; values without an offset are read in the
// restaurant's time zone
var localLayouts = []string{"2006-01-02T15:04", "2006-01-02 15:04", "2006-01-02T15:04:05"}

type BookingController struct {
	DB          *gorm.DB
	Bookings    *services.BookingService
	Restaurants *services.RestaurantService
	Hub         *realtime.Hub
}

func NewBookingController(db *gorm.DB, hub *realtime.Hub) *BookingController {
	return &BookingController{
		DB:          db,
		Bookings:    services.NewBookingService(db),
		Restaurants: services.NewRestaurantService(db),
		Hub:         hub,
	}
}

type bookingRequest struct {
	PartySize     int      `json:"party_size" form:"party_size"`
	Start         string   `json:"start" form:"start"`
	End           string   `json:"end" form:"end"`
	LengthMinutes int      `json:"length_minutes" form:"length_minutes"`
	TableID       *uint    `json:"table_id" form:"table_id"`
	Optimise      checkbox `json:"optimise" form:"optimise"`
	GuestName     string   `json:"guest_name" form:"guest_name"`
}

// checkbox is a boolean that also accepts what HTML forms post for a ticked box.
type checkbox bool

func (cb *checkbox) UnmarshalParam(param string) error {
	switch strings.ToLower(strings.TrimSpace(param)) {
	case "on", "yes", "true", "1":
		*cb = true
	case "", "off", "no", "false", "0":
		*cb = false
	default:
		return &strconv.NumError{Func: "ParseBool", Num: param, Err: strconv.ErrSyntax}
	}
	return nil
}

func (cb *checkbox) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*cb = checkbox(b)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil && cb.UnmarshalParam(s) == nil {
		return nil
	}
	return &json.UnmarshalTypeError{Value: string(data), Type: reflect.TypeOf(true)}
}

func parseDateTime(s string, loc *time.Location) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func (req bookingRequest) input(restaurantID uint, loc *time.Location) (services.CreateBookingInput, forms.FieldErrors) {
	fe := forms.FieldErrors{}
	in := services.CreateBookingInput{
		RestaurantID:  restaurantID,
		PartySize:     req.PartySize,
		LengthMinutes: req.LengthMinutes,
		TableID:       req.TableID,
		Optimise:      bool(req.Optimise),
		GuestName:     req.GuestName,
	}
	if s := strings.TrimSpace(req.Start); s != "" {
		if t, ok := parseDateTime(s, loc); ok {
			in.Start = t
		} else {
			fe.Add("start", "Enter a date and time as YYYY-MM-DDTHH:MM.")
		}
	}
	if s := strings.TrimSpace(req.End); s != "" {
		if t, ok := parseDateTime(s, loc); ok {
			in.End = &t
		} else {
			fe.Add("end", "Enter a date and time as YYYY-MM-DDTHH:MM.")
		}
	}
	return in, fe
}

// CreateBooking -> make a booking on a named table or let the optimiser pick one
func (bc *BookingController) CreateBooking(c *gin.Context) {
	restaurantID, ok := paramID(c, "restaurant_id")
	if !ok {
		return
	}
	var req bookingRequest
	if err := c.ShouldBind(&req); err != nil {
		respondBindError(c, err)
		return
	}

	ctx := c.Request.Context()
	restaurant, err := bc.Restaurants.Get(ctx, restaurantID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	in, fe := req.input(restaurant.ID, restaurant.Location())
	if err := fe.Err(); err != nil {
		respondServiceError(c, err)
		return
	}

	b, err := bc.Bookings.Create(ctx, in)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	bc.Hub.Broadcast(realtime.Message{
		Event: realtime.EventBookingCreated,
		Data:  b,
	})
	utils.RespondJSON(c, http.StatusCreated, "Booking confirmed", b)
}

// GetBooking -> look a booking up by reference
func (bc *BookingController) GetBooking(c *gin.Context) {
	b, err := bc.Bookings.Get(c.Request.Context(), c.Param("reference"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Booking detail", b)
}

func (bc *BookingController) CancelBooking(c *gin.Context) {
	b, err := bc.Bookings.Cancel(c.Request.Context(), c.Param("reference"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	bc.Hub.Broadcast(realtime.Message{
		Event: realtime.EventBookingCancelled,
		Data:  b,
	})
	utils.RespondJSON(c, http.StatusOK, "Booking cancelled", b)
}

// queryDay reads ?date=YYYY-MM-DD, defaulting to today in loc.
func queryDay(c *gin.Context, loc *time.Location) (time.Time, bool) {
	raw := c.Query("date")
	if raw == "" {
		return time.Now().In(loc), true
	}
	day, err := time.Parse("2006-01-02", raw)
	if err != nil {
		utils.RespondInvalid(c, forms.Field("date", "Enter a date as YYYY-MM-DD."))
		return time.Time{}, false
	}
	return day, true
}

// GetBookingsForDay -> a restaurant's bookings on one day
func (bc *BookingController) GetBookingsForDay(c *gin.Context) {
	restaurantID, ok := paramID(c, "restaurant_id")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	restaurant, err := bc.Restaurants.Get(ctx, restaurantID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	day, ok := queryDay(c, restaurant.Location())
	if !ok {
		return
	}

	bookings, err := bc.Bookings.ListForDay(ctx, restaurantID, day)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Bookings for "+day.Format("2006-01-02"), bookings)
}

// BookingSheet -> printable PDF of the day's bookings
func (bc *BookingController) BookingSheet(c *gin.Context) {
	restaurantID, ok := paramID(c, "restaurant_id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	restaurant, err := bc.Restaurants.Get(ctx, restaurantID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	day, ok := queryDay(c, restaurant.Location())
	if !ok {
		return
	}
	bookings, err := bc.Bookings.ListForDay(ctx, restaurantID, day)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := reports.WriteBookingSheet(&buf, restaurant, day, bookings); err != nil {
		respondServiceError(c, fmt.Errorf("render booking sheet: %w", err))
		return
	}

	filename := fmt.Sprintf("bookings-%d-%s.pdf", restaurant.ID, day.Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

// DeleteBooking -> administrative hard delete
func (bc *BookingController) DeleteBooking(c *gin.Context) {
	id, ok := paramID(c, "booking_id")
	if !ok {
		return
	}
	b, err := bc.Bookings.Delete(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	bc.Hub.Broadcast(realtime.Message{
		Event: realtime.EventBookingDeleted,
		Data: map[string]interface{}{
			"booking_id": b.ID,
			"table_id":   b.TableID,
		},
	})
	utils.RespondJSON(c, http.StatusOK, "Booking deleted", gin.H{"id": b.ID})
}
