package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/yeremiapane/restaurant-booking/booking"
	"github.com/yeremiapane/restaurant-booking/forms"
	"github.com/yeremiapane/restaurant-booking/models"
	"github.com/yeremiapane/restaurant-booking/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CreateBookingInput is the "make booking" form. The interval is Start plus
// End, or Start plus LengthMinutes when End is empty. Without Optimise the
// guest picks TableID; with it the table is chosen for them.
type CreateBookingInput struct {
	RestaurantID  uint       `json:"-"`
	PartySize     int        `json:"party_size" validate:"gte=1,lte=50"`
	Start         time.Time  `json:"start" validate:"required"`
	End           *time.Time `json:"end"`
	LengthMinutes int        `json:"length_minutes" validate:"gte=0,lte=120"`
	TableID       *uint      `json:"table_id"`
	Optimise      bool       `json:"optimise"`
	GuestName     string     `json:"guest_name" validate:"max=100"`
}

type BookingService struct {
	DB  *gorm.DB
	Now func() time.Time

	// serialises check-then-write per restaurant inside this process;
	// row locks cover the multi-process case on mysql and postgres
	locks sync.Map // restaurant ID -> *sync.Mutex
}

func NewBookingService(db *gorm.DB) *BookingService {
	return &BookingService{DB: db, Now: time.Now}
}

func (s *BookingService) lockRestaurant(id uint) func() {
	m, _ := s.locks.LoadOrStore(id, &sync.Mutex{})
	mu := m.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// Create validates the form, then inside one transaction locks the candidate
// tables, loads their overlapping bookings, picks or checks the table and
// inserts the booking.
func (s *BookingService) Create(ctx context.Context, in CreateBookingInput) (*models.Booking, error) {
	fe := forms.Validate(in)

	var iv booking.Interval
	if _, bad := fe["start"]; !bad {
		var err error
		iv, err = bookingInterval(in, fe)
		if err != nil {
			return nil, err
		}
	}
	if !in.Optimise && in.TableID == nil {
		fe.Add("table_id", "Choose a table or let us find one for you.")
	}
	if err := fe.Err(); err != nil {
		return nil, err
	}

	db := s.DB.WithContext(ctx)
	restaurant, err := findRestaurant(db, in.RestaurantID, false)
	if err != nil {
		return nil, err
	}
	if err := s.checkPolicy(restaurant, iv); err != nil {
		return nil, err
	}

	unlock := s.lockRestaurant(restaurant.ID)
	defer unlock()

	var created models.Booking
	err = db.Transaction(func(tx *gorm.DB) error {
		candidates, tables, err := loadCandidates(tx, restaurant.ID, in, iv)
		if err != nil {
			return err
		}

		var chosen booking.Candidate
		if in.Optimise {
			chosen, err = booking.SelectTable(candidates, iv, in.PartySize)
		} else {
			if len(candidates) == 0 {
				return forms.Field("table_id", "This table does not belong to the restaurant.")
			}
			chosen, err = candidates[0], booking.CheckTable(candidates[0], iv, in.PartySize)
		}
		if err != nil {
			if errors.Is(err, booking.ErrPartyTooLarge) {
				return forms.Field("party_size", "The party is too large for this table.")
			}
			return err
		}

		created = models.Booking{
			Reference:    uuid.NewString(),
			RestaurantID: restaurant.ID,
			TableID:      chosen.ID,
			PartySize:    in.PartySize,
			StartTime:    iv.Start.UTC(),
			EndTime:      iv.End.UTC(),
			GuestName:    strings.TrimSpace(in.GuestName),
			Status:       models.BookingConfirmed,
		}
		if err := tx.Omit("Restaurant", "Table").Create(&created).Error; err != nil {
			return fmt.Errorf("create booking: %w", err)
		}
		t := tables[chosen.ID]
		created.Table = &t
		return nil
	})
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.Printf("Booking %s confirmed: restaurant=%d table=%d party=%d %s-%s (optimise=%t)",
		created.Reference, created.RestaurantID, created.TableID, created.PartySize,
		created.StartTime.Format(time.RFC3339), created.EndTime.Format(time.RFC3339), in.Optimise)
	return &created, nil
}

// bookingInterval resolves the requested range, recording form errors in fe.
func bookingInterval(in CreateBookingInput, fe forms.FieldErrors) (booking.Interval, error) {
	field := "length_minutes"
	end := in.Start.Add(time.Duration(in.LengthMinutes) * time.Minute)
	if in.End != nil {
		field = "end"
		end = *in.End
	} else if in.LengthMinutes == 0 {
		fe.Add(field, "This field is required.")
		return booking.Interval{}, nil
	}

	iv, err := booking.NewInterval(in.Start, end)
	if err != nil {
		fe.Add(field, "The booking must end after it starts.")
		return booking.Interval{}, nil
	}
	switch err := booking.ValidateLength(iv.Duration()); {
	case errors.Is(err, booking.ErrInvalidLength):
		fe.Add(field, "Bookings are made in 15 minute steps.")
	case errors.Is(err, booking.ErrTooLong):
		fe.Add(field, "Bookings cannot be longer than 2 hours.")
	case err != nil:
		return booking.Interval{}, err
	}
	return iv, nil
}

// checkPolicy applies the restaurant's opening hours and rejects past starts.
func (s *BookingService) checkPolicy(r *models.Restaurant, iv booking.Interval) error {
	hours, err := restaurantHours(r)
	if err != nil {
		return err
	}
	loc := r.Location()
	local := booking.Interval{Start: iv.Start.In(loc), End: iv.End.In(loc)}

	switch err := hours.Admits(local); {
	case errors.Is(err, booking.ErrOutsideOpeningHours):
		return forms.Field("start", fmt.Sprintf("Bookings start between %s and one hour before %s.", hours.Open, hours.Close))
	case errors.Is(err, booking.ErrOffSlot):
		return forms.Field("start", "Bookings start on the quarter hour.")
	case errors.Is(err, booking.ErrExceedsClosing):
		return forms.Field("end", "Booking exceeds restaurant closing time.")
	case err != nil:
		return err
	}

	if iv.Start.Before(s.Now()) {
		return forms.Field("start", "Bookings must be in the future.")
	}
	return nil
}

// loadCandidates locks the relevant tables and attaches the confirmed bookings
// overlapping iv. Without Optimise only the requested table is loaded.
func loadCandidates(tx *gorm.DB, restaurantID uint, in CreateBookingInput, iv booking.Interval) ([]booking.Candidate, map[uint]models.Table, error) {
	q := tx.Where("restaurant_id = ?", restaurantID)
	if !in.Optimise {
		q = q.Where("id = ?", *in.TableID)
	}
	if tx.Dialector.Name() != "sqlite" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var tables []models.Table
	if err := q.Order("id").Find(&tables).Error; err != nil {
		return nil, nil, fmt.Errorf("load tables: %w", err)
	}
	if len(tables) == 0 {
		return nil, nil, nil
	}

	ids := make([]uint, 0, len(tables))
	byID := make(map[uint]models.Table, len(tables))
	for _, t := range tables {
		ids = append(ids, t.ID)
		byID[t.ID] = t
	}

	var existing []models.Booking
	if err := tx.
		Where("table_id IN ? AND status = ? AND start_time < ? AND end_time > ?",
			ids, models.BookingConfirmed, iv.End.UTC(), iv.Start.UTC()).
		Find(&existing).Error; err != nil {
		return nil, nil, fmt.Errorf("load bookings: %w", err)
	}

	booked := make(map[uint][]booking.Interval, len(tables))
	for _, b := range existing {
		booked[b.TableID] = append(booked[b.TableID], booking.Interval{Start: b.StartTime, End: b.EndTime})
	}

	candidates := make([]booking.Candidate, 0, len(tables))
	for _, t := range tables {
		candidates = append(candidates, booking.Candidate{ID: t.ID, Capacity: t.Capacity, Booked: booked[t.ID]})
	}
	return candidates, byID, nil
}

// Get looks a booking up by its public reference.
func (s *BookingService) Get(ctx context.Context, reference string) (*models.Booking, error) {
	var b models.Booking
	err := s.DB.WithContext(ctx).Preload("Table").Where("reference = ?", reference).First(&b).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return &b, nil
}

// ListForDay returns the bookings starting on day in the restaurant's time zone.
func (s *BookingService) ListForDay(ctx context.Context, restaurantID uint, day time.Time) ([]models.Booking, error) {
	db := s.DB.WithContext(ctx)
	r, err := findRestaurant(db, restaurantID, false)
	if err != nil {
		return nil, err
	}
	loc := r.Location()
	y, m, d := day.Date()
	from := time.Date(y, m, d, 0, 0, 0, 0, loc)
	to := from.AddDate(0, 0, 1)

	var bookings []models.Booking
	err = db.Preload("Table").
		Where("restaurant_id = ? AND start_time >= ? AND start_time < ?", restaurantID, from.UTC(), to.UTC()).
		Order("start_time").Order("table_id").
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

// Cancel marks the booking cancelled and frees its table. Cancelling twice is a no-op.
func (s *BookingService) Cancel(ctx context.Context, reference string) (*models.Booking, error) {
	var b models.Booking
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Table").Where("reference = ?", reference).First(&b).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBookingNotFound
			}
			return err
		}
		if b.Status == models.BookingCancelled {
			return nil
		}
		if err := tx.Model(&b).Update("status", models.BookingCancelled).Error; err != nil {
			return fmt.Errorf("cancel booking: %w", err)
		}
		b.Status = models.BookingCancelled
		utils.InfoLogger.Printf("Booking %s cancelled", b.Reference)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// Delete removes a booking outright (administrative clean-up).
func (s *BookingService) Delete(ctx context.Context, id uint) (*models.Booking, error) {
	var b models.Booking
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&b, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBookingNotFound
			}
			return err
		}
		return tx.Delete(&b).Error
	})
	if err != nil {
		return nil, err
	}
	utils.InfoLogger.Printf("Booking %d deleted", id)
	return &b, nil
}
