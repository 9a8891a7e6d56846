package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yeremiapane/restaurant-booking/booking"
	"github.com/yeremiapane/restaurant-booking/forms"
	"github.com/yeremiapane/restaurant-booking/models"
	"github.com/yeremiapane/restaurant-booking/utils"
	"gorm.io/gorm"
)

// TableGroupInput describes Count identical tables in the guided form.
// Count defaults to 1 when omitted; 0 adds no tables.
type TableGroupInput struct {
	Name     string `json:"name" validate:"notblank,max=40"`
	Capacity int    `json:"capacity" validate:"gt=0,lte=50"`
	Count    *int   `json:"count" validate:"omitempty,gte=0,lte=100"`
}

type CreateRestaurantInput struct {
	Name        string                 `json:"name" form:"name" validate:"notblank,max=100"`
	Description string                 `json:"description" form:"description" validate:"notblank"`
	Address     string                 `json:"address" form:"address" validate:"max=255"`
	OpeningTime string                 `json:"opening_time" form:"opening_time" validate:"required"`
	ClosingTime string                 `json:"closing_time" form:"closing_time" validate:"required"`
	Timezone    string                 `json:"timezone" form:"timezone"`
	Metadata    map[string]interface{} `json:"metadata"`
	Tables      []TableGroupInput      `json:"tables" validate:"dive"`
}

type RestaurantService struct {
	DB *gorm.DB
}

func NewRestaurantService(db *gorm.DB) *RestaurantService {
	return &RestaurantService{DB: db}
}

// Create validates the guided form and stores the restaurant with its tables.
func (s *RestaurantService) Create(ctx context.Context, in CreateRestaurantInput) (*models.Restaurant, error) {
	in.Name = strings.TrimSpace(in.Name)
	fe := forms.Validate(in)

	var hours booking.Hours
	openAt, openErr := booking.ParseClock(in.OpeningTime)
	if openErr != nil {
		fe.Add("opening_time", "Enter a time as HH:MM.")
	}
	closeAt, closeErr := booking.ParseClock(in.ClosingTime)
	if closeErr != nil {
		fe.Add("closing_time", "Enter a time as HH:MM.")
	}
	if openErr == nil && closeErr == nil {
		hours = booking.Hours{Open: openAt, Close: closeAt}
		if err := hours.Validate(); err != nil {
			fe.Add("closing_time", "Closing time cannot be before opening time.")
		}
	}

	if in.Timezone == "" {
		in.Timezone = "UTC"
	}
	if _, err := time.LoadLocation(in.Timezone); err != nil {
		fe.Add("timezone", "Unknown time zone.")
	}

	if _, bad := fe["name"]; !bad {
		var n int64
		if err := s.DB.WithContext(ctx).Model(&models.Restaurant{}).
			Where("LOWER(name) = ?", strings.ToLower(in.Name)).Count(&n).Error; err != nil {
			return nil, fmt.Errorf("check restaurant name: %w", err)
		}
		if n > 0 {
			fe.Add("name", "A restaurant with this name already exists.")
		}
	}

	if err := fe.Err(); err != nil {
		return nil, err
	}

	restaurant := models.Restaurant{
		Name:        in.Name,
		Description: strings.TrimSpace(in.Description),
		Address:     strings.TrimSpace(in.Address),
		OpeningTime: hours.Open.String(),
		ClosingTime: hours.Close.String(),
		Timezone:    in.Timezone,
		Metadata:    in.Metadata,
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Tables").Create(&restaurant).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return forms.Field("name", "A restaurant with this name already exists.")
			}
			return fmt.Errorf("create restaurant: %w", err)
		}

		tables := expandTableGroups(restaurant.ID, in.Tables)
		if len(tables) > 0 {
			if err := tx.Create(&tables).Error; err != nil {
				return fmt.Errorf("create tables: %w", err)
			}
		}
		restaurant.Tables = tables
		return nil
	})
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.Printf("New restaurant created: %s (%d tables)", restaurant.Name, len(restaurant.Tables))
	return &restaurant, nil
}

func expandTableGroups(restaurantID uint, groups []TableGroupInput) []models.Table {
	var tables []models.Table
	for _, g := range groups {
		count := 1
		if g.Count != nil {
			count = *g.Count
		}
		name := strings.TrimSpace(g.Name)
		for i := 1; i <= count; i++ {
			tn := name
			if count > 1 {
				tn = fmt.Sprintf("%s %d", name, i)
			}
			tables = append(tables, models.Table{
				RestaurantID: restaurantID,
				Name:         tn,
				Capacity:     g.Capacity,
			})
		}
	}
	return tables
}

func (s *RestaurantService) List(ctx context.Context) ([]models.Restaurant, error) {
	var restaurants []models.Restaurant
	if err := s.DB.WithContext(ctx).Order("name").Find(&restaurants).Error; err != nil {
		return nil, err
	}
	return restaurants, nil
}

// Get returns the restaurant with its tables ordered by ID.
func (s *RestaurantService) Get(ctx context.Context, id uint) (*models.Restaurant, error) {
	return findRestaurant(s.DB.WithContext(ctx), id, true)
}

// Delete removes the restaurant together with its tables and bookings.
func (s *RestaurantService) Delete(ctx context.Context, id uint) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := findRestaurant(tx, id, false); err != nil {
			return err
		}
		if err := tx.Where("restaurant_id = ?", id).Delete(&models.Booking{}).Error; err != nil {
			return fmt.Errorf("delete bookings: %w", err)
		}
		if err := tx.Where("restaurant_id = ?", id).Delete(&models.Table{}).Error; err != nil {
			return fmt.Errorf("delete tables: %w", err)
		}
		if err := tx.Delete(&models.Restaurant{}, id).Error; err != nil {
			return fmt.Errorf("delete restaurant: %w", err)
		}
		utils.InfoLogger.Printf("Restaurant %d deleted", id)
		return nil
	})
}

// AvailableTimes lists the start times the booking form offers.
func (s *RestaurantService) AvailableTimes(ctx context.Context, id uint) ([]string, error) {
	r, err := findRestaurant(s.DB.WithContext(ctx), id, false)
	if err != nil {
		return nil, err
	}
	hours, err := restaurantHours(r)
	if err != nil {
		return nil, err
	}
	slots := hours.Slots()
	out := make([]string, 0, len(slots))
	for _, c := range slots {
		out = append(out, c.String())
	}
	return out, nil
}

func findRestaurant(db *gorm.DB, id uint, withTables bool) (*models.Restaurant, error) {
	q := db
	if withTables {
		q = q.Preload("Tables", func(db *gorm.DB) *gorm.DB { return db.Order("id") })
	}
	var r models.Restaurant
	if err := q.First(&r, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRestaurantNotFound
		}
		return nil, err
	}
	return &r, nil
}

func restaurantHours(r *models.Restaurant) (booking.Hours, error) {
	h, err := booking.ParseHours(r.OpeningTime, r.ClosingTime)
	if err != nil {
		return booking.Hours{}, fmt.Errorf("restaurant %d has invalid opening hours: %w", r.ID, err)
	}
	return h, nil
}
