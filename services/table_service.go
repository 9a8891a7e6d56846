package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yeremiapane/restaurant-booking/forms"
	"github.com/yeremiapane/restaurant-booking/models"
	"github.com/yeremiapane/restaurant-booking/utils"
	"gorm.io/gorm"
)

type TableInput struct {
	Name     string `json:"name" form:"name" validate:"notblank,max=50"`
	Capacity int    `json:"capacity" form:"capacity" validate:"gt=0,lte=50"`
}

// TableService backs the administrative table screens.
type TableService struct {
	DB  *gorm.DB
	Now func() time.Time
}

func NewTableService(db *gorm.DB) *TableService {
	return &TableService{DB: db, Now: time.Now}
}

func (s *TableService) Create(ctx context.Context, restaurantID uint, in TableInput) (*models.Table, error) {
	if err := forms.Validate(in).Err(); err != nil {
		return nil, err
	}
	db := s.DB.WithContext(ctx)
	if _, err := findRestaurant(db, restaurantID, false); err != nil {
		return nil, err
	}

	table := models.Table{
		RestaurantID: restaurantID,
		Name:         strings.TrimSpace(in.Name),
		Capacity:     in.Capacity,
	}
	if err := db.Create(&table).Error; err != nil {
		return nil, fmt.Errorf("create table: %w", err)
	}
	utils.InfoLogger.Printf("New table created: %s (restaurant=%d, capacity=%d)", table.Name, restaurantID, table.Capacity)
	return &table, nil
}

func (s *TableService) List(ctx context.Context, restaurantID uint) ([]models.Table, error) {
	db := s.DB.WithContext(ctx)
	if _, err := findRestaurant(db, restaurantID, false); err != nil {
		return nil, err
	}
	var tables []models.Table
	if err := db.Where("restaurant_id = ?", restaurantID).Order("id").Find(&tables).Error; err != nil {
		return nil, err
	}
	return tables, nil
}

func (s *TableService) Get(ctx context.Context, id uint) (*models.Table, error) {
	return findTable(s.DB.WithContext(ctx), id)
}

// Update changes name and capacity. Existing bookings keep their table even if
// the new capacity is below their party size.
func (s *TableService) Update(ctx context.Context, id uint, in TableInput) (*models.Table, error) {
	if err := forms.Validate(in).Err(); err != nil {
		return nil, err
	}
	db := s.DB.WithContext(ctx)
	table, err := findTable(db, id)
	if err != nil {
		return nil, err
	}

	table.Name = strings.TrimSpace(in.Name)
	table.Capacity = in.Capacity
	if err := db.Save(table).Error; err != nil {
		return nil, fmt.Errorf("update table: %w", err)
	}
	utils.InfoLogger.Printf("Table %d updated (name=%s, capacity=%d)", table.ID, table.Name, table.Capacity)
	return table, nil
}

// Delete refuses while confirmed bookings that have not ended reference the
// table; past and cancelled bookings go with it.
func (s *TableService) Delete(ctx context.Context, id uint) (*models.Table, error) {
	var deleted *models.Table
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		table, err := findTable(tx, id)
		if err != nil {
			return err
		}

		var upcoming int64
		now := s.Now().UTC().Truncate(time.Second)
		if err := tx.Model(&models.Booking{}).
			Where("table_id = ? AND status = ? AND end_time > ?", id, models.BookingConfirmed, now).
			Count(&upcoming).Error; err != nil {
			return fmt.Errorf("count bookings: %w", err)
		}
		if upcoming > 0 {
			return ErrTableHasBookings
		}

		if err := tx.Where("table_id = ?", id).Delete(&models.Booking{}).Error; err != nil {
			return fmt.Errorf("delete bookings: %w", err)
		}
		if err := tx.Delete(table).Error; err != nil {
			return fmt.Errorf("delete table: %w", err)
		}
		deleted = table
		return nil
	})
	if err != nil {
		return nil, err
	}
	utils.InfoLogger.Printf("Table %d deleted", id)
	return deleted, nil
}

func findTable(db *gorm.DB, id uint) (*models.Table, error) {
	var table models.Table
	if err := db.First(&table, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTableNotFound
		}
		return nil, err
	}
	return &table, nil
}
