package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/restaurant-booking/forms"
	"github.com/yeremiapane/restaurant-booking/models"
	"github.com/yeremiapane/restaurant-booking/testutil"
	"gorm.io/gorm"
)

func validRestaurant() CreateRestaurantInput {
	return CreateRestaurantInput{
		Name:        "Luigi's",
		Description: "Wood fired pizza",
		Address:     "1 Harbour Road",
		OpeningTime: "11:00",
		ClosingTime: "22:30",
		Metadata:    map[string]interface{}{"cuisine": "italian"},
		Tables: []TableGroupInput{
			{Name: "Window", Capacity: 2, Count: ptr(2)},
			{Name: "Booth", Capacity: 6},
			{Name: "Patio", Capacity: 4, Count: ptr(0)},
		},
	}
}

func TestCreateRestaurantWithTables(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewRestaurantService(db)

	r, err := svc.Create(context.Background(), validRestaurant())
	require.NoError(t, err)
	assert.Equal(t, "11:00", r.OpeningTime)
	assert.Equal(t, "22:30", r.ClosingTime)
	assert.Equal(t, "UTC", r.Timezone)

	got, err := svc.Get(context.Background(), r.ID)
	require.NoError(t, err)
	require.Len(t, got.Tables, 3)
	assert.Equal(t, "Window 1", got.Tables[0].Name)
	assert.Equal(t, "Window 2", got.Tables[1].Name)
	assert.Equal(t, "Booth", got.Tables[2].Name)
	assert.Equal(t, 6, got.Tables[2].Capacity)
	assert.Equal(t, "italian", got.Metadata["cuisine"])
}

func TestCreateRestaurantRejectsInvalidInput(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewRestaurantService(db)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*CreateRestaurantInput)
		field  string
	}{
		{"blank name", func(in *CreateRestaurantInput) { in.Name = "   " }, "name"},
		{"blank description", func(in *CreateRestaurantInput) { in.Description = "" }, "description"},
		{"closing before opening", func(in *CreateRestaurantInput) { in.ClosingTime = "10:00" }, "closing_time"},
		{"closing equals opening", func(in *CreateRestaurantInput) { in.ClosingTime = "11:00" }, "closing_time"},
		{"bad opening format", func(in *CreateRestaurantInput) { in.OpeningTime = "eleven" }, "opening_time"},
		{"missing closing", func(in *CreateRestaurantInput) { in.ClosingTime = "" }, "closing_time"},
		{"unknown timezone", func(in *CreateRestaurantInput) { in.Timezone = "Mars/Olympus" }, "timezone"},
		{"zero capacity", func(in *CreateRestaurantInput) { in.Tables[1].Capacity = 0 }, "tables[1].capacity"},
		{"blank table name", func(in *CreateRestaurantInput) { in.Tables[0].Name = "" }, "tables[0].name"},
		{"negative count", func(in *CreateRestaurantInput) { in.Tables[0].Count = ptr(-1) }, "tables[0].count"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validRestaurant()
			tt.mutate(&in)
			_, err := svc.Create(ctx, in)
			var fe forms.FieldErrors
			require.ErrorAs(t, err, &fe)
			assert.Contains(t, fe, tt.field)
		})
	}

	var n int64
	require.NoError(t, db.Model(&models.Restaurant{}).Count(&n).Error)
	assert.Zero(t, n)
	require.NoError(t, db.Model(&models.Table{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestCreateRestaurantNameIsUnique(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewRestaurantService(db)
	ctx := context.Background()

	_, err := svc.Create(ctx, validRestaurant())
	require.NoError(t, err)

	dup := validRestaurant()
	dup.Name = "  LUIGI'S "
	_, err = svc.Create(ctx, dup)
	var fe forms.FieldErrors
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "A restaurant with this name already exists.", fe["name"])
}

func TestCreateRestaurantNameTakenDuringInsert(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewRestaurantService(db)

	// another writer takes the name after the lookup but before the insert
	claimed := false
	require.NoError(t, db.Callback().Create().Before("gorm:create").Register("test:claim_name", func(tx *gorm.DB) {
		r, ok := tx.Statement.Dest.(*models.Restaurant)
		if !ok || claimed {
			return
		}
		claimed = true
		rival := models.Restaurant{Name: r.Name, Description: "rival", OpeningTime: "09:00", ClosingTime: "17:00", Timezone: "UTC"}
		require.NoError(t, tx.Session(&gorm.Session{NewDB: true}).Omit("Tables").Create(&rival).Error)
	}))

	_, err := svc.Create(context.Background(), validRestaurant())
	var fe forms.FieldErrors
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "A restaurant with this name already exists.", fe["name"])
	assert.True(t, claimed)

	var n int64
	require.NoError(t, db.Model(&models.Restaurant{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestListAndDeleteRestaurant(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewRestaurantService(db)
	ctx := context.Background()

	zeta, tables := testutil.SeedRestaurant(t, db, "Zeta", 2)
	testutil.SeedRestaurant(t, db, "Alpha", 4)

	_, err := newBookingService(db).Create(ctx, tableBooking(zeta.ID, tables[0].ID, 2, at(19, 0), at(20, 0)))
	require.NoError(t, err)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Alpha", list[0].Name)

	require.NoError(t, svc.Delete(ctx, zeta.ID))
	_, err = svc.Get(ctx, zeta.ID)
	assert.ErrorIs(t, err, ErrRestaurantNotFound)

	var n int64
	require.NoError(t, db.Model(&models.Table{}).Where("restaurant_id = ?", zeta.ID).Count(&n).Error)
	assert.Zero(t, n)
	require.NoError(t, db.Model(&models.Booking{}).Where("restaurant_id = ?", zeta.ID).Count(&n).Error)
	assert.Zero(t, n)

	assert.ErrorIs(t, svc.Delete(ctx, zeta.ID), ErrRestaurantNotFound)
}

func TestAvailableTimes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewRestaurantService(db)
	ctx := context.Background()

	in := validRestaurant()
	in.OpeningTime = "18:00"
	in.ClosingTime = "20:00"
	r, err := svc.Create(ctx, in)
	require.NoError(t, err)

	times, err := svc.AvailableTimes(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"18:00", "18:15", "18:30", "18:45"}, times)

	_, err = svc.AvailableTimes(ctx, 404)
	assert.ErrorIs(t, err, ErrRestaurantNotFound)
}
