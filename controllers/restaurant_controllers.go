package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-booking/realtime"
	"github.com/yeremiapane/restaurant-booking/services"
	"github.com/yeremiapane/restaurant-booking/utils"
	"gorm.io/gorm"
)

type RestaurantController struct {
	DB          *gorm.DB
	Restaurants *services.RestaurantService
	Hub         *realtime.Hub
}

func NewRestaurantController(db *gorm.DB, hub *realtime.Hub) *RestaurantController {
	return &RestaurantController{
		DB:          db,
		Restaurants: services.NewRestaurantService(db),
		Hub:         hub,
	}
}

// CreateRestaurant -> guided form: restaurant details plus table groups
func (rc *RestaurantController) CreateRestaurant(c *gin.Context) {
	var req services.CreateRestaurantInput
	if err := c.ShouldBind(&req); err != nil {
		respondBindError(c, err)
		return
	}

	restaurant, err := rc.Restaurants.Create(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	rc.Hub.Broadcast(realtime.Message{
		Event: realtime.EventRestaurantCreate,
		Data:  restaurant,
	})
	utils.RespondJSON(c, http.StatusCreated, "Restaurant created successfully", restaurant)
}

func (rc *RestaurantController) GetAllRestaurants(c *gin.Context) {
	restaurants, err := rc.Restaurants.List(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of restaurants", restaurants)
}

// GetRestaurantByID -> restaurant detail with its tables
func (rc *RestaurantController) GetRestaurantByID(c *gin.Context) {
	id, ok := paramID(c, "restaurant_id")
	if !ok {
		return
	}
	restaurant, err := rc.Restaurants.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Restaurant detail", restaurant)
}

// AvailableTimes -> start times offered by the booking form
func (rc *RestaurantController) AvailableTimes(c *gin.Context) {
	id, ok := paramID(c, "restaurant_id")
	if !ok {
		return
	}
	times, err := rc.Restaurants.AvailableTimes(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Available booking times", times)
}

func (rc *RestaurantController) DeleteRestaurant(c *gin.Context) {
	id, ok := paramID(c, "restaurant_id")
	if !ok {
		return
	}
	if err := rc.Restaurants.Delete(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}

	rc.Hub.Broadcast(realtime.Message{
		Event: realtime.EventRestaurantDelete,
		Data:  map[string]interface{}{"restaurant_id": id},
	})
	utils.RespondJSON(c, http.StatusOK, "Restaurant deleted", gin.H{"id": id})
}
