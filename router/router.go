package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-booking/config"
	"github.com/yeremiapane/restaurant-booking/controllers"
	"github.com/yeremiapane/restaurant-booking/middlewares"
	"github.com/yeremiapane/restaurant-booking/models"
	"github.com/yeremiapane/restaurant-booking/realtime"
	"gorm.io/gorm"
)

func SetupRouter(db *gorm.DB, cfg *config.Config, hub *realtime.Hub) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares(cfg.CORSOrigins))
	r.Use(middlewares.LoggerMiddleware())
	r.Use(middlewares.NewRateLimiter(cfg.RateLimit, cfg.RateInterval).RateLimit())

	userCtrl := controllers.NewUserController(db)
	restaurantCtrl := controllers.NewRestaurantController(db, hub)
	tableCtrl := controllers.NewTableController(db, hub)
	bookingCtrl := controllers.NewBookingController(db, hub)
	realtimeCtrl := controllers.NewRealtimeController(hub)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	r.POST("/login", middlewares.NewStrictRateLimiter(), userCtrl.Login)

	r.GET("/restaurants", restaurantCtrl.GetAllRestaurants)
	r.POST("/restaurants", restaurantCtrl.CreateRestaurant)
	r.GET("/restaurants/:restaurant_id", restaurantCtrl.GetRestaurantByID)
	r.GET("/restaurants/:restaurant_id/times", restaurantCtrl.AvailableTimes)
	r.POST("/restaurants/:restaurant_id/bookings", bookingCtrl.CreateBooking)

	r.GET("/bookings/:reference", bookingCtrl.GetBooking)
	r.POST("/bookings/:reference/cancel", bookingCtrl.CancelBooking)

	// ----------------------------------------------------------------
	//                      AUTHENTICATED ROUTES
	// ----------------------------------------------------------------
	auth := r.Group("/admin")
	auth.Use(middlewares.AuthMiddleware(), middlewares.RequireRole(models.RoleAdmin, models.RoleStaff))

	auth.GET("/profile", userCtrl.GetProfile)
	auth.POST("/users", middlewares.RequireRole(models.RoleAdmin), userCtrl.Register)

	// TABLES
	auth.GET("/restaurants/:restaurant_id/tables", tableCtrl.GetAllTables)
	auth.POST("/restaurants/:restaurant_id/tables", tableCtrl.CreateTable)
	auth.GET("/tables/:table_id", tableCtrl.GetTableByID)
	auth.PATCH("/tables/:table_id", tableCtrl.UpdateTable)
	auth.DELETE("/tables/:table_id", tableCtrl.DeleteTable)

	// RESTAURANTS
	auth.DELETE("/restaurants/:restaurant_id", middlewares.RequireRole(models.RoleAdmin), restaurantCtrl.DeleteRestaurant)

	// BOOKINGS
	auth.GET("/restaurants/:restaurant_id/bookings", bookingCtrl.GetBookingsForDay)
	auth.GET("/restaurants/:restaurant_id/bookings/sheet", bookingCtrl.BookingSheet)
	auth.DELETE("/bookings/:booking_id", bookingCtrl.DeleteBooking)

	// sockets carry the token in the query string
	wsGroup := r.Group("/ws")
	wsGroup.Use(middlewares.WebSocketAuthMiddleware())
	{
		wsGroup.GET("/bookings", realtimeCtrl.BookingEvents)
	}

	return r
}
