package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-booking/realtime"
	"github.com/yeremiapane/restaurant-booking/services"
	"github.com/yeremiapane/restaurant-booking/utils"
	"gorm.io/gorm"
)

type TableController struct {
	DB     *gorm.DB
	Tables *services.TableService
	Hub    *realtime.Hub
}

func NewTableController(db *gorm.DB, hub *realtime.Hub) *TableController {
	return &TableController{DB: db, Tables: services.NewTableService(db), Hub: hub}
}

// CreateTable -> adds a table to a restaurant
func (tc *TableController) CreateTable(c *gin.Context) {
	restaurantID, ok := paramID(c, "restaurant_id")
	if !ok {
		return
	}
	var req services.TableInput
	if err := c.ShouldBind(&req); err != nil {
		respondBindError(c, err)
		return
	}

	table, err := tc.Tables.Create(c.Request.Context(), restaurantID, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	tc.Hub.Broadcast(realtime.Message{
		Event: realtime.EventTableCreate,
		Data:  map[string]interface{}{"table": table},
	})
	utils.RespondJSON(c, http.StatusCreated, "Table created successfully", table)
}

// GetAllTables -> tables of one restaurant
func (tc *TableController) GetAllTables(c *gin.Context) {
	restaurantID, ok := paramID(c, "restaurant_id")
	if !ok {
		return
	}
	tables, err := tc.Tables.List(c.Request.Context(), restaurantID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of tables", tables)
}

func (tc *TableController) GetTableByID(c *gin.Context) {
	id, ok := paramID(c, "table_id")
	if !ok {
		return
	}
	table, err := tc.Tables.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table detail", table)
}

// UpdateTable -> rename or resize a table
func (tc *TableController) UpdateTable(c *gin.Context) {
	id, ok := paramID(c, "table_id")
	if !ok {
		return
	}
	var req services.TableInput
	if err := c.ShouldBind(&req); err != nil {
		respondBindError(c, err)
		return
	}

	table, err := tc.Tables.Update(c.Request.Context(), id, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	tc.Hub.Broadcast(realtime.Message{
		Event: realtime.EventTableUpdate,
		Data:  map[string]interface{}{"table": table},
	})
	utils.RespondJSON(c, http.StatusOK, "Table updated", table)
}

// DeleteTable -> refused while the table still has upcoming bookings
func (tc *TableController) DeleteTable(c *gin.Context) {
	id, ok := paramID(c, "table_id")
	if !ok {
		return
	}
	table, err := tc.Tables.Delete(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	tc.Hub.Broadcast(realtime.Message{
		Event: realtime.EventTableDelete,
		Data: map[string]interface{}{
			"table_id":      table.ID,
			"restaurant_id": table.RestaurantID,
		},
	})
	utils.RespondJSON(c, http.StatusOK, "Table deleted", gin.H{
		"id": table.ID,
	})
}
