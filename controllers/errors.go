package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"sort"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-booking/booking"
	"github.com/yeremiapane/restaurant-booking/forms"
	"github.com/yeremiapane/restaurant-booking/services"
	"github.com/yeremiapane/restaurant-booking/utils"
)

var (
	errInternal      = errors.New("something went wrong, please try again")
	errMalformedBody = errors.New("the request body could not be read")
)

// respondServiceError maps service and domain errors onto status codes.
func respondServiceError(c *gin.Context, err error) {
	var fe forms.FieldErrors
	switch {
	case errors.As(err, &fe):
		utils.RespondInvalid(c, fe)
	case errors.Is(err, services.ErrRestaurantNotFound),
		errors.Is(err, services.ErrTableNotFound),
		errors.Is(err, services.ErrBookingNotFound):
		utils.RespondError(c, http.StatusNotFound, err)
	case errors.Is(err, booking.ErrTableUnavailable),
		errors.Is(err, booking.ErrNoTableAvailable),
		errors.Is(err, services.ErrTableHasBookings):
		utils.RespondError(c, http.StatusConflict, err)
	default:
		utils.ErrorLogger.Printf("%s %s failed: %v", c.Request.Method, c.FullPath(), err)
		utils.RespondError(c, http.StatusInternalServerError, errInternal)
	}
}

// paramID reads a numeric path parameter, answering 404 when it is not one.
func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		utils.RespondError(c, http.StatusNotFound, fmt.Errorf("%s %q not found", name, c.Param(name)))
		return 0, false
	}
	return uint(id), true
}

// respondBindError reports a body that did not decode. Values of the wrong
// type are named by field so the form can show the message in place.
func respondBindError(c *gin.Context, err error) {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		utils.RespondInvalid(c, forms.Field(typeErr.Field, kindMessage(typeErr.Type.Kind())))
		return
	}

	var numErr *strconv.NumError
	if errors.As(err, &numErr) {
		if field := formFieldWithValue(c, numErr.Num); field != "" {
			msg := "Enter a whole number."
			if numErr.Func == "ParseBool" {
				msg = kindMessage(reflect.Bool)
			}
			utils.RespondInvalid(c, forms.Field(field, msg))
			return
		}
	}

	utils.InfoLogger.Printf("Rejected %s %s body: %v", c.Request.Method, c.FullPath(), err)
	utils.RespondError(c, http.StatusBadRequest, errMalformedBody)
}

func kindMessage(k reflect.Kind) string {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "Enter a whole number."
	case reflect.Bool:
		return "Enter yes or no."
	case reflect.String:
		return "Enter text."
	default:
		return "Enter a valid value."
	}
}

// formFieldWithValue finds the posted field holding val. Form binding errors
// carry the offending value but not the field it came from.
func formFieldWithValue(c *gin.Context, val string) string {
	if c.Request.PostForm == nil {
		return ""
	}
	keys := make([]string, 0, len(c.Request.PostForm))
	for k := range c.Request.PostForm {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		for _, v := range c.Request.PostForm[k] {
			if v == val {
				return k
			}
		}
	}
	return ""
}
