package handler

import (
	"errors"
	"net/http"
	"reflect"
	"strconv"

	"inventorypos/internal/apierror"
	"inventorypos/internal/middleware"
	"inventorypos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails;
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid JSON: "+err.Error()))
		return false
	}
	return runValidation(c, req)
}

// bindQueryAndValidate is bindAndValidate for query-string filters.
func bindQueryAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid query: "+err.Error()))
		return false
	}
	return runValidation(c, req)
}

func runValidation(c *gin.Context, req interface{}) bool {
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
			return false
		}
		fields := make(map[string]string)
		for _, fe := range verrs {
			fields[fe.Namespace()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

var kindStatus = map[service.ErrorKind]int{
	service.KindEmptyCart:            http.StatusBadRequest,
	service.KindMissingCustomerInfo:  http.StatusBadRequest,
	service.KindInvalidCartItem:      http.StatusBadRequest,
	service.KindInvalidInput:         http.StatusBadRequest,
	service.KindInvalidMovement:      http.StatusBadRequest,
	service.KindInvalidPaymentAmount: http.StatusBadRequest,
	service.KindOverpayment:          http.StatusBadRequest,
	service.KindProductNotFound:      http.StatusNotFound,
	service.KindSaleNotFound:         http.StatusNotFound,
	service.KindOutOfStock:           http.StatusConflict,
	service.KindInsufficientStock:    http.StatusConflict,
	service.KindConflict:             http.StatusConflict,
	service.KindInvalidCredentials:   http.StatusUnauthorized,
	service.KindTransaction:          http.StatusInternalServerError,
}

// statusFor maps a service error to an HTTP status. Unclassified errors are 500.
func statusFor(err error) (int, service.ErrorKind) {
	kind := service.KindOf(err)
	if status, ok := kindStatus[kind]; ok {
		return status, kind
	}
	return http.StatusInternalServerError, service.KindTransaction
}

// failure writes {success:false,error,kind}. Used by the sale and payment endpoints.
func failure(c *gin.Context, err error) {
	status, kind := statusFor(err)
	msg := err.Error()
	if service.KindOf(err) == "" {
		msg = service.ErrTransaction.Msg
	}
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
	}
	c.JSON(status, apierror.NewFailure(string(kind), msg))
}

// fail writes {detail} with the status for err. Used by every other endpoint.
func fail(c *gin.Context, err error) {
	status, _ := statusFor(err)
	msg := err.Error()
	if service.KindOf(err) == "" {
		msg = "Internal server error"
	}
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
	}
	c.JSON(status, apierror.New(msg))
}

func parseSaleID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid sale id"))
		return 0, false
	}
	return id, true
}

func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid "+name))
		return uuid.Nil, false
	}
	return id, true
}

// actorID reads the authenticated staff member from the JWT claims.
func actorID(c *gin.Context) (uuid.UUID, bool) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, apierror.New("Authentication required"))
		return uuid.Nil, false
	}
	id, err := claims.ActorID()
	if err != nil {
		c.JSON(http.StatusUnauthorized, apierror.New("Invalid token subject"))
		return uuid.Nil, false
	}
	return id, true
}
