package delivery

import (
	"errors"
	"net/http"

	"github.com/Gargooie/Order-Management-API/internal/domain"

	"github.com/gin-gonic/gin"
)

type Response struct {
	Status  string      `json:"Status"`
	Message string      `json:"Message"`
	Data    interface{} `json:"Data,omitempty"`
}

func SuccessResponse(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, Response{
		Status:  "Success",
		Message: message,
		Data:    data,
	})
}

func ErrorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, Response{
		Status:  "Fail",
		Message: message,
	})
}

func mapErrorToStatus(err error) int {
	var notFound *domain.NotFoundError
	if errors.As(err, &notFound) {
		return http.StatusNotFound
	}
	var validation *domain.ValidationError
	if errors.As(err, &validation) {
		return http.StatusBadRequest
	}
	var stock *domain.InsufficientStockError
	if errors.As(err, &stock) {
		return http.StatusConflict
	}
	var integrity *domain.IntegrityViolationError
	if errors.As(err, &integrity) {
		return http.StatusInternalServerError
	}
	return http.StatusInternalServerError
}
