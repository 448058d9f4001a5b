package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const successMessage = "Success"

type SuccessResponse struct {
	StatusCode int         `json:"statusCode"`
	Message    string      `json:"message"`
	Data       interface{} `json:"data"`
}

type ErrorResponse struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Error      string `json:"error"`
}

func success(c *gin.Context, status int, data interface{}) {
	c.JSON(status, SuccessResponse{
		StatusCode: status,
		Message:    successMessage,
		Data:       data,
	})
}

func failure(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{
		StatusCode: status,
		Message:    message,
		Error:      http.StatusText(status),
	})
}

func JSON200(c *gin.Context, data interface{}) {
	success(c, http.StatusOK, data)
}

func JSON201(c *gin.Context, data interface{}) {
	success(c, http.StatusCreated, data)
}

func JSON400(c *gin.Context, message string) {
	failure(c, http.StatusBadRequest, message)
}

func JSON404(c *gin.Context, message string) {
	failure(c, http.StatusNotFound, message)
}

func JSON413(c *gin.Context, message string) {
	failure(c, http.StatusRequestEntityTooLarge, message)
}

func JSON429(c *gin.Context, message string) {
	failure(c, http.StatusTooManyRequests, message)
}

func JSON500(c *gin.Context, message string) {
	failure(c, http.StatusInternalServerError, message)
}

func JSON503(c *gin.Context, message string) {
	failure(c, http.StatusServiceUnavailable, message)
}
