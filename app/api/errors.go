package api

import (
	"errors"
	"fmt"
	"time"

	"pdfrag/model"
	"pdfrag/store"
	"pdfrag/types"

	"github.com/gofiber/fiber/v2"
)

func ErrorHandler(c *fiber.Ctx, err error) error {
	if apiError, ok := err.(Error); ok {
		return c.Status(apiError.Code).JSON(apiError)
	}
	if valError, ok := err.(types.ValidationError); ok {
		return c.Status(valError.Status).JSON(valError)
	}

	apiError := fromDomain(err)
	fmt.Printf("%s Request failed with code %d and message: %s\n", time.Now(), apiError.Code, apiError.Message)
	return c.Status(apiError.Code).JSON(apiError)
}

// fromDomain maps the pipeline error taxonomy onto HTTP statuses.
func fromDomain(err error) Error {
	switch {
	case errors.Is(err, store.ErrIndexNotFound):
		return NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, model.ErrRateLimited):
		return NewError(fiber.StatusTooManyRequests, err.Error())
	case errors.Is(err, model.ErrUnauthorized), errors.Is(err, model.ErrMissingAPIKey):
		return NewError(fiber.StatusBadGateway, err.Error())
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return NewError(fiberErr.Code, fiberErr.Message)
	}
	return NewError(fiber.StatusInternalServerError, err.Error())
}

// Error implements the error interface for API responses.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"error"`
}

func (e Error) Error() string {
	return e.Message
}

func NewError(code int, err string) Error {
	return Error{
		Code:    code,
		Message: err,
	}
}

func ErrBadRequest() Error {
	return Error{
		Code:    fiber.StatusBadRequest,
		Message: "invalid JSON request",
	}
}
