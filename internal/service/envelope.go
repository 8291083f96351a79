package service

import (
	"github.com/Rogue-Bear-Innovations/websites/internal/apperr"
	"github.com/Rogue-Bear-Innovations/websites/internal/models"
)

func Success(data interface{}, message string) models.Envelope {
	return models.Envelope{
		Success: true,
		Data:    data,
		Message: message,
	}
}

// Failure turns any error into a status code and envelope. Lower-level
// causes are only exposed when debug is set.
func Failure(err error, debug bool) (int, models.Envelope) {
	e := apperr.Ensure(err, "Internal server error")

	env := models.Envelope{
		Success: false,
		Error:   e.Message(),
	}
	if debug && e.Err != nil && e.Kind.StatusCode() >= 500 {
		env.Details = e.Err.Error()
	}
	return e.Kind.StatusCode(), env
}
