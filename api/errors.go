package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"tracker-api/domain"
)

const (
	msgInternal    = "Something went wrong!"
	msgGistFailed  = "Error creating Gist on GitHub"
	msgConcurrency = "Resource was modified concurrently, retry the request"
)

// statusForError maps domain errors onto HTTP responses.
func statusForError(err error) (int, errorResponse) {
	var (
		validation *domain.ValidationError
		invalidID  *domain.InvalidIDError
		notFound   *domain.NotFoundError
		conflict   *domain.ConflictError
		config     *domain.ConfigError
		external   *domain.ExternalServiceError
	)
	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest, errorResponse{Message: validation.Msg}
	case errors.As(err, &invalidID):
		return http.StatusBadRequest, errorResponse{Message: invalidID.Error()}
	case errors.As(err, &notFound):
		return http.StatusNotFound, errorResponse{Message: notFound.Error()}
	case errors.As(err, &conflict):
		return http.StatusBadRequest, errorResponse{Message: conflict.Msg}
	case errors.Is(err, domain.ErrConcurrencyConflict):
		return http.StatusConflict, errorResponse{Message: msgConcurrency}
	case errors.As(err, &config):
		return http.StatusInternalServerError, errorResponse{Message: config.Msg}
	case errors.As(err, &external):
		resp := errorResponse{Message: msgGistFailed, Error: external.Message}
		if len(external.Payload) > 0 {
			resp.Error = external.Payload
		}
		return http.StatusInternalServerError, resp
	}
	return http.StatusInternalServerError, errorResponse{Message: msgInternal}
}

func respondError(c echo.Context, logger *log.Logger, err error) error {
	status, body := statusForError(err)
	if status >= http.StatusInternalServerError && logger != nil {
		logger.WithError(err).WithFields(log.Fields{
			"method": c.Request().Method,
			"route":  c.Path(),
		}).Error("request failed")
	}
	return c.JSON(status, body)
}

// errorHandler renders errors raised outside handlers, such as unknown
// routes or recovered panics, with the same body shape.
func errorHandler(logger *log.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		var he *echo.HTTPError
		if errors.As(err, &he) {
			msg := http.StatusText(he.Code)
			if s, ok := he.Message.(string); ok && s != "" {
				msg = s
			} else if he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
			if werr := c.JSON(he.Code, errorResponse{Message: msg}); werr != nil && logger != nil {
				logger.WithError(werr).Warn("write error response")
			}
			return
		}
		if werr := respondError(c, logger, err); werr != nil && logger != nil {
			logger.WithError(werr).Warn("write error response")
		}
	}
}
