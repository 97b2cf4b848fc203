package api

import (
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"tracker-api/config"
)

var (
	errMissingAuthorization = errors.New("missing authorization header")
	errBadAuthorization     = errors.New("bad auth header")
)

const basicPrefix = "Basic "

// basicCredentialsFromHeader extracts the user and password of a Basic
// authorization header.
func basicCredentialsFromHeader(header http.Header) (string, string, error) {
	raw := strings.TrimSpace(header.Get(echo.HeaderAuthorization))
	if raw == "" {
		return "", "", errMissingAuthorization
	}
	if len(raw) <= len(basicPrefix) || !strings.EqualFold(raw[:len(basicPrefix)], basicPrefix) {
		return "", "", errBadAuthorization
	}
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(raw[len(basicPrefix):]))
	if err != nil {
		return "", "", errBadAuthorization
	}
	user, pass, ok := strings.Cut(string(decoded), ":")
	if !ok {
		return "", "", errBadAuthorization
	}
	return user, pass, nil
}

// BasicAuth rejects requests whose credentials differ from the configured pair.
func BasicAuth(creds config.AuthConfig, logger *log.Logger) echo.MiddlewareFunc {
	wantUser := []byte(creds.Username)
	wantPass := []byte(creds.Password)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, pass, err := basicCredentialsFromHeader(c.Request().Header)
			if err == nil {
				userOK := subtle.ConstantTimeCompare([]byte(user), wantUser) == 1
				passOK := subtle.ConstantTimeCompare([]byte(pass), wantPass) == 1
				if userOK && passOK && len(wantUser) > 0 {
					return next(c)
				}
			}
			if logger != nil {
				fields := log.Fields{"route": c.Path()}
				if err != nil {
					fields["reason"] = err.Error()
				}
				logger.WithFields(fields).Debug("basic auth rejected")
			}
			c.Response().Header().Set(echo.HeaderWWWAuthenticate, `Basic realm="tracker"`)
			return c.JSON(http.StatusUnauthorized, errorResponse{Message: "Unauthorized"})
		}
	}
}
