package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-auth/internal/domain/errs"
	"github.com/oksasatya/go-ddd-auth/pkg/helpers"
	"github.com/oksasatya/go-ddd-auth/pkg/response"
)

// HTTPError is a transport-level error that is already in its final shape.
// MapError passes it through untouched.
type HTTPError struct {
	Status  int
	Code    string
	Message string
	Details map[string]string
}

func (e *HTTPError) Error() string { return e.Code + ": " + e.Message }

// CodeBadRequest marks a body that could not be decoded at all.
const CodeBadRequest = "BAD_REQUEST"

const internalMessage = "internal server error"

var statusByKind = map[errs.Kind]int{
	errs.KindValidation:     http.StatusBadRequest,
	errs.KindConflict:       http.StatusConflict,
	errs.KindAuthentication: http.StatusUnauthorized,
	errs.KindRateLimit:      http.StatusTooManyRequests,
}

// MapError decides the external shape of err. Domain errors with a public
// code keep their code and message; anything else becomes
// INTERNAL_SERVER_ERROR with a fixed message.
func MapError(err error) (int, response.ErrorBody) {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Status, response.ErrorBody{
			Message:    httpErr.Message,
			Extensions: response.ErrorExtensions{Code: httpErr.Code, Details: httpErr.Details},
		}
	}

	var domainErr *errs.Error
	if errors.As(err, &domainErr) && errs.Known(domainErr.Code) {
		if status, ok := statusByKind[errs.KindOf(domainErr.Code)]; ok {
			return status, response.ErrorBody{
				Message:    domainErr.Message,
				Extensions: response.ErrorExtensions{Code: string(domainErr.Code)},
			}
		}
	}

	return http.StatusInternalServerError, response.ErrorBody{
		Message:    internalMessage,
		Extensions: response.ErrorExtensions{Code: string(errs.InternalServerError)},
	}
}

// writeError maps err, logs unclassified failures and aborts the request.
func writeError(c *gin.Context, logger logrus.FieldLogger, err error) {
	status, body := MapError(err)
	body.Extensions.RequestID = c.GetString("request_id")
	if status == http.StatusInternalServerError {
		helpers.LogError(logger, "request failed", err, logrus.Fields{
			"request_id": c.GetString("request_id"),
			"path":       c.FullPath(),
		})
	}
	response.Abort(c, status, body)
}
