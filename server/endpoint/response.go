package endpoint

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/nanodraw/errors"
	"github.com/kbukum/nanodraw/httpclient"
)

// DataResponse is the standard success envelope.
type DataResponse struct {
	Data any `json:"data"`
}

// RespondOK sends a 200 response wrapping data.
func RespondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, DataResponse{Data: data})
}

// RespondWithError writes err as an AppError body with the matching status.
func RespondWithError(c *gin.Context, err error) {
	appErr := toAppError(err)
	c.JSON(appErr.HTTPStatus, appErr.ToResponse())
}

// toAppError maps any error from the draw client to an AppError. Transport
// failures from the upstream become SERVICE_UNAVAILABLE or TIMEOUT; anything
// unrecognized is internal.
func toAppError(err error) *apperrors.AppError {
	if appErr, ok := apperrors.AsAppError(err); ok {
		return appErr
	}
	if httpErr, ok := httpclient.AsError(err); ok {
		if httpErr.Code == httpclient.ErrCodeTimeout {
			return apperrors.Timeout("draw service").WithCause(err)
		}
		appErr := apperrors.ServiceUnavailable("draw service", err)
		appErr.Retryable = httpErr.Retryable
		if httpErr.StatusCode != 0 {
			appErr.HTTPStatus = http.StatusBadGateway
			appErr.WithDetail("upstream_status", httpErr.StatusCode)
		}
		return appErr
	}
	return apperrors.Internal(err)
}

func validationError(err error) *apperrors.AppError {
	return apperrors.Validation("request body must be a JSON object").WithCause(err)
}
