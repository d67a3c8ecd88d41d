package endpoint

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/nanodraw/draw"
	"github.com/kbukum/nanodraw/logger"
	"github.com/kbukum/nanodraw/validation"
)

// SSE event names written by Generate.
const (
	EventProgress = "progress"
	EventResult   = "result"
	EventError    = "error"
)

// DrawService is the part of draw.Client the relay routes need.
type DrawService interface {
	Generate(ctx context.Context, req draw.GenerationRequest, observer draw.ProgressFunc) (*draw.Outcome, error)
	FetchResult(ctx context.Context, id string) (*draw.Outcome, error)
}

// Generate relays one generation as Server-Sent Events: a "progress" event per
// upstream event, then exactly one "result" or "error" event. Requests that
// fail validation are answered with plain JSON before any event is written.
// A client disconnect cancels the upstream call through the request context.
func Generate(svc DrawService, log *logger.Logger) gin.HandlerFunc {
	log = log.WithComponent("relay")
	return func(c *gin.Context) {
		var req draw.GenerationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			RespondWithError(c, validationError(err))
			return
		}
		if err := validation.Validate(req); err != nil {
			RespondWithError(c, err)
			return
		}

		c.Header("Content-Type", "text/event-stream")
		c.Header("Cache-Control", "no-cache")
		c.Header("Connection", "keep-alive")
		c.Header("X-Accel-Buffering", "no")
		c.Status(http.StatusOK)

		ctx := c.Request.Context()
		if id, ok := c.Get(logger.FieldRequestID); ok {
			ctx = context.WithValue(ctx, logger.ContextKeyRequestID, id)
		}

		out, err := svc.Generate(ctx, req, func(_ float64, ev *draw.Event) {
			c.SSEvent(EventProgress, string(ev.Raw))
			c.Writer.Flush()
		})
		if err != nil {
			if ctx.Err() != nil {
				log.WithContext(ctx).Debug("client went away before the stream settled")
				return
			}
			c.SSEvent(EventError, toAppError(err).ToResponse())
			c.Writer.Flush()
			return
		}
		c.SSEvent(EventResult, out)
		c.Writer.Flush()
	}
}

type resultRequest struct {
	ID string `json:"id" validate:"required,notblank"`
}

// Result looks up a task by id and answers {"data": outcome}.
func Result(svc DrawService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req resultRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			RespondWithError(c, validationError(err))
			return
		}
		if err := validation.Validate(req); err != nil {
			RespondWithError(c, err)
			return
		}

		out, err := svc.FetchResult(c.Request.Context(), req.ID)
		if err != nil {
			RespondWithError(c, err)
			return
		}
		RespondOK(c, out)
	}
}
