// Package handlers contains the gin HTTP handlers for the LawGuide AI
// service.
//
// Handlers validate and default the request, then delegate to the
// pipeline. Business failures come back as structured refusals inside
// an HTTP 200; HTTP error codes are reserved for malformed requests
// and infrastructure faults.
package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/Dacchu2004/lawGuide/datatypes"
)

var handlerTracer = otel.Tracer("lawguide.handlers")

// QueryAnswerer runs one full pipeline pass. Satisfied by
// pipeline.Composer.
type QueryAnswerer interface {
	Answer(ctx context.Context, req *datatypes.QueryRequest) *datatypes.QueryResponse
}

// HandleAnswer serves POST /answer.
func HandleAnswer(answerer QueryAnswerer) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := handlerTracer.Start(c.Request.Context(), "HandleAnswer")
		defer span.End()

		var request datatypes.QueryRequest
		if err := c.BindJSON(&request); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			slog.Error("Failed to bind answer request JSON", "error", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
		request.EnsureDefaults()
		if err := request.Validate(); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		requestID := uuid.New().String()
		span.SetAttributes(
			attribute.String("request_id", requestID),
			attribute.String("user_state", request.UserState),
			attribute.String("explanation_mode", request.ExplanationMode),
		)
		slog.Info("Received answer request",
			"request_id", requestID,
			"state", request.UserState,
			"mode", request.ExplanationMode,
		)

		response := answerer.Answer(ctx, &request)

		slog.Info("Completed answer request",
			"request_id", requestID,
			"status", response.Status,
			"error_type", response.ErrorType,
			"confidence", response.Confidence,
			"language", response.DetectedLanguage,
		)
		c.JSON(http.StatusOK, response)
	}
}
