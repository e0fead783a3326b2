// Copyright (c) 2023 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package common

import (
	"context"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"
)

const (
	traceIdLogField = "traceID"
	tracerName      = "progression-engine"
)

// Scope carries the span, its context and a trace-tagged logger through one engine operation.
type Scope struct {
	Ctx     context.Context
	TraceID string
	span    oteltrace.Span
	Log     *log.Entry
}

// GetScopeFromContext starts a span named name under the span carried by ctx, if any
func GetScopeFromContext(ctx context.Context, name string) *Scope {
	tracerCtx, span := otel.Tracer(tracerName).Start(ctx, name)
	traceID := span.SpanContext().TraceID().String()

	return &Scope{
		Ctx:     tracerCtx,
		TraceID: traceID,
		span:    span,
		Log:     log.WithField(traceIdLogField, traceID),
	}
}

// SetLogger replaces the scope logger. Used by tests.
func (s *Scope) SetLogger(logger *log.Entry) {
	s.Log = logger.WithField(traceIdLogField, s.TraceID)
}

// WithUser tags the span and every later log line of the scope with the user id.
func (s *Scope) WithUser(userID string) *Scope {
	s.span.SetAttributes(attribute.String("user.id", userID))
	s.Log = s.Log.WithField("userID", userID)
	return s
}

// Tag sets a span attribute. Unsupported value types are logged and dropped.
func (s *Scope) Tag(key string, value interface{}) {
	switch v := value.(type) {
	case bool:
		s.span.SetAttributes(attribute.Bool(key, v))
	case string:
		s.span.SetAttributes(attribute.String(key, v))
	case int:
		s.span.SetAttributes(attribute.Int(key, v))
	case int64:
		s.span.SetAttributes(attribute.Int64(key, v))
	default:
		s.Log.Debugf("dropping span attribute %s of type %T", key, value)
	}
}

// TraceError records err on the span and marks it failed
func (s *Scope) TraceError(err error) {
	s.span.RecordError(err)
	s.span.SetStatus(codes.Error, err.Error())
}

func (s *Scope) Finish() {
	s.span.End()
}
