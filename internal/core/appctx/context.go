// Package appctx carries request-scoped values (trace ids, operator) through context.
package appctx

import (
	"context"

	"github.com/google/uuid"
)

// TraceContext contains request tracing information.
type TraceContext struct {
	TraceID   string
	RequestID string
}

// Operator is the authenticated back-office user performing a request.
type Operator struct {
	ID    string
	Name  string
	Roles []string
}

type traceContextKey struct{}
type operatorContextKey struct{}

// WithTrace adds TraceContext to context.
func WithTrace(ctx context.Context, trace *TraceContext) context.Context {
	return context.WithValue(ctx, traceContextKey{}, trace)
}

// GetTrace returns TraceContext from context.
func GetTrace(ctx context.Context) *TraceContext {
	if v, ok := ctx.Value(traceContextKey{}).(*TraceContext); ok {
		return v
	}
	return nil
}

// GetRequestID returns request ID from context or empty string.
func GetRequestID(ctx context.Context) string {
	if t := GetTrace(ctx); t != nil {
		return t.RequestID
	}
	return ""
}

// NewTraceContext creates a new TraceContext with generated IDs.
// An incoming request id is kept when present.
func NewTraceContext(requestID string) *TraceContext {
	if requestID == "" {
		requestID = uuid.NewString()
	}
	return &TraceContext{
		TraceID:   uuid.NewString(),
		RequestID: requestID,
	}
}

// WithOperator adds the authenticated operator to context.
func WithOperator(ctx context.Context, op *Operator) context.Context {
	return context.WithValue(ctx, operatorContextKey{}, op)
}

// GetOperator returns the operator from context.
func GetOperator(ctx context.Context) *Operator {
	if v, ok := ctx.Value(operatorContextKey{}).(*Operator); ok {
		return v
	}
	return nil
}

// HasRole checks if the operator has a specific role.
func HasRole(ctx context.Context, role string) bool {
	op := GetOperator(ctx)
	if op == nil {
		return false
	}
	for _, r := range op.Roles {
		if r == role {
			return true
		}
	}
	return false
}
