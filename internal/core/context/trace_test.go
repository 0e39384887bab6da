package context

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTraceContext(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetTraceID(ctx))
	assert.Empty(t, GetRequestID(ctx))

	tc := NewTraceContext("", "req-1")
	ctx = WithTrace(ctx, tc)

	assert.Equal(t, "req-1", GetRequestID(ctx))
	assert.NotEmpty(t, GetTraceID(ctx))
	assert.Equal(t, tc.TraceID, GetTraceID(ctx))
}
