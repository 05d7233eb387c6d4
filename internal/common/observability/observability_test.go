package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/attribute"
)

func TestNilObservabilityIsSafe(t *testing.T) {
	var o *Observability

	assert.NotPanics(t, func() {
		o.Job(context.Background(), "rank-technicians", time.Now(), errors.New("x"))
		o.RecordCandidates(context.Background(), "rank-technicians", 3)
		o.Shutdown()
	})
}

func TestStartSpan_WithoutTracing(t *testing.T) {
	o := &Observability{serviceName: "test"}

	ctx, span := o.StartSpan(context.Background(), "rank", attribute.String("jobId", "job-1"))
	defer span.End()

	assert.NotNil(t, ctx)
	assert.NotNil(t, span)
	assert.Contains(t, o.String(), "tracing=false")
}
