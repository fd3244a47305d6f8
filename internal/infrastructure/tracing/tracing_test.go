package tracing

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"go.opentelemetry.io/otel"
)

func TestSetup_ExportsSpans(t *testing.T) {
	var buf bytes.Buffer
	shutdown, err := Setup(&buf)
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}

	_, span := otel.Tracer(TracerName).Start(context.Background(), "workflow.submit")
	span.End()

	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if !strings.Contains(buf.String(), "workflow.submit") {
		t.Fatalf("span not exported: %s", buf.String())
	}
}
