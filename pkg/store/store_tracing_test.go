package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/procanvas/procanvas/pkg/models"
	"github.com/procanvas/procanvas/pkg/otelhelper"
	"github.com/procanvas/procanvas/pkg/persistence/file"
	"github.com/procanvas/procanvas/pkg/store"
)

func TestSaveAndLoadEmitSpans(t *testing.T) {
	ctx := context.Background()

	exporter := tracetest.NewInMemoryExporter()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	repo := file.NewPersistence(t.TempDir()).WorkflowRepository()

	s := store.NewStore(repo, fixedResolver("tenant-1"), testLogger(), "user-1",
		store.WithTracer(provider.Tracer("workflow_store")))
	s.AddNode(models.NodeKindStart, models.Position{X: 50, Y: 50}, "Begin")
	require.NoError(t, s.Save(ctx, models.WorkflowStatusDraft, false))

	// A second store loads the saved workflow so both round trips show up.
	other := store.NewStore(repo, fixedResolver("tenant-1"), testLogger(), "user-1",
		store.WithTracer(provider.Tracer("workflow_store")))
	require.NoError(t, other.Load(ctx, s.WorkflowID()))

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)
	assert.Equal(t, "store.save", spans[0].Name)
	assert.Equal(t, "store.load", spans[1].Name)

	saveAttrs := attributesByKey(spans[0].Attributes)
	assert.Equal(t, string(models.WorkflowStatusDraft), saveAttrs[otelhelper.StatusKey])

	loadAttrs := attributesByKey(spans[1].Attributes)
	assert.Equal(t, s.WorkflowID(), loadAttrs[otelhelper.WorkflowIDKey])
}

func attributesByKey(attrs []attribute.KeyValue) map[string]string {
	out := make(map[string]string, len(attrs))
	for _, attr := range attrs {
		out[string(attr.Key)] = attr.Value.AsString()
	}

	return out
}
