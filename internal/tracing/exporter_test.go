package tracing

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func readRecords(t *testing.T, path string) []SpanRecord {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	var records []SpanRecord
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var rec SpanRecord
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &rec))
		records = append(records, rec)
	}
	require.NoError(t, scanner.Err())
	return records
}

func TestNewFileExporter_CreatesParentDirectories(t *testing.T) {
	tracePath := filepath.Join(t.TempDir(), "nested", "dir", "traces.jsonl")

	exporter, err := NewFileExporter(tracePath)
	require.NoError(t, err)

	_, err = os.Stat(tracePath)
	require.NoError(t, err, "trace file should be created with parent dirs")

	require.NoError(t, exporter.Shutdown(context.Background()))
}

func TestFileExporter_AppendsToExistingFile(t *testing.T) {
	tracePath := filepath.Join(t.TempDir(), "traces.jsonl")
	require.NoError(t, os.WriteFile(tracePath, []byte(`{"name":"existing"}`+"\n"), 0644))

	exporter, err := NewFileExporter(tracePath)
	require.NoError(t, err)

	stub := tracetest.SpanStub{
		Name:      SpanSections,
		StartTime: time.Now(),
		EndTime:   time.Now().Add(100 * time.Millisecond),
	}
	require.NoError(t, exporter.ExportSpans(context.Background(), []sdktrace.ReadOnlySpan{stub.Snapshot()}))
	require.NoError(t, exporter.Shutdown(context.Background()))

	records := readRecords(t, tracePath)
	require.Len(t, records, 2)
	require.Equal(t, "existing", records[0].Name)
	require.Equal(t, SpanSections, records[1].Name)
}

func TestFileExporter_RecordFields(t *testing.T) {
	tracePath := filepath.Join(t.TempDir(), "traces.jsonl")
	exporter, err := NewFileExporter(tracePath)
	require.NoError(t, err)

	traceID := trace.TraceID{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	stub := tracetest.SpanStub{
		Name: SpanDiffFile,
		SpanContext: trace.NewSpanContext(trace.SpanContextConfig{
			TraceID: traceID,
			SpanID:  trace.SpanID{1, 1, 1, 1, 1, 1, 1, 1},
		}),
		Parent: trace.NewSpanContext(trace.SpanContextConfig{
			TraceID: traceID,
			SpanID:  trace.SpanID{2, 2, 2, 2, 2, 2, 2, 2},
		}),
		StartTime: start,
		EndTime:   start.Add(1500 * time.Microsecond),
		Attributes: []attribute.KeyValue{
			attribute.String(AttrPath, "cmd/root.go"),
			attribute.Int(AttrBlocks, 3),
		},
		Events: []sdktrace.Event{{
			Name:       EventFileSkipped,
			Time:       start,
			Attributes: []attribute.KeyValue{attribute.Int64(AttrBytes, 2048)},
		}},
		Status: sdktrace.Status{Code: codes.Error, Description: "boom"},
	}

	require.NoError(t, exporter.ExportSpans(context.Background(), []sdktrace.ReadOnlySpan{stub.Snapshot()}))
	require.NoError(t, exporter.Shutdown(context.Background()))

	records := readRecords(t, tracePath)
	require.Len(t, records, 1)
	rec := records[0]

	require.Equal(t, traceID.String(), rec.TraceID)
	require.Equal(t, "0101010101010101", rec.SpanID)
	require.Equal(t, "0202020202020202", rec.ParentSpanID)
	require.Equal(t, SpanDiffFile, rec.Name)
	require.Equal(t, start.Format(time.RFC3339Nano), rec.StartTime)
	require.InDelta(t, 1.5, rec.DurationMs, 0.001)
	require.Equal(t, "ERROR", rec.Status)
	require.Equal(t, "boom", rec.StatusMsg)
	require.Equal(t, "cmd/root.go", rec.Attributes[AttrPath])
	// JSON numbers decode as float64
	require.Equal(t, float64(3), rec.Attributes[AttrBlocks])
	require.Len(t, rec.Events, 1)
	require.Equal(t, EventFileSkipped, rec.Events[0].Name)
	require.Equal(t, float64(2048), rec.Events[0].Attributes[AttrBytes])
}

func TestFileExporter_EmptyBatch(t *testing.T) {
	tracePath := filepath.Join(t.TempDir(), "traces.jsonl")
	exporter, err := NewFileExporter(tracePath)
	require.NoError(t, err)

	require.NoError(t, exporter.ExportSpans(context.Background(), nil))
	require.NoError(t, exporter.Shutdown(context.Background()))

	content, err := os.ReadFile(tracePath)
	require.NoError(t, err)
	require.Empty(t, content)
}

func TestFileExporter_ShutdownTwiceAndExportAfter(t *testing.T) {
	exporter, err := NewFileExporter(filepath.Join(t.TempDir(), "traces.jsonl"))
	require.NoError(t, err)

	require.NoError(t, exporter.Shutdown(context.Background()))
	require.NoError(t, exporter.Shutdown(context.Background()))

	stub := tracetest.SpanStub{Name: "late"}
	err = exporter.ExportSpans(context.Background(), []sdktrace.ReadOnlySpan{stub.Snapshot()})
	require.Error(t, err)
}

func TestFileExporter_ConcurrentExports(t *testing.T) {
	tracePath := filepath.Join(t.TempDir(), "traces.jsonl")
	exporter, err := NewFileExporter(tracePath)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			stub := tracetest.SpanStub{Name: SpanDiffFile}
			_ = exporter.ExportSpans(context.Background(), []sdktrace.ReadOnlySpan{stub.Snapshot()})
		}()
	}
	wg.Wait()
	require.NoError(t, exporter.Shutdown(context.Background()))

	require.Len(t, readRecords(t, tracePath), 20)
}

func TestStartEnd(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	tracer := provider.Tracer("test")

	ctx, parent := Start(context.Background(), tracer, SpanDiffFiles, attribute.Int(AttrFileCount, 2))
	_, child := Start(ctx, tracer, SpanDiffFile, attribute.String(AttrPath, "a.go"))
	End(child, errors.New("read failed"))
	End(parent, nil)

	spans := recorder.Ended()
	require.Len(t, spans, 2)

	require.Equal(t, SpanDiffFile, spans[0].Name())
	require.Equal(t, codes.Error, spans[0].Status().Code)
	require.Equal(t, "read failed", spans[0].Status().Description)
	require.Contains(t, spans[0].Attributes(), attribute.String(AttrErrorMessage, "read failed"))
	require.Equal(t, spans[1].SpanContext().SpanID(), spans[0].Parent().SpanID())

	require.Equal(t, SpanDiffFiles, spans[1].Name())
	require.Equal(t, codes.Ok, spans[1].Status().Code)
	require.Contains(t, spans[1].Attributes(), attribute.Int(AttrFileCount, 2))
}

func TestStart_NilTracer(t *testing.T) {
	ctx, span := Start(context.Background(), nil, SpanDiffFile)
	require.NotNil(t, ctx)
	require.False(t, span.IsRecording())
	End(span, nil)
}
