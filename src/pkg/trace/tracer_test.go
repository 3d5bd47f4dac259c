package trace

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
)

func TestTracer_ExportsHierarchy(t *testing.T) {
	dir := t.TempDir()
	shutdown, err := InitTracer("jardiff-test", true, dir)
	require.NoError(t, err)

	ctx, root := StartSpan(context.Background(), "Process")
	_, child := StartSpan(ctx, "CompareArchive", attribute.String("archive", "app.jar"))
	child.End()
	root.End()
	shutdown()

	data, err := os.ReadFile(filepath.Join(dir, REPORT_FILE_NAME))
	require.NoError(t, err)

	var report PerformanceReport
	require.NoError(t, json.Unmarshal(data, &report))
	require.Len(t, report.Spans, 1)
	assert.Equal(t, "Process", report.Spans[0].Name)
	require.Len(t, report.Spans[0].Children, 1)
	assert.Equal(t, "CompareArchive", report.Spans[0].Children[0].Name)
	assert.Equal(t, map[string]string{"archive": "app.jar"}, report.Spans[0].Children[0].Attributes)
}

func TestTracer_Disabled(t *testing.T) {
	dir := t.TempDir()
	shutdown, err := InitTracer("jardiff-test", false, dir)
	require.NoError(t, err)

	ctx := context.Background()
	got, span := StartSpan(ctx, "noop")
	span.End()
	shutdown()

	assert.Equal(t, ctx, got)
	_, err = os.Stat(filepath.Join(dir, REPORT_FILE_NAME))
	assert.True(t, os.IsNotExist(err))
}

func TestBuildHierarchy(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	records := []spanRecord{
		{Name: "grandchild", SpanID: "3", ParentID: "2", Start: base.Add(2 * time.Millisecond)},
		{Name: "child-b", SpanID: "4", ParentID: "1", Start: base.Add(5 * time.Millisecond)},
		{Name: "child-a", SpanID: "2", ParentID: "1", Start: base.Add(time.Millisecond)},
		{Name: "orphan", SpanID: "5", ParentID: "missing", Start: base.Add(10 * time.Millisecond)},
		{Name: "root", SpanID: "1", Start: base, Duration: 20 * time.Millisecond},
	}

	tree := buildHierarchy(records)
	require.Len(t, tree, 2)
	assert.Equal(t, "root", tree[0].Name)
	assert.Equal(t, 20.0, tree[0].DurationMs)
	assert.Equal(t, "orphan", tree[1].Name)

	require.Len(t, tree[0].Children, 2)
	assert.Equal(t, "child-a", tree[0].Children[0].Name)
	assert.Equal(t, "child-b", tree[0].Children[1].Name)
	require.Len(t, tree[0].Children[0].Children, 1)
	assert.Equal(t, "grandchild", tree[0].Children[0].Children[0].Name)
}
