package clientengine_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/keyvalue-driver-go/kvdriver/clientengine"
	"github.com/AntonStoeckl/keyvalue-driver-go/testutil/clientengine/helper"
)

func Test_Client_Logging_SuccessfulCommandLogsAtDebugLevel(t *testing.T) {
	loggerSpy := helper.NewLoggerSpy()
	client, _ := newTestClient(t, clientengine.WithLogger(loggerSpy))

	require.NoError(t, client.Set(context.Background(), "greeting", "hello"))

	assert.True(t, loggerSpy.HasLog("DEBUG", "executed command: SET"))
	assert.True(t, loggerSpy.HasLogWithAttr("DEBUG", "executed command: SET", "duration_ms"))
	assert.True(t, loggerSpy.HasLogWithAttr("DEBUG", "executed command: SET", "command"))
}

func Test_Client_Logging_FailedCommandLogsAtErrorLevel(t *testing.T) {
	loggerSpy := helper.NewLoggerSpy()
	client, dispatcher := newTestClient(t, clientengine.WithLogger(loggerSpy))

	dispatcher.FailNext(errors.New("connection torn down"))

	_, err := client.Get(context.Background(), "greeting")
	require.Error(t, err)

	assert.True(t, loggerSpy.HasLog("ERROR", "command dispatch failed"))
	assert.True(t, loggerSpy.HasLogWithAttr("ERROR", "command dispatch failed", "error"))
	assert.True(t, loggerSpy.HasLogWithAttr("ERROR", "command dispatch failed", "host"))
}

func Test_Client_Logging_CloseFailureLogsAWarning(t *testing.T) {
	loggerSpy := helper.NewLoggerSpy()
	failing := &failingCloseDispatcher{}

	client, err := clientengine.NewClientFromDispatcher(failing, clientengine.WithLogger(loggerSpy))
	require.NoError(t, err)

	client.Close()

	assert.True(t, loggerSpy.HasLog("WARN", "failed to close dispatcher"))
}

// failingCloseDispatcher always fails to close.
type failingCloseDispatcher struct {
	helper.MemoryDispatcher
}

func (d *failingCloseDispatcher) Close() error {
	return errors.New("already gone")
}

func Test_Client_Metrics_DurationRecordedPerCommand(t *testing.T) {
	metricsSpy := helper.NewMetricsCollectorSpy()
	client, _ := newTestClient(t, clientengine.WithMetrics(metricsSpy))

	require.NoError(t, client.Set(context.Background(), "greeting", "hello"))

	assert.Equal(t, 1, metricsSpy.GetDurationRecordCount())
	assert.True(t, metricsSpy.HasDurationRecord("kvdriver_command_duration", "command", "SET"))
	assert.True(t, metricsSpy.HasDurationRecord("kvdriver_command_duration", "status", "success"))
	assert.Equal(t, 0, metricsSpy.GetCounterRecordCount(), "no error counter on success")
}

func Test_Client_Metrics_ErrorCounterIncrementedOnFailure(t *testing.T) {
	metricsSpy := helper.NewMetricsCollectorSpy()
	client, dispatcher := newTestClient(t, clientengine.WithMetrics(metricsSpy))

	dispatcher.FailNext(errors.New("connection torn down"))

	_, err := client.Get(context.Background(), "greeting")
	require.Error(t, err)

	assert.True(t, metricsSpy.HasDurationRecord("kvdriver_command_duration", "status", "error"))
	assert.True(t, metricsSpy.HasCounterRecord("kvdriver_command_errors", "command", "GET"))
}

func Test_Client_Tracing_SpanPerInstrumentedCall(t *testing.T) {
	tracingSpy := helper.NewTracingCollectorSpy()
	client, dispatcher := newTestClient(t, clientengine.WithTracing(tracingSpy))
	ctx := context.Background()

	require.NoError(t, client.Set(ctx, "greeting", "hello"))

	assert.Equal(t, 1, tracingSpy.GetSpanRecordCount())
	assert.True(t, tracingSpy.HasSpanRecord("kvdriver.command", "success"))

	dispatcher.FailNext(errors.New("connection torn down"))

	_, err := client.Get(ctx, "greeting")
	require.Error(t, err)

	assert.True(t, tracingSpy.HasSpanRecord("kvdriver.command", "error"))
}
