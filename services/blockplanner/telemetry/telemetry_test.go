// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.


package telemetry

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestInit_NilContext(t *testing.T) {
	//nolint:staticcheck // exercising the nil guard
	_, err := Init(nil, Config{})
	assert.True(t, errors.Is(err, ErrNilContext))
}

func TestInit_Noop(t *testing.T) {
	p, err := Init(context.Background(), Config{Traces: ExporterNone})
	require.NoError(t, err)
	assert.Nil(t, p.MetricsHandler())
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestInit_Stdout(t *testing.T) {
	var buf bytes.Buffer
	p, err := Init(context.Background(), Config{
		ServiceName: "blockplanner",
		Traces:      ExporterStdout,
		Writer:      &buf,
	})
	require.NoError(t, err)

	_, span := otel.Tracer("test").Start(context.Background(), "plan")
	assert.True(t, span.SpanContext().IsValid())
	span.End()

	require.NoError(t, p.Shutdown(context.Background()))
	assert.Contains(t, buf.String(), `"Name": "plan"`)
	assert.Contains(t, buf.String(), "blockplanner")
}

func TestInit_UnknownExporter(t *testing.T) {
	_, err := Init(context.Background(), Config{Traces: "carrier-pigeon"})
	assert.True(t, errors.Is(err, ErrUnknownExporter))
}

func TestInit_Prometheus(t *testing.T) {
	p, err := Init(context.Background(), Config{ServiceName: "blockplanner", Prometheus: true})
	require.NoError(t, err)
	defer p.Shutdown(context.Background())

	h := p.MetricsHandler()
	require.NotNil(t, h)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
