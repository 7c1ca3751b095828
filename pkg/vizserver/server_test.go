// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package vizserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teradata-labs/vizflow/pkg/chart"
	"github.com/teradata-labs/vizflow/pkg/dataset"
	"github.com/teradata-labs/vizflow/pkg/llm"
	"github.com/teradata-labs/vizflow/pkg/pipeline"
)

const salesCSV = `region,revenue
North,2400.50
South,1700.00
East,5000.25
West,3750.75
`

// stubAnalyzer renders a fixed set of specs against the uploaded
// dataset, skipping the LLM entirely.
type stubAnalyzer struct {
	err error
}

func (a *stubAnalyzer) Run(_ context.Context, ds *dataset.Dataset, question string) (*pipeline.Result, error) {
	if a.err != nil {
		return nil, a.err
	}
	specs := []*chart.Spec{
		{Type: chart.TypeBar, X: "region", Y: "revenue", Aggregate: "sum"},
		{Type: chart.TypePie, X: "region", Y: "revenue", Aggregate: "sum"},
		{Type: chart.TypeScatter, X: "no_such", Y: "revenue"}, // fails per-slot
	}
	r := chart.NewRenderer(nil)
	charts, errs := r.RenderAll(ds, specs)
	return &pipeline.Result{
		Question:    question,
		Dataset:     ds.Name,
		State:       pipeline.StateRendered,
		Specs:       specs,
		Charts:      charts,
		ChartErrors: errs,
		Usage:       llm.Usage{TotalTokens: 750},
	}, nil
}

func newTestServer(t *testing.T, analyzer Analyzer) *httptest.Server {
	t.Helper()
	s, err := New(Config{Analyzer: analyzer})
	require.NoError(t, err)
	ts := httptest.NewServer(s.Routes())
	t.Cleanup(ts.Close)
	return ts
}

func uploadAnalysis(t *testing.T, ts *httptest.Server, filename, content, question string) *http.Response {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if filename != "" {
		fw, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	if question != "" {
		require.NoError(t, mw.WriteField("question", question))
	}
	require.NoError(t, mw.Close())

	resp, err := http.Post(ts.URL+"/api/v1/analyses", mw.FormDataContentType(), &body)
	require.NoError(t, err)
	return resp
}

func decodeAnalysis(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	defer resp.Body.Close()
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t, &stubAnalyzer{})
	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCreateAnalysis(t *testing.T) {
	ts := newTestServer(t, &stubAnalyzer{})
	resp := uploadAnalysis(t, ts, "sales.csv", salesCSV, "revenue by region?")
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	out := decodeAnalysis(t, resp)
	assert.NotEmpty(t, out["id"])
	assert.Equal(t, "revenue by region?", out["question"])
	assert.Equal(t, "rendered", out["state"])
	assert.Contains(t, out["schema"], "region")

	charts := out["charts"].([]interface{})
	require.Len(t, charts, 3)

	first := charts[0].(map[string]interface{})
	assert.Contains(t, first["svg_url"], "/charts/0.svg")
	assert.Contains(t, first["png_url"], "/charts/0.png")

	// The failed slot reports its error and no URLs.
	third := charts[2].(map[string]interface{})
	assert.NotEmpty(t, third["error"])
	assert.Nil(t, third["svg_url"])
}

func TestCreateAnalysisValidation(t *testing.T) {
	ts := newTestServer(t, &stubAnalyzer{})

	t.Run("missing question", func(t *testing.T) {
		resp := uploadAnalysis(t, ts, "sales.csv", salesCSV, "")
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("missing file", func(t *testing.T) {
		resp := uploadAnalysis(t, ts, "", "", "a question")
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("empty file", func(t *testing.T) {
		resp := uploadAnalysis(t, ts, "empty.csv", "", "a question")
		defer resp.Body.Close()
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	})

	t.Run("header only", func(t *testing.T) {
		resp := uploadAnalysis(t, ts, "header.csv", "a,b,c\n", "a question")
		defer resp.Body.Close()
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	})
}

func TestAnalyzerFailureMapsToBadGateway(t *testing.T) {
	failing := &stubAnalyzer{err: &llm.NetworkError{Provider: "gemini", StatusCode: 429, Err: fmt.Errorf("quota")}}
	ts := newTestServer(t, failing)

	resp := uploadAnalysis(t, ts, "sales.csv", salesCSV, "q")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestGetAnalysis(t *testing.T) {
	ts := newTestServer(t, &stubAnalyzer{})
	created := decodeAnalysis(t, uploadAnalysis(t, ts, "sales.csv", salesCSV, "q"))
	id := created["id"].(string)

	resp, err := http.Get(ts.URL + "/api/v1/analyses/" + id)
	require.NoError(t, err)
	out := decodeAnalysis(t, resp)
	assert.Equal(t, id, out["id"])

	missing, err := http.Get(ts.URL + "/api/v1/analyses/does-not-exist")
	require.NoError(t, err)
	defer missing.Body.Close()
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
}

func TestChartEndpoints(t *testing.T) {
	ts := newTestServer(t, &stubAnalyzer{})
	created := decodeAnalysis(t, uploadAnalysis(t, ts, "sales.csv", salesCSV, "q"))
	id := created["id"].(string)

	t.Run("svg", func(t *testing.T) {
		resp, err := http.Get(fmt.Sprintf("%s/api/v1/analyses/%s/charts/0.svg", ts.URL, id))
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "image/svg+xml", resp.Header.Get("Content-Type"))
	})

	t.Run("png", func(t *testing.T) {
		resp, err := http.Get(fmt.Sprintf("%s/api/v1/analyses/%s/charts/1.png", ts.URL, id))
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
		var sig [8]byte
		_, err = resp.Body.Read(sig[:])
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(sig[:], []byte("\x89PNG")))
	})

	t.Run("failed slot", func(t *testing.T) {
		resp, err := http.Get(fmt.Sprintf("%s/api/v1/analyses/%s/charts/2.png", ts.URL, id))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("out of range", func(t *testing.T) {
		resp, err := http.Get(fmt.Sprintf("%s/api/v1/analyses/%s/charts/9.svg", ts.URL, id))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestStoreEviction(t *testing.T) {
	store := NewStore(2)
	a := store.Put(&pipeline.Result{Question: "a"}, "")
	b := store.Put(&pipeline.Result{Question: "b"}, "")
	c := store.Put(&pipeline.Result{Question: "c"}, "")

	assert.Equal(t, 2, store.Len())
	assert.Nil(t, store.Get(a.ID), "oldest entry should be evicted")
	assert.NotNil(t, store.Get(b.ID))
	assert.NotNil(t, store.Get(c.ID))
	assert.NotEqual(t, b.ID, c.ID)
}
