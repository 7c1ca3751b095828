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
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/teradata-labs/vizflow/pkg/chart"
	"github.com/teradata-labs/vizflow/pkg/dataset"
	"github.com/teradata-labs/vizflow/pkg/llm"
	"github.com/teradata-labs/vizflow/pkg/pipeline"
)

// analysisResponse is the JSON shape for a stored analysis.
type analysisResponse struct {
	ID              string          `json:"id"`
	CreatedAt       string          `json:"created_at"`
	Question        string          `json:"question"`
	Dataset         string          `json:"dataset"`
	Schema          string          `json:"schema"`
	State           pipeline.State  `json:"state"`
	RelevantColumns []string        `json:"relevant_columns,omitempty"`
	Reasoning       string          `json:"reasoning,omitempty"`
	Charts          []chartResponse `json:"charts"`
	Usage           usageResponse   `json:"usage"`
}

type chartResponse struct {
	Index         int    `json:"index"`
	ChartType     string `json:"chart_type"`
	Justification string `json:"justification,omitempty"`
	Title         string `json:"title,omitempty"`
	SVGURL        string `json:"svg_url,omitempty"`
	PNGURL        string `json:"png_url,omitempty"`
	Error         string `json:"error,omitempty"`
}

type usageResponse struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleCreateAnalysis accepts a multipart upload (file + question),
// runs the chain synchronously, and returns the stored analysis.
func (s *Server) handleCreateAnalysis(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.config.MaxUploadBytes); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("parsing upload: %w", err))
		return
	}

	question := strings.TrimSpace(r.FormValue("question"))
	if question == "" {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("question is required"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("file is required: %w", err))
		return
	}
	defer file.Close()

	ds, err := dataset.Load(header.Filename, file)
	if err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.config.AnalysisTimeout)
	defer cancel()

	result, err := s.analyzer.Run(ctx, ds, question)
	if err != nil {
		s.logger.Error("analysis failed",
			zap.String("dataset", header.Filename),
			zap.Error(err))
		s.writeError(w, analysisStatus(err), err)
		return
	}

	a := s.store.Put(result, dataset.Summarize(ds).Text(0))
	s.logger.Info("analysis stored",
		zap.String("id", a.ID),
		zap.String("dataset", ds.Name),
		zap.Int("rendered", result.RenderedCount()))
	s.writeJSON(w, http.StatusCreated, toResponse(a))
}

func (s *Server) handleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	a := s.store.Get(chi.URLParam(r, "id"))
	if a == nil {
		s.writeError(w, http.StatusNotFound, fmt.Errorf("analysis not found"))
		return
	}
	s.writeJSON(w, http.StatusOK, toResponse(a))
}

func (s *Server) handleChartSVG(w http.ResponseWriter, r *http.Request) {
	c, ok := s.lookupChart(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	_, _ = w.Write([]byte(c.SVG))
}

func (s *Server) handleChartPNG(w http.ResponseWriter, r *http.Request) {
	c, ok := s.lookupChart(w, r)
	if !ok {
		return
	}
	data, err := c.PNG()
	if err != nil {
		s.logger.Error("png export failed", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(data)
}

// lookupChart resolves {id}/{n} to a rendered chart, writing the error
// response itself on failure.
func (s *Server) lookupChart(w http.ResponseWriter, r *http.Request) (*chart.Rendered, bool) {
	a := s.store.Get(chi.URLParam(r, "id"))
	if a == nil {
		s.writeError(w, http.StatusNotFound, fmt.Errorf("analysis not found"))
		return nil, false
	}
	n, err := strconv.Atoi(chi.URLParam(r, "n"))
	if err != nil || n < 0 || n >= len(a.Result.Charts) {
		s.writeError(w, http.StatusNotFound, fmt.Errorf("no chart %s", chi.URLParam(r, "n")))
		return nil, false
	}
	c := a.Result.Charts[n]
	if c == nil {
		s.writeError(w, http.StatusNotFound, fmt.Errorf("chart %d failed to render: %v", n, a.Result.ChartErrors[n]))
		return nil, false
	}
	return c, true
}

func toResponse(a *Analysis) analysisResponse {
	resp := analysisResponse{
		ID:        a.ID,
		CreatedAt: a.CreatedAt.Format("2006-01-02T15:04:05Z"),
		Question:  a.Result.Question,
		Dataset:   a.Result.Dataset,
		Schema:    a.Schema,
		State:     a.Result.State,
		Usage: usageResponse{
			InputTokens:  a.Result.Usage.InputTokens,
			OutputTokens: a.Result.Usage.OutputTokens,
			TotalTokens:  a.Result.Usage.TotalTokens,
		},
	}
	if sel := a.Result.Selection; sel != nil {
		resp.RelevantColumns = sel.RelevantColumns
		resp.Reasoning = sel.Reasoning
	}
	for i := range a.Result.Charts {
		cr := chartResponse{Index: i}
		if i < len(a.Result.Proposals) {
			cr.ChartType = a.Result.Proposals[i].ChartType
			cr.Justification = a.Result.Proposals[i].Justification
		}
		if c := a.Result.Charts[i]; c != nil {
			cr.Title = c.Spec.Title
			cr.ChartType = string(c.Spec.Type)
			cr.SVGURL = fmt.Sprintf("/api/v1/analyses/%s/charts/%d.svg", a.ID, i)
			cr.PNGURL = fmt.Sprintf("/api/v1/analyses/%s/charts/%d.png", a.ID, i)
		} else if err := a.Result.ChartErrors[i]; err != nil {
			cr.Error = err.Error()
		}
		resp.Charts = append(resp.Charts, cr)
	}
	return resp
}

// analysisStatus maps pipeline failures to HTTP statuses: provider
// trouble is a 502, unusable model output a 502, anything else a 500.
func analysisStatus(err error) int {
	if llm.IsNetworkError(err) || pipeline.IsParseError(err) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encoding response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}
