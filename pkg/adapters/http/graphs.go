package http

import (
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/aretw0/cardflow/internal/compiler"
	"github.com/aretw0/cardflow/internal/dto"
	mermaid "github.com/aretw0/cardflow/internal/presentation/graph"
	"github.com/aretw0/cardflow/internal/validator"
	plan "github.com/aretw0/cardflow/pkg/compiler"
	"github.com/aretw0/cardflow/pkg/domain"
	"github.com/aretw0/cardflow/pkg/graph"
	"github.com/aretw0/cardflow/pkg/runner"
	"github.com/oapi-codegen/runtime"
)

// ReportResponse is the body of POST /graphs/validate.
type ReportResponse struct {
	validator.Report
	OK bool `json:"ok"`
}

// PlanResponse is the body of POST /graphs/compile.
type PlanResponse struct {
	*plan.Plan
	Levels [][]string `json:"levels"`
}

// RunRequest is the body of POST /graphs/run.
type RunRequest struct {
	Graph   graph.Document     `json:"graph"`
	Input   any                `json:"input"`
	Context domain.CardContext `json:"context"`
	States  runner.States      `json:"states"`
}

// ValidateGraph handles the POST /graphs/validate request.
func (s *Server) ValidateGraph(w http.ResponseWriter, r *http.Request) {
	g, ok := s.readGraph(w, r)
	if !ok {
		return
	}
	var strict bool
	if err := runtime.BindQueryParameter("form", true, false, "strict", r.URL.Query(), &strict); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	var opts []validator.Option
	if strict {
		opts = append(opts, validator.Strict())
	}
	report := validator.Check(g, s.Service.Resolver(), opts...)
	writeJSON(w, s.Logger, http.StatusOK, ReportResponse{Report: report, OK: report.OK()})
}

// CompileGraph handles the POST /graphs/compile request.
func (s *Server) CompileGraph(w http.ResponseWriter, r *http.Request) {
	g, ok := s.readGraph(w, r)
	if !ok {
		return
	}
	p, err := s.Service.Compile(g)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, s.Logger, http.StatusOK, PlanResponse{Plan: p, Levels: p.Levels()})
}

// LayoutGraph handles the POST /graphs/layout request.
func (s *Server) LayoutGraph(w http.ResponseWriter, r *http.Request) {
	g, ok := s.readGraph(w, r)
	if !ok {
		return
	}
	writeJSON(w, s.Logger, http.StatusOK, graph.ToDocument(s.Service.Layout(g)))
}

// OptimizeGraph handles the POST /graphs/optimize request.
func (s *Server) OptimizeGraph(w http.ResponseWriter, r *http.Request) {
	g, ok := s.readGraph(w, r)
	if !ok {
		return
	}
	writeJSON(w, s.Logger, http.StatusOK, graph.ToDocument(s.Service.Optimize(g)))
}

// MermaidGraph handles the POST /graphs/mermaid request.
func (s *Server) MermaidGraph(w http.ResponseWriter, r *http.Request) {
	g, ok := s.readGraph(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, mermaid.Inspected(g, s.Service.Resolver()))
}

// RunGraph handles the POST /graphs/run request.
func (s *Server) RunGraph(w http.ResponseWriter, r *http.Request) {
	var body RunRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, int64(compiler.MaxDocumentSize()))).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		s.Logger.Warn("RunGraph: invalid request body", "err", err)
		return
	}
	g, err := graph.FromDocument(body.Graph, s.Service.Resolver())
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	report, err := s.Service.Run(r.Context(), g, runner.Request{
		Input:   body.Input,
		Context: body.Context,
		States:  body.States,
	})
	if err != nil {
		s.Logger.Error("run failed", "graph_id", g.ID(), "err", err)
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, s.Logger, http.StatusOK, report)
}

// readGraph decodes the request body as a graph document. The format comes
// from the "format" query parameter, or else from the content type.
// On failure the error response is already written.
func (s *Server) readGraph(w http.ResponseWriter, r *http.Request) (*graph.Graph, bool) {
	data, format, ok := s.readDocument(w, r)
	if !ok {
		return nil, false
	}
	return s.parseGraph(w, data, format)
}

func (s *Server) readDocument(w http.ResponseWriter, r *http.Request) ([]byte, dto.Format, bool) {
	format, err := requestFormat(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return nil, "", false
	}
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, int64(compiler.MaxDocumentSize())))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, err)
		return nil, "", false
	}
	return data, format, true
}

func (s *Server) parseGraph(w http.ResponseWriter, data []byte, format dto.Format) (*graph.Graph, bool) {
	g, err := s.Service.Parse(data, string(format))
	if err != nil {
		s.Logger.Debug("graph document rejected", "format", format, "err", err)
		writeError(w, http.StatusBadRequest, err)
		return nil, false
	}
	return g, true
}

func requestFormat(r *http.Request) (dto.Format, error) {
	var raw string
	if err := runtime.BindQueryParameter("form", true, false, "format", r.URL.Query(), &raw); err != nil {
		return "", err
	}
	if raw != "" {
		return dto.ParseFormat(raw)
	}

	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return dto.FormatJSON, nil
	}
	switch mediaType {
	case "application/yaml", "application/x-yaml":
		return dto.FormatYAML, nil
	case "text/plain":
		return dto.FormatHCL, nil
	}
	return dto.FormatJSON, nil
}
