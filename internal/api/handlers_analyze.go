package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/dgallion1/notescribe/internal/bio"
	"github.com/dgallion1/notescribe/internal/dialogue"
	"github.com/dgallion1/notescribe/internal/inference"
	"github.com/dgallion1/notescribe/internal/render"
)

type decodeRequest struct {
	Tokens []string `json:"tokens"`
	Tags   []string `json:"tags"`
	Anneal *bool    `json:"anneal,omitempty"`
}

type analyzeRequest struct {
	Text         string          `json:"text"`
	Conversation json.RawMessage `json:"conversation,omitempty"`
	Anneal       *bool           `json:"anneal,omitempty"`
}

type segmentRequest struct {
	Conversation json.RawMessage `json:"conversation"`
}

type reportRequest struct {
	Title        string          `json:"title"`
	Tokens       []string        `json:"tokens"`
	Tags         []string        `json:"tags"`
	Conversation json.RawMessage `json:"conversation,omitempty"`
	Anneal       *bool           `json:"anneal,omitempty"`
	Format       string          `json:"format"`
}

type analysisResponse struct {
	Text         string             `json:"text"`
	Segments     []bio.Segment      `json:"segments"`
	Spans        []bio.EntitySpan   `json:"spans"`
	Summary      bio.Summary        `json:"summary"`
	HTML         string             `json:"html"`
	Entities     []inference.Entity `json:"entities,omitempty"`
	Turns        []dialogue.Turn    `json:"turns"`
	ShowDialogue bool               `json:"show_dialogue"`
	DialogueHTML string             `json:"dialogue_html,omitempty"`
}

func (s *Server) handleDecode(w http.ResponseWriter, r *http.Request) {
	var req decodeRequest
	if !s.readJSON(w, r, &req) {
		return
	}
	res, err := s.decode(req.Tokens, req.Tags, req.Anneal)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	resp, err := buildAnalysis(res, nil)
	if err != nil {
		jsonError(w, "render failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if !s.readJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		jsonError(w, "text cannot be empty", http.StatusBadRequest)
		return
	}
	if s.svc.Predictor == nil {
		jsonError(w, "inference unavailable", http.StatusServiceUnavailable)
		return
	}

	pred, err := inference.PredictWithRetry(r.Context(), s.svc.Predictor, req.Text, s.log)
	if err != nil {
		s.log.Error("prediction failed", "error", err)
		jsonError(w, "prediction failed: "+err.Error(), http.StatusBadGateway)
		return
	}
	res, err := s.decode(pred.Tokens, pred.Tags, req.Anneal)
	if err != nil {
		// Mismatched tokens/tags from the service is an upstream fault.
		s.log.Error("upstream returned malformed prediction", "error", err)
		jsonError(w, "malformed prediction: "+err.Error(), http.StatusBadGateway)
		return
	}

	resp, err := buildAnalysis(res, dialogue.SegmentRaw(req.Conversation))
	if err != nil {
		jsonError(w, "render failed", http.StatusInternalServerError)
		return
	}
	resp.Entities = pred.Entities
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSegment(w http.ResponseWriter, r *http.Request) {
	var req segmentRequest
	if !s.readJSON(w, r, &req) {
		return
	}
	turns := dialogue.SegmentRaw(req.Conversation)
	if turns == nil {
		turns = []dialogue.Turn{}
	}
	html, err := render.DialogueHTML(turns)
	if err != nil {
		jsonError(w, "render failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"turns":         turns,
		"show_dialogue": len(turns) > 0,
		"html":          html,
	})
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	var req reportRequest
	if !s.readJSON(w, r, &req) {
		return
	}
	format := strings.ToLower(req.Format)
	if format == "" {
		format = "markdown"
	}
	if format != "markdown" && format != "html" {
		jsonError(w, fmt.Sprintf("unsupported format %q", req.Format), http.StatusBadRequest)
		return
	}

	res, err := s.decode(req.Tokens, req.Tags, req.Anneal)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	report := render.Report{
		Title:    req.Title,
		Segments: res.Segments,
		Summary:  bio.Summarize(res.Spans),
		Turns:    dialogue.SegmentRaw(req.Conversation),
	}

	if format == "markdown" {
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		_, _ = w.Write([]byte(render.Markdown(report)))
		return
	}
	out, err := render.HTML(report)
	if err != nil {
		jsonError(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(out))
}

// decode applies the request's annealing choice, falling back to the
// configured default, then decodes.
func (s *Server) decode(tokens, tags []string, anneal *bool) (bio.Result, error) {
	on := s.cfg.AnnealTags
	if anneal != nil {
		on = *anneal
	}
	if on {
		tags = bio.Anneal(tags)
	}
	res, err := bio.Decode(tokens, tags)
	if err != nil {
		var mal *bio.MalformedInputError
		if errors.As(err, &mal) {
			return bio.Result{}, fmt.Errorf("tokens and tags differ in length (%d vs %d)", mal.Tokens, mal.Tags)
		}
		return bio.Result{}, err
	}
	return res, nil
}

func buildAnalysis(res bio.Result, turns []dialogue.Turn) (analysisResponse, error) {
	segments := res.Segments
	if segments == nil {
		segments = []bio.Segment{}
	}
	spans := res.Spans
	if spans == nil {
		spans = []bio.EntitySpan{}
	}
	if turns == nil {
		turns = []dialogue.Turn{}
	}

	tagged, err := render.TaggedHTML(segments)
	if err != nil {
		return analysisResponse{}, err
	}
	dlg, err := render.DialogueHTML(turns)
	if err != nil {
		return analysisResponse{}, err
	}
	return analysisResponse{
		Text:         bio.Join(segments),
		Segments:     segments,
		Spans:        spans,
		Summary:      bio.Summarize(spans),
		HTML:         tagged,
		Turns:        turns,
		ShowDialogue: len(turns) > 0,
		DialogueHTML: dlg,
	}, nil
}

// readJSON decodes a bounded request body, writing a 400 on failure.
func (s *Server) readJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	limit := s.cfg.MaxUploadBytes
	if limit <= 0 {
		limit = 10 << 20
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			jsonError(w, "request body too large", http.StatusRequestEntityTooLarge)
			return false
		}
		jsonError(w, "invalid JSON body: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}
