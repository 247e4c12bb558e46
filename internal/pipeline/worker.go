package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dgallion1/notescribe/internal/bio"
	"github.com/dgallion1/notescribe/internal/chunker"
	"github.com/dgallion1/notescribe/internal/dialogue"
	"github.com/dgallion1/notescribe/internal/doctree"
	"github.com/dgallion1/notescribe/internal/inference"
	"github.com/dgallion1/notescribe/internal/parser"
)

// ChunkSeparator is the literal placed between decoded chunks.
const ChunkSeparator = "\n\n"

// Worker processes a single document job.
type Worker struct {
	predictor inference.Predictor
	chunker   *chunker.Chunker
	decoder   *bio.Decoder
	parseOpts parser.Options
	log       *slog.Logger

	maxConcurrentPredict int
}

func NewWorker(predictor inference.Predictor, ch *chunker.Chunker, parseOpts parser.Options, log *slog.Logger, maxPredict int) *Worker {
	if maxPredict <= 0 {
		maxPredict = 1
	}
	return &Worker{
		predictor:            predictor,
		chunker:              ch,
		decoder:              bio.NewDecoder(),
		parseOpts:            parseOpts,
		log:                  log,
		maxConcurrentPredict: maxPredict,
	}
}

type chunkOutcome struct {
	pred *inference.Prediction
	err  error
}

// Process runs parse, chunk, predict and decode for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "filename", job.Filename)

	// Phase 1: Parse
	job.SetStatus(StatusParsing, "parsing")
	p, err := parser.ForFile(job.Filename, w.parseOpts)
	if err != nil {
		log.Error("unsupported format", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "parsing")
		return
	}
	tree, err := p.Parse(bytes.NewReader(job.FileData()), job.Filename)
	if err != nil {
		log.Error("parse failed", "error", err)
		job.AddError(fmt.Sprintf("parse: %s", err))
		job.SetStatus(StatusFailed, "parsing")
		return
	}
	if job.Title != "" {
		tree.Title = job.Title
	}

	// Phase 2: Chunk
	job.SetStatus(StatusChunking, "chunking")
	chunks := w.chunker.ChunkTree(tree)
	job.SetTotalChunks(len(chunks))
	log.Info("chunked document", "chunks", len(chunks))
	if len(chunks) == 0 {
		job.AddError("no extractable text")
		job.SetStatus(StatusFailed, "chunking")
		return
	}

	// Phase 3: Predict with bounded concurrency. Outcomes are indexed so
	// merging below stays in document order.
	job.SetStatus(StatusPredicting, "predicting")
	outcomes := w.predictAll(ctx, log, job, chunks)

	// Phase 4: Decode and merge
	job.SetStatus(StatusDecoding, "decoding")
	result, failed := w.merge(job, tree, chunks, outcomes)
	job.SetResult(result)
	log.Info("analysis complete", "entities", len(result.Spans), "failed_chunks", failed)

	switch {
	case failed == len(chunks):
		job.SetStatus(StatusFailed, "decoding")
	case failed > 0:
		job.SetStatus(StatusPartial, "done")
	default:
		job.SetStatus(StatusCompleted, "done")
	}
}

func (w *Worker) predictAll(ctx context.Context, log *slog.Logger, job *Job, chunks []doctree.Chunk) []chunkOutcome {
	outcomes := make([]chunkOutcome, len(chunks))
	done := make(chan struct{}, len(chunks))
	sem := make(chan struct{}, w.maxConcurrentPredict)

	for i, chunk := range chunks {
		sem <- struct{}{}
		go func(i int, text string) {
			defer func() {
				<-sem
				done <- struct{}{}
			}()
			pred, err := inference.PredictWithRetry(ctx, w.predictor, text, log.With("chunk", i))
			outcomes[i] = chunkOutcome{pred: pred, err: err}
		}(i, chunk.Text)
	}
	for range chunks {
		<-done
		job.IncrChunksPredicted()
	}
	return outcomes
}

// merge decodes each chunk and stitches the results together with
// ChunkSeparator literals. Failed chunks are left out of the merged text.
func (w *Worker) merge(job *Job, tree *doctree.DocTree, chunks []doctree.Chunk, outcomes []chunkOutcome) (*Result, int) {
	res := &Result{
		JobID:    job.ID,
		Title:    tree.Title,
		Segments: []bio.Segment{},
		Spans:    []bio.EntitySpan{},
		Chunks:   make([]ChunkInfo, len(chunks)),
	}

	failed := 0
	for i, chunk := range chunks {
		info := ChunkInfo{Index: chunk.Index, Section: chunk.Section, Tokens: chunk.Tokens}

		decoded, err := w.decodeChunk(job, outcomes[i])
		if err != nil {
			failed++
			info.Error = err.Error()
			job.AddError(fmt.Sprintf("chunk %d: %s", chunk.Index, err))
			res.Chunks[i] = info
			continue
		}

		if len(res.Segments) > 0 && len(decoded.Segments) > 0 {
			res.Segments = appendLiteral(res.Segments, ChunkSeparator)
		}
		for _, seg := range decoded.Segments {
			if seg.IsSpan() {
				res.Segments = append(res.Segments, seg)
			} else {
				res.Segments = appendLiteral(res.Segments, seg.Text)
			}
		}
		res.Spans = append(res.Spans, decoded.Spans...)
		info.Entities = len(decoded.Spans)
		res.Chunks[i] = info
	}

	res.Text = bio.Join(res.Segments)
	res.Summary = bio.Summarize(res.Spans)
	// Speaker lines come from the parsed source: decoded WordPiece text is
	// lower-cased by uncased models and loses line breaks.
	res.Turns = dialogue.Segment(tree.Text())
	if res.Turns == nil {
		res.Turns = []dialogue.Turn{}
	}
	res.ShowDialogue = len(res.Turns) > 0
	return res, failed
}

func (w *Worker) decodeChunk(job *Job, out chunkOutcome) (bio.Result, error) {
	if out.err != nil {
		return bio.Result{}, out.err
	}
	if out.pred == nil {
		return bio.Result{}, fmt.Errorf("empty prediction")
	}
	tags := out.pred.Tags
	if job.Anneal {
		tags = bio.Anneal(tags)
	}
	return w.decoder.Decode(out.pred.Tokens, tags)
}

// appendLiteral adds text as a literal segment, merging with a trailing
// literal so no two literals are adjacent.
func appendLiteral(segs []bio.Segment, text string) []bio.Segment {
	if text == "" {
		return segs
	}
	if n := len(segs); n > 0 && !segs[n-1].IsSpan() {
		var b strings.Builder
		b.WriteString(segs[n-1].Text)
		b.WriteString(text)
		segs[n-1].Text = b.String()
		return segs
	}
	return append(segs, bio.Segment{Kind: bio.SegmentLiteral, Text: text})
}
