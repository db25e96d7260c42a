package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/dgallion1/pogen/internal/docxfile"
	"github.com/dgallion1/pogen/internal/extract"
	"github.com/dgallion1/pogen/internal/history"
	"github.com/dgallion1/pogen/internal/parser"
	"github.com/dgallion1/pogen/internal/template"
)

// Worker processes a single conversion job:
// parse MOM -> extract fields -> render template -> store history.
type Worker struct {
	extractor *extract.Extractor
	store     *history.Store
	log       *slog.Logger

	fallback    template.Fallback
	pdfFallback bool
}

func NewWorker(ex *extract.Extractor, store *history.Store, log *slog.Logger, fallback template.Fallback, pdfFallback bool) *Worker {
	return &Worker{
		extractor:   ex,
		store:       store,
		log:         log,
		fallback:    fallback,
		pdfFallback: pdfFallback,
	}
}

// Process runs the full conversion pipeline for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "mom", job.MOMFilename)

	// Phase 1: Parse
	job.SetStatus(StatusParsing, "parsing")
	p, err := parser.ForFile(job.MOMFilename)
	if err != nil {
		w.fail(ctx, job, log, "parsing", err)
		return
	}
	if pdfParser, ok := p.(*parser.PDFParser); ok {
		pdfParser.FallbackPdftotext = w.pdfFallback
	}
	doc, err := p.Parse(bytes.NewReader(job.momData), job.MOMFilename)
	if err != nil {
		w.fail(ctx, job, log, "parsing", fmt.Errorf("parse: %w", err))
		return
	}
	log.Info("parsed MOM", "rows", len(doc.Rows))

	// Phase 2: Extract
	job.SetStatus(StatusExtracting, "extracting")
	result, err := w.extractor.Extract(doc)
	if err != nil {
		w.fail(ctx, job, log, "extracting", fmt.Errorf("extract: %w", err))
		return
	}
	log.Info("extracted fields",
		"sections", result.Tree.Sections(),
		"fields_set", result.Fields.NonEmpty(),
		"warnings", len(result.Tree.Warnings),
	)

	// Phase 3: Render
	job.SetStatus(StatusRendering, "rendering")
	output, report, err := docxfile.Render(job.templateData, result.Fields, w.fallback)
	if err != nil {
		w.fail(ctx, job, log, "rendering", fmt.Errorf("render: %w", err))
		return
	}
	job.SetOutput(output)
	job.SetSummary(Summary{
		PONo:        result.Fields.Get("PO_NO"),
		FieldsTotal: len(result.Fields),
		FieldsSet:   result.Fields.NonEmpty(),
		Replaced:    report.Replaced(),
		Unresolved:  report.Unresolved(),
		Warnings:    result.Tree.Warnings,
	})
	log.Info("rendered PO", "replaced", report.Replaced(), "unresolved", len(report.Unresolved()))

	final := StatusCompleted
	if len(report.Unresolved()) > 0 || len(result.Tree.Warnings) > 0 {
		final = StatusPartial
	}

	// Phase 4: Store history
	job.SetStatus(StatusStoring, "storing")
	if err := w.record(ctx, job, result, report, string(final)); err != nil {
		// History is an audit convenience; the conversion itself succeeded.
		log.Warn("history store failed", "error", err)
	}

	job.SetStatus(final, "done")
}

func (w *Worker) fail(ctx context.Context, job *Job, log *slog.Logger, phase string, err error) {
	log.Error("conversion failed", "phase", phase, "error", err)
	job.AddError(err.Error())
	job.SetStatus(StatusFailed, phase)
	if w.store != nil {
		rec := history.Record{
			ID:           job.ID,
			MOMFile:      job.MOMFilename,
			TemplateFile: job.TemplateFilename,
			Status:       "failed",
		}
		if err := w.store.Put(ctx, rec); err != nil {
			log.Warn("history store failed", "error", err)
		}
	}
}

func (w *Worker) record(ctx context.Context, job *Job, result *extract.Result, report template.Report, status string) error {
	if w.store == nil {
		return nil
	}
	return w.store.Put(ctx, history.Record{
		ID:           job.ID,
		MOMFile:      job.MOMFilename,
		TemplateFile: job.TemplateFilename,
		PONo:         result.Fields.Get("PO_NO"),
		Status:       status,
		Fields:       result.Fields,
		Replaced:     report.Replaced(),
		Unresolved:   report.Unresolved(),
	})
}
