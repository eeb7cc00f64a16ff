package analysis

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/domaindive/internal/model"
)

// Runner analyzes one address. *Manager implements it.
type Runner interface {
	Run(ctx context.Context, address string) *model.AnalysisReport
}

// BatchProcessor analyzes many addresses concurrently with one Runner.
type BatchProcessor struct {
	runner Runner

	// batchSize is the maximum number of addresses analyzed at once.
	batchSize int

	logger *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithBatchSize sets the maximum number of concurrent analyses.
// Default is 4.
func WithBatchSize(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.batchSize = n
		}
	}
}

// NewBatchProcessor creates a BatchProcessor around runner.
func NewBatchProcessor(runner Runner, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		runner:    runner,
		batchSize: 4,
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}

	return bp
}

// ProcessBatch analyzes every address and returns the reports in input
// order. Addresses not started before ctx was cancelled have a nil report,
// and ctx's error is returned.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, addresses []string) ([]*model.AnalysisReport, error) {
	reports := make([]*model.AnalysisReport, len(addresses))

	// Each goroutine writes only its own index.
	err := bp.process(ctx, addresses, func(report *model.AnalysisReport, index int) {
		reports[index] = report
	})

	return reports, err
}

// ProcessBatchWithCallback analyzes every address and calls callback for
// each completed report with the address' index in the input. The callback
// is called from worker goroutines and must be safe for concurrent use.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	addresses []string,
	callback func(report *model.AnalysisReport, index int),
) error {
	return bp.process(ctx, addresses, callback)
}

func (bp *BatchProcessor) process(
	ctx context.Context,
	addresses []string,
	callback func(report *model.AnalysisReport, index int),
) error {
	bp.logger.Info("starting batch analysis",
		"total_addresses", len(addresses),
		"batch_size", bp.batchSize,
	)
	startTime := time.Now()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.batchSize)

	for i, address := range addresses {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			report := bp.runner.Run(ctx, address)
			if report.HasErrors() {
				bp.logger.Info("analysis completed with dependency errors",
					"address", address,
					"failed_dependencies", report.ErrorKeys(),
				)
			}

			callback(report, i)
			return nil
		})
	}

	err := g.Wait()

	bp.logger.Info("batch analysis complete",
		"total_addresses", len(addresses),
		"elapsed", time.Since(startTime),
	)

	return err
}
