package jobs

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"codetutor/ai/internal/history"
)

// HistoryExporterJob periodically exports LLM-graded submissions as JSONL
// training data.
type HistoryExporterJob struct {
	store  *history.Store
	config *ExporterConfig
	cron   *cron.Cron
	logger *zap.Logger
}

// ExporterConfig contains configuration for the exporter job
type ExporterConfig struct {
	Schedule  string // Cron schedule (e.g., "0 2 * * *" for 2 AM daily)
	ExportDir string // Directory to store exported files
	Enabled   bool   // Whether to run exports
}

// NewHistoryExporterJob creates a new exporter job
func NewHistoryExporterJob(store *history.Store, config *ExporterConfig, logger *zap.Logger) *HistoryExporterJob {
	return &HistoryExporterJob{
		store:  store,
		config: config,
		cron:   cron.New(),
		logger: logger,
	}
}

// Start begins the scheduled export job
func (job *HistoryExporterJob) Start() error {
	if !job.config.Enabled {
		job.logger.Info("History export is disabled, skipping scheduler")
		return nil
	}

	job.logger.Info("Starting history exporter", zap.String("schedule", job.config.Schedule))

	_, err := job.cron.AddFunc(job.config.Schedule, func() {
		if err := job.RunExport(); err != nil {
			job.logger.Error("Export job failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule export job: %w", err)
	}

	job.cron.Start()
	return nil
}

// Stop stops the scheduled export job
func (job *HistoryExporterJob) Stop() {
	if job.cron != nil {
		job.cron.Stop()
	}
}

// RunExport performs a single export run
func (job *HistoryExporterJob) RunExport() error {
	records, err := job.store.Unexported(0) // no limit
	if err != nil {
		return fmt.Errorf("failed to get unexported evaluations: %w", err)
	}

	if len(records) == 0 {
		job.logger.Info("No unexported evaluations found")
		return nil
	}

	jsonlData, err := job.store.ExportToJSONL(records)
	if err != nil {
		return fmt.Errorf("failed to export to JSONL: %w", err)
	}

	recordIDs := make([]uint, len(records))
	for i, record := range records {
		recordIDs[i] = record.ID
	}

	if len(jsonlData) == 0 {
		// only heuristic results in this batch; mark them so they are not
		// reprocessed forever
		job.logger.Info("No LLM-graded evaluations to export, skipping file creation")
		return job.store.MarkExported(recordIDs)
	}

	if err := os.MkdirAll(job.config.ExportDir, 0755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}

	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("evaluation_export_%s.jsonl", timestamp)
	path := filepath.Join(job.config.ExportDir, filename)

	if err := os.WriteFile(path, jsonlData, 0644); err != nil {
		return fmt.Errorf("failed to write export file: %w", err)
	}

	job.logger.Info("Exported evaluations",
		zap.Int("records", len(records)),
		zap.String("path", path))

	return job.store.MarkExported(recordIDs)
}
