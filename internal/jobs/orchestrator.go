package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/akashstwt/scraper-backend/internal/common"
	"github.com/akashstwt/scraper-backend/internal/excel"
	"github.com/akashstwt/scraper-backend/internal/httpclient"
	"github.com/akashstwt/scraper-backend/internal/mailer"
	"github.com/akashstwt/scraper-backend/internal/models"
	"github.com/akashstwt/scraper-backend/internal/registry"
	"github.com/akashstwt/scraper-backend/internal/scrape"
)

// Orchestrator owns the lifecycle of scrape jobs: it accepts submissions,
// fans codes out across workers, merges their results deterministically, and
// hands the workbook to the mailer.
type Orchestrator struct {
	registry *registry.Registry
	mailer   mailer.Sender
	config   *common.Config
	logger   arbor.ILogger
	factory  AdapterFactory

	// wg tracks in-flight jobs so shutdown can drain them
	wg sync.WaitGroup
}

// NewOrchestrator wires the orchestrator with the default adapter set: the
// HotToner HTTP adapter always, the InkStation browser adapter when enabled.
func NewOrchestrator(reg *registry.Registry, sender mailer.Sender, config *common.Config, logger arbor.ILogger) *Orchestrator {
	factory := func() []scrape.SourceAdapter {
		adapters := []scrape.SourceAdapter{
			scrape.NewHotTonerAdapter(httpclient.New(config.Scraper), config.Scraper, logger),
		}
		if config.Browser.Enabled {
			adapters = append(adapters, scrape.NewInkStationAdapter(config.Browser, logger))
		}
		return adapters
	}
	return newOrchestrator(reg, sender, config, logger, factory)
}

func newOrchestrator(reg *registry.Registry, sender mailer.Sender, config *common.Config, logger arbor.ILogger, factory AdapterFactory) *Orchestrator {
	return &Orchestrator{
		registry: reg,
		mailer:   sender,
		config:   config,
		logger:   logger,
		factory:  factory,
	}
}

// Submit registers a new job for the uploaded workbook and starts it in the
// background. The returned id is immediately pollable.
func (o *Orchestrator) Submit(fileData []byte, recipient string) (string, error) {
	job := models.NewJob(common.NewJobID(), recipient)
	if err := o.registry.Create(job); err != nil {
		return "", err
	}

	o.logger.Info().Str("job_id", job.ID).Str("email", recipient).Msg("Job submitted")

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		o.run(context.Background(), job.ID, fileData, recipient)
	}()

	return job.ID, nil
}

// Wait blocks until all in-flight jobs finish
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}

// run drives one job from file parse to delivered email. A fault in any
// stage marks the job failed with that stage's message. Per-code scrape
// faults are not stage faults, they are folded into result rows.
func (o *Orchestrator) run(ctx context.Context, jobID string, fileData []byte, recipient string) {
	o.setStatus(jobID, models.JobStatusRunning, "Reading OEM codes from file...")

	rawCodes, err := excel.ReadCodes(fileData)
	if err != nil {
		o.fail(jobID, fmt.Sprintf("Failed to read OEM codes: %v", err))
		return
	}

	codes := dedupeCodes(rawCodes)
	if len(codes) == 0 {
		o.fail(jobID, "No OEM codes found in file")
		return
	}

	o.mutate(jobID, func(job *models.Job) {
		job.Progress = models.JobProgress{Current: 0, Total: len(codes)}
		job.Message = fmt.Sprintf("Found %d OEM codes. Starting parallel scraping...", len(codes))
	})

	results := o.scrapeAll(ctx, jobID, codes)

	o.setMessage(jobID, "Scraping completed! Sending email...")

	workbook, err := excel.WriteResults(results, time.Now())
	if err != nil {
		o.fail(jobID, fmt.Sprintf("Failed to build results workbook: %v", err))
		return
	}

	if err := o.mailer.SendResults(recipient, workbook, len(codes)); err != nil {
		o.fail(jobID, fmt.Sprintf("Failed to send email: %v", err))
		return
	}

	o.setStatus(jobID, models.JobStatusCompleted, "Email sent successfully!")
	o.logger.Info().Str("job_id", jobID).Int("codes", len(codes)).Msg("Job completed")
}

// scrapeAll partitions the codes across workers and merges the per-worker
// results back in chunk order, so output row order depends only on the input
// code order and never on scheduling.
func (o *Orchestrator) scrapeAll(ctx context.Context, jobID string, codes []string) []models.ResultRecord {
	chunks := chunkCodes(codes, o.config.Workers.Count)

	perWorker := make([][]models.ResultRecord, len(chunks))
	var wg sync.WaitGroup
	for i, chunk := range chunks {
		wg.Add(1)
		go func(i int, chunk []string) {
			defer wg.Done()
			w := &worker{
				index:    i,
				adapters: o.factory(),
				logger:   o.logger,
			}
			perWorker[i] = w.run(ctx, chunk, func() {
				if err := o.registry.IncrementProgress(jobID); err != nil {
					o.logger.Warn().Str("job_id", jobID).Err(err).Msg("Progress update failed")
				}
			})
		}(i, chunk)
	}
	wg.Wait()

	var merged []models.ResultRecord
	for _, records := range perWorker {
		merged = append(merged, records...)
	}
	return merged
}

func (o *Orchestrator) setStatus(jobID string, status models.JobStatus, message string) {
	o.mutate(jobID, func(job *models.Job) {
		job.Status = status
		job.Message = message
	})
}

func (o *Orchestrator) setMessage(jobID, message string) {
	o.mutate(jobID, func(job *models.Job) {
		job.Message = message
	})
}

func (o *Orchestrator) fail(jobID, message string) {
	o.logger.Error().Str("job_id", jobID).Str("reason", message).Msg("Job failed")
	o.setStatus(jobID, models.JobStatusFailed, message)
}

func (o *Orchestrator) mutate(jobID string, fn func(*models.Job)) {
	if err := o.registry.Mutate(jobID, fn); err != nil {
		o.logger.Warn().Str("job_id", jobID).Err(err).Msg("Job update failed")
	}
}
