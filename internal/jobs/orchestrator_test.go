package jobs

import (
	"bytes"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/akashstwt/scraper-backend/internal/common"
	"github.com/akashstwt/scraper-backend/internal/excel"
	"github.com/akashstwt/scraper-backend/internal/models"
	"github.com/akashstwt/scraper-backend/internal/registry"
	"github.com/akashstwt/scraper-backend/internal/scrape"
)

type fakeSender struct {
	mu        sync.Mutex
	err       error
	calls     int
	to        string
	workbook  []byte
	codeCount int
}

func (s *fakeSender) SendResults(to string, workbook []byte, codeCount int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.to = to
	s.workbook = workbook
	s.codeCount = codeCount
	return s.err
}

func codesUpload(t *testing.T, codes ...string) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetCellValue("Sheet1", "A1", "OEM_CODE"))
	for i, code := range codes {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		require.NoError(t, err)
		require.NoError(t, f.SetCellValue("Sheet1", cell, code))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func stubFactory(sources ...models.Source) AdapterFactory {
	return func() []scrape.SourceAdapter {
		adapters := make([]scrape.SourceAdapter, 0, len(sources))
		for _, source := range sources {
			adapters = append(adapters, &stubAdapter{source: source})
		}
		return adapters
	}
}

func testOrchestrator(sender *fakeSender, workers int, factory AdapterFactory) (*Orchestrator, *registry.Registry) {
	config := common.DefaultConfig()
	config.Workers.Count = workers
	reg := registry.New()
	return newOrchestrator(reg, sender, config, common.GetLogger(), factory), reg
}

func TestOrchestratorHappyPath(t *testing.T) {
	sender := &fakeSender{}
	o, reg := testOrchestrator(sender, 4, stubFactory(models.SourceHotToner, models.SourceInkStation))

	upload := codesUpload(t, "TN-2450", "915XL", "PG-645")
	jobID, err := o.Submit(upload, "buyer@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, jobID)

	o.Wait()

	job, err := reg.Get(jobID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusCompleted, job.Status)
	assert.Equal(t, "Email sent successfully!", job.Message)
	assert.Equal(t, 3, job.Progress.Total)
	assert.Equal(t, job.Progress.Total, job.Progress.Current)

	assert.Equal(t, 1, sender.calls)
	assert.Equal(t, "buyer@example.com", sender.to)
	assert.Equal(t, 3, sender.codeCount)
	assert.NotEmpty(t, sender.workbook)
}

func TestOrchestratorMergeIsDeterministic(t *testing.T) {
	codes := make([]string, 10)
	for i := range codes {
		codes[i] = fmt.Sprintf("CODE-%02d", i)
	}

	sender := &fakeSender{}
	o, _ := testOrchestrator(sender, 4, stubFactory(models.SourceHotToner, models.SourceInkStation))

	jobID, err := o.Submit(codesUpload(t, codes...), "buyer@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, jobID)
	o.Wait()

	f, err := excelize.OpenReader(bytes.NewReader(sender.workbook))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Price Comparison")
	require.NoError(t, err)
	require.Len(t, rows, 1+len(codes)*2, "one row per (code, source) pair")

	// Rows follow input code order with both sources per code, regardless of
	// which worker handled which chunk
	for i, code := range codes {
		assert.Equal(t, code, rows[1+i*2][0])
		assert.Equal(t, "HotToner", rows[1+i*2][1])
		assert.Equal(t, code, rows[2+i*2][0])
		assert.Equal(t, "InkStation", rows[2+i*2][1])
	}
}

func TestOrchestratorDedupesCodes(t *testing.T) {
	sender := &fakeSender{}
	o, reg := testOrchestrator(sender, 2, stubFactory(models.SourceHotToner))

	jobID, err := o.Submit(codesUpload(t, "A1", "A1", "B2"), "buyer@example.com")
	require.NoError(t, err)
	o.Wait()

	job, err := reg.Get(jobID)
	require.NoError(t, err)
	assert.Equal(t, 2, job.Progress.Total, "duplicates collapse before counting")
	assert.Equal(t, 2, sender.codeCount)

	f, err := excelize.OpenReader(bytes.NewReader(sender.workbook))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Price Comparison")
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestOrchestratorUnreadableFileFailsJob(t *testing.T) {
	sender := &fakeSender{}
	o, reg := testOrchestrator(sender, 2, stubFactory(models.SourceHotToner))

	jobID, err := o.Submit([]byte("not a spreadsheet"), "buyer@example.com")
	require.NoError(t, err, "submission succeeds, parsing happens in the background")
	o.Wait()

	job, err := reg.Get(jobID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusFailed, job.Status)
	assert.Contains(t, job.Message, "Failed to read OEM codes")
	assert.Equal(t, 0, sender.calls)
}

func TestOrchestratorEmptyCodeListFailsJob(t *testing.T) {
	sender := &fakeSender{}
	o, reg := testOrchestrator(sender, 2, stubFactory(models.SourceHotToner))

	jobID, err := o.Submit(codesUpload(t), "buyer@example.com")
	require.NoError(t, err)
	o.Wait()

	job, err := reg.Get(jobID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusFailed, job.Status)
	assert.Equal(t, "No OEM codes found in file", job.Message)
}

func TestOrchestratorMailFailureFailsJob(t *testing.T) {
	sender := &fakeSender{err: fmt.Errorf("smtp refused")}
	o, reg := testOrchestrator(sender, 2, stubFactory(models.SourceHotToner))

	jobID, err := o.Submit(codesUpload(t, "A1"), "buyer@example.com")
	require.NoError(t, err)
	o.Wait()

	job, err := reg.Get(jobID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusFailed, job.Status)
	assert.Contains(t, job.Message, "Failed to send email")
	// Scraping itself succeeded and progress reflects that
	assert.Equal(t, job.Progress.Total, job.Progress.Current)
}

func TestOrchestratorScrapeFaultsDoNotFailJob(t *testing.T) {
	sender := &fakeSender{}
	factory := func() []scrape.SourceAdapter {
		return []scrape.SourceAdapter{&stubAdapter{source: models.SourceHotToner, panicOn: "BAD"}}
	}
	o, reg := testOrchestrator(sender, 1, factory)

	jobID, err := o.Submit(codesUpload(t, "A1", "BAD", "C3"), "buyer@example.com")
	require.NoError(t, err)
	o.Wait()

	job, err := reg.Get(jobID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusCompleted, job.Status)

	f, err := excelize.OpenReader(bytes.NewReader(sender.workbook))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Price Comparison")
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, models.TitleError, rows[2][2])
}

func TestCodesUploadHelper(t *testing.T) {
	// Sanity check that the upload helper produces what ReadCodes expects
	codes, err := excel.ReadCodes(codesUpload(t, "X1", "Y2"))
	require.NoError(t, err)
	assert.Equal(t, []string{"X1", "Y2"}, codes)
}
