package engine

import (
	"sync"

	"github.com/aristath/salescast/internal/domain"
)

// WorkerPool fans series computation out across a fixed number of
// goroutines. Per-series work is a pure function of the job, so workers
// share nothing and results are collected by index.
type WorkerPool struct {
	numWorkers int
}

// NewWorkerPool creates a pool with the specified number of workers.
func NewWorkerPool(numWorkers int) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = 10
	}
	return &WorkerPool{numWorkers: numWorkers}
}

// ForecastBatch computes every job in parallel and returns the results in
// input order plus the count of series that panicked and were degraded.
func (wp *WorkerPool) ForecastBatch(batch []seriesJob, params computeParams) ([]domain.SeriesResult, int) {
	numJobs := len(batch)
	if numJobs == 0 {
		return []domain.SeriesResult{}, 0
	}

	jobs := make(chan jobItem, numJobs)
	results := make(chan resultItem, numJobs)

	numActualWorkers := wp.numWorkers
	if numJobs < numActualWorkers {
		numActualWorkers = numJobs
	}

	var wg sync.WaitGroup
	for i := 0; i < numActualWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			worker(jobs, results, params)
		}()
	}

	for idx, job := range batch {
		jobs <- jobItem{index: idx, job: job}
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	resultSlice := make([]domain.SeriesResult, numJobs)
	failed := 0
	for item := range results {
		resultSlice[item.index] = item.result
		if item.failed {
			failed++
		}
	}

	return resultSlice, failed
}

// jobItem pairs a job with its position in the batch.
type jobItem struct {
	index int
	job   seriesJob
}

// resultItem is one finished job keyed back to its batch position.
type resultItem struct {
	index  int
	result domain.SeriesResult
	failed bool
}

// worker drains the jobs channel until it is closed.
func worker(jobs <-chan jobItem, results chan<- resultItem, params computeParams) {
	for item := range jobs {
		result, failed := computeSeries(item.job, params)
		results <- resultItem{index: item.index, result: result, failed: failed}
	}
}
