package renderer

import (
	"context"
	"fmt"
	"image"
	"runtime"
	"sync"

	"github.com/df07/go-dof-raytracer/pkg/scene"
)

// Pass identifies which half of the frame a tile task runs
type Pass int

const (
	TracePass Pass = iota
	BlurPass
)

// frameJob is the per-frame state shared read-only by every tile task.
// Trace tasks write disjoint tiles of grid; blur tasks write disjoint tiles
// of image.
type frameJob struct {
	ctx   context.Context
	scene *scene.Scene
	grid  *SampleGrid
	image *image.RGBA
	focus FocusState
	blur  BlurConfig
}

// TileTask represents a tile rendering task for the worker pool
type TileTask struct {
	Tile   *Tile
	Pass   Pass
	TaskID int // For deterministic ordering
	job    *frameJob
}

// TileResult contains the result from rendering a tile
type TileResult struct {
	TaskID int
	Hits   int // Trace pass only
	Error  error
}

// WorkerPool manages parallel tile rendering
type WorkerPool struct {
	taskQueue   chan TileTask
	resultQueue chan TileResult
	numWorkers  int
	wg          sync.WaitGroup
	runMu       sync.Mutex // One batch at a time on the shared result queue
	startOnce   sync.Once
	stopOnce    sync.Once
}

// NewWorkerPool creates a worker pool with the specified number of workers
func NewWorkerPool(numWorkers int) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}

	return &WorkerPool{
		taskQueue:   make(chan TileTask, numWorkers),
		resultQueue: make(chan TileResult, numWorkers),
		numWorkers:  numWorkers,
	}
}

// Start begins all workers
func (wp *WorkerPool) Start() {
	wp.startOnce.Do(func() {
		for i := 0; i < wp.numWorkers; i++ {
			wp.wg.Add(1)
			go wp.work()
		}
	})
}

// Stop gracefully shuts down all workers
func (wp *WorkerPool) Stop() {
	wp.stopOnce.Do(func() {
		close(wp.taskQueue) // No more tasks
		wp.wg.Wait()        // Wait for workers to finish
		close(wp.resultQueue)
	})
}

// GetNumWorkers returns the number of workers in the pool
func (wp *WorkerPool) GetNumWorkers() int {
	return wp.numWorkers
}

// Run submits every task and blocks until all results are back, so a
// returned batch is a full barrier. Results are indexed by TaskID.
func (wp *WorkerPool) Run(tasks []TileTask) ([]TileResult, error) {
	wp.runMu.Lock()
	defer wp.runMu.Unlock()

	go func() {
		for _, task := range tasks {
			wp.taskQueue <- task
		}
	}()

	results := make([]TileResult, len(tasks))
	var firstErr error
	for range tasks {
		result, ok := <-wp.resultQueue
		if !ok {
			return nil, fmt.Errorf("worker pool closed unexpectedly")
		}
		if result.Error != nil && firstErr == nil {
			firstErr = result.Error
		}
		results[result.TaskID] = result
	}

	return results, firstErr
}

// work is the main worker loop
func (wp *WorkerPool) work() {
	defer wp.wg.Done()

	for task := range wp.taskQueue {
		wp.resultQueue <- runTask(task)
	}
}

func runTask(task TileTask) TileResult {
	job := task.job
	if err := job.ctx.Err(); err != nil {
		return TileResult{TaskID: task.TaskID, Error: err}
	}

	result := TileResult{TaskID: task.TaskID}
	switch task.Pass {
	case TracePass:
		result.Hits = traceBounds(job.scene, job.grid, task.Tile.Bounds)
	case BlurPass:
		blurBounds(job.grid, job.image, task.Tile.Bounds, job.focus, job.blur)
	default:
		result.Error = fmt.Errorf("unknown pass %d", task.Pass)
	}
	return result
}
