package utils

import (
	"github.com/schollz/progressbar/v3"
	"sync"
)

// TaskOrchestrator bounds the number of goroutines working on a batch of file operations.
type TaskOrchestrator struct {
	bar   *progressbar.ProgressBar
	wg    sync.WaitGroup
	mutex sync.Mutex
	sem   chan int
}

// NewTaskOrchestrator prepares numberOfTasks tasks. bar may be nil when nothing is drawn.
func NewTaskOrchestrator(bar *progressbar.ProgressBar, numberOfTasks int, maxConcurrentOperations int64) *TaskOrchestrator {
	if maxConcurrentOperations < 1 {
		maxConcurrentOperations = 1
	}

	task := TaskOrchestrator{
		bar: bar,
		sem: make(chan int, maxConcurrentOperations),
	}

	task.wg.Add(numberOfTasks)
	return &task
}

func (task *TaskOrchestrator) StartTask() {
	task.sem <- 1
}

func (task *TaskOrchestrator) Lock() {
	task.mutex.Lock()
}

func (task *TaskOrchestrator) Unlock() {
	task.mutex.Unlock()
}

func (task *TaskOrchestrator) FinishTask() {
	if task.bar != nil {
		err := task.bar.Add(1)

		if err != nil {
			logger.Warnf("failed to update progress bar: %v", err)
		}
	}

	<-task.sem
	task.wg.Done()
}

// Go runs fn as one task, waiting for a free slot first.
func (task *TaskOrchestrator) Go(fn func()) {
	task.StartTask()

	go func() {
		defer task.FinishTask()
		fn()
	}()
}

func (task *TaskOrchestrator) WaitForTasks() {
	task.wg.Wait()
}
