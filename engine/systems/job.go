package systems

import (
	"errors"
	"fmt"
	"sync"

	"github.com/spaghettifunk/anima-ui/engine/core"
	"github.com/spaghettifunk/anima-ui/engine/renderer/metadata"
)

type JobSystem struct {
	numWorkers int
	jobQueue   chan metadata.JobTask
	wg         sync.WaitGroup

	mutex  sync.RWMutex
	closed bool
}

var (
	ErrNoWorkers           = errors.New("attempting to create worker pool with less than 1 worker")
	ErrNegativeChannelSize = errors.New("attempting to create worker pool with a negative channel size")
	ErrJobSystemClosed     = errors.New("job system is shut down")
)

func NewJobSystem(numWorkers int, channelSize int) (*JobSystem, error) {
	if numWorkers <= 0 {
		return nil, ErrNoWorkers
	}
	if channelSize < 0 {
		return nil, ErrNegativeChannelSize
	}

	js := &JobSystem{
		numWorkers: numWorkers,
		jobQueue:   make(chan metadata.JobTask, channelSize),
	}

	js.start()

	return js, nil
}

func (js *JobSystem) start() {
	for i := 0; i < js.numWorkers; i++ {
		js.wg.Add(1)
		go func() {
			defer js.wg.Done()
			for job := range js.jobQueue {
				js.run(job)
			}
		}()
	}
}

func (js *JobSystem) run(job metadata.JobTask) {
	result, err := job.OnStart(job.InputParams)
	if err != nil {
		core.LogError("job failed: %s", err)
		if job.OnFailure != nil {
			job.OnFailure(err)
		}
		return
	}
	if job.OnComplete != nil {
		job.OnComplete(result)
	}
}

/**
 * @brief Shuts the job system down. Jobs already queued are run to the end.
 */
func (js *JobSystem) Shutdown() error {
	js.mutex.Lock()
	if js.closed {
		js.mutex.Unlock()
		return nil
	}
	js.closed = true
	close(js.jobQueue)
	js.mutex.Unlock()

	js.wg.Wait()
	return nil
}

/**
 * @brief Submits the provided job to be queued for execution. Blocks while the queue is full.
 * @param jt The description of the job to be executed.
 */
func (js *JobSystem) Submit(jt metadata.JobTask) error {
	if jt.OnStart == nil {
		return fmt.Errorf("submit job: OnStart is required")
	}
	js.mutex.RLock()
	defer js.mutex.RUnlock()
	if js.closed {
		return ErrJobSystemClosed
	}
	js.jobQueue <- jt
	return nil
}
