package render

import (
	"runtime"
	"sync"
)

// parallelThreshold is the row count below which dispatch overhead
// costs more than the rows themselves; small targets run inline.
const parallelThreshold = 64

// rowChunk represents a band of rows for a worker to process.
type rowChunk struct {
	y0, y1 int
}

// WorkPool runs per-row pixel work across persistent worker goroutines.
// The zero value is not usable; construct with NewWorkPool.
type WorkPool struct {
	numWorkers int

	workChan chan rowChunk // sends work to workers
	doneChan chan struct{} // workers signal completion
	stopChan chan struct{} // signals workers to exit
	wg       sync.WaitGroup
	running  bool

	// job is set before chunks are dispatched and read by workers after
	// receiving a chunk; the channel send orders the accesses.
	job func(y0, y1 int)
}

// NewWorkPool sizes the pool to GOMAXPROCS.
func NewWorkPool() *WorkPool {
	return &WorkPool{numWorkers: runtime.GOMAXPROCS(0)}
}

// start launches persistent worker goroutines.
func (p *WorkPool) start() {
	if p.running {
		return
	}

	p.workChan = make(chan rowChunk, p.numWorkers)
	p.doneChan = make(chan struct{}, p.numWorkers)
	p.stopChan = make(chan struct{})
	p.running = true

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

// Stop signals all workers to exit and waits for them.
func (p *WorkPool) Stop() {
	if !p.running {
		return
	}

	close(p.stopChan)
	p.wg.Wait()
	close(p.workChan)
	close(p.doneChan)
	p.running = false
}

func (p *WorkPool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.stopChan:
			return
		case chunk, ok := <-p.workChan:
			if !ok {
				return
			}
			p.job(chunk.y0, chunk.y1)
			p.doneChan <- struct{}{}
		}
	}
}

// Run executes job over [0, rows), parallel when the row count warrants it.
func (p *WorkPool) Run(rows int, job func(y0, y1 int)) {
	if rows <= 0 {
		return
	}
	if rows < parallelThreshold || p.numWorkers <= 1 {
		job(0, rows)
		return
	}

	if !p.running {
		p.start()
	}
	p.job = job

	chunkSize := (rows + p.numWorkers - 1) / p.numWorkers
	dispatched := 0
	for w := 0; w < p.numWorkers; w++ {
		y0 := w * chunkSize
		y1 := y0 + chunkSize
		if y1 > rows {
			y1 = rows
		}
		if y0 >= y1 {
			continue
		}
		p.workChan <- rowChunk{y0: y0, y1: y1}
		dispatched++
	}

	for i := 0; i < dispatched; i++ {
		<-p.doneChan
	}
	p.job = nil
}
