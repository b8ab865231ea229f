package game

import (
	"runtime"
	"sync"

	"github.com/pthm-cable/gridlife/neural"
	"github.com/pthm-cable/gridlife/systems"
)

// parallelThreshold is the minimum agent count to use parallel processing.
// Below this, single-threaded is faster due to goroutine overhead.
const parallelThreshold = 64

// workChunk represents a range of batch slots for a worker to process.
type workChunk struct {
	start, end int
}

// parallelState holds the per-tick decision batch and the sensing worker pool.
// Each worker writes only the slots and agents in its own chunk.
type parallelState struct {
	agents   []Agent
	slots    []neural.Slot
	features []float64 // backing store for every slot's feature row
	ema      systems.DeathEMA

	numWorkers int

	// Worker pool channels
	workChan chan workChunk // sends work to workers
	doneChan chan struct{}  // workers signal completion
	stopChan chan struct{}  // signals workers to exit
	wg       sync.WaitGroup // tracks active workers
	running  bool           // true if workers are running
}

func newParallelState() *parallelState {
	return &parallelState{
		numWorkers: runtime.GOMAXPROCS(0),
		agents:     make([]Agent, 0, 512),
		slots:      make([]neural.Slot, 0, 512),
	}
}

// reset sizes the batch for n agents with feature rows of width fw.
func (p *parallelState) reset(n, fw int) {
	p.agents = p.agents[:0]
	if cap(p.slots) < n {
		p.slots = make([]neural.Slot, n)
	}
	p.slots = p.slots[:n]
	if cap(p.features) < n*fw {
		p.features = make([]float64, n*fw)
	}
	p.features = p.features[:n*fw]
	for i := range p.slots {
		p.slots[i] = neural.Slot{Features: p.features[i*fw : (i+1)*fw : (i+1)*fw]}
	}
}

// startWorkers launches persistent worker goroutines.
func (p *parallelState) startWorkers(g *Game) {
	if p.running {
		return
	}

	p.workChan = make(chan workChunk, p.numWorkers)
	p.doneChan = make(chan struct{}, p.numWorkers)
	p.stopChan = make(chan struct{})
	p.running = true

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker(g)
	}
}

// stopWorkers signals all workers to exit and waits for them.
func (p *parallelState) stopWorkers() {
	if !p.running {
		return
	}

	close(p.stopChan)
	p.wg.Wait()
	close(p.workChan)
	close(p.doneChan)
	p.running = false
}

// worker runs in a goroutine, processing chunks until stopped.
func (p *parallelState) worker(g *Game) {
	defer p.wg.Done()

	for {
		select {
		case <-p.stopChan:
			return
		case chunk, ok := <-p.workChan:
			if !ok {
				return
			}
			g.senseChunk(chunk.start, chunk.end)
			p.doneChan <- struct{}{}
		}
	}
}

// buildBatch senses and encodes every live agent into the decision batch.
// The spatial index and food set are read-only while this runs.
func (g *Game) buildBatch() []neural.Slot {
	p := g.parallel

	n := 0
	for i := 0; i < g.pop.Len(); i++ {
		if g.pop.at(i).State.Alive() {
			n++
		}
	}
	p.reset(n, g.encoder.Width())
	if n == 0 {
		return p.slots
	}

	for i := 0; i < g.pop.Len(); i++ {
		a := g.pop.at(i)
		if !a.State.Alive() {
			continue
		}
		p.slots[len(p.agents)].Memory = a.Memory
		p.agents = append(p.agents, a)
	}
	p.ema = g.balancer.EMA()

	if n < parallelThreshold {
		g.senseChunk(0, n)
	} else {
		g.senseParallel(n)
	}
	return p.slots
}

// senseParallel dispatches work to the worker pool.
func (g *Game) senseParallel(n int) {
	p := g.parallel
	if !p.running {
		p.startWorkers(g)
	}

	chunkSize := (n + p.numWorkers - 1) / p.numWorkers

	chunksDispatched := 0
	for w := 0; w < p.numWorkers; w++ {
		start := w * chunkSize
		end := min(start+chunkSize, n)
		if start >= end {
			continue
		}
		p.workChan <- workChunk{start: start, end: end}
		chunksDispatched++
	}

	for i := 0; i < chunksDispatched; i++ {
		<-p.doneChan
	}
}

// senseChunk computes senses and features for batch slots [i0, i1).
func (g *Game) senseChunk(i0, i1 int) {
	p := g.parallel
	for i := i0; i < i1; i++ {
		a := p.agents[i]
		systems.Sense(a.Senses, a.State, a.Genome, g.index, g.food)
		g.encoder.Encode(p.slots[i].Features, a.Senses, a.State, a.Genome, a.Memory, p.ema)
	}
}

// stopParallelWorkers should be called when shutting down the game.
func (g *Game) stopParallelWorkers() {
	if g.parallel != nil {
		g.parallel.stopWorkers()
	}
}
