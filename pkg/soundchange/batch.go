package soundchange

import (
	"context"
	"sync"

	pool "github.com/jolestar/go-commons-pool"
)

// Scan states are reused across words; each one carries a scratch buffer for
// building replacements.
type scanStatePool struct {
	opool *pool.ObjectPool
	ctx   context.Context
}

var globalScanPool *scanStatePool

func init() {
	globalScanPool = &scanStatePool{}
	factory := pool.NewPooledObjectFactorySimple(
		func(context.Context) (interface{}, error) {
			return &scanState{}, nil
		})
	globalScanPool.ctx = context.Background()
	config := pool.NewDefaultPoolConfig()
	config.MaxTotal = -1 // infinity
	config.BlockWhenExhausted = false
	globalScanPool.opool = pool.NewObjectPool(globalScanPool.ctx, factory, config)
}

func borrowScanState() *scanState {
	o, err := globalScanPool.opool.BorrowObject(globalScanPool.ctx)
	if err != nil {
		TC().Errorf("scan state pool: %v", err)
		return &scanState{}
	}
	return o.(*scanState)
}

func releaseScanState(st *scanState) {
	st.reset("")
	_ = globalScanPool.opool.ReturnObject(globalScanPool.ctx, st)
}

// BatchOptions control ApplyAll.
type BatchOptions struct {
	Trace   bool // collect a rule trace per word
	Workers int  // words are spread over this many goroutines; <= 1 runs sequentially
}

// ApplyAll runs every word through the engine. Results are in input order.
// ctx is checked between words; when it is cancelled ApplyAll returns the
// results for the longest fully processed prefix of words together with
// ctx.Err().
func (e *Engine) ApplyAll(ctx context.Context, words []string, opts BatchOptions) ([]Result, error) {
	if opts.Workers <= 1 || len(words) < 2 {
		return e.applySequential(ctx, words, opts.Trace)
	}
	return e.applyParallel(ctx, words, opts)
}

func (e *Engine) applySequential(ctx context.Context, words []string, trace bool) ([]Result, error) {
	st := borrowScanState()
	defer releaseScanState(st)
	results := make([]Result, 0, len(words))
	for _, w := range words {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		results = append(results, e.apply(st, w, trace))
	}
	return results, nil
}

func (e *Engine) applyParallel(ctx context.Context, words []string, opts BatchOptions) ([]Result, error) {
	workers := opts.Workers
	if workers > len(words) {
		workers = len(words)
	}
	results := make([]Result, len(words))
	done := make([]bool, len(words))
	chunk := (len(words) + workers - 1) / workers
	var wg sync.WaitGroup
	for from := 0; from < len(words); from += chunk {
		to := min(from+chunk, len(words))
		wg.Add(1)
		go func(from, to int) {
			defer wg.Done()
			st := borrowScanState()
			defer releaseScanState(st)
			for i := from; i < to; i++ {
				if ctx.Err() != nil {
					return
				}
				results[i] = e.apply(st, words[i], opts.Trace)
				done[i] = true
			}
		}(from, to)
	}
	wg.Wait()
	if err := ctx.Err(); err != nil {
		n := 0
		for n < len(done) && done[n] {
			n++
		}
		if n < len(words) {
			return results[:n], err
		}
	}
	TC().P("words", len(words)).Debugf("batch done with %d worker(s)", workers)
	return results, nil
}
