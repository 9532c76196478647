package pipeline

import (
	"context"
)

// Input is one document of a batch.
type Input struct {
	Filename string
	Data     []byte
}

// BatchResult pairs a document with its result or error.
type BatchResult struct {
	Filename string
	Result   *Result
	Err      error
}

// RenderBatch renders inputs with bounded concurrency. Results come back in
// input order; one failing document does not stop the others.
func (p *Pipeline) RenderBatch(ctx context.Context, inputs []Input) []BatchResult {
	log := p.log.With("documents", len(inputs))

	type docResult struct {
		res *Result
		err error
		idx int
	}
	results := make(chan docResult, len(inputs))
	sem := make(chan struct{}, p.maxConcurrentRender)

	launched := 0
	out := make([]BatchResult, len(inputs))
	for i, in := range inputs {
		out[i].Filename = in.Filename
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			out[i].Err = ctx.Err()
			continue
		}
		launched++
		go func(i int, in Input) {
			defer func() { <-sem }()
			res, err := p.Render(ctx, in.Filename, in.Data)
			results <- docResult{res: res, err: err, idx: i}
		}(i, in)
	}

	failed := 0
	for range launched {
		r := <-results
		out[r.idx].Result = r.res
		out[r.idx].Err = r.err
		if r.err != nil {
			failed++
		}
	}

	log.Info("batch rendered", "launched", launched, "failed", failed)
	return out
}
