package pipeline

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgallion1/mdattr/internal/attr"
	"github.com/dgallion1/mdattr/internal/doctree"
	"github.com/dgallion1/mdattr/internal/parser"
	"github.com/dgallion1/mdattr/internal/render"
	"github.com/dgallion1/mdattr/internal/stats"
)

// Result is the outcome of rendering one document.
type Result struct {
	Filename    string     `json:"filename"`
	HTML        string     `json:"html"`
	ContentHash string     `json:"content_hash"`
	PolicyHash  string     `json:"policy_hash,omitempty"`
	Attributes  attr.Stats `json:"attributes"`
	DurationMs  int64      `json:"duration_ms"`
}

// Pipeline parses, decorates and renders documents with the current
// attribute policy.
type Pipeline struct {
	mu          sync.RWMutex
	transformer *attr.Transformer
	policyHash  string

	stats *stats.RenderStats
	log   *slog.Logger

	maxConcurrentRender int
}

// New creates a pipeline. A nil transformer uses the default options; a nil
// stats tracker disables recording.
func New(x *attr.Transformer, policyHash string, st *stats.RenderStats, log *slog.Logger, maxConcurrent int) *Pipeline {
	if x == nil {
		x = attr.New()
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &Pipeline{
		transformer:         x,
		policyHash:          policyHash,
		stats:               st,
		log:                 log,
		maxConcurrentRender: maxConcurrent,
	}
}

// SetTransformer swaps the transformer used for subsequent documents.
// Documents already in flight finish with the previous one.
func (p *Pipeline) SetTransformer(x *attr.Transformer, policyHash string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.transformer = x
	p.policyHash = policyHash
}

// PolicyHash returns the hash of the active policy.
func (p *Pipeline) PolicyHash() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.policyHash
}

func (p *Pipeline) current() (*attr.Transformer, string) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.transformer, p.policyHash
}

// Decorate parses data and applies the attribute annotations it contains.
func (p *Pipeline) Decorate(ctx context.Context, filename string, data []byte) (*doctree.Tree, attr.Stats, error) {
	tree, st, _, err := p.decorate(ctx, filename, data)
	return tree, st, err
}

func (p *Pipeline) decorate(ctx context.Context, filename string, data []byte) (*doctree.Tree, attr.Stats, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, attr.Stats{}, "", err
	}

	prs, err := parser.ForFile(filename)
	if err != nil {
		return nil, attr.Stats{}, "", err
	}
	tree, err := prs.Parse(bytes.NewReader(data), filename)
	if err != nil {
		return nil, attr.Stats{}, "", fmt.Errorf("parse %s: %w", filename, err)
	}

	x, policyHash := p.current()
	return tree, x.Transform(tree), policyHash, nil
}

// Render runs the full pipeline for one document.
func (p *Pipeline) Render(ctx context.Context, filename string, data []byte) (*Result, error) {
	log := p.log.With("filename", filename, "bytes", len(data))
	start := time.Now()

	tree, st, policyHash, err := p.decorate(ctx, filename, data)
	if err != nil {
		log.Warn("decorate failed", "error", err)
		return nil, err
	}

	var buf bytes.Buffer
	if err := render.Render(&buf, tree); err != nil {
		log.Error("render failed", "error", err)
		return nil, err
	}

	elapsed := time.Since(start)
	if p.stats != nil {
		p.stats.Record(elapsed, st)
	}
	log.Debug("rendered document",
		"annotations", st.Annotations,
		"applied", st.Applied,
		"rejected", st.Rejected,
		"duration_ms", elapsed.Milliseconds(),
	)

	return &Result{
		Filename:    filename,
		HTML:        buf.String(),
		ContentHash: DocumentHash(data, policyHash),
		PolicyHash:  policyHash,
		Attributes:  st,
		DurationMs:  elapsed.Milliseconds(),
	}, nil
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}

// DocumentHash identifies the rendered output of data under a policy. The
// same source renders differently once the policy changes, so both are
// hashed.
func DocumentHash(data []byte, policyHash string) string {
	if policyHash == "" {
		return ContentHashHex(data)
	}
	buf := make([]byte, 0, len(policyHash)+1+len(data))
	buf = append(buf, policyHash...)
	buf = append(buf, 0)
	buf = append(buf, data...)
	return ContentHashHex(buf)
}
