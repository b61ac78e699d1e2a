// Package resolve provides product image resolution orchestration.
// It coordinates machine selection, a waterfall of image sources,
// download and validation of image bytes, asset storage, and
// provenance updates.
package resolve

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/prodimg"
	"golang.org/x/sync/errgroup"
)

// Resolver orchestrates image resolution for catalog machines.
type Resolver struct {
	Machines prodimg.MachineService
	Fetcher  prodimg.Fetcher
	Assets   prodimg.AssetStore
	Sources  []prodimg.SourceResolver
	Logger   *slog.Logger
}

// Options control machine selection for a run.
type Options struct {
	Filter prodimg.MachineFilter

	// RebuildMissing selects machines whose recorded asset file is gone
	// from disk.
	RebuildMissing bool

	// RefreshBad selects machines whose current image URL fails the
	// product-image quality filter. Accepted candidates replace stored
	// provenance instead of filling gaps.
	RefreshBad bool

	// Force selects every matched machine regardless of state.
	Force bool

	// Reset clears all recorded paths and deletes stored asset files
	// before the run.
	Reset bool
}

// Summary holds the outcome of a run.
type Summary struct {
	Selected    int
	Resolved    int
	NoCandidate int
	Failed      int
	Skipped     int
}

// ProgressEvent reports progress during a run.
type ProgressEvent struct {
	Type      ProgressType
	Completed int
	Total     int
	MachineID int64
	Label     string
	Source    string
	Error     error
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressStarted ProgressType = iota
	ProgressResolved
	ProgressNoCandidate
	ProgressFailed
	ProgressFinished
)

// ProgressFunc is a callback for reporting run progress.
type ProgressFunc func(event ProgressEvent)

type outcome int

const (
	outcomeResolved outcome = iota
	outcomeNoCandidate
	outcomeFailed
)

// machineResult holds the outcome of processing a single machine.
type machineResult struct {
	machine *prodimg.Machine
	outcome outcome
	source  string
	err     error
}

// ResolveAll selects machines per the options, runs the source waterfall
// for each selected machine concurrently, and returns aggregate counts.
// The progress callback, if provided, receives events as machines finish.
//
// All selected machines are launched together; the fetcher's own
// concurrency cap provides the backpressure.
func (r *Resolver) ResolveAll(ctx context.Context, opts Options, progress ProgressFunc) (*Summary, error) {
	if opts.Reset {
		if err := r.Machines.ClearAssets(ctx); err != nil {
			return nil, fmt.Errorf("clear assets: %w", err)
		}
		if err := r.Assets.RemoveAll(); err != nil {
			return nil, fmt.Errorf("remove stored assets: %w", err)
		}
		r.log().Info("cleared all stored assets and recorded paths")
	}

	machines, err := r.Machines.FindMachines(ctx, opts.Filter)
	if err != nil {
		return nil, fmt.Errorf("find machines: %w", err)
	}

	summary := &Summary{}
	var selected []*prodimg.Machine
	for _, m := range machines {
		if r.needsWork(m, opts) {
			selected = append(selected, m)
		} else {
			summary.Skipped++
		}
	}
	summary.Selected = len(selected)

	total := len(selected)
	if progress != nil {
		progress(ProgressEvent{Type: ProgressStarted, Total: total})
	}
	if total == 0 {
		return summary, nil
	}

	replace := opts.Force || opts.RefreshBad

	resultCh := make(chan machineResult, total)
	var completed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	for _, m := range selected {
		m := m
		g.Go(func() error {
			out, source, err := r.resolveMachine(gctx, m, replace)
			resultCh <- machineResult{machine: m, outcome: out, source: source, err: err}
			return nil
		})
	}
	go func() {
		_ = g.Wait()
		close(resultCh)
	}()

	for res := range resultCh {
		completed.Add(1)
		event := ProgressEvent{
			Completed: int(completed.Load()),
			Total:     total,
			MachineID: res.machine.ID,
			Label:     res.machine.Label(),
			Source:    res.source,
			Error:     res.err,
		}
		switch res.outcome {
		case outcomeResolved:
			summary.Resolved++
			event.Type = ProgressResolved
		case outcomeNoCandidate:
			summary.NoCandidate++
			event.Type = ProgressNoCandidate
		case outcomeFailed:
			summary.Failed++
			event.Type = ProgressFailed
			r.log().Error("machine failed", "machine", res.machine.Label(), "id", res.machine.ID, "err", res.err)
		}
		if progress != nil {
			progress(event)
		}
	}

	if progress != nil {
		progress(ProgressEvent{Type: ProgressFinished, Completed: total, Total: total})
	}

	return summary, nil
}

// needsWork decides whether a machine is selected under the run options.
func (r *Resolver) needsWork(m *prodimg.Machine, opts Options) bool {
	if opts.Force {
		return true
	}
	if m.LocalImagePath == "" {
		return true
	}
	if opts.RebuildMissing && !r.Assets.Exists(m.LocalImagePath) {
		return true
	}
	if opts.RefreshBad && !prodimg.IsProductImageURL(m.ImageURL) {
		return true
	}
	return false
}

// resolveMachine walks the source waterfall for one machine. The first
// candidate whose image downloads and validates wins; candidates carrying
// only identifiers still get their provenance recorded before the walk
// continues. A panic in any step marks the machine failed without taking
// down the run.
func (r *Resolver) resolveMachine(ctx context.Context, m *prodimg.Machine, replace bool) (out outcome, source string, err error) {
	defer func() {
		if p := recover(); p != nil {
			out = outcomeFailed
			source = ""
			err = prodimg.Errorf(prodimg.EINTERNAL, "panic resolving machine %d: %v", m.ID, p)
		}
	}()

	for _, src := range r.Sources {
		if ctx.Err() != nil {
			return outcomeFailed, src.Name(), ctx.Err()
		}

		cand, rerr := src.Resolve(ctx, m)
		if rerr != nil {
			switch prodimg.ErrorCode(rerr) {
			case prodimg.ENOTFOUND:
				continue
			case prodimg.EUNAVAILABLE:
				r.log().Warn("source unavailable", "source", src.Name(), "machine", m.Label(), "err", rerr)
				continue
			default:
				return outcomeFailed, src.Name(), rerr
			}
		}

		if cand.ImageURL == "" {
			if rerr := r.recordProvenance(ctx, m, cand, replace); rerr != nil {
				return outcomeFailed, src.Name(), rerr
			}
			continue
		}

		data, ferr := r.Fetcher.FetchBytes(ctx, cand.ImageURL)
		if ferr != nil {
			if prodimg.ErrorCode(ferr) == prodimg.EINTERNAL {
				return outcomeFailed, src.Name(), ferr
			}
			r.log().Warn("image download failed", "source", src.Name(), "machine", m.Label(), "url", cand.ImageURL, "err", ferr)
			continue
		}

		if verr := prodimg.ValidateImage(data); verr != nil {
			r.log().Info("image rejected", "source", src.Name(), "machine", m.Label(), "url", cand.ImageURL, "reason", prodimg.ErrorMessage(verr))
			continue
		}

		relPath, serr := r.Assets.Save(ctx, m.ID, data)
		if serr != nil {
			return outcomeFailed, src.Name(), serr
		}

		hash := fmt.Sprintf("%x", xxhash.Sum64(data))
		upd := prodimg.AssetUpdate{
			ImageURL:       &cand.ImageURL,
			ImageHash:      &hash,
			LocalImagePath: &relPath,
			Replace:        replace,
		}
		if cand.DetailURL != "" {
			upd.ProductURL = &cand.DetailURL
		}
		if cand.ASIN != "" {
			upd.ASIN = &cand.ASIN
		}
		if uerr := r.Machines.RecordAsset(ctx, m.ID, upd); uerr != nil {
			return outcomeFailed, src.Name(), uerr
		}

		r.log().Info("image resolved", "source", src.Name(), "machine", m.Label(), "path", relPath)
		return outcomeResolved, src.Name(), nil
	}

	return outcomeNoCandidate, "", nil
}

// recordProvenance persists identifiers from an image-less candidate and
// mirrors them onto the in-memory machine so later waterfall steps can
// use them. Each machine is owned by a single goroutine, so the mutation
// is race-free.
func (r *Resolver) recordProvenance(ctx context.Context, m *prodimg.Machine, cand *prodimg.Candidate, replace bool) error {
	upd := prodimg.AssetUpdate{Replace: replace}
	if cand.DetailURL != "" {
		upd.ProductURL = &cand.DetailURL
		if m.ProductURL == "" || replace {
			m.ProductURL = cand.DetailURL
		}
	}
	if cand.ASIN != "" {
		upd.ASIN = &cand.ASIN
		if m.ASIN == "" || replace {
			m.ASIN = cand.ASIN
		}
	}
	if upd.ProductURL == nil && upd.ASIN == nil {
		return nil
	}
	return r.Machines.RecordAsset(ctx, m.ID, upd)
}

func (r *Resolver) log() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
