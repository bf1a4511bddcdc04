// render.go - top-level orchestration wiring catalog, geometry, dedup,
// ring buffer, aggregator and post-process together.
//
// One coordinator (this goroutine) + N worker goroutines for rendering,
// plus a dedicated aggregator goroutine. Workers share no mutable state
// except the ring buffer and status array; the aggregator holds the
// only mutable borrow of the composition image during render.

package main

import (
	"math"
	"sync"
)

// RenderDeps bundles the precomputed tables a render needs (blackbody
// RGB table, Airy PSF maps): callers build these once via
// colortables.go and pass them in.
type RenderDeps struct {
	ColorTable []RGB // indexed by clipped integer temperature
	AiryMaps   *AiryMaps
}

// Render runs one full render: catalog -> geometry/projection -> dedup
// -> ring buffer -> aggregator -> post-process. It returns the final
// linear-light composition image (after post-process); the pixel
// sequencer is left to the caller.
func Render(cfg *Config, shards *ShardSet, deps *RenderDeps) (*Image, error) {
	img := NewImage(cfg.CameraResX, cfg.CameraResY)

	workerCount := cfg.NumThreads
	if workerCount < 1 {
		workerCount = 1
	}
	// Thread count for the status array: N workers + 1 aggregator.
	status := NewStatusArray(workerCount + 1)
	aggregatorIdx := workerCount
	coord := NewCoordinator(status)

	ring := NewRingBuffer(workerCount, cfg.PerThreadBufferSize)

	proj := NewProjector(cfg.CameraProjection, cfg.CameraResX, cfg.CameraResY, cfg.CameraFOVDeg, cfg.SphericalOrientation, cfg.MollweideIterations)
	cam := Vec3{X: cfg.CameraICRS_X, Y: cfg.CameraICRS_Y, Z: cfg.CameraICRS_Z}
	target := Vec3{X: cfg.TargetICRS_X, Y: cfg.TargetICRS_Y, Z: cfg.TargetICRS_Z}
	rot := TargetRotation(cam, target, cfg.CameraRotationDeg, cfg.CameraPanDeg, cfg.CameraTiltDeg)

	agg := NewAggregator(ring, img, status, workerCount, aggregatorIdx)
	aggErrCh := make(chan error, 1)
	go func() {
		aggErrCh <- agg.Run()
	}()

	// Table/map construction (the actual init-phase work) already ran
	// in the caller before Render was invoked; nothing here runs
	// concurrently during init, so the coordinator advances directly.
	coord.Advance(PhaseRenderBegin)

	var wg sync.WaitGroup
	workerErrs := make([]error, workerCount)
	for w := 0; w < workerCount; w++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			workerErrs[idx] = renderWorker(idx, workerCount, cfg, shards, proj, rot, deps, ring, status)
		}(w)
	}
	wg.Wait()

	var firstWorkerErr error
	for _, err := range workerErrs {
		if err != nil && firstWorkerErr == nil {
			firstWorkerErr = err
		}
	}

	if err := <-aggErrCh; err != nil {
		return nil, err
	}
	if firstWorkerErr != nil {
		return nil, firstWorkerErr
	}

	// All workers and the aggregator have reported render-complete;
	// the barrier's precondition is already satisfied, so the
	// coordinator can advance straight to post-process.
	coord.Advance(PhasePostBegin)

	ToneLimit(img, cfg.CameraPixelLimitMag, cfg.CameraGamma, cfg.CameraPixelLimitMode)

	if cfg.GaussianBlurRadius > 0 {
		if err := GaussianBlur(img, cfg.GaussianBlurRadius, workerCount); err != nil {
			return nil, err
		}
	}

	if cfg.OutputScalingFactor != 1.0 {
		resized, err := LanczosResize(img, cfg.OutputScalingFactor, cfg.LanczosOrder, workerCount)
		if err != nil {
			return nil, err
		}
		img = resized
	}

	coord.Advance(PhasePostComplete)
	return img, nil
}

// renderWorker processes this worker's byte range of every shard:
// gate, rotate, project, splat through its own dedup cache into its own
// ring-buffer section.
func renderWorker(workerIdx, workerCount int, cfg *Config, shards *ShardSet, proj *Projector, rot Quaternion, deps *RenderDeps, ring *RingBuffer, status *StatusArray) error {
	writer := ring.WorkerSection(workerIdx)
	aliveCheck := func() bool { return !status.AnyFailed() }

	cache := newDedupCache(cfg.PerThreadBufferSize, cfg.CameraResX, cfg.CameraResY, func(offset int, r, g, b float64) {
		writer.Push(offset, r, g, b, aliveCheck)
	})

	img := &Image{Width: cfg.CameraResX, Height: cfg.CameraResY} // for InBounds/offset only; no Pix needed here
	submit := Submitter(cache.Submit)

	// aliveCheck costs a scan over every thread's status cell; polling it
	// once per star would dominate the hot loop, so it is checked in
	// batches instead.
	const aliveCheckInterval = 4096
	for _, shard := range shards.Shards {
		start, count := shard.WorkerRange(workerIdx, workerCount)
		for i := start; i < start+count; i++ {
			rec := shard.Record(i)
			processStar(rec, cfg, proj, rot, deps, img, submit)
			if (i-start)%aliveCheckInterval == 0 && !aliveCheck() {
				status.Set(workerIdx, PhaseWorkerFailed)
				return newError(ErrWorker, "worker %d: aborted, coordinator or aggregator reported failure", workerIdx)
			}
		}
	}
	cache.Flush()

	status.Set(workerIdx, PhaseRenderComplete)
	return nil
}

// processStar applies the distance/color gates, rotates and projects
// one star, then splats its contribution if in bounds.
func processStar(rec StarRecord, cfg *Config, proj *Projector, rot Quaternion, deps *RenderDeps, img *Image, submit Submitter) {
	gateDist := math.Sqrt(starGateDistanceSquared(rec, cfg))
	if cfg.RenderDistanceMin > 0 && gateDist < cfg.RenderDistanceMin {
		return
	}
	if cfg.RenderDistanceMax > 0 && gateDist > cfg.RenderDistanceMax {
		return
	}

	temp := rec.TempApparent
	intensity := rec.IntensityApparent
	if cfg.UseDereddenedColor {
		temp = rec.TempDereddened
		intensity = rec.IntensityDereddened
	}
	if float64(temp) < cfg.StarColorMin || float64(temp) > cfg.StarColorMax {
		return
	}

	// Translate into the camera frame before rotating: the star record
	// carries heliocentric ICRS coordinates, the camera may sit anywhere.
	relX := rec.X - cfg.CameraICRS_X
	relY := rec.Y - cfg.CameraICRS_Y
	relZ := rec.Z - cfg.CameraICRS_Z
	r2 := relX*relX + relY*relY + relZ*relZ
	if r2 == 0 {
		return
	}

	v := Rotate(rot, Vec3{X: relX, Y: relY, Z: relZ})
	u, vv, ok := proj.Project(v)
	if !ok {
		return
	}
	px, py := int(u), int(vv)
	if px < 0 || px >= proj.Width || py < 0 || py >= proj.Height {
		return
	}

	linearIntensity := float64(intensity) / r2

	var color RGB
	if deps != nil && len(deps.ColorTable) > int(temp) {
		color = deps.ColorTable[temp]
	} else {
		color = RGB{R: 1, G: 1, B: 1}
	}

	SplatStar(img, u, vv, linearIntensity, color, cfg, deps.airyMapsOrNil(), submit)
}

// starGateDistanceSquared returns the squared distance from the
// configured gate origin (camera or target, per render_distance_selector).
func starGateDistanceSquared(rec StarRecord, cfg *Config) float64 {
	var ox, oy, oz float64
	if cfg.RenderDistanceSelector == 1 {
		ox, oy, oz = cfg.TargetICRS_X, cfg.TargetICRS_Y, cfg.TargetICRS_Z
	} else {
		ox, oy, oz = cfg.CameraICRS_X, cfg.CameraICRS_Y, cfg.CameraICRS_Z
	}
	dx, dy, dz := rec.X-ox, rec.Y-oy, rec.Z-oz
	return dx*dx + dy*dy + dz*dz
}

func (d *RenderDeps) airyMapsOrNil() *AiryMaps {
	if d == nil {
		return nil
	}
	return d.AiryMaps
}
