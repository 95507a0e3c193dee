package preview

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"mocap-retarget/internal/logging"
	"mocap-retarget/internal/retarget"
)

// Config holds the shared settings for a preview run.
type Config struct {
	OutputDir string
	Format    Format
	View      View
	Workers   int
}

// Job is one segment to draw.
type Job struct {
	Name   string // file name without extension
	Frames []retarget.FrameOutput
}

// Result holds the outcome of drawing one job.
type Result struct {
	Name    string
	File    string
	Success bool
	Error   string
}

// progressInterval is how often Run logs throughput.
var progressInterval = 2 * time.Second

// Run draws all jobs using a worker pool. Jobs not yet started when ctx is
// cancelled are reported as failed with ctx's error.
func Run(ctx context.Context, cfg Config, jobs []Job) []Result {
	total := len(jobs)
	results := make([]Result, total)
	if total == 0 {
		return results
	}
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	var processed atomic.Int64
	start := time.Now()

	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(progressInterval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if p := processed.Load(); p > 0 {
					rate := float64(p) / time.Since(start).Seconds()
					logging.Info("preview progress", "done", p, "total", total, "per_sec", fmt.Sprintf("%.1f", rate))
				}
			}
		}
	}()

	jobChan := make(chan int, workers*2)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobChan {
				if err := ctx.Err(); err != nil {
					results[idx] = Result{Name: jobs[idx].Name, Error: err.Error()}
				} else {
					results[idx] = processJob(cfg, jobs[idx])
				}
				processed.Add(1)
			}
		}()
	}

	for i := range jobs {
		jobChan <- i
	}
	close(jobChan)

	wg.Wait()
	close(done)

	return results
}

func processJob(cfg Config, job Job) Result {
	file := job.Name + cfg.Format.Ext()
	res := Result{Name: job.Name, File: file}

	img := RenderSegment(job.Frames, cfg.View)

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		res.Error = err.Error()
		return res
	}
	f, err := os.Create(filepath.Join(cfg.OutputDir, file))
	if err != nil {
		res.Error = err.Error()
		return res
	}
	if err := Encode(f, img, cfg.Format); err != nil {
		f.Close()
		res.Error = err.Error()
		return res
	}
	if err := f.Close(); err != nil {
		res.Error = err.Error()
		return res
	}

	res.Success = true
	return res
}

// Failed counts unsuccessful results.
func Failed(results []Result) int {
	n := 0
	for _, r := range results {
		if !r.Success {
			n++
		}
	}
	return n
}
