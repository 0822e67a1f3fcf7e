// Package health serves the probes used by the orchestrator and the on-call
// dashboard. Probes run concurrently under a shared two-second budget.
package health

import (
	"context"
	"net/http"
	"runtime"
	"sync"
	"time"

	"fooddelivery/config"

	"github.com/gin-gonic/gin"
)

const probeBudget = 2 * time.Second

// Checker probes one dependency (database, redis).
type Checker func(ctx context.Context) error

// Gauge reads one number worth watching, such as the outbox backlog. Gauges
// are reported by /health but never fail readiness.
type Gauge func(ctx context.Context) (int64, error)

type Controller struct {
	cfg     *config.Config
	checks  map[string]Checker
	gauges  map[string]Gauge
	started time.Time
}

func NewController(cfg *config.Config, checks map[string]Checker, gauges map[string]Gauge) *Controller {
	return &Controller{cfg: cfg, checks: checks, gauges: gauges, started: time.Now()}
}

func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/health", c.Health)
	router.GET("/health/live", c.Liveness)
	router.GET("/health/ready", c.Readiness)
}

type Report struct {
	Status    string            `json:"status"`
	Version   string            `json:"version"`
	Uptime    string            `json:"uptime"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]Probe  `json:"checks,omitempty"`
	Gauges    map[string]int64  `json:"gauges,omitempty"`
	Runtime   map[string]uint64 `json:"runtime,omitempty"`
}

type Probe struct {
	OK      bool   `json:"ok"`
	Error   string `json:"error,omitempty"`
	Latency string `json:"latency"`
}

// Health reports every probe and gauge; 503 when a probe fails.
func (c *Controller) Health(ctx *gin.Context) {
	probes, healthy := c.probe(ctx.Request.Context())
	report := Report{
		Status:    "healthy",
		Version:   c.cfg.App.Version,
		Uptime:    time.Since(c.started).Round(time.Second).String(),
		Timestamp: time.Now().UTC(),
		Checks:    probes,
		Gauges:    c.readGauges(ctx.Request.Context()),
	}
	if c.cfg.IsDevelopment() {
		var ms runtime.MemStats
		runtime.ReadMemStats(&ms)
		report.Runtime = map[string]uint64{
			"goroutines":      uint64(runtime.NumGoroutine()),
			"heap_alloc":      ms.HeapAlloc,
			"completed_gc":    uint64(ms.NumGC),
			"gomaxprocs":      uint64(runtime.GOMAXPROCS(0)),
			"heap_objects":    ms.HeapObjects,
			"total_allocated": ms.TotalAlloc,
		}
	}

	code := http.StatusOK
	if !healthy {
		report.Status = "unhealthy"
		code = http.StatusServiceUnavailable
	}
	ctx.JSON(code, report)
}

func (c *Controller) Liveness(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "alive"})
}

// Readiness fails while the database or redis is unreachable, so the
// instance stops receiving checkouts.
func (c *Controller) Readiness(ctx *gin.Context) {
	if probes, healthy := c.probe(ctx.Request.Context()); !healthy {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "checks": probes})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"status": "ready"})
}

func (c *Controller) probe(ctx context.Context) (map[string]Probe, bool) {
	ctx, cancel := context.WithTimeout(ctx, probeBudget)
	defer cancel()

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results = make(map[string]Probe, len(c.checks))
		healthy = true
	)
	for name, check := range c.checks {
		wg.Add(1)
		go func(name string, check Checker) {
			defer wg.Done()
			start := time.Now()
			err := check(ctx)
			p := Probe{OK: err == nil, Latency: time.Since(start).String()}
			if err != nil {
				p.Error = err.Error()
			}
			mu.Lock()
			results[name] = p
			healthy = healthy && p.OK
			mu.Unlock()
		}(name, check)
	}
	wg.Wait()
	return results, healthy
}

func (c *Controller) readGauges(ctx context.Context) map[string]int64 {
	if len(c.gauges) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, probeBudget)
	defer cancel()

	out := make(map[string]int64, len(c.gauges))
	for name, read := range c.gauges {
		if v, err := read(ctx); err == nil {
			out[name] = v
		}
	}
	return out
}
