package controller

import (
	"runtime"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"galerium_backend/pkg/database"
)

const apiVersion = "1.0.0"

type HealthController struct {
	db                *gorm.DB
	env               string
	gatewayConfigured bool
	startedAt         time.Time
}

func NewHealthController(db *gorm.DB, env string, gatewayConfigured bool) *HealthController {
	return &HealthController{
		db:                db,
		env:               env,
		gatewayConfigured: gatewayConfigured,
		startedAt:         time.Now(),
	}
}

// Banner answers the root path so load balancers and humans get a quick
// liveness signal.
func (hc *HealthController) Banner(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"message":   "Galerium API up and running",
		"version":   apiVersion,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Health reports dependency status: 200 when the database answers, 503 when
// it does not. The gateway flag only says whether credentials were supplied.
func (hc *HealthController) Health(c *fiber.Ctx) error {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	body := fiber.Map{
		"message":     "OK",
		"version":     apiVersion,
		"environment": hc.env,
		"uptime":      time.Since(hc.startedAt).Seconds(),
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
		"memory": fiber.Map{
			"heap_used_mb":  float64(mem.HeapAlloc) / 1024 / 1024,
			"heap_total_mb": float64(mem.HeapSys) / 1024 / 1024,
		},
		"payment_gateway": configuredLabel(hc.gatewayConfigured),
	}

	if err := database.Ping(hc.db); err != nil {
		body["message"] = "ERROR"
		body["database"] = "Disconnected"
		body["error"] = err.Error()
		return c.Status(fiber.StatusServiceUnavailable).JSON(body)
	}

	body["database"] = "Connected"
	return c.JSON(body)
}

// Metrics is a coarse process snapshot, not a scrape target.
func (hc *HealthController) Metrics(c *fiber.Ctx) error {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	return c.JSON(fiber.Map{
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
		"uptime":     time.Since(hc.startedAt).Seconds(),
		"goroutines": runtime.NumGoroutine(),
		"memory": fiber.Map{
			"heap_alloc":  mem.HeapAlloc,
			"heap_sys":    mem.HeapSys,
			"total_alloc": mem.TotalAlloc,
			"num_gc":      mem.NumGC,
		},
		"go_version": runtime.Version(),
		"platform":   runtime.GOOS,
		"arch":       runtime.GOARCH,
	})
}

func configuredLabel(ok bool) string {
	if ok {
		return "Configured"
	}
	return "Not configured"
}
