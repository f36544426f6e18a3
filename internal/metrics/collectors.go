package metrics

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"atlas/pkg/logger"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
)

// CustomCollector collects gauge metrics from the cache and the artifact
// output directory on every scrape.
type CustomCollector struct {
	log       *logger.Logger
	redis     *redis.Client
	outputDir string

	// Descriptors
	cacheKeys      *prometheus.Desc
	outputFiles    *prometheus.Desc
	outputDirBytes *prometheus.Desc
}

// NewCustomCollector creates a new custom metrics collector
func NewCustomCollector(log *logger.Logger, redis *redis.Client, outputDir string) *CustomCollector {
	return &CustomCollector{
		log:       log,
		redis:     redis,
		outputDir: outputDir,

		cacheKeys: prometheus.NewDesc(
			"atlas_cache_keys",
			"Number of keys currently stored in the cache",
			nil, nil,
		),
		outputFiles: prometheus.NewDesc(
			"atlas_output_files",
			"Number of artifact files in the output directory by extension",
			[]string{"extension"}, nil,
		),
		outputDirBytes: prometheus.NewDesc(
			"atlas_output_dir_bytes",
			"Total size of the output directory in bytes",
			nil, nil,
		),
	}
}

// Describe implements prometheus.Collector
func (c *CustomCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.cacheKeys
	ch <- c.outputFiles
	ch <- c.outputDirBytes
}

// Collect implements prometheus.Collector
func (c *CustomCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c.collectCacheKeys(ctx, ch)
	c.collectOutputStats(ch)
}

func (c *CustomCollector) collectCacheKeys(ctx context.Context, ch chan<- prometheus.Metric) {
	if c.redis == nil {
		return
	}

	count, err := c.redis.DBSize(ctx).Result()
	if err != nil {
		c.log.Error("Failed to collect cache key count", "error", err)
		return
	}

	ch <- prometheus.MustNewConstMetric(
		c.cacheKeys,
		prometheus.GaugeValue,
		float64(count),
	)
}

func (c *CustomCollector) collectOutputStats(ch chan<- prometheus.Metric) {
	if c.outputDir == "" {
		return
	}

	byExt := make(map[string]int)
	var totalBytes int64

	err := filepath.WalkDir(c.outputDir, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		ext := strings.TrimPrefix(filepath.Ext(d.Name()), ".")
		if ext == "" {
			ext = "none"
		}
		byExt[ext]++
		if info, err := d.Info(); err == nil {
			totalBytes += info.Size()
		}
		return nil
	})
	if err != nil {
		c.log.Error("Failed to collect output directory stats", "error", err)
		return
	}

	for ext, count := range byExt {
		ch <- prometheus.MustNewConstMetric(
			c.outputFiles,
			prometheus.GaugeValue,
			float64(count),
			ext,
		)
	}

	ch <- prometheus.MustNewConstMetric(
		c.outputDirBytes,
		prometheus.GaugeValue,
		float64(totalBytes),
	)
}

// RegisterCustomCollector registers the custom collector
func RegisterCustomCollector(collector *CustomCollector) {
	prometheus.MustRegister(collector)
}
