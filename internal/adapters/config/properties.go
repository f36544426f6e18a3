package config

import (
	"bufio"
	"os"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"atlas/pkg/errors"
)

var nonWordChars = regexp.MustCompile(`\W+`)

// Properties is a Java-style properties file cache.
// Keys are normalized by stripping non-word characters, so "loop.iterations"
// and "loopIterations" resolve to the same entry.
type Properties struct {
	values map[string]string
	mu     sync.RWMutex
}

// LoadProperties parses a properties file into a cache.
// Lines starting with '#' or '!' are comments; '=' and ':' both separate keys
// from values.
func LoadProperties(path string) (*Properties, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open properties file %s", path)
	}
	defer f.Close()

	p := &Properties{values: make(map[string]string)}

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "!") {
			continue
		}

		sep := strings.IndexAny(line, "=:")
		if sep < 0 {
			continue
		}

		key := normalizeKey(line[:sep])
		value := strings.TrimSpace(line[sep+1:])
		p.values[key] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "read properties file %s", path)
	}

	return p, nil
}

// NewProperties builds an empty cache, useful when no properties file exists.
func NewProperties() *Properties {
	return &Properties{values: make(map[string]string)}
}

// Get returns the value for a key, or the default when absent.
// An environment variable with the same (unnormalized) name wins over the file.
func (p *Properties) Get(key, def string) string {
	if env := os.Getenv(key); env != "" {
		return env
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	if v, ok := p.values[normalizeKey(key)]; ok {
		return v
	}
	return def
}

// GetBool interprets "1", "true", "yes" and "on" (any case) as true.
func (p *Properties) GetBool(key string, def bool) bool {
	v := p.Get(key, "")
	if v == "" {
		return def
	}
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

// GetInt returns the value parsed as int, or the default on absence or parse failure.
func (p *Properties) GetInt(key string, def int) int {
	v := p.Get(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// GetFloat returns the value parsed as float64, or the default on absence or parse failure.
func (p *Properties) GetFloat(key string, def float64) float64 {
	v := p.Get(key, "")
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

// Set overrides a value in the cache.
func (p *Properties) Set(key, value string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.values[normalizeKey(key)] = value
}

func normalizeKey(key string) string {
	return nonWordChars.ReplaceAllString(strings.TrimSpace(key), "")
}
