package finance

import (
	"fmt"
	"math"
)

// tradingDays is the annualization factor for daily data.
const tradingDays = 252

var sqrtTradingDays = math.Sqrt(tradingDays)

// --- argument coercion ---

func argString(args map[string]interface{}, key string) string {
	s, _ := args[key].(string)
	return s
}

func argStringDefault(args map[string]interface{}, key, def string) string {
	if s := argString(args, key); s != "" {
		return s
	}
	return def
}

func argFloat(args map[string]interface{}, key string) (float64, bool) {
	switch v := args[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	}
	return 0, false
}

func argIntDefault(args map[string]interface{}, key string, def int) int {
	if f, ok := argFloat(args, key); ok {
		return int(f)
	}
	return def
}

func argStringSlice(args map[string]interface{}, key string) []string {
	raw, ok := args[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}

func errResult(format string, a ...interface{}) map[string]interface{} {
	return map[string]interface{}{"error": fmt.Sprintf(format, a...)}
}

// --- statistics ---

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// stdSample is the sample standard deviation (ddof=1).
func stdSample(xs []float64) float64 {
	if len(xs) < 2 {
		return math.NaN()
	}
	m := mean(xs)
	var ss float64
	for _, x := range xs {
		d := x - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(xs)-1))
}

// slope is the least-squares regression slope of y on x.
func slope(x, y []float64) float64 {
	n := len(x)
	if n == 0 || n != len(y) {
		return math.NaN()
	}
	mx, my := mean(x), mean(y)
	var cov, varX float64
	for i := 0; i < n; i++ {
		cov += (x[i] - mx) * (y[i] - my)
		varX += (x[i] - mx) * (x[i] - mx)
	}
	if varX == 0 {
		return math.NaN()
	}
	return cov / varX
}

// correlation is the Pearson correlation of two equal-length samples.
func correlation(x, y []float64) float64 {
	n := len(x)
	if n < 2 || n != len(y) {
		return math.NaN()
	}
	mx, my := mean(x), mean(y)
	var cov, vx, vy float64
	for i := 0; i < n; i++ {
		cov += (x[i] - mx) * (y[i] - my)
		vx += (x[i] - mx) * (x[i] - mx)
		vy += (y[i] - my) * (y[i] - my)
	}
	if vx == 0 || vy == 0 {
		return math.NaN()
	}
	return cov / math.Sqrt(vx*vy)
}

// annualizedReturn compounds a total return over n daily observations.
func annualizedReturn(totalReturn float64, observations int) float64 {
	years := float64(observations) / tradingDays
	if years <= 0 {
		return 0
	}
	return math.Pow(1+totalReturn, 1/years) - 1
}

func round(v float64, places int) float64 {
	factor := math.Pow(10, float64(places))
	return math.Round(v*factor) / factor
}

// alignTail truncates both slices to their common tail length.
func alignTail(a, b []float64) ([]float64, []float64) {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	return a[len(a)-n:], b[len(b)-n:]
}
