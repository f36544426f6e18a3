package wikipedia

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"atlas/pkg/logger"
)

const constituentsPage = `<html><body>
<table class="infobox"><tr><th>Founded</th></tr><tr><td>1957</td></tr></table>
<table class="wikitable">
<tbody>
<tr><th>Symbol</th><th>Security</th><th>Sector</th></tr>
<tr><td>AAPL</td><td>Apple Inc.</td><td>Information Technology</td></tr>
<tr><td>MSFT</td><td>Microsoft</td><td>Information Technology</td></tr>
<tr><td>JNJ</td><td>Johnson &amp; Johnson</td><td>Health Care</td></tr>
</tbody>
</table>
</body></html>`

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	if err := logger.Init("error", "test"); err != nil {
		t.Fatalf("failed to init logger: %v", err)
	}
	return logger.Get()
}

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := NewClient(testLogger(t))
	client.baseURL = srv.URL
	client.httpClient = srv.Client()
	return client
}

func TestNormalizeIndex(t *testing.T) {
	cases := map[string]string{
		"S&P 500":    "SP500",
		"sp-500":     "SP500",
		"Nasdaq-100": "NASDAQ100",
		"ftse_100":   "FTSE100",
		"Dow Jones":  "DOWJONES",
	}
	for in, want := range cases {
		if got := NormalizeIndex(in); got != want {
			t.Errorf("NormalizeIndex(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestConstituentsScrapesSymbolColumn(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, constituentsPage)
	}))

	symbols, err := client.Constituents(context.Background(), "SP500")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"AAPL", "MSFT", "JNJ"}
	if len(symbols) != len(want) {
		t.Fatalf("got %d symbols, want %d", len(symbols), len(want))
	}
	for i := range want {
		if symbols[i] != want[i] {
			t.Errorf("symbols[%d] = %q, want %q", i, symbols[i], want[i])
		}
	}
}

func TestConstituentsFTSEAppendsSuffix(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<html><body><table>
<tr><th>Company</th><th>Ticker</th></tr>
<tr><td>Shell</td><td>SHEL</td></tr>
<tr><td>AstraZeneca</td><td>AZN</td></tr>
</table></body></html>`)
	}))

	symbols, err := client.Constituents(context.Background(), "FTSE 100")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(symbols) != 2 || symbols[0] != "SHEL.L" || symbols[1] != "AZN.L" {
		t.Fatalf("unexpected symbols: %v", symbols)
	}
}

func TestConstituentsDowJonesIsStatic(t *testing.T) {
	client := NewClient(testLogger(t))

	symbols, err := client.Constituents(context.Background(), "Dow Jones")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(symbols) != 30 {
		t.Errorf("got %d symbols, want 30", len(symbols))
	}
}

func TestConstituentsUnknownIndex(t *testing.T) {
	client := NewClient(testLogger(t))

	if _, err := client.Constituents(context.Background(), "CAC 40"); err == nil {
		t.Fatal("expected error for unsupported index")
	}
}
