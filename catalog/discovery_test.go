package catalog

import (
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"

	"github.com/aluiziolira/go-scrape-lcsc/config"
)

const indexHTML = `<html><body>
<nav>
	<a href="/category/308.html">Capacitors</a>
	<a href="/category/312.html">Resistors</a>
	<a href="/category/308.html">Capacitors (menu repeat)</a>
	<a href="/category/439.html">View All Connectors</a>
	<a href="/category/574.html">Transistors</a>
	<a href="/about.html">About us</a>
	<a href="/category/999.html"></a>
</nav>
</body></html>`

func discoveryConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.IndexURL = "http://example.test/products.html"
	return cfg
}

func TestDiscoverParsesCategoryLinks(t *testing.T) {
	transport := httpmock.NewMockTransport()
	transport.RegisterResponder(http.MethodGet, "http://example.test/products.html",
		httpmock.NewStringResponder(http.StatusOK, indexHTML))

	d := NewDiscoverer(discoveryConfig())
	d.WithTransport(transport)

	categories, err := d.Discover()
	if err != nil {
		t.Fatalf("discover: %v", err)
	}

	if len(categories) != 3 {
		t.Fatalf("categories = %d, want 3: %+v", len(categories), categories)
	}

	want := []Category{
		{ID: 308, Name: "Capacitors"},
		{ID: 312, Name: "Resistors"},
		{ID: 574, Name: "Transistors"},
	}
	for i, w := range want {
		got := categories[i]
		if got.ID != w.ID || got.Name != w.Name {
			t.Fatalf("category %d = %+v, want id %d name %q", i, got, w.ID, w.Name)
		}
		if got.URL == "" {
			t.Fatalf("category %d has empty URL", i)
		}
	}
}

func TestDiscoverIndexUnreachable(t *testing.T) {
	transport := httpmock.NewMockTransport()
	transport.RegisterResponder(http.MethodGet, "http://example.test/products.html",
		httpmock.NewStringResponder(http.StatusInternalServerError, ""))

	d := NewDiscoverer(discoveryConfig())
	d.WithTransport(transport)

	if _, err := d.Discover(); err == nil {
		t.Fatal("expected error for unreachable index")
	}
}

func TestFilterRange(t *testing.T) {
	categories := []Category{
		{ID: 100, Name: "a"},
		{ID: 250, Name: "b"},
		{ID: 300, Name: "c"},
		{ID: 450, Name: "d"},
	}

	got := FilterRange(categories, 250, 300)
	if len(got) != 2 || got[0].ID != 250 || got[1].ID != 300 {
		t.Fatalf("filtered = %+v, want IDs 250 and 300", got)
	}

	if empty := FilterRange(categories, 500, 600); len(empty) != 0 {
		t.Fatalf("filtered = %+v, want none", empty)
	}
}
