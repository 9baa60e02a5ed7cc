package client

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/i474232898/tianqi-aggregator/internal/convert"
	"github.com/i474232898/tianqi-aggregator/internal/provider"
	"github.com/i474232898/tianqi-aggregator/internal/store"
)

type rtFunc func(*http.Request) (*http.Response, error)

func (f rtFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func respond(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{},
	}
}

const stationBody = `{"location": {"lat": 39.9, "lng": 116.4},
 "data": {"station": {"areaid": "101010100", "namecn": "北京", "nameen": "beijing"}}}`

const summaryBody = `<script>
var dataSK = {
 "temp": "23.45",
 "sd": "45%",
 "wse": "12km/h",
 "WD": "北风",
 "wde": "N",
 "WS": "3级",
 "weathercode": "d00",
 "weather": "晴"
};
var dataZS = {"zs": {"ct_name": "穿衣", "ct_des_s": "舒适"}};
</script>`

// newTestClient builds a client whose transport answers station lookups
// and then serves the given summary response.
func newTestClient(t *testing.T, summaryStatus int, summaryBody string) *Client {
	t.Helper()
	p, err := provider.New(provider.Options{Domain: "weather.example.cn"})
	if err != nil {
		t.Fatalf("provider: %v", err)
	}
	p.SetTransport(rtFunc(func(r *http.Request) (*http.Response, error) {
		if strings.Contains(r.URL.Path, "geong") {
			return respond(http.StatusOK, stationBody), nil
		}
		return respond(summaryStatus, summaryBody), nil
	}))

	c, err := New(context.Background(), p, "101010100", nil)
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	return c
}

func TestUpdateSummaryDecodesAndNotifies(t *testing.T) {
	c := newTestClient(t, http.StatusOK, summaryBody)

	var got convert.Payload
	c.RegisterConsumer("temperature", func(p convert.Payload) { got = p })

	if err := c.UpdateSummary(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, ok := c.Store().Get(store.FacetCurrent); !ok {
		t.Fatal("current facet missing after successful update")
	}
	if _, ok := c.Store().ErrorText(store.FacetCurrent); ok {
		t.Fatal("error key must be cleared on success")
	}
	if got == nil {
		t.Fatal("temperature consumer should have been notified")
	}
	if got["temperature"] != 23.5 {
		t.Fatalf("expected decoded temperature 23.5, got %v", got["temperature"])
	}
	// the full payload arrives, including attributes outside the subscription
	if got["condition"] != "sunny" {
		t.Fatalf("expected full payload, got %v", got)
	}
}

func TestUpdateSummaryDegradedKeepsPreviousValue(t *testing.T) {
	c := newTestClient(t, http.StatusOK, summaryBody)
	if err := c.UpdateSummary(context.Background()); err != nil {
		t.Fatalf("first update: %v", err)
	}

	notified := 0
	c.RegisterConsumer("temperature", func(convert.Payload) { notified++ })

	c.Provider().SetTransport(rtFunc(func(*http.Request) (*http.Response, error) {
		return respond(http.StatusBadGateway, "<html>502</html>"), nil
	}))
	if err := c.UpdateSummary(context.Background()); err != nil {
		t.Fatalf("degraded update must not error: %v", err)
	}

	text, ok := c.Store().ErrorText(store.FacetCurrent)
	if !ok || text != "<html>502</html>" {
		t.Fatalf("expected raw body in error key, got %q", text)
	}
	if v, ok := c.Store().Get(store.FacetCurrent); !ok || v.(map[string]any)["temp"] != "23.45" {
		t.Fatal("previous facet value must survive a degraded refresh")
	}
	if notified != 0 {
		t.Fatal("degraded refresh must not decode or notify")
	}
}

func TestRegistryCreateLookupDestroy(t *testing.T) {
	r := NewRegistry()
	c := newTestClient(t, http.StatusOK, summaryBody)

	built, err := r.Create("entry-1", func() (*Client, error) { return c, nil })
	if err != nil || built != c {
		t.Fatalf("create failed: %v", err)
	}
	again, err := r.Create("entry-1", func() (*Client, error) {
		t.Fatal("existing entry must not rebuild")
		return nil, nil
	})
	if err != nil || again != c {
		t.Fatal("create should return the existing client")
	}

	if _, ok := r.Lookup("entry-1"); !ok {
		t.Fatal("lookup failed")
	}
	r.Destroy("entry-1")
	if _, ok := r.Lookup("entry-1"); ok {
		t.Fatal("destroy failed")
	}
}
