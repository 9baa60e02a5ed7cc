package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/tianqi-aggregator/internal/convert"
	"github.com/i474232898/tianqi-aggregator/internal/provider"
	"github.com/i474232898/tianqi-aggregator/internal/store"
)

type stubClient struct {
	station *provider.Station
	store   *store.AggregateStore
	payload convert.Payload
}

func (s *stubClient) Station() *provider.Station { return s.station }

func (s *stubClient) Store() *store.AggregateStore { return s.store }

func (s *stubClient) Decode() convert.Payload { return s.payload }

type stubSearcher struct {
	areas map[string]string
	err   error
}

func (s *stubSearcher) SearchAreas(context.Context, string) (map[string]string, error) {
	return s.areas, s.err
}

func newTestApp(client *stubClient, searcher *stubSearcher) *fiber.App {
	app := fiber.New()
	RegisterRoutes(app, client, searcher)
	return app
}

func newStubClient() *stubClient {
	return &stubClient{
		station: &provider.Station{AreaID: "101010100", Name: "北京", Code: "beijing"},
		store:   store.NewAggregateStore(),
		payload: convert.Payload{"temperature": 23.5, "condition": "sunny"},
	}
}

func TestFacetEndpoint(t *testing.T) {
	client := newStubClient()
	client.store.Replace(store.FacetCurrent, map[string]any{"temp": "23.45"})
	app := newTestApp(client, &stubSearcher{})

	// Unknown facet names are rejected.
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/facets/bogus", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, resp.StatusCode)
	}

	// A facet never refreshed yields 404.
	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/facets/alarms", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, resp.StatusCode)
	}

	// A refreshed facet serves its stored value.
	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/facets/current", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	var body map[string]any
	decodeBody(t, resp.Body, &body)
	if body["facet"] != "current" {
		t.Fatalf("unexpected body: %v", body)
	}
	if _, ok := body["error_text"]; ok {
		t.Fatal("healthy facet must not carry error_text")
	}
}

func TestFacetEndpointExposesErrorText(t *testing.T) {
	client := newStubClient()
	client.store.Replace(store.FacetCurrent, map[string]any{"temp": "23.45"})
	client.store.SetErrorText(store.FacetCurrent, "<html>502</html>")
	app := newTestApp(client, &stubSearcher{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/facets/current", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var body map[string]any
	decodeBody(t, resp.Body, &body)
	if body["error_text"] != "<html>502</html>" {
		t.Fatalf("expected degraded body, got %v", body)
	}
	// the last good value stays visible alongside the error
	if body["value"] == nil {
		t.Fatal("last good value must survive a degraded refresh")
	}
}

func TestAttributesEndpoint(t *testing.T) {
	app := newTestApp(newStubClient(), &stubSearcher{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/attributes", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var body map[string]any
	decodeBody(t, resp.Body, &body)
	if body["temperature"] != 23.5 || body["condition"] != "sunny" {
		t.Fatalf("unexpected payload: %v", body)
	}
}

func TestStationEndpoint(t *testing.T) {
	app := newTestApp(newStubClient(), &stubSearcher{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/station", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var body map[string]any
	decodeBody(t, resp.Body, &body)
	if body["areaid"] != "101010100" || body["code"] != "beijing" {
		t.Fatalf("unexpected station: %v", body)
	}
}

func TestAreaSearchValidation(t *testing.T) {
	app := newTestApp(newStubClient(), &stubSearcher{areas: map[string]string{"101010100": "北京-北京"}})

	// Missing name parameter should return 400.
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/areas/search", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, resp.StatusCode)
	}

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/areas/search?name=%E5%8C%97%E4%BA%AC", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
}

func TestAreaSearchUpstreamFailure(t *testing.T) {
	app := newTestApp(newStubClient(), &stubSearcher{err: errors.New("circuit open")})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/areas/search?name=x", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected status %d, got %d", http.StatusBadGateway, resp.StatusCode)
	}
}

func decodeBody(t *testing.T, r io.ReadCloser, dst any) {
	t.Helper()
	defer r.Close()
	if err := json.NewDecoder(r).Decode(dst); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
}
