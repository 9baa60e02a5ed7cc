package httpapi

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/tianqi-aggregator/internal/convert"
	"github.com/i474232898/tianqi-aggregator/internal/provider"
	"github.com/i474232898/tianqi-aggregator/internal/store"
)

var validate = validator.New()

// StationClient is the slice of the polling client the HTTP surface needs.
type StationClient interface {
	Station() *provider.Station
	Store() *store.AggregateStore
	Decode() convert.Payload
}

// AreaSearcher runs the free-text area lookup backing the search endpoint.
type AreaSearcher interface {
	SearchAreas(ctx context.Context, name string) (map[string]string, error)
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, client StationClient, searcher AreaSearcher) {
	v1 := app.Group("/api/v1")

	v1.Get("/station", func(c *fiber.Ctx) error {
		st := client.Station()
		return c.JSON(fiber.Map{
			"areaid": st.AreaID,
			"name":   st.Name,
			"code":   st.DisplayCode(),
			"lat":    st.Latitude,
			"lng":    st.Longitude,
		})
	})

	// attributes runs a full decode pass over the current snapshot, the
	// same payload scheduled refreshes push to consumers.
	v1.Get("/attributes", func(c *fiber.Ctx) error {
		return c.JSON(client.Decode())
	})

	v1.Get("/facets/:facet", func(c *fiber.Ctx) error {
		facet := store.Facet(c.Params("facet"))
		if !knownFacet(facet) {
			return fiber.NewError(fiber.StatusBadRequest, "unknown facet")
		}

		value, ok := client.Store().Get(facet)
		errText, degraded := client.Store().ErrorText(facet)
		if !ok && !degraded {
			return fiber.NewError(fiber.StatusNotFound, "facet not refreshed yet")
		}

		resp := fiber.Map{"facet": facet, "value": value}
		if degraded {
			resp["error_text"] = errText
		}
		return c.JSON(resp)
	})

	v1.Get("/areas/search", func(c *fiber.Ctx) error {
		req := searchQuery{Name: c.Query("name")}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		areas, err := searcher.SearchAreas(c.Context(), req.Name)
		if err != nil {
			return fiber.NewError(fiber.StatusBadGateway, "area search failed")
		}
		return c.JSON(fiber.Map{"areas": areas})
	})
}

// searchQuery holds query parameters for the area search endpoint.
type searchQuery struct {
	Name string `validate:"required,min=1"`
}

func knownFacet(f store.Facet) bool {
	for _, known := range store.Facets {
		if f == known {
			return true
		}
	}
	return false
}
