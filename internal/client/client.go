// Package client owns one station's polling state: the resolved station
// identity, the aggregate store, the converter registry and the consumer
// notifier.
package client

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/i474232898/tianqi-aggregator/internal/convert"
	"github.com/i474232898/tianqi-aggregator/internal/notify"
	"github.com/i474232898/tianqi-aggregator/internal/provider"
	"github.com/i474232898/tianqi-aggregator/internal/store"
)

// Client merges the six facet feeds for one station and propagates decoded
// attribute changes to consumers.
type Client struct {
	log      *slog.Logger
	provider *provider.Client
	station  *provider.Station
	store    *store.AggregateStore
	registry *convert.Registry
	notifier *notify.Notifier
}

// New resolves the station and builds a ready client. Station resolution
// failure is fatal here; scheduled jobs never re-resolve.
func New(ctx context.Context, p *provider.Client, areaID string, log *slog.Logger) (*Client, error) {
	if log == nil {
		log = slog.Default()
	}
	st, err := p.ResolveStation(ctx, areaID, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("resolving station: %w", err)
	}
	log.Info("station resolved", "area", st.AreaID, "name", st.Name, "code", st.Code)

	return &Client{
		log:      log,
		provider: p,
		station:  st,
		store:    store.NewAggregateStore(),
		registry: convert.DefaultRegistry(),
		notifier: notify.NewNotifier(log),
	}, nil
}

func (c *Client) Station() *provider.Station { return c.station }

func (c *Client) Store() *store.AggregateStore { return c.store }

func (c *Client) Registry() *convert.Registry { return c.registry }

func (c *Client) Provider() *provider.Client { return c.provider }

// RegisterConsumer creates (or returns) the consumer for a converter
// attribute. The subscription set is the attribute, its declared children
// and every attribute declaring it as parent.
func (c *Client) RegisterConsumer(attr string, cb notify.Callback) *notify.Consumer {
	return c.notifier.Register(attr, c.registry.SubscribedAttrs(attr), cb)
}

// Decode runs the full converter pass over the current store snapshot.
func (c *Client) Decode() convert.Payload {
	return c.registry.Decode(&convert.Context{
		Snapshot:   c.store.Snapshot(),
		PictureURL: c.provider.AlarmPictureURL,
		Logger:     c.log,
	})
}

// PushState delivers a decoded payload to interested consumers.
func (c *Client) PushState(payload convert.Payload) {
	c.notifier.Notify(payload)
}

// apply merges a fetch outcome into the store under the job's primary
// facet: degraded bodies land in the facet's error key without touching
// the last good value, successes replace their facets and clear the key.
func (c *Client) apply(primary store.Facet, res provider.FetchResult, err error) error {
	if res.DegradedBody != "" {
		c.store.SetErrorText(primary, res.DegradedBody)
		return err
	}
	if err != nil {
		return err
	}
	c.store.ClearErrorText(primary)
	for f, v := range res.Facets {
		c.store.Replace(f, v)
	}
	return nil
}

// UpdateSummary refreshes the current-conditions facet (and the living
// indices riding on the same page) and, on success, runs the decode pass
// and notifies consumers. This is the only update that decodes; derived
// attributes from other facets lag until the next summary tick.
func (c *Client) UpdateSummary(ctx context.Context) error {
	res, err := c.provider.FetchSummary(ctx, c.station.AreaID)
	if err := c.apply(store.FacetCurrent, res, err); err != nil {
		return err
	}
	if _, ok := res.Facets[store.FacetCurrent]; !ok {
		return nil
	}
	c.PushState(c.Decode())
	return nil
}

// UpdateAlarms refreshes the active alarm list.
func (c *Client) UpdateAlarms(ctx context.Context) error {
	res, err := c.provider.FetchAlarms(ctx, c.station.AreaID)
	return c.apply(store.FacetAlarms, res, err)
}

// UpdateDailies refreshes the multi-day forecast facet.
func (c *Client) UpdateDailies(ctx context.Context) error {
	res, err := c.provider.FetchDailies(ctx, c.station.AreaID)
	return c.apply(store.FacetDaily, res, err)
}

// UpdateHourlies refreshes the 180-hour forecast facet.
func (c *Client) UpdateHourlies(ctx context.Context) error {
	res, err := c.provider.FetchHourlies(ctx, c.station.AreaID)
	return c.apply(store.FacetHourly, res, err)
}

// UpdateMinutely refreshes the sub-hourly precipitation facet.
func (c *Client) UpdateMinutely(ctx context.Context) error {
	res, err := c.provider.FetchMinutely(ctx, c.station)
	return c.apply(store.FacetMinutely, res, err)
}

// UpdateObserve refreshes the 24h observation history facet.
func (c *Client) UpdateObserve(ctx context.Context) error {
	res, err := c.provider.FetchObserve(ctx, c.station.AreaID)
	return c.apply(store.FacetObserve, res, err)
}
