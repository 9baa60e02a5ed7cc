// Package convert maps raw provider fields from the aggregate store to
// normalized output attributes. Converters are registered once at startup;
// each owns exactly one output attribute and may emit sibling attributes as
// an atomic group.
package convert

import (
	"log/slog"
	"time"

	"github.com/i474232898/tianqi-aggregator/internal/store"
)

// Payload is one decode pass's output: attribute name to value. It is
// ephemeral and discarded after notification.
type Payload map[string]any

// Enablement controls whether a consumer for the attribute is set up by
// default. It never affects decoding.
type Enablement int

const (
	Enabled Enablement = iota
	Disabled
	Lazy
)

// Spec is a converter's static registration-time definition.
type Spec struct {
	// Attr is the output attribute name, unique across the registry.
	Attr string
	// Facet the source value is read from.
	Facet store.Facet
	// Prop is the source field within the facet, defaulting to Attr.
	Prop string
	// WholeFacet converters receive the facet's entire value (lists,
	// whole records) instead of a single field.
	WholeFacet bool
	// Parent links this attribute to a composite attribute it belongs to.
	Parent string
	// Children are attributes always notified together with this one.
	Children []string
	// WholeSnapshot converters synthesize from multiple facets and receive
	// the entire store snapshot instead of a single facet value.
	WholeSnapshot bool

	Enablement Enablement
	// Option is opaque display metadata (units, icon, device class) passed
	// through unchanged to consumers.
	Option map[string]any
}

// Context carries per-pass inputs shared by all converters.
type Context struct {
	// Snapshot of the aggregate store the pass decodes.
	Snapshot map[string]any
	// PictureURL renders an alarm picture URL for a warning code. Optional.
	PictureURL func(code string) string
	// Now is the pass's clock, overridable in tests.
	Now func() time.Time

	Logger *slog.Logger
}

func (c *Context) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

// Facet returns a facet value from the snapshot as an object.
func (c *Context) Facet(f store.Facet) map[string]any {
	m, _ := c.Snapshot[string(f)].(map[string]any)
	return m
}

// Converter is the capability interface all converter variants implement.
// The set of variants is closed: passthrough, numeric-with-unit,
// composite/derived and list-aggregate.
type Converter interface {
	Spec() Spec
	// Decode transforms value and writes one or more payload keys.
	Decode(ctx *Context, payload Payload, value any) error
}

// Registry is the ordered set of named converters. Insertion order is kept
// so decode output is deterministic.
type Registry struct {
	order []string
	convs map[string]Converter
}

func NewRegistry() *Registry {
	return &Registry{convs: make(map[string]Converter)}
}

// Add registers converters keyed by attribute name. Re-registering an
// attribute replaces the converter in place.
func (r *Registry) Add(convs ...Converter) {
	for _, conv := range convs {
		attr := conv.Spec().Attr
		if _, ok := r.convs[attr]; !ok {
			r.order = append(r.order, attr)
		}
		r.convs[attr] = conv
	}
}

// Get looks up a converter by attribute name.
func (r *Registry) Get(attr string) (Converter, bool) {
	c, ok := r.convs[attr]
	return c, ok
}

// All returns the converters in registration order.
func (r *Registry) All() []Converter {
	out := make([]Converter, 0, len(r.order))
	for _, attr := range r.order {
		out = append(out, r.convs[attr])
	}
	return out
}

// SubscribedAttrs computes the attribute set a consumer for attr cares
// about: the attribute itself, its declared children, and every attribute
// whose declared parent is attr.
func (r *Registry) SubscribedAttrs(attr string) map[string]struct{} {
	attrs := map[string]struct{}{attr: {}}
	conv, ok := r.convs[attr]
	if !ok {
		return attrs
	}
	for _, child := range conv.Spec().Children {
		attrs[child] = struct{}{}
	}
	for _, other := range r.convs {
		if other.Spec().Parent == attr {
			attrs[other.Spec().Attr] = struct{}{}
		}
	}
	return attrs
}

// Decode runs the full converter pass over a store snapshot. Converters
// whose source facet or field is absent are skipped; a converter error is
// contained to that converter.
func (r *Registry) Decode(ctx *Context) Payload {
	payload := Payload{}
	for _, attr := range r.order {
		conv := r.convs[attr]
		sp := conv.Spec()

		var value any
		if sp.WholeSnapshot {
			value = ctx.Snapshot
		} else {
			facetVal, ok := ctx.Snapshot[string(sp.Facet)]
			if !ok {
				continue
			}
			if sp.WholeFacet {
				value = facetVal
			} else {
				prop := sp.Prop
				if prop == "" {
					prop = sp.Attr
				}
				m, ok := facetVal.(map[string]any)
				if !ok {
					continue
				}
				if value, ok = m[prop]; !ok {
					continue
				}
			}
		}

		if err := conv.Decode(ctx, payload, value); err != nil {
			if ctx.Logger != nil {
				ctx.Logger.Warn("converter failed", "attr", sp.Attr, "error", err)
			}
		}
	}
	return payload
}
