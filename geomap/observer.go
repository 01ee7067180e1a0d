// SPDX-License-Identifier: GPL-2.0-or-later

package geomap

import (
	"go.uber.org/zap"

	"qmap/mapfile"
)

// PointEntityFunc is called by New once per point entity after the GeoMap
// is complete. props is a copy.
type PointEntityFunc func(id EntityID, props mapfile.Properties)

type options struct {
	observers []PointEntityFunc
}

// Option configures New.
type Option func(*options)

// WithPointEntityObserver adds f to the observers called by New. A nil f is
// ignored.
func WithPointEntityObserver(f PointEntityFunc) Option {
	return func(o *options) {
		if f != nil {
			o.observers = append(o.observers, f)
		}
	}
}

// LogPointEntities returns an observer listing the point entities on log.
func LogPointEntities(log *zap.SugaredLogger) PointEntityFunc {
	return func(id EntityID, props mapfile.Properties) {
		kv := make([]interface{}, 0, 2*len(props)+2)
		kv = append(kv, "entity", int(id))
		for _, p := range props {
			kv = append(kv, p.Key, p.Value)
		}
		log.Infow("point entity", kv...)
	}
}
