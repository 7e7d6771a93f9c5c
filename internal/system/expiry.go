package system

import (
	"fmt"

	"github.com/l1jgo/entitypool/internal/core/ecs"
	"github.com/l1jgo/entitypool/internal/core/event"
	"go.uber.org/zap"
)

// NewExpiry returns a definition that counts a lifetime attribute down by the
// update dt and removes entities whose lifetime ran out.
//
// Options: key (attribute name, default "ttl").
func NewExpiry(opts map[string]any, log *zap.Logger) (*ecs.Definition, error) {
	key := "ttl"
	if v, ok := opts["key"]; ok {
		s, ok := v.(string)
		if !ok || s == "" {
			return nil, fmt.Errorf("expiry: key must be a non-empty string")
		}
		key = s
	}

	expired := make(map[*ecs.Entity]struct{})
	return &ecs.Definition{
		Name:   "expiry",
		Filter: ecs.RequireKeys(key),
		Events: map[string]ecs.Hook{
			event.Update: func(s *ecs.System, args ...any) {
				dt := 0.0
				if len(args) > 0 {
					dt, _ = ecs.AsNumber(args[0])
				}
				for _, e := range s.Entities() {
					left, ok := e.Number(key)
					if !ok {
						continue
					}
					left -= dt
					e.Set(key, left)
					if left <= 0 {
						expired[e] = struct{}{}
					}
				}
				if len(expired) == 0 {
					return
				}
				s.Pool().Remove(func(e *ecs.Entity) bool {
					_, ok := expired[e]
					return ok
				})
				log.Debug("entities expired", zap.Int("count", len(expired)))
				clear(expired)
			},
		},
	}, nil
}
