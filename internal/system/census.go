package system

import (
	"fmt"

	"github.com/l1jgo/entitypool/internal/core/ecs"
	"github.com/l1jgo/entitypool/internal/core/event"
	"go.uber.org/zap"
)

// NewCensus returns a definition that logs pool, group and system sizes every
// N draw passes.
//
// Options: every (draw passes between reports, default 60).
func NewCensus(opts map[string]any, log *zap.Logger) (*ecs.Definition, error) {
	every := 60
	if v, ok := opts["every"]; ok {
		n, ok := ecs.AsNumber(v)
		if !ok || n < 1 {
			return nil, fmt.Errorf("census: every must be a positive number")
		}
		every = int(n)
	}

	draws := 0
	return &ecs.Definition{
		Name: "census",
		Events: map[string]ecs.Hook{
			event.Draw: func(s *ecs.System, args ...any) {
				draws++
				if draws%every != 0 {
					return
				}
				p := s.Pool()
				fields := []zap.Field{
					zap.Int("entities", p.Len()),
					zap.Int("pending", p.Pending()),
				}
				for _, name := range p.GroupNames() {
					fields = append(fields, zap.Int("group."+name, p.Group(name).Len()))
				}
				for _, sys := range p.Systems() {
					if sys.Name() != "" && sys != s {
						fields = append(fields, zap.Int("system."+sys.Name(), sys.Len()))
					}
				}
				log.Debug("pool census", fields...)
			},
		},
	}, nil
}
