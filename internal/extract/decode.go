package extract

import (
	"context"

	"github.com/jonathan/hiring-coach/internal/logger"
	"github.com/jonathan/hiring-coach/internal/schemas"
)

// Decode is Extract for pipeline stages: a parse failure is logged and the
// fallback returned, and a parsed object that does not satisfy the shape's
// schema is logged as a degraded record.
func Decode[T any](ctx context.Context, raw string, shape Shape[T]) T {
	log := logger.Ctx(ctx)

	rec, err := Parse(raw, shape)
	if err != nil {
		log.Warn().Err(err).Str("shape", shape.Name).Int("response_length", len(raw)).
			Msg("using fallback record")
		return rec
	}

	if obj, ok := FindObject(raw); ok {
		if err := schemas.Check(shape.Name, []byte(obj)); err != nil {
			log.Warn().Err(err).Str("shape", shape.Name).Msg("incomplete record, defaults applied")
		}
	}
	return rec
}
