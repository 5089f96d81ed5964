package foreign

import (
	"hilal/internal/object"
	"time"
)

// fnTimeClock returns milliseconds since the Unix epoch.
func fnTimeClock(ctx *object.CallContext, args ...object.Object) (object.Object, error) {
	return &object.Number{Value: float64(time.Now().UnixMilli())}, nil
}
