// Package engine is the query facade over the period engine.
//
// An Engine resolves a system in its registry, derives the starting
// balance from a reference value and builds a period tree. Each opened
// QueryContext owns its tree and carries a UUIDv7 id that tags every log
// line it emits.
//
// Typical use:
//
//	eng := engine.New(nil, engine.WithLogger(logger))
//	q, err := eng.Open(ctx, engine.Request{
//		System:       system.Vimsottari,
//		Reference:    moonLongitude,
//		Epoch:        birth,
//		HorizonYears: eng.CycleYears(system.Vimsottari),
//	})
//	res, err := q.At(ctx, time.Now(), 2)
//
// Sudarshana composes three contexts (Lagna, Moon and Sun references)
// over one system.
package engine
