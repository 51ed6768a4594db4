// Profiling:
// go build ./profile/query
// go tool pprof -http=":8000" -nodefraction=0.001 ./query cpu.pprof

package main

import (
	"github.com/TheBitDrifter/depot"
	"github.com/pkg/profile"
)

type comp1 struct {
	V int64
	W int64
}

type comp2 struct {
	V int64
	W int64
}

func main() {
	rounds := 50
	iters := 10000
	entities := 100000
	p := profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook)
	run(rounds, iters, entities)
	p.Stop()
}

func run(rounds, iters, numEntities int) {
	for range rounds {
		schema := depot.Factory.NewSchema()
		c1, _ := depot.RegisterComponent[comp1](schema)
		c2, _ := depot.RegisterComponent[comp2](schema)
		w, _ := depot.Factory.NewWorld(depot.WorldConfig{Schema: schema})

		op := depot.Factory.NewOperation()
		op.CreateEntitiesAndSelect(uint32(numEntities))
		op.AddComponentType(c1.ComponentType)
		op.AddComponentType(c2.ComponentType)
		if err := op.Perform(w); err != nil {
			panic(err)
		}

		cursor := depot.Factory.NewCursor(depot.Factory.NewQuery().With(c1, c2), w)
		for range iters {
			for cursor.Next() {
				a := c1.GetFromCursor(cursor)
				b := c2.GetFromCursor(cursor)
				a.V += b.V
				a.W += b.W
			}
		}
	}
}
