package sim

import (
	"log"
	"math/rand"

	"run-and-leap/server/logging"
)

// Deps carries shared infrastructure dependencies required by the world.
type Deps struct {
	Logger    *log.Logger
	Metrics   *logging.Metrics
	Clock     logging.Clock
	RNG       *rand.Rand
	Publisher logging.Publisher
}

func (d Deps) normalized() Deps {
	if d.Clock == nil {
		d.Clock = logging.SystemClock{}
	}
	if d.Publisher == nil {
		d.Publisher = logging.NopPublisher()
	}
	if d.RNG == nil {
		d.RNG = rand.New(rand.NewSource(1))
	}
	return d
}
