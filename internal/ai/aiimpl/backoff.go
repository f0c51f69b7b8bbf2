package aiimpl

import (
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	maxAttempts  = 3
	initialDelay = time.Second
)

// rotationBackOff waits exponentially between attempts, except after a
// throttling answer where the next key is tried right away.
type rotationBackOff struct {
	exp       *backoff.ExponentialBackOff
	immediate bool
}

func newRotationBackOff() *rotationBackOff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = initialDelay
	exp.Multiplier = 2
	exp.RandomizationFactor = 0
	exp.MaxInterval = time.Minute
	exp.MaxElapsedTime = 0

	return &rotationBackOff{exp: exp}
}

func (b *rotationBackOff) NextBackOff() time.Duration {
	d := b.exp.NextBackOff()
	if b.immediate {
		return 0
	}
	return d
}

func (b *rotationBackOff) Reset() {
	b.exp.Reset()
	b.immediate = false
}
