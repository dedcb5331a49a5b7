package supervisor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGuard_ConsumeSucceedsWithMatchingToken(t *testing.T) {
	g := NewGuard()
	token := g.Begin("health_scan")

	assert.True(t, g.Consume("health_scan", token))
}

func TestGuard_ConsumeFailsAfterNewerBegin(t *testing.T) {
	g := NewGuard()
	staleToken := g.Begin("health_scan")

	// A second run starts before the first finishes (e.g. the first
	// timed out), invalidating the stale token.
	g.Begin("health_scan")

	assert.False(t, g.Consume("health_scan", staleToken), "a stale token must not consume a newer run's marker")
}

func TestGuard_ConsumeIsOneShot(t *testing.T) {
	g := NewGuard()
	token := g.Begin("health_scan")

	assert.True(t, g.Consume("health_scan", token))
	assert.False(t, g.Consume("health_scan", token), "consuming twice with the same token must fail")
}

func TestGuard_KeysAreIndependent(t *testing.T) {
	g := NewGuard()
	tokenA := g.Begin("a")
	tokenB := g.Begin("b")

	assert.True(t, g.Consume("a", tokenA))
	assert.True(t, g.Consume("b", tokenB))
}
