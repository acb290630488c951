package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMultiplicativeWindowMultiplierSemantics(t *testing.T) {
	// m >= 1: [target/m, target*m]
	lo, hi := MultiplicativeWindow(100, 2.5)
	assert.InDelta(t, 40.0, lo, 1e-9)
	assert.InDelta(t, 250.0, hi, 1e-9)
}

func TestMultiplicativeWindowFractionalSemantics(t *testing.T) {
	// m < 1: additive fractional window [target - target*m, target + target*m]
	lo, hi := MultiplicativeWindow(100, 0.1)
	assert.InDelta(t, 90.0, lo, 1e-9)
	assert.InDelta(t, 110.0, hi, 1e-9)
}

func TestMultiplicativeWindowClampsLowEndAtZero(t *testing.T) {
	lo, hi := MultiplicativeWindow(0, 0.5)
	assert.Equal(t, 0.0, lo)
	assert.Equal(t, 0.0, hi)
}

func TestAccuracyWindow(t *testing.T) {
	lo, hi, tol := AccuracyWindow(300, 0.9)
	assert.InDelta(t, 0.1, tol, 1e-9)
	assert.InDelta(t, 270.0, lo, 1e-9)
	assert.InDelta(t, 330.0, hi, 1e-9)
}

func TestAccuracyWindowClampsTolerance(t *testing.T) {
	// accuracy > 1 clamps tol to 0: exact matches only
	lo, hi, tol := AccuracyWindow(100, 1.5)
	assert.Equal(t, 0.0, tol)
	assert.InDelta(t, 100.0, lo, 1e-9)
	assert.InDelta(t, 100.0, hi, 1e-9)

	// accuracy < 0 clamps tol to 1: widest window
	lo, hi, tol = AccuracyWindow(100, -2)
	assert.Equal(t, 1.0, tol)
	assert.InDelta(t, 0.0, lo, 1e-9)
	assert.InDelta(t, 200.0, hi, 1e-9)
}

func TestClosenessScore(t *testing.T) {
	// Exact match scores 1 regardless of tolerance
	assert.InDelta(t, 1.0, closenessScore(300, 300, 0.1), 1e-9)

	// Window edge approaches 0
	assert.InDelta(t, 0.0, closenessScore(330, 300, 0.1), 1e-9)

	// Halfway out scores 0.5
	assert.InDelta(t, 0.5, closenessScore(315, 300, 0.1), 1e-9)
}

func TestSignatureOrderIndependent(t *testing.T) {
	assert.Equal(t, Signature([]string{"b", "a", "c"}), Signature([]string{"c", "b", "a"}))
	assert.Equal(t, "a,b,c", Signature([]string{"b", "a", "c"}))
	assert.Equal(t, "", Signature(nil))
}
