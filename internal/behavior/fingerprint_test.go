package behavior

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeError_StripsHighEntropySubstrings(t *testing.T) {
	a := NormalizeError(`open "/home/alice/tmp1234/x.go": no such file at line 42, ref a3f9c21d`)
	b := NormalizeError(`open "/home/bob/tmp9999/y.go": no such file at line 7, ref feedface99`)
	assert.Equal(t, a, b, "two occurrences of the same failure shape must normalize identically")
}

func TestNormalizeError_PreservesStableText(t *testing.T) {
	got := NormalizeError("connection refused")
	assert.Equal(t, "connection refused", got)
}

func TestFingerprint_ScopedByTool(t *testing.T) {
	norm := NormalizeError("connection refused")
	a := Fingerprint("go test", norm)
	b := Fingerprint("npm test", norm)
	assert.NotEqual(t, a, b, "the same message from different tools must not collide")
}

func TestFingerprint_Deterministic(t *testing.T) {
	norm := NormalizeError("connection refused")
	a := Fingerprint("go test", norm)
	b := Fingerprint("go test", norm)
	assert.Equal(t, a, b)
}

func TestDedupKey_FoldsCaseAndApostrophes(t *testing.T) {
	assert.Equal(t, DedupKey("Don't retry"), DedupKey("dont retry"))
}

func TestDedupKey_CollapsesPunctuationAndWhitespace(t *testing.T) {
	assert.Equal(t, "always run tests before committing", DedupKey("Always run tests, before committing!!"))
}

func TestDedupKey_Empty(t *testing.T) {
	assert.Equal(t, "", DedupKey("   ...,,,   "))
}
