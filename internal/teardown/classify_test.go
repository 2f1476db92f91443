package teardown

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify_Protected(t *testing.T) {
	t.Parallel()
	protected := []string{
		"openshift-operators",
		"openshift-gitops",
		"openshift-",
		"kube-system",
		"kube-public",
		"open-cluster-management",
		"open-cluster-management-hub",
		"default",
		"openshift",
		"platform-system",
	}
	for _, ns := range protected {
		assert.Equal(t, Protected, Classify(ns), ns)
	}
}

func TestClassify_PatternOwned(t *testing.T) {
	t.Parallel()
	owned := []string{
		"vault",
		"qtodo",
		"golang-external-secrets",
		"openshiftlike", // prefix requires the dash
		"kubernetes",
		"platform",
		"my-default",
	}
	for _, ns := range owned {
		assert.Equal(t, PatternOwned, Classify(ns), ns)
	}
}

func TestClassify_RandomizedNames(t *testing.T) {
	t.Parallel()
	// Property: classification depends only on the fixed allow-list.
	// Random names are protected exactly when they carry a protected
	// prefix or exact name.
	r := rand.New(rand.NewSource(1))
	letters := "abcdefghijklmnopqrstuvwxyz-"
	for i := 0; i < 500; i++ {
		n := 1 + r.Intn(24)
		b := make([]byte, n)
		for j := range b {
			b[j] = letters[r.Intn(len(letters))]
		}
		ns := string(b)

		want := PatternOwned
		if _, ok := protectedNames[ns]; ok {
			want = Protected
		}
		for _, prefix := range protectedPrefixes {
			if strings.HasPrefix(ns, prefix) {
				want = Protected
			}
		}
		assert.Equal(t, want, Classify(ns), ns)
	}
}

func TestClassification_String(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "Protected", Protected.String())
	assert.Equal(t, "PatternOwned", PatternOwned.String())
}
