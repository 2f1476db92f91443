// Package teardown removes a pattern from the cluster in strict reverse
// install order, escalating stuck resources and never touching namespaces
// the platform itself depends on.
package teardown

import "strings"

// Classification labels a namespace for teardown purposes.
type Classification int

const (
	// Protected namespaces belong to the platform and are never deleted,
	// regardless of what the pattern configuration claims.
	Protected Classification = iota
	// PatternOwned namespaces were created for the pattern and are
	// deleted with it.
	PatternOwned
)

func (c Classification) String() string {
	if c == Protected {
		return "Protected"
	}
	return "PatternOwned"
}

// The allow-list is fixed at build time. Classification is a pure
// function of the namespace name and is never overridden by runtime
// configuration.
var (
	protectedPrefixes = []string{
		"openshift-",
		"kube-",
		"open-cluster-management",
	}
	protectedNames = map[string]struct{}{
		"default":         {},
		"openshift":       {},
		"platform-system": {},
	}
)

// Classify returns Protected when the namespace matches the platform
// allow-list, PatternOwned otherwise.
func Classify(namespace string) Classification {
	if _, ok := protectedNames[namespace]; ok {
		return Protected
	}
	for _, prefix := range protectedPrefixes {
		if strings.HasPrefix(namespace, prefix) {
			return Protected
		}
	}
	return PatternOwned
}
