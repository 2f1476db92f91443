package cluster

import (
	"context"

	"k8s.io/apimachinery/pkg/runtime/schema"
)

// SubscriptionState is the install state an OLM subscription reports.
type SubscriptionState string

const (
	// SubscriptionAtLatestKnown is the terminal "installed and current" state.
	SubscriptionAtLatestKnown    SubscriptionState = "AtLatestKnown"
	SubscriptionUpgradePending   SubscriptionState = "UpgradePending"
	SubscriptionUpgradeAvailable SubscriptionState = "UpgradeAvailable"
	SubscriptionUnknown          SubscriptionState = ""
)

// SyncStatus is a sync unit's declared-vs-live comparison result.
type SyncStatus string

const (
	SyncSynced    SyncStatus = "Synced"
	SyncOutOfSync SyncStatus = "OutOfSync"
	SyncUnknown   SyncStatus = "Unknown"
)

// HealthStatus is a sync unit's aggregate health.
type HealthStatus string

const (
	HealthHealthy     HealthStatus = "Healthy"
	HealthProgressing HealthStatus = "Progressing"
	HealthDegraded    HealthStatus = "Degraded"
	HealthMissing     HealthStatus = "Missing"
	HealthUnknown     HealthStatus = "Unknown"
)

// Kind keys the resource kinds the orchestrator may delete or inspect.
type Kind string

const (
	KindNamespace    Kind = "Namespace"
	KindSubscription Kind = "Subscription"
	KindCSV          Kind = "ClusterServiceVersion"
	KindApplication  Kind = "Application"
	KindPattern      Kind = "Pattern"
)

// gvrFor maps each Kind onto its dynamic-client resource coordinates.
var gvrFor = map[Kind]schema.GroupVersionResource{
	KindNamespace:    {Group: "", Version: "v1", Resource: "namespaces"},
	KindSubscription: {Group: "operators.coreos.com", Version: "v1alpha1", Resource: "subscriptions"},
	KindCSV:          {Group: "operators.coreos.com", Version: "v1alpha1", Resource: "clusterserviceversions"},
	KindApplication:  {Group: "argoproj.io", Version: "v1alpha1", Resource: "applications"},
	KindPattern:      {Group: "gitops.hybrid-cloud-patterns.io", Version: "v1alpha1", Resource: "patterns"},
}

// Namespaced reports whether the kind lives inside a namespace.
func (k Kind) Namespaced() bool {
	return k != KindNamespace
}

// Interface is the cluster collaborator contract. Query methods return an
// error only for transport-level failures; "not there" is a normal result.
type Interface interface {
	// SubscriptionExists reports whether the named subscription exists.
	SubscriptionExists(ctx context.Context, name, namespace string) (bool, error)

	// SubscriptionState returns the subscription's reported install state.
	SubscriptionState(ctx context.Context, name, namespace string) (SubscriptionState, error)

	// SubscriptionChannel returns the channel the subscription tracks.
	SubscriptionChannel(ctx context.Context, name, namespace string) (string, error)

	// InstalledCSV returns the name of the CSV a subscription installed,
	// or empty when none is recorded.
	InstalledCSV(ctx context.Context, name, namespace string) (string, error)

	// LocateApplication searches every observable namespace for the named
	// sync unit and returns its namespace if found.
	LocateApplication(ctx context.Context, name string) (string, bool, error)

	// ApplicationHealth returns the sync unit's sync and health status.
	ApplicationHealth(ctx context.Context, name, namespace string) (SyncStatus, HealthStatus, error)

	// ListNamespaces returns every namespace name in the cluster.
	ListNamespaces(ctx context.Context) ([]string, error)

	// PodCount returns the number of pods in a namespace.
	PodCount(ctx context.Context, namespace string) (int, error)

	// Exists reports whether the named resource is still present.
	Exists(ctx context.Context, kind Kind, name, namespace string) (bool, error)

	// Delete issues a non-blocking delete request. A missing resource is
	// not an error.
	Delete(ctx context.Context, kind Kind, name, namespace string) error

	// StripFinalizers clears the resource's finalizer list so a stuck
	// deletion can complete.
	StripFinalizers(ctx context.Context, kind Kind, name, namespace string) error

	// CreateSecret creates or replaces an opaque secret.
	CreateSecret(ctx context.Context, namespace, name string, data map[string][]byte) error
}
