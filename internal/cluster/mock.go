package cluster

import (
	"context"
	"sync"
)

// DeleteCall records one delete or finalizer-strip request issued against
// the mock.
type DeleteCall struct {
	Kind      Kind
	Name      string
	Namespace string
}

// Mock is a mock implementation of Interface. Behavior is overridden per
// test through the *Func fields; unset funcs fall back to empty-cluster
// answers. Mutating calls are always recorded.
type Mock struct {
	SubscriptionExistsFunc  func(ctx context.Context, name, namespace string) (bool, error)
	SubscriptionStateFunc   func(ctx context.Context, name, namespace string) (SubscriptionState, error)
	SubscriptionChannelFunc func(ctx context.Context, name, namespace string) (string, error)
	InstalledCSVFunc        func(ctx context.Context, name, namespace string) (string, error)
	LocateApplicationFunc   func(ctx context.Context, name string) (string, bool, error)
	ApplicationHealthFunc   func(ctx context.Context, name, namespace string) (SyncStatus, HealthStatus, error)
	ListNamespacesFunc      func(ctx context.Context) ([]string, error)
	PodCountFunc            func(ctx context.Context, namespace string) (int, error)
	ExistsFunc              func(ctx context.Context, kind Kind, name, namespace string) (bool, error)
	DeleteFunc              func(ctx context.Context, kind Kind, name, namespace string) error
	StripFinalizersFunc     func(ctx context.Context, kind Kind, name, namespace string) error
	CreateSecretFunc        func(ctx context.Context, namespace, name string, data map[string][]byte) error

	mu       sync.Mutex
	deleted  []DeleteCall
	stripped []DeleteCall
	secrets  []string
}

func (m *Mock) SubscriptionExists(ctx context.Context, name, namespace string) (bool, error) {
	if m.SubscriptionExistsFunc != nil {
		return m.SubscriptionExistsFunc(ctx, name, namespace)
	}
	return false, nil
}

func (m *Mock) SubscriptionState(ctx context.Context, name, namespace string) (SubscriptionState, error) {
	if m.SubscriptionStateFunc != nil {
		return m.SubscriptionStateFunc(ctx, name, namespace)
	}
	return SubscriptionUnknown, nil
}

func (m *Mock) SubscriptionChannel(ctx context.Context, name, namespace string) (string, error) {
	if m.SubscriptionChannelFunc != nil {
		return m.SubscriptionChannelFunc(ctx, name, namespace)
	}
	return "", nil
}

func (m *Mock) InstalledCSV(ctx context.Context, name, namespace string) (string, error) {
	if m.InstalledCSVFunc != nil {
		return m.InstalledCSVFunc(ctx, name, namespace)
	}
	return "", nil
}

func (m *Mock) LocateApplication(ctx context.Context, name string) (string, bool, error) {
	if m.LocateApplicationFunc != nil {
		return m.LocateApplicationFunc(ctx, name)
	}
	return "", false, nil
}

func (m *Mock) ApplicationHealth(ctx context.Context, name, namespace string) (SyncStatus, HealthStatus, error) {
	if m.ApplicationHealthFunc != nil {
		return m.ApplicationHealthFunc(ctx, name, namespace)
	}
	return SyncUnknown, HealthMissing, nil
}

func (m *Mock) ListNamespaces(ctx context.Context) ([]string, error) {
	if m.ListNamespacesFunc != nil {
		return m.ListNamespacesFunc(ctx)
	}
	return nil, nil
}

func (m *Mock) PodCount(ctx context.Context, namespace string) (int, error) {
	if m.PodCountFunc != nil {
		return m.PodCountFunc(ctx, namespace)
	}
	return 0, nil
}

func (m *Mock) Exists(ctx context.Context, kind Kind, name, namespace string) (bool, error) {
	if m.ExistsFunc != nil {
		return m.ExistsFunc(ctx, kind, name, namespace)
	}
	return false, nil
}

func (m *Mock) Delete(ctx context.Context, kind Kind, name, namespace string) error {
	m.mu.Lock()
	m.deleted = append(m.deleted, DeleteCall{Kind: kind, Name: name, Namespace: namespace})
	m.mu.Unlock()

	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, kind, name, namespace)
	}
	return nil
}

func (m *Mock) StripFinalizers(ctx context.Context, kind Kind, name, namespace string) error {
	m.mu.Lock()
	m.stripped = append(m.stripped, DeleteCall{Kind: kind, Name: name, Namespace: namespace})
	m.mu.Unlock()

	if m.StripFinalizersFunc != nil {
		return m.StripFinalizersFunc(ctx, kind, name, namespace)
	}
	return nil
}

func (m *Mock) CreateSecret(ctx context.Context, namespace, name string, data map[string][]byte) error {
	m.mu.Lock()
	m.secrets = append(m.secrets, namespace+"/"+name)
	m.mu.Unlock()

	if m.CreateSecretFunc != nil {
		return m.CreateSecretFunc(ctx, namespace, name, data)
	}
	return nil
}

// Deleted returns the recorded delete calls in issue order.
func (m *Mock) Deleted() []DeleteCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]DeleteCall, len(m.deleted))
	copy(out, m.deleted)
	return out
}

// Stripped returns the recorded finalizer-strip calls in issue order.
func (m *Mock) Stripped() []DeleteCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]DeleteCall, len(m.stripped))
	copy(out, m.stripped)
	return out
}

// Secrets returns the namespace/name keys of created secrets.
func (m *Mock) Secrets() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.secrets))
	copy(out, m.secrets)
	return out
}
