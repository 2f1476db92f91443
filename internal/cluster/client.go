package cluster

import (
	"context"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/tools/clientcmd"
)

// Client implements Interface against a live cluster.
type Client struct {
	clientset kubernetes.Interface
	dynamic   dynamic.Interface
}

// NewClient creates a client from a kubeconfig file. An empty path falls
// back to the default loading rules (KUBECONFIG, then ~/.kube/config).
func NewClient(kubeconfigPath string) (*Client, error) {
	loadingRules := clientcmd.NewDefaultClientConfigLoadingRules()
	if kubeconfigPath != "" {
		loadingRules.ExplicitPath = kubeconfigPath
	}

	config, err := clientcmd.NewNonInteractiveDeferredLoadingClientConfig(
		loadingRules, &clientcmd.ConfigOverrides{}).ClientConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to build kubeconfig: %w", err)
	}

	clientset, err := kubernetes.NewForConfig(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create clientset: %w", err)
	}

	dynamicClient, err := dynamic.NewForConfig(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create dynamic client: %w", err)
	}

	return &Client{clientset: clientset, dynamic: dynamicClient}, nil
}

// SubscriptionExists implements Interface.
func (c *Client) SubscriptionExists(ctx context.Context, name, namespace string) (bool, error) {
	_, err := c.get(ctx, KindSubscription, name, namespace)
	if apierrors.IsNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// SubscriptionState implements Interface.
func (c *Client) SubscriptionState(ctx context.Context, name, namespace string) (SubscriptionState, error) {
	obj, err := c.get(ctx, KindSubscription, name, namespace)
	if apierrors.IsNotFound(err) {
		return SubscriptionUnknown, nil
	}
	if err != nil {
		return SubscriptionUnknown, err
	}

	state, _, _ := unstructured.NestedString(obj.Object, "status", "state")
	return SubscriptionState(state), nil
}

// SubscriptionChannel implements Interface.
func (c *Client) SubscriptionChannel(ctx context.Context, name, namespace string) (string, error) {
	obj, err := c.get(ctx, KindSubscription, name, namespace)
	if err != nil {
		return "", err
	}

	channel, _, _ := unstructured.NestedString(obj.Object, "spec", "channel")
	return channel, nil
}

// InstalledCSV implements Interface.
func (c *Client) InstalledCSV(ctx context.Context, name, namespace string) (string, error) {
	obj, err := c.get(ctx, KindSubscription, name, namespace)
	if apierrors.IsNotFound(err) {
		return "", nil
	}
	if err != nil {
		return "", err
	}

	csv, _, _ := unstructured.NestedString(obj.Object, "status", "installedCSV")
	return csv, nil
}

// LocateApplication implements Interface. Sync units can be created in any
// namespace the reconciling controller watches, so the lookup is
// cluster-wide.
func (c *Client) LocateApplication(ctx context.Context, name string) (string, bool, error) {
	list, err := c.dynamic.Resource(gvrFor[KindApplication]).List(ctx, metav1.ListOptions{})
	if err != nil {
		return "", false, err
	}

	for _, item := range list.Items {
		if item.GetName() == name {
			return item.GetNamespace(), true, nil
		}
	}
	return "", false, nil
}

// ApplicationHealth implements Interface.
func (c *Client) ApplicationHealth(ctx context.Context, name, namespace string) (SyncStatus, HealthStatus, error) {
	obj, err := c.get(ctx, KindApplication, name, namespace)
	if apierrors.IsNotFound(err) {
		return SyncUnknown, HealthMissing, nil
	}
	if err != nil {
		return SyncUnknown, HealthUnknown, err
	}

	sync, _, _ := unstructured.NestedString(obj.Object, "status", "sync", "status")
	health, _, _ := unstructured.NestedString(obj.Object, "status", "health", "status")
	if sync == "" {
		sync = string(SyncUnknown)
	}
	if health == "" {
		health = string(HealthUnknown)
	}
	return SyncStatus(sync), HealthStatus(health), nil
}

// ListNamespaces implements Interface.
func (c *Client) ListNamespaces(ctx context.Context) ([]string, error) {
	list, err := c.clientset.CoreV1().Namespaces().List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to list namespaces: %w", err)
	}

	names := make([]string, 0, len(list.Items))
	for _, ns := range list.Items {
		names = append(names, ns.Name)
	}
	return names, nil
}

// PodCount implements Interface.
func (c *Client) PodCount(ctx context.Context, namespace string) (int, error) {
	list, err := c.clientset.CoreV1().Pods(namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return 0, fmt.Errorf("failed to list pods in %s: %w", namespace, err)
	}
	return len(list.Items), nil
}

// Exists implements Interface.
func (c *Client) Exists(ctx context.Context, kind Kind, name, namespace string) (bool, error) {
	_, err := c.get(ctx, kind, name, namespace)
	if apierrors.IsNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Delete implements Interface. A resource that is already gone is success.
func (c *Client) Delete(ctx context.Context, kind Kind, name, namespace string) error {
	var err error
	if kind.Namespaced() {
		err = c.dynamic.Resource(gvrFor[kind]).Namespace(namespace).Delete(ctx, name, metav1.DeleteOptions{})
	} else {
		err = c.dynamic.Resource(gvrFor[kind]).Delete(ctx, name, metav1.DeleteOptions{})
	}
	if apierrors.IsNotFound(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to delete %s %s: %w", kind, name, err)
	}
	return nil
}

// StripFinalizers implements Interface.
func (c *Client) StripFinalizers(ctx context.Context, kind Kind, name, namespace string) error {
	obj, err := c.get(ctx, kind, name, namespace)
	if apierrors.IsNotFound(err) {
		return nil
	}
	if err != nil {
		return err
	}

	if len(obj.GetFinalizers()) == 0 {
		return nil
	}
	obj.SetFinalizers(nil)

	if kind.Namespaced() {
		_, err = c.dynamic.Resource(gvrFor[kind]).Namespace(namespace).Update(ctx, obj, metav1.UpdateOptions{})
	} else {
		_, err = c.dynamic.Resource(gvrFor[kind]).Update(ctx, obj, metav1.UpdateOptions{})
	}
	if err != nil {
		return fmt.Errorf("failed to strip finalizers from %s %s: %w", kind, name, err)
	}
	return nil
}

// CreateSecret implements Interface. An existing secret is replaced.
func (c *Client) CreateSecret(ctx context.Context, namespace, name string, data map[string][]byte) error {
	secret := &corev1.Secret{
		ObjectMeta: metav1.ObjectMeta{
			Name:      name,
			Namespace: namespace,
		},
		Data: data,
		Type: corev1.SecretTypeOpaque,
	}

	_, err := c.clientset.CoreV1().Secrets(namespace).Create(ctx, secret, metav1.CreateOptions{})
	if apierrors.IsAlreadyExists(err) {
		_, err = c.clientset.CoreV1().Secrets(namespace).Update(ctx, secret, metav1.UpdateOptions{})
	}
	if err != nil {
		return fmt.Errorf("failed to create secret %s/%s: %w", namespace, name, err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, kind Kind, name, namespace string) (*unstructured.Unstructured, error) {
	if kind.Namespaced() {
		return c.dynamic.Resource(gvrFor[kind]).Namespace(namespace).Get(ctx, name, metav1.GetOptions{})
	}
	return c.dynamic.Resource(gvrFor[kind]).Get(ctx, name, metav1.GetOptions{})
}
