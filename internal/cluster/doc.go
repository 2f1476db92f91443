// Package cluster is the narrow query/command surface the orchestrator
// uses to observe and drive the managed cluster.
//
// The orchestrator never talks to the control plane directly; everything
// goes through Interface so tests can substitute the Mock. The real Client
// wraps a typed clientset for core resources and a dynamic client for the
// OLM and GitOps custom resources.
package cluster
