// Package pattern defines the component model for an installable pattern.
//
// A pattern is a bundle of infrastructure charts, operator subscriptions,
// declaratively synced applications, and a controlling custom resource. The
// package materializes immutable Component records from a declared
// configuration source and orders them into install tiers.
package pattern
