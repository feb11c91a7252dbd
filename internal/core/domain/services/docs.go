// Package services provides domain services that coordinate more than one aggregate.
//
// The package includes:
//   - CollectionDispatcher: assign, reassign, advance and release collectors on home
//     collection orders, cancel orders holding a collector, and pick the least-loaded
//     collector for automatic dispatch
//   - BuildLabQueue: the priority-ordered lab worklist read model
package services
