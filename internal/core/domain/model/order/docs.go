// Package order provides the Order aggregate of the manufacturing workflow and the
// vocabulary its lifecycle is expressed in.
//
// The package includes:
//   - State and DeliveryState: the primary lifecycle and the delivery sub-state
//   - Graph: the declarative edge tables (OrderGraph, DeliveryGraph) naming the roles
//     and preconditions of every permitted transition
//   - Order: the aggregate root, mutated only through Transition and Override
//   - Patch and Context: the attribute change accompanying a transition and the
//     post-patch view preconditions are evaluated against
//   - QCRecord, QCFeedback and Milestone: QC artifacts and once-only timestamps
//
// Key business rules:
//   - No production stage is reachable without payment
//   - Delivery packing is coupled to the order being dispatch eligible
//   - QC rejections carry a reason of at least MinReasonLength characters
//   - Milestones are immutable except under an audited manual override
package order
