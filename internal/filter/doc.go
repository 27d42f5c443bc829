// Package filter narrows the discovered projects down to the ones a command operates on.
//
// Every project must pass four gates, checked in order with a short circuit on the first rejection:
//
//  1. inactive: with OnlyInactive the inactive marker is required, otherwise a marked project
//     is rejected unless IncludeInactive is set;
//  2. explicit selection: when project names are given on the command line, the project must be one of them;
//  3. only list: when non-empty, the project must match one of its entries;
//  4. exclude list: a project matching one of its entries is rejected.
//
// The result is the conjunction of the gates, their order only affects which rejection is logged.
// Entries of the only and exclude lists may be glob patterns, e.g. "web-*".
package filter
