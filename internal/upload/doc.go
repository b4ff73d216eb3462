// SPDX-License-Identifier: MPL-2.0

// Package upload drives one upload run: it guards against deprecated
// destinations, signs artifacts on request, submits them one at a time in
// wheel-first order and classifies each reply.
//
// A run stops at the first error. The only tolerated rejection is a file the
// index already has, and only when skip-existing is enabled.
package upload
