// SPDX-License-Identifier: MPL-2.0

// Package dists turns the file arguments of an upload into an ordered list of
// distribution paths. Patterns are expanded with doublestar globbing, every
// result must carry a supported distribution suffix, and wheels are moved
// ahead of every other format.
package dists
