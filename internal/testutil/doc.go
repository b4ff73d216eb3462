// SPDX-License-Identifier: MPL-2.0

// Package testutil provides test helpers shared across distpush packages:
// fixture builders for wheel, sdist and egg archives, and Must* wrappers
// that fail the test on filesystem errors instead of returning them.
package testutil
