// SPDX-License-Identifier: MPL-2.0

// Package repository submits distribution files to a package index over the
// legacy upload API: a single multipart/form-data POST per file, with basic
// authentication and an optional detached signature.
//
// Each request is attempted once. Redirects are not followed; the caller sees
// the 3xx response and decides what to do with it.
package repository
