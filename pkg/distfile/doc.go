// SPDX-License-Identifier: MPL-2.0

// Package distfile reads Python distribution archives (wheels, source
// distributions and eggs) and extracts the core metadata an index needs to
// accept an upload.
//
// The distribution kind is derived from the filename suffix alone. Metadata is
// read from the archive's METADATA (wheels) or PKG-INFO (sdists, eggs) member,
// which uses RFC 822 header syntax with repeatable fields and an optional
// message body holding the long description.
package distfile
