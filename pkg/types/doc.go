// Package types defines the collaborator interfaces, options, section metadata,
// field kinds and standard errors shared by the keepsake settings packages.
//
// Implementations live elsewhere: fsys and sqlite provide FileSystem, schema
// provides Serializer, and persistence ties them together per settings type.
package types
