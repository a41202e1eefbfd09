// Package types defines the metadata model for nftmeta: trait records and
// their seven payload variants, trait containers, the asset-wide contract,
// the Registry interface that stores serialized blobs, and the Host
// interface through which the rest of the module reads and writes scene
// state. It also holds the standard errors shared by every package.
package types
