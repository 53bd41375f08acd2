// Package atlas packs every distinct frame image of an animation model into a
// single bitmap.
//
// Images are deduplicated by their resolved source identity before packing, so
// two frames that reference the same file share one rectangle. Packing is
// delegated to a Packer: ShelfPacker lays images out in height-sorted rows
// bounded by a maximum width, GridPacker uses uniform cells. Build decodes the
// images on a bounded worker pool, packs them and composes the result onto one
// NRGBA canvas.
package atlas
