// Package resources resolves the image and audio references made by an agent
// description against a decompiled bundle.
//
// A bundle is a directory holding the description script (`<agent>.acd`), an
// Images directory of frame bitmaps and an Audio directory of waveform cues.
// Directory and file names are matched case-insensitively and both slash styles
// are accepted, mirroring how the legacy decompiler wrote references. The
// inventory comes from a directory listing; files are opened only when a frame
// actually references them.
package resources
