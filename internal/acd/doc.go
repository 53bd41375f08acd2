// Package acd reads decompiled agent description scripts.
//
// Descriptions are line-oriented: `Define<Kind> ["argument"]` opens a block,
// `End<Kind>` closes it and `Key = Value` lines set properties on the innermost
// open block. Keywords are case-insensitive and `//` starts a comment line.
// Parse flattens the block tree into a stream of typed records that the
// animation package validates and assembles into a model. Blocks that carry no
// animation data (balloon, info, voice) are skipped.
package acd
