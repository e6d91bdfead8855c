// Package atlas reads libgdx texture atlas manifests (.atlas files).
//
// A manifest describes one or more sheets (pages). Each sheet names the image
// file backing it and lists the sprites (regions) packed into it, along with
// the information required to undo trimming and rotation performed by the
// packer:
//
//	page.png
//	size: 64,64
//	format: RGBA8888
//	filter: Nearest,Nearest
//	repeat: none
//	hero
//	  rotate: false
//	  xy: 0, 0
//	  size: 32, 32
//	  orig: 32, 32
//	  offset: 0, 0
//	  index: -1
//
// Sheets are separated by a blank line. Parse returns sheets and sprites in
// the order in which they were declared, which callers rely on for
// deterministic output.
//
// Geometry is not interpreted here; see package compositor for that.
package atlas
