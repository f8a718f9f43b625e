// Package textemboss turns short text strings into 3D solids and embeds
// them into the surface of an existing mesh, either raised (emboss) or
// recessed (engrave).
//
// The pipeline samples candidate placement patches on the target surface,
// measures how much flat area is available at each patch by ray marching
// in a local tangent frame, warps a flat extruded text solid onto the
// surface, and fuses the result with the target through a pluggable
// boolean engine. When exact boolean combination fails, both operands can
// be solidified into blocky voxel approximations and the combination is
// retried once.
package textemboss
