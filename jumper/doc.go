// Package jumper generates routing graphs around 0606x2 resistor-array
// jumpers and provides a distance-based cost policy for them.
//
// A single jumper has four pads, two under-jumper channels, a centre gap,
// two through-jumper bodies and four surround regions. Grid tiles jumpers
// and stitches the surround regions of neighbouring tiles together.
package jumper
