// Package visual compares screenshots against stored PNG baselines.
//
// A pixel differs when any of its RGBA channels moves by more than
// Threshold*255. A comparison fails when more than MaxDiffPixels pixels
// differ; the actual capture and a diff image, with differing pixels in red,
// are then written next to the baseline for inspection. The first run of a
// name records its baseline and passes.
package visual
