// Package analysis turns recorded timelines into statistics over groups.
//
// Angles are measured along the wire from its lowest point, counter-clockwise
// positive, so a bead resting at the bottom reads zero:
//
//   - [FinalAngles]: bead angles at the last captured frame of a group
//   - [Summarize]: mean, spread and quantiles of a sample
//   - [Histogram]: bin counts for plotting
//   - [DominantFrequency]: strongest oscillation in a bead's height series
package analysis
