// Package liveplot renders live figures of running measurements.
//
// It builds on gonum.org/v1/plot and keeps redrawing cheap enough to
// sit inside an acquisition loop.
//
// Arrays and masking
//
// Traces do not copy their data. They hold the data.Array and
// data.Grid instances of the running sweep, whose cells start out as
// NaN and fill in as samples arrive. NaN means "not measured yet":
// masked samples are skipped when drawing, autoscaling and summing,
// so a half-finished sweep plots exactly the points measured so far.
// After mutating the arrays, call Update; the surface re-derives every
// drawing artifact from the current contents.
//
// Surfaces and subplots
//
// A Surface is a grid of subplots. Each subplot accumulates traces,
// resolves its axis titles from the first trace that can name them,
// and autoscales its view on every update until explicit limits are
// set. Line extents get a small relative margin; heatmap extents are
// hugged exactly. The first heatmap on a subplot creates its color
// scale, drawn as a bar beside the cell; later heatmaps share it.
//
// Heatmaps
//
// Heatmap cells are painted between cell edges reconstructed from the
// sweep's cell centers, so unevenly stepped sweeps come out with
// unevenly sized cells instead of a resampled approximation. See the
// mesh package for the reconstruction.
//
// The inspect package serves the other end of the workflow: slicing a
// completed sweep interactively.
package liveplot
