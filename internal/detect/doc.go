// Package detect extracts flowchart shape and connector candidates
// from a raster image.
//
// Detection follows a fixed pipeline:
//
//  1. Binarize the image into an ink raster (internal/imaging)
//  2. Find contours: connected ink components with traced boundaries,
//     keeping nested contours (double-stroke outlines nest)
//  3. Classify each simplified contour polygon by vertex count and
//     geometry into process / decision / terminator / unknown
//  4. Reduce candidates: merge touching boxes, suppress duplicates by
//     IoU, discard nested artifacts, cap the count against the
//     calibration's node estimate
//  5. Optionally derive connector candidates from Hough line segments
//
// Every stage past binarization is a pure function from one candidate
// list to the next, so each can be tested in isolation.
//
// Detection never returns an error: unreadable input or an internal
// panic degrades to a single low-confidence unknown shape spanning the
// frame, with the failure reason recorded on the Result.
package detect
