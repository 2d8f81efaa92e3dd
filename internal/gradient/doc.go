// Package gradient turns images into the gradient fields the line detector
// consumes: per-pixel signed derivatives, normalized magnitudes, and the
// list of pixels strong enough to count as edges.
//
// The pipeline per image is: optional integer downsample (Lanczos),
// grayscale conversion, optional Gaussian blur, then a signed 3x3 Sobel or
// Scharr convolution. The library kernels used elsewhere in the ecosystem
// produce magnitude-only output; line detection needs the gradient's sign
// to orient segment normals, so the derivative convolution lives here.
//
// # Conventions
//
// Magnitudes are normalized against the kernel's maximum possible response:
// 1.0 always means a full black-to-white step, so edge thresholds carry the
// same meaning for every image. Gradients are reported y-up (positive y
// means brighter toward the top of the image); the detector converts back
// to pixel coordinates itself. The one-pixel image border never yields
// gradients or edge pixels.
//
// # Caching
//
// Computing a field costs far more than any later detection phase, so Cache
// keys computed fields by (path, options) on top of the usual decoded-image
// cache. Fields are immutable once built and safe to share across passes.
package gradient
