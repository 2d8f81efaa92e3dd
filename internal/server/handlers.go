package server

import (
	"encoding/json"
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/line-tools-mcp/internal/diag"
	"github.com/ironsheep/line-tools-mcp/internal/gradient"
	"github.com/ironsheep/line-tools-mcp/internal/hough"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_load", "detect_lines").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
//
// Each tool handler:
//  1. Unmarshals arguments from JSON over the documented defaults
//  2. Loads images and gradient fields from the cache as needed
//  3. Runs the detector or query
//  4. Returns the result or error
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Image Loading
	case "image_load":
		return s.handleImageLoad(args)

	// Line Detection
	case "detect_lines":
		return s.handleDetectLines(args)
	case "detect_lines_region":
		return s.handleDetectLinesRegion(args)

	// Queries
	case "nearest_line":
		return s.handleNearestLine(args)

	// Diagnostics
	case "gradient_preview":
		return s.handleGradientPreview(args)
	case "accumulator_heatmap":
		return s.handleAccumulatorHeatmap(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Argument Parsing ===

// gradientInputs parses the arguments shared by every image-reading tool:
// the image path plus the gradient options, unmarshaled over
// DefaultOptions so absent fields keep their documented defaults while
// explicit zeros (e.g. blur_radius 0) stick.
func gradientInputs(args json.RawMessage) (string, gradient.Options, error) {
	var a struct {
		Path string `json:"path"`
	}
	opts := gradient.DefaultOptions()
	if len(args) > 0 {
		if err := json.Unmarshal(args, &a); err != nil {
			return "", opts, err
		}
		if err := json.Unmarshal(args, &opts); err != nil {
			return "", opts, err
		}
	}
	if a.Path == "" {
		return "", opts, fmt.Errorf("path is required")
	}
	return a.Path, opts, nil
}

// detectionInputs additionally parses the detector parameters, again
// unmarshaled over their defaults.
func detectionInputs(args json.RawMessage) (string, gradient.Options, hough.Params, error) {
	path, opts, err := gradientInputs(args)
	if err != nil {
		return "", opts, hough.Params{}, err
	}
	params := hough.DefaultParams()
	if err := json.Unmarshal(args, &params); err != nil {
		return "", opts, params, err
	}
	return path, opts, params, nil
}

// === Result Shapes ===

// SegmentResult is one detected segment in original-image coordinates, plus
// the mean image color sampled along it.
type SegmentResult struct {
	hough.LineSegment
	MeanColorHex string `json:"mean_color_hex"`
}

// DetectLinesResult is the detect_lines response.
type DetectLinesResult struct {
	Path       string             `json:"path"`
	Width      int                `json:"width"`
	Height     int                `json:"height"`
	EdgePixels int                `json:"edge_pixels"`
	Segments   []SegmentResult    `json:"segments"`
	Stats      hough.SegmentStats `json:"stats"`
}

// RegionRect echoes the clamped region a detection pass actually covered.
type RegionRect struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// DetectRegionResult is the detect_lines_region response. Segments are
// reported in original-image coordinates even though detection ran on the
// cropped region only.
type DetectRegionResult struct {
	Path       string             `json:"path"`
	Region     RegionRect         `json:"region"`
	EdgePixels int                `json:"edge_pixels"`
	Segments   []SegmentResult    `json:"segments"`
	Stats      hough.SegmentStats `json:"stats"`
}

// NearestLineResult is the nearest_line response. Segment is nil when no
// detected segment lies within the search radius.
type NearestLineResult struct {
	Found    bool           `json:"found"`
	Distance float64        `json:"distance"`
	Segment  *SegmentResult `json:"segment,omitempty"`
}

// HeatmapResponse pairs the rendered accumulator heatmap with a description
// of the pass it belongs to.
type HeatmapResponse struct {
	Pass string `json:"pass"`
	*diag.HeatmapResult
}

// === Coordinate Mapping ===

// transformSegment maps a segment from detection coordinates back to the
// original image: a per-axis scale followed by a translation. Rho is
// recomputed against the carrier direction so rho and the moved endpoints
// stay consistent.
func transformSegment(seg hough.LineSegment, sx, sy, dx, dy float64) hough.LineSegment {
	if sx == 1 && sy == 1 && dx == 0 && dy == 0 {
		return seg
	}
	seg.Start = hough.Vec2{X: seg.Start.X*sx + dx, Y: seg.Start.Y*sy + dy}
	seg.End = hough.Vec2{X: seg.End.X*sx + dx, Y: seg.End.Y*sy + dy}
	n := hough.Vec2{X: math.Cos(seg.Theta), Y: math.Sin(seg.Theta)}
	seg.Rho = seg.Start.Dot(n)
	return seg
}

// mapSegments applies transformSegment to a detection pass's output.
func mapSegments(segs []hough.LineSegment, sx, sy, dx, dy float64) []hough.LineSegment {
	out := make([]hough.LineSegment, len(segs))
	for i, seg := range segs {
		out[i] = transformSegment(seg, sx, sy, dx, dy)
	}
	return out
}

// segmentResults pairs segments with their sampled mean color.
func segmentResults(img image.Image, segs []hough.LineSegment) []SegmentResult {
	out := make([]SegmentResult, len(segs))
	for i, seg := range segs {
		out[i] = SegmentResult{LineSegment: seg, MeanColorHex: segmentColor(img, seg)}
	}
	return out
}

// segmentColor samples the image along the segment and returns the mean
// color as a hex string, or "" when no sample lands inside the image.
func segmentColor(img image.Image, seg hough.LineSegment) string {
	const samples = 9
	b := img.Bounds()
	var r, g, bl float64
	n := 0
	for i := 0; i < samples; i++ {
		t := float64(i) / float64(samples-1)
		pt := image.Point{
			X: b.Min.X + int(math.Round(seg.Start.X+(seg.End.X-seg.Start.X)*t)),
			Y: b.Min.Y + int(math.Round(seg.Start.Y+(seg.End.Y-seg.Start.Y)*t)),
		}
		if !pt.In(b) {
			continue
		}
		c, ok := colorful.MakeColor(img.At(pt.X, pt.Y))
		if !ok {
			continue
		}
		r += c.R
		g += c.G
		bl += c.B
		n++
	}
	if n == 0 {
		return ""
	}
	mean := colorful.Color{R: r / float64(n), G: g / float64(n), B: bl / float64(n)}
	return mean.Clamped().Hex()
}

// === Image Loading Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return s.cache.Info(a.Path)
}

// === Line Detection Handlers ===

// runDetection executes a full-image detection pass and records it as the
// server's last pass so nearest_line and accumulator_heatmap can pick it up.
func (s *Server) runDetection(path string, opts gradient.Options, params hough.Params) (*gradient.Field, error) {
	if err := s.detector.SetParams(params); err != nil {
		return nil, err
	}
	field, err := s.cache.FieldFor(path, opts)
	if err != nil {
		return nil, err
	}
	s.detector.Detect(field)

	s.lastDesc = path
	s.lastKey = passKey{path: path, opts: opts, params: params}
	s.lastField = field
	s.reusable = true
	return field, nil
}

func (s *Server) handleDetectLines(args json.RawMessage) (interface{}, error) {
	path, opts, params, err := detectionInputs(args)
	if err != nil {
		return nil, err
	}

	field, err := s.runDetection(path, opts, params)
	if err != nil {
		return nil, err
	}
	img, err := s.cache.LoadImage(path)
	if err != nil {
		return nil, err
	}

	sx, sy := field.Scale()
	segs := mapSegments(s.detector.Segments(), sx, sy, 0, 0)

	return &DetectLinesResult{
		Path:       path,
		Width:      img.Bounds().Dx(),
		Height:     img.Bounds().Dy(),
		EdgePixels: len(field.EdgePixels()),
		Segments:   segmentResults(img, segs),
		Stats:      hough.ComputeStats(segs),
	}, nil
}

type detectRegionArgs struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

func (s *Server) handleDetectLinesRegion(args json.RawMessage) (interface{}, error) {
	path, opts, params, err := detectionInputs(args)
	if err != nil {
		return nil, err
	}
	var a detectRegionArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.X2 <= a.X1 || a.Y2 <= a.Y1 {
		return nil, fmt.Errorf("invalid region: x2/y2 must be greater than x1/y1")
	}
	if err := s.detector.SetParams(params); err != nil {
		return nil, err
	}

	img, err := s.cache.LoadImage(path)
	if err != nil {
		return nil, err
	}
	rect := image.Rect(a.X1, a.Y1, a.X2, a.Y2).Intersect(img.Bounds())
	if rect.Empty() {
		return nil, fmt.Errorf("region (%d,%d)-(%d,%d) lies outside the %dx%d image",
			a.X1, a.Y1, a.X2, a.Y2, img.Bounds().Dx(), img.Bounds().Dy())
	}

	// Region fields are one-off, so they bypass the cache.
	field, err := gradient.FromImage(imaging.Crop(img, rect), opts)
	if err != nil {
		return nil, err
	}
	s.detector.Detect(field)

	s.lastDesc = fmt.Sprintf("%s (%d,%d)-(%d,%d)", path, rect.Min.X, rect.Min.Y, rect.Max.X, rect.Max.Y)
	s.lastField = field
	s.reusable = false

	sx, sy := field.Scale()
	segs := mapSegments(s.detector.Segments(), sx, sy, float64(rect.Min.X), float64(rect.Min.Y))

	return &DetectRegionResult{
		Path:       path,
		Region:     RegionRect{X1: rect.Min.X, Y1: rect.Min.Y, X2: rect.Max.X, Y2: rect.Max.Y},
		EdgePixels: len(field.EdgePixels()),
		Segments:   segmentResults(img, segs),
		Stats:      hough.ComputeStats(segs),
	}, nil
}

// === Query Handlers ===

type nearestLineArgs struct {
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	MaxDistance float64 `json:"max_distance"`
}

func (s *Server) handleNearestLine(args json.RawMessage) (interface{}, error) {
	path, opts, params, err := detectionInputs(args)
	if err != nil {
		return nil, err
	}
	var a nearestLineArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.MaxDistance == 0 {
		a.MaxDistance = 10.0
	}

	field := s.lastField
	if !s.reusable || s.lastKey != (passKey{path: path, opts: opts, params: params}) {
		if field, err = s.runDetection(path, opts, params); err != nil {
			return nil, err
		}
	}
	img, err := s.cache.LoadImage(path)
	if err != nil {
		return nil, err
	}

	sx, sy := field.Scale()
	segs := mapSegments(s.detector.Segments(), sx, sy, 0, 0)

	q := hough.Vec2{X: a.X, Y: a.Y}
	best := hough.Nearest(segs, q, a.MaxDistance)
	if best == nil {
		return &NearestLineResult{Found: false}, nil
	}
	return &NearestLineResult{
		Found:    true,
		Distance: best.DistanceTo(q),
		Segment:  &SegmentResult{LineSegment: *best, MeanColorHex: segmentColor(img, *best)},
	}, nil
}

// === Diagnostic Handlers ===

func (s *Server) handleGradientPreview(args json.RawMessage) (interface{}, error) {
	path, opts, err := gradientInputs(args)
	if err != nil {
		return nil, err
	}
	field, err := s.cache.FieldFor(path, opts)
	if err != nil {
		return nil, err
	}
	return gradient.MagnitudePreview(field)
}

func (s *Server) handleAccumulatorHeatmap(args json.RawMessage) (interface{}, error) {
	if s.lastField == nil {
		return nil, fmt.Errorf("no detection pass yet: run detect_lines first")
	}
	hm, err := diag.AccumulatorHeatmap(s.detector.Accumulator())
	if err != nil {
		return nil, err
	}
	return &HeatmapResponse{Pass: s.lastDesc, HeatmapResult: hm}, nil
}
