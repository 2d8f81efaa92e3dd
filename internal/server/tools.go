package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// toolSchema assembles an object schema from property-map fragments. Later
// fragments win on key collisions.
func toolSchema(required []string, fragments ...map[string]interface{}) map[string]interface{} {
	properties := map[string]interface{}{}
	for _, fragment := range fragments {
		for name, schema := range fragment {
			properties[name] = schema
		}
	}
	schema := map[string]interface{}{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

// pathProperty is the image path argument shared by every image-reading tool.
func pathProperty() map[string]interface{} {
	return map[string]interface{}{
		"path": map[string]interface{}{
			"type":        "string",
			"description": "Absolute path to the image file",
		},
	}
}

// gradientProperties describes the gradient options accepted by the
// detection and preview tools. Defaults match gradient.DefaultOptions.
func gradientProperties() map[string]interface{} {
	return map[string]interface{}{
		"kernel": map[string]interface{}{
			"type":        "string",
			"enum":        []string{"sobel", "scharr"},
			"description": "Derivative kernel used for the gradient (default sobel)",
			"default":     "sobel",
		},
		"blur_radius": map[string]interface{}{
			"type":        "number",
			"description": "Gaussian pre-blur radius in pixels, 0 disables (default 1.4)",
			"default":     1.4,
		},
		"edge_threshold": map[string]interface{}{
			"type":        "number",
			"description": "Minimum normalized gradient magnitude for a pixel to count as an edge, in (0, 1] (default 0.1)",
			"default":     0.1,
		},
		"downsample_factor": map[string]interface{}{
			"type":        "integer",
			"description": "Integer factor to shrink the image by before processing; results are mapped back to original coordinates (default 1)",
			"default":     1,
		},
	}
}

// detectorProperties describes the Hough detector parameters accepted by the
// detection tools. Defaults match hough.DefaultParams.
func detectorProperties() map[string]interface{} {
	return map[string]interface{}{
		"theta_steps": map[string]interface{}{
			"type":        "integer",
			"description": "Number of angle bins covering a half turn (default 180, i.e. 1 degree per bin)",
			"default":     180,
		},
		"rho_bin_size": map[string]interface{}{
			"type":        "number",
			"description": "Width of one distance bin in pixels (default 1.0)",
			"default":     1.0,
		},
		"peak_threshold": map[string]interface{}{
			"type":        "integer",
			"description": "Minimum vote count for an accumulator peak (default 25)",
			"default":     25,
		},
		"nms_window_size": map[string]interface{}{
			"type":        "integer",
			"description": "Side length of the non-maximum suppression window, odd and at least 3 (default 5)",
			"default":     5,
		},
		"max_lines": map[string]interface{}{
			"type":        "integer",
			"description": "Maximum number of line candidates examined per pass (default 50)",
			"default":     50,
		},
		"segment_min_length": map[string]interface{}{
			"type":        "number",
			"description": "Minimum accepted segment length in pixels (default 10)",
			"default":     10,
		},
		"segment_max_length": map[string]interface{}{
			"type":        "number",
			"description": "Runs longer than this are split into equal parts (default 120)",
			"default":     120,
		},
		"line_distance_threshold": map[string]interface{}{
			"type":        "number",
			"description": "Maximum distance in pixels from the carrier line for an edge pixel to support it (default 2.0)",
			"default":     2.0,
		},
		"gradient_angle_window": map[string]interface{}{
			"type":        "number",
			"description": "Width in degrees of the angular window around each pixel's gradient direction that receives votes (default 20)",
			"default":     20,
		},
		"min_edge_coverage": map[string]interface{}{
			"type":        "number",
			"description": "Minimum supporting pixels per unit of segment length, 0-1 (default 0.3)",
			"default":     0.3,
		},
		"min_direction_consistency": map[string]interface{}{
			"type":        "number",
			"description": "Minimum mean agreement between pixel gradients and the segment average, 0-1 (default 0.6)",
			"default":     0.6,
		},
		"min_supporting_pixels": map[string]interface{}{
			"type":        "integer",
			"description": "Minimum number of edge pixels a segment must collect (default 8)",
			"default":     8,
		},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Image Loading
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions, format, and file size. Decoded images stay cached for subsequent detection calls.",
			InputSchema: toolSchema([]string{"path"}, pathProperty()),
		},

		// Line Detection
		{
			Name:        "detect_lines",
			Description: "Detect straight line segments in an image using a gradient-weighted Hough transform. Returns segments in original image coordinates with score, support, direction, and mean color, plus aggregate statistics.",
			InputSchema: toolSchema([]string{"path"},
				pathProperty(), gradientProperties(), detectorProperties()),
		},
		{
			Name:        "detect_lines_region",
			Description: "Detect line segments inside a rectangular region of the image. The region is cropped out before detection; returned segments use original image coordinates.",
			InputSchema: toolSchema([]string{"path", "x1", "y1", "x2", "y2"},
				pathProperty(),
				map[string]interface{}{
					"x1": map[string]interface{}{"type": "integer", "description": "Left edge X coordinate (0-based)"},
					"y1": map[string]interface{}{"type": "integer", "description": "Top edge Y coordinate (0-based)"},
					"x2": map[string]interface{}{"type": "integer", "description": "Right edge X coordinate (exclusive)"},
					"y2": map[string]interface{}{"type": "integer", "description": "Bottom edge Y coordinate (exclusive)"},
				},
				gradientProperties(), detectorProperties()),
		},

		// Queries
		{
			Name:        "nearest_line",
			Description: "Find the detected line segment nearest to a point. Reuses the segments of the last detect_lines pass when the path and settings match, otherwise runs a fresh pass first.",
			InputSchema: toolSchema([]string{"path", "x", "y"},
				pathProperty(),
				map[string]interface{}{
					"x": map[string]interface{}{"type": "number", "description": "Query point X in original image pixels"},
					"y": map[string]interface{}{"type": "number", "description": "Query point Y in original image pixels"},
					"max_distance": map[string]interface{}{
						"type":        "number",
						"description": "Search radius in pixels; segments farther away are ignored (default 10)",
						"default":     10,
					},
				},
				gradientProperties(), detectorProperties()),
		},

		// Diagnostics
		{
			Name:        "gradient_preview",
			Description: "Render the normalized gradient magnitude map as a base64-encoded grayscale PNG. Useful for checking blur and threshold settings before running detection.",
			InputSchema: toolSchema([]string{"path"},
				pathProperty(), gradientProperties()),
		},
		{
			Name:        "accumulator_heatmap",
			Description: "Render the Hough vote accumulator of the most recent detection pass as a base64-encoded PNG heatmap, theta on the X axis and rho on the Y axis.",
			InputSchema: toolSchema(nil),
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
