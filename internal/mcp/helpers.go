package mcpserver

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"stylusnotes/internal/canvas"
)

func boolPtr(v bool) *bool { return &v }

// textResult creates a simple text tool result.
func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

// jsonResult serializes v to JSON and wraps it in a text tool result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return textResult(string(data)), nil
}

func stringArg(args map[string]any, key string) string {
	v, _ := args[key].(string)
	return strings.TrimSpace(v)
}

func requireString(args map[string]any, key string) (string, error) {
	v := stringArg(args, key)
	if v == "" {
		return "", fmt.Errorf("%s is required", key)
	}
	return v, nil
}

// numberArg returns args[key] when it is a JSON number.
func numberArg(args map[string]any, key string) (float64, bool) {
	v, ok := args[key].(float64)
	return v, ok
}

func requireNumber(args map[string]any, key string) (float64, error) {
	v, ok := numberArg(args, key)
	if !ok {
		return 0, fmt.Errorf("%s is required and must be a number", key)
	}
	return v, nil
}

func boolArg(args map[string]any, key string) bool {
	v, _ := args[key].(bool)
	return v
}

// parsePoints accepts [[x,y], ...] or [{"x":..,"y":..}, ...].
func parsePoints(raw any) ([]canvas.Point, error) {
	list, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("points must be an array")
	}
	pts := make([]canvas.Point, 0, len(list))
	for i, item := range list {
		switch v := item.(type) {
		case []any:
			if len(v) != 2 {
				return nil, fmt.Errorf("point %d: want [x, y]", i)
			}
			x, okX := v[0].(float64)
			y, okY := v[1].(float64)
			if !okX || !okY {
				return nil, fmt.Errorf("point %d: coordinates must be numbers", i)
			}
			pts = append(pts, canvas.Point{X: x, Y: y})
		case map[string]any:
			x, okX := v["x"].(float64)
			y, okY := v["y"].(float64)
			if !okX || !okY {
				return nil, fmt.Errorf("point %d: want {x, y} numbers", i)
			}
			pts = append(pts, canvas.Point{X: x, Y: y})
		default:
			return nil, fmt.Errorf("point %d: unsupported value %T", i, item)
		}
	}
	return pts, nil
}

// splitTags turns "a, b,c" into its trimmed parts.
func splitTags(s string) []string {
	if strings.TrimSpace(s) == "" {
		return []string{}
	}
	return strings.Split(s, ",")
}

// pixels converts a client-supplied coordinate to an int within ±limit, so
// huge or non-finite values cannot overflow the conversion.
func pixels(v float64, limit int) int {
	if math.IsNaN(v) {
		return 0
	}
	return int(math.Max(-float64(limit), math.Min(v, float64(limit))))
}
