package inference

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"lablens/models"
)

// Extraction holds the components decoded from one response, in response order.
type Extraction struct {
	Detected []models.DetectedComponent
	Skipped  []Skipped
}

// Extract turns the tool calls of resp into detected components. Parts without
// a call to ToolName are ignored, malformed calls are skipped. If nothing was
// detected the result is returned together with an *EmptyResultError.
func Extract(resp *Response) (Extraction, error) {
	var out Extraction
	if resp != nil {
		for i, part := range resp.Parts {
			call := part.FunctionCall
			if call == nil || call.Name != ToolName {
				continue
			}
			d, err := decodeComponent(call.Args)
			if err != nil {
				out.Skipped = append(out.Skipped, Skipped{Position: i, Reason: err.Error()})
				continue
			}
			out.Detected = append(out.Detected, d)
		}
	}

	if len(out.Detected) == 0 {
		return out, &EmptyResultError{Skipped: out.Skipped}
	}
	return out, nil
}

func decodeComponent(args map[string]any) (models.DetectedComponent, error) {
	name, err := stringArg(args, ArgComponentName)
	if err != nil {
		return models.DetectedComponent{}, err
	}
	if name == "" {
		return models.DetectedComponent{}, fmt.Errorf("%s is empty", ArgComponentName)
	}
	category, err := stringArg(args, ArgCategory)
	if err != nil {
		return models.DetectedComponent{}, err
	}
	raw, ok := args[ArgCount]
	if !ok {
		return models.DetectedComponent{}, fmt.Errorf("%s is missing", ArgCount)
	}
	count, err := decodeCount(raw)
	if err != nil {
		return models.DetectedComponent{}, fmt.Errorf("%s of %q: %w", ArgCount, name, err)
	}
	if count <= 0 {
		return models.DetectedComponent{}, fmt.Errorf("%s of %q must be positive, got %d", ArgCount, name, count)
	}
	return models.DetectedComponent{ComponentName: name, Count: count, Category: category}, nil
}

func stringArg(args map[string]any, key string) (string, error) {
	raw, ok := args[key]
	if !ok {
		return "", fmt.Errorf("%s is missing", key)
	}
	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("%s must be a string, got %T", key, raw)
	}
	return strings.TrimSpace(s), nil
}

// decodeCount accepts integral numbers in any of the shapes a decoded JSON
// payload may carry them.
func decodeCount(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return intFromInt64(int64(n))
	case int32:
		return intFromInt64(int64(n))
	case int64:
		return intFromInt64(n)
	case float32:
		return intFromFloat(float64(n))
	case float64:
		return intFromFloat(n)
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return intFromInt64(i)
		}
		f, err := n.Float64()
		if err != nil {
			return 0, fmt.Errorf("not a number: %q", n.String())
		}
		return intFromFloat(f)
	case string:
		s := strings.TrimSpace(n)
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return intFromInt64(i)
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("not a number: %q", n)
		}
		return intFromFloat(f)
	default:
		return 0, fmt.Errorf("not a number: %T", v)
	}
}

func intFromFloat(f float64) (int, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, fmt.Errorf("not an integer: %v", f)
	}
	if f > math.MaxInt32 || f < math.MinInt32 {
		return 0, fmt.Errorf("out of range: %v", f)
	}
	return int(f), nil
}

// counts are kept within int32 whatever shape they arrive in
func intFromInt64(i int64) (int, error) {
	if i > math.MaxInt32 || i < math.MinInt32 {
		return 0, fmt.Errorf("out of range: %d", i)
	}
	return int(i), nil
}
