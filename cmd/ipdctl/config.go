package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"ipdarena/internal/game"
	"ipdarena/pkg/ipdarena"
)

func loadRunRequestFromConfig(path string) (ipdarena.RunRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ipdarena.RunRequest{}, err
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return ipdarena.RunRequest{}, err
	}

	var req ipdarena.RunRequest
	if v, ok := asString(raw["run_id"]); ok {
		req.RunID = v
	}
	if v, ok := asStringSlice(raw["strategies"]); ok {
		req.Strategies = v
	}
	if v, ok := asInt(raw["turns"]); ok {
		if v <= 0 {
			return ipdarena.RunRequest{}, fmt.Errorf("turns must be > 0, got %d", v)
		}
		req.Turns = v
	}
	if v, ok := asInt(raw["repetitions"]); ok {
		if v <= 0 {
			return ipdarena.RunRequest{}, fmt.Errorf("repetitions must be > 0, got %d", v)
		}
		req.Repetitions = v
	}
	if v, ok := asInt(raw["workers"]); ok {
		req.Workers = v
	}
	if v, ok := asBool(raw["record_matches"]); ok {
		req.RecordMatches = v
	}

	if payoffMap, ok := raw["payoff"].(map[string]any); ok {
		matrix := game.DefaultMatrix()
		if v, ok := asFloat64(payoffMap["reward"]); ok {
			matrix.Reward = v
		}
		if v, ok := asFloat64(payoffMap["temptation"]); ok {
			matrix.Temptation = v
		}
		if v, ok := asFloat64(payoffMap["sucker"]); ok {
			matrix.Sucker = v
		}
		if v, ok := asFloat64(payoffMap["punishment"]); ok {
			matrix.Punishment = v
		}
		req.Payoff = &matrix
	}
	return req, nil
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func asBool(v any) (bool, bool) {
	b, ok := v.(bool)
	return b, ok
}

func asInt(v any) (int, bool) {
	switch x := v.(type) {
	case int:
		return x, true
	case float64:
		return int(x), true
	default:
		return 0, false
	}
}

func asFloat64(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	default:
		return 0, false
	}
}

// asStringSlice accepts a JSON array of strings or a comma-separated string.
func asStringSlice(v any) ([]string, bool) {
	switch x := v.(type) {
	case string:
		return splitList(x), true
	case []any:
		out := make([]string, 0, len(x))
		for _, item := range x {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		return out, true
	default:
		return nil, false
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func overrideFromFlags(req *ipdarena.RunRequest, set map[string]bool, flagValue map[string]any) error {
	for name := range set {
		v, ok := flagValue[name]
		if !ok {
			continue
		}
		switch name {
		case "run-id":
			req.RunID = v.(string)
		case "strategies":
			req.Strategies = splitList(v.(string))
		case "turns":
			req.Turns = v.(int)
		case "repetitions":
			req.Repetitions = v.(int)
		case "workers":
			req.Workers = v.(int)
		case "record-matches":
			req.RecordMatches = v.(bool)
		case "reward", "temptation", "sucker", "punishment":
			if req.Payoff == nil {
				matrix := game.DefaultMatrix()
				req.Payoff = &matrix
			}
			value := v.(float64)
			switch name {
			case "reward":
				req.Payoff.Reward = value
			case "temptation":
				req.Payoff.Temptation = value
			case "sucker":
				req.Payoff.Sucker = value
			case "punishment":
				req.Payoff.Punishment = value
			}
		default:
			return fmt.Errorf("unsupported override flag: %s", name)
		}
	}
	return nil
}

func loadOrDefaultRunRequest(configPath string) (ipdarena.RunRequest, error) {
	if configPath == "" {
		return ipdarena.RunRequest{}, nil
	}
	req, err := loadRunRequestFromConfig(configPath)
	if err != nil {
		return ipdarena.RunRequest{}, fmt.Errorf("load config: %w", err)
	}
	return req, nil
}
