package tools

import "strconv"

// getStringArg extracts a string argument from the args map. JSON parsing
// can hand us numbers or bools where the model meant a string, so those
// are converted rather than dropped. Returns "" when the key is absent.
func getStringArg(args map[string]any, key string) string {
	if args == nil {
		return ""
	}
	if v, ok := args[key]; ok {
		switch s := v.(type) {
		case string:
			return s
		case float64:
			return strconv.FormatFloat(s, 'f', -1, 64)
		case bool:
			return strconv.FormatBool(s)
		}
	}
	return ""
}
