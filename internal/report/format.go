package report

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// timeFormat is the layout used for report timestamps.
const timeFormat = "2006-01-02 15:04:05 MST"

// acronyms maps analyzer names that read as acronyms to their label.
var acronyms = map[string]string{
	"dns":   "DNS",
	"tls":   "TLS",
	"http":  "HTTP",
	"whois": "WHOIS",
}

// analyzerLabel returns the display label for an analyzer name.
func analyzerLabel(name string) string {
	if label, ok := acronyms[name]; ok {
		return label
	}
	if name == "" {
		return "Unknown"
	}
	return cases.Title(language.English).String(strings.ReplaceAll(name, "_", " "))
}

// Field is one flattened "path: value" pair of item data.
type Field struct {
	Path  string
	Value string
}

// String returns the field as "path: value", or just the value for a
// scalar payload.
func (f Field) String() string {
	if f.Path == "" {
		return f.Value
	}
	return f.Path + ": " + f.Value
}

// Flatten converts analyzer data into sorted fields.
// The data goes through JSON first, so a live report and one loaded from
// history render identically.
func Flatten(data any) []Field {
	raw, err := json.Marshal(data)
	if err != nil {
		return []Field{{Value: fmt.Sprint(data)}}
	}

	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return []Field{{Value: string(raw)}}
	}

	fields := make([]Field, 0)
	flattenInto(&fields, "", generic)
	return fields
}

func flattenInto(fields *[]Field, path string, v any) {
	switch value := v.(type) {
	case map[string]any:
		if len(value) == 0 {
			*fields = append(*fields, Field{Path: path, Value: "{}"})
			return
		}
		keys := make([]string, 0, len(value))
		for k := range value {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			flattenInto(fields, joinPath(path, k), value[k])
		}
	case []any:
		if len(value) == 0 {
			*fields = append(*fields, Field{Path: path, Value: "[]"})
			return
		}
		for i, elem := range value {
			flattenInto(fields, path+"["+strconv.Itoa(i)+"]", elem)
		}
	case nil:
		*fields = append(*fields, Field{Path: path, Value: "null"})
	case string:
		*fields = append(*fields, Field{Path: path, Value: value})
	default:
		*fields = append(*fields, Field{Path: path, Value: fmt.Sprint(value)})
	}
}

func joinPath(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

// truncateString truncates a string to maxLen runes with ellipsis.
func truncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// formatDelta formats a signed count change.
func formatDelta(delta int) string {
	if delta > 0 {
		return "+" + strconv.Itoa(delta)
	} else if delta < 0 {
		return strconv.Itoa(delta)
	}
	return "0"
}

// formatCountChange formats a count as "old -> new (delta)".
func formatCountChange(oldVal, newVal int) string {
	return fmt.Sprintf("%d -> %d (%s)", oldVal, newVal, formatDelta(newVal-oldVal))
}
