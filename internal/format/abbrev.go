// # internal/format/abbrev.go
package format

// Version identifies the compact wire format. Any change to the abbreviation
// tables below bumps it; the decoder refuses versions it does not know.
const Version = "1"

var componentCodes = map[string]string{
	"package":   "pk",
	"module":    "mo",
	"class":     "c",
	"function":  "f",
	"method":    "m",
	"attribute": "a",
}

var edgeCodes = map[string]string{
	"import":     "im",
	"call":       "c",
	"attr_read":  "ar",
	"attr_write": "aw",
	"inherit":    "in",
}

var componentKinds = invert(componentCodes)
var edgeKinds = invert(edgeCodes)

func invert(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[v] = k
	}
	return out
}
