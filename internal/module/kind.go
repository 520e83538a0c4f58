package module

// Kind identifies one of the fixed pipeline stages.
type Kind int

const (
	KindSubdomain Kind = iota + 1
	KindPorts
	KindHTTPProbe
	KindJSDiscovery
	KindDirBruteforce
	KindParamDiscovery
	KindScreenshot
)

var kindNames = map[Kind]string{
	KindSubdomain:      "subdomain",
	KindPorts:          "ports",
	KindHTTPProbe:      "http_probe",
	KindJSDiscovery:    "js_discovery",
	KindDirBruteforce:  "dir_bruteforce",
	KindParamDiscovery: "param_discovery",
	KindScreenshot:     "screenshot",
}

// String returns the stable module name used in logs and history.
func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "unknown"
}

// Kinds returns every kind in pipeline order.
func Kinds() []Kind {
	return []Kind{
		KindSubdomain,
		KindPorts,
		KindHTTPProbe,
		KindJSDiscovery,
		KindDirBruteforce,
		KindParamDiscovery,
		KindScreenshot,
	}
}

// ParseKind maps a module name back to its kind.
func ParseKind(name string) (Kind, bool) {
	for k, n := range kindNames {
		if n == name {
			return k, true
		}
	}
	return 0, false
}
