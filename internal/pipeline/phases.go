package pipeline

import (
	"github.com/rootsploit/autoscope/internal/dirbrute"
	"github.com/rootsploit/autoscope/internal/httpprobe"
	"github.com/rootsploit/autoscope/internal/jsanalysis"
	"github.com/rootsploit/autoscope/internal/module"
	"github.com/rootsploit/autoscope/internal/params"
	"github.com/rootsploit/autoscope/internal/portscan"
	"github.com/rootsploit/autoscope/internal/screenshot"
	"github.com/rootsploit/autoscope/internal/subdomain"
)

// PhaseName maps each module kind to its display name
var PhaseName = map[module.Kind]string{
	module.KindSubdomain:      "Subdomain Enumeration",
	module.KindPorts:          "Port Scanning",
	module.KindHTTPProbe:      "HTTP Probing + Tech Detection",
	module.KindJSDiscovery:    "JavaScript Endpoint Discovery",
	module.KindDirBruteforce:  "Directory Bruteforce",
	module.KindParamDiscovery: "Parameter Discovery",
	module.KindScreenshot:     "Visual Recon (Screenshots)",
}

// Filter narrows the fixed module list. The flags are independent.
type Filter struct {
	OnlySubdomains bool
	NoDirs         bool
	NoScreenshots  bool
}

// All returns a fresh instance of every module in execution order.
func All() []module.Module {
	return []module.Module{
		subdomain.NewEnumerator(),
		portscan.NewScanner(),
		httpprobe.NewProber(),
		jsanalysis.NewAnalyzer(),
		dirbrute.NewScanner(),
		params.NewFinder(),
		screenshot.NewCapturer(),
	}
}

// Build returns the modules selected by f, keeping execution order.
func Build(f Filter) []module.Module {
	if f.OnlySubdomains {
		return []module.Module{subdomain.NewEnumerator()}
	}

	var out []module.Module
	for _, m := range All() {
		switch {
		case f.NoDirs && m.Kind() == module.KindDirBruteforce:
			continue
		case f.NoScreenshots && m.Kind() == module.KindScreenshot:
			continue
		}
		out = append(out, m)
	}
	return out
}

// Names returns the module names in order.
func Names(mods []module.Module) []string {
	names := make([]string, len(mods))
	for i, m := range mods {
		names[i] = m.Name()
	}
	return names
}
