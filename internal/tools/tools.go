package tools

import "fmt"

// Tool is an external binary a module shells out to.
type Tool struct {
	Name    string
	Binary  string
	Install string
	// VersionFlag is tried before the generic flags when probing the version
	VersionFlag string
}

// Guidance is the hint printed when the binary is missing.
func (t Tool) Guidance() string {
	return fmt.Sprintf("Install %s via: %s", t.Name, t.Install)
}

var (
	Subfinder = Tool{"subfinder", "subfinder", "go install github.com/projectdiscovery/subfinder/v2/cmd/subfinder@latest", "-version"}
	Naabu     = Tool{"naabu", "naabu", "go install github.com/projectdiscovery/naabu/v2/cmd/naabu@latest", "-version"}
	Httpx     = Tool{"httpx", "httpx", "go install github.com/projectdiscovery/httpx/cmd/httpx@latest", "-version"}
	Curl      = Tool{"curl", "curl", "your package manager (apt install curl / brew install curl)", "--version"}
	Ffuf      = Tool{"ffuf", "ffuf", "go install github.com/ffuf/ffuf/v2@latest", "-V"}
	Arjun     = Tool{"arjun", "arjun", "pip install arjun", ""}
	Gowitness = Tool{"gowitness", "gowitness", "go install github.com/sensepost/gowitness@latest", "version"}
)

// All returns every tool in pipeline order.
func All() []Tool {
	return []Tool{Subfinder, Naabu, Httpx, Curl, Ffuf, Arjun, Gowitness}
}
