// Package httpprobe finds live HTTP services among the enumerated subdomains
// and pulls the detected technologies out of httpx's output.
package httpprobe

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rootsploit/autoscope/internal/module"
	"github.com/rootsploit/autoscope/internal/tools"
)

const (
	OutputFile = "httpx.txt"
	TechFile   = "tech.txt"
)

type Prober struct{}

func NewProber() *Prober { return &Prober{} }

func (p *Prober) Kind() module.Kind       { return module.KindHTTPProbe }
func (p *Prober) Name() string            { return module.KindHTTPProbe.String() }
func (p *Prober) Output() string          { return OutputFile }
func (p *Prober) Tool() tools.Tool        { return tools.Httpx }
func (p *Prober) Requires() []module.Kind { return []module.Kind{module.KindSubdomain} }

func (p *Prober) Command(subsFile string) module.Command {
	return module.Command{
		Name: tools.Httpx.Binary,
		Args: []string{"-l", subsFile, "-silent", "-tech-detect"},
	}
}

// Run probes every subdomain. A failed tech extraction does not undo a
// successful probe; it is attached to the artifact as a warning instead.
func (p *Prober) Run(ctx context.Context, env *module.Env, in module.Inputs) (*module.Artifact, error) {
	subs, err := in.Path(module.KindSubdomain)
	if err != nil {
		return nil, err
	}

	dest := env.OutputPath(p)
	if err := env.Runner.Run(ctx, p.Name(), p.Command(subs), dest); err != nil {
		return nil, err
	}
	art := &module.Artifact{Kind: p.Kind(), Path: dest}

	techPath := filepath.Join(env.WorkDir, TechFile)
	if err := ExtractTech(dest, techPath); err != nil {
		os.Remove(techPath)
		werr := module.Wrap(module.ErrPostProcess, p.Name(), err)
		env.Console.Warn("Tech extraction failed: %v", werr)
		art.Warnings = append(art.Warnings, werr.Error())
		return art, nil
	}
	env.Console.Success("Tech detection saved to %s", techPath)
	art.Related = append(art.Related, techPath)
	return art, nil
}

// ExtractTech writes the second whitespace-separated token of every httpx
// line to dst. Lines with fewer tokens are skipped.
func ExtractTech(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open probe output: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create tech file: %w", err)
	}
	w := bufio.NewWriter(out)

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 {
			continue
		}
		fmt.Fprintln(w, fields[1])
	}
	if err := scanner.Err(); err != nil {
		out.Close()
		return fmt.Errorf("failed to read probe output: %w", err)
	}
	if err := w.Flush(); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// URLs returns the first token of each non-empty line of an httpx output file.
func URLs(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var urls []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		urls = append(urls, fields[0])
	}
	return urls, scanner.Err()
}
