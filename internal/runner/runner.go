package runner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fatih/color"

	"github.com/rootsploit/autoscope/internal/config"
	"github.com/rootsploit/autoscope/internal/console"
	"github.com/rootsploit/autoscope/internal/debug"
	"github.com/rootsploit/autoscope/internal/module"
	"github.com/rootsploit/autoscope/internal/pipeline"
	"github.com/rootsploit/autoscope/internal/report"
	"github.com/rootsploit/autoscope/internal/storage"
	"github.com/rootsploit/autoscope/internal/tools"
	"github.com/rootsploit/autoscope/internal/version"
)

// LogFile is the run log kept in each working directory.
const LogFile = "autoscope.log"

type Runner struct {
	cfg *config.Config
	con *console.Console
	c   *tools.Checker
}

// Result describes a finished scan.
type Result struct {
	ScanID   string
	WorkDir  string
	Report   string
	Outcomes []pipeline.Outcome
}

func New(cfg *config.Config, con *console.Console) *Runner {
	if con == nil {
		con = console.New(os.Stdout)
	}
	return &Runner{cfg: cfg, con: con, c: tools.NewChecker()}
}

// Run validates the configuration, executes the selected modules in order
// and writes the report. Only setup problems are returned as errors; module
// failures are reported on the console and in Result.Outcomes.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	if err := r.cfg.Validate(); err != nil {
		return nil, err
	}

	workDir := r.cfg.WorkDir()
	if err := os.MkdirAll(workDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	logger, closeLog, err := console.OpenLog(filepath.Join(workDir, LogFile))
	if err != nil {
		return nil, err
	}
	r.con.AttachLog(logger)
	debug.AttachLogger(logger)
	defer func() {
		debug.AttachLogger(nil)
		r.con.AttachLog(nil)
		closeLog()
	}()

	if r.cfg.Debug {
		debug.SetOutput(r.con.Writer())
		debug.Enable()
		color.New(color.FgCyan, color.Bold).Fprintln(r.con.Writer(), "[DEBUG MODE ENABLED] Detailed timing logs will be shown")
	}

	profile := r.cfg.Profile()
	scanID := storage.GenerateScanID()
	res := &Result{ScanID: scanID, WorkDir: workDir}

	// a scan without history still runs; only --resume and `history` need it
	hist, err := storage.OpenHistory(workDir)
	if err != nil {
		r.con.Warn("Scan history unavailable: %v", err)
		hist = nil
	} else {
		defer hist.Close()
		if err := hist.CreateScan(context.WithoutCancel(ctx), scanID, r.cfg.Target, version.Version, profile.Name()); err != nil {
			r.con.Warn("Failed to record scan: %v", err)
		}
	}

	r.con.Info("Starting AutoScope on %s (profile: %s, scan: %s)", r.cfg.Target, profile.Name(), scanID)
	r.con.Info("Output directory: %s", workDir)
	logger.WithField("scan_id", scanID).WithField("target", r.cfg.Target).Info("scan started")

	env := &module.Env{
		Target:   r.cfg.Target,
		WorkDir:  workDir,
		Profile:  profile,
		Wordlist: r.cfg.WordlistFile,
		Runner:   module.NewCommandRunner(profile.Timeout, r.con),
		Checker:  r.c,
		Console:  r.con,
	}

	mods := pipeline.Build(pipeline.Filter{
		OnlySubdomains: r.cfg.OnlySubdomains,
		NoDirs:         r.cfg.NoDirs,
		NoScreenshots:  r.cfg.NoScreenshots,
	})
	exe := pipeline.NewExecutor(env, mods)
	if hist != nil {
		exe.OnOutcome(func(o pipeline.Outcome) { r.record(context.WithoutCancel(ctx), hist, scanID, o) })
		if r.cfg.Resume {
			exe.WithResume(resumeFrom(hist))
		}
	} else if r.cfg.Resume {
		r.con.Warn("--resume ignored: no scan history available")
	}

	res.Outcomes = exe.Execute(ctx)

	// bookkeeping runs even after an interrupt
	finishCtx := context.WithoutCancel(ctx)
	if ctx.Err() != nil && hist != nil {
		// recorded before the report so a forced exit still leaves the scan flagged
		if err := hist.MarkScanInterrupted(finishCtx, scanID); err != nil {
			r.con.Warn("Failed to mark scan interrupted: %v", err)
		}
	}

	store := storage.NewLocalStorage(workDir)
	if path, err := report.Generate(finishCtx, store, r.cfg.Target, r.cfg.ReportFormat); err != nil {
		r.con.Error("Report generation failed: %v", err)
	} else {
		res.Report = path
		r.con.Info("Report generated: %s", path)
	}

	PrintSummary(r.con.Writer(), res.Outcomes)

	if hist != nil {
		status := storage.ScanCompleted
		if ctx.Err() != nil {
			status = storage.ScanInterrupted
		}
		if err := hist.FinishScan(finishCtx, scanID, status, res.Report, time.Since(start)); err != nil {
			r.con.Warn("Failed to record scan completion: %v", err)
		}
	}

	debug.Summary()
	r.con.Success("AutoScope scan completed!")
	return res, nil
}

func (r *Runner) record(ctx context.Context, hist *storage.History, scanID string, o pipeline.Outcome) {
	run := storage.ModuleRun{
		ScanID:     scanID,
		Module:     o.Name,
		Status:     string(o.State),
		Warnings:   o.Warnings,
		DurationMs: o.Duration.Milliseconds(),
	}
	if o.Artifact != nil {
		run.Artifact = o.Artifact.Path
	}
	if o.Err != nil {
		run.ErrorKind = module.KindOf(o.Err).String()
		run.Error = o.Err.Error()
	}
	if err := hist.RecordModule(context.WithoutCancel(ctx), run); err != nil {
		r.con.Warn("Failed to record %s: %v", o.Name, err)
	}
}

// resumeFrom reuses the last artifact a module left behind, as long as it is still on disk.
func resumeFrom(hist *storage.History) pipeline.Resumer {
	return pipeline.ResumeFunc(func(ctx context.Context, m module.Module) (*module.Artifact, bool) {
		path, err := hist.LastSuccessful(ctx, m.Name(), string(pipeline.StateSuccess), string(pipeline.StateResumed))
		if err != nil || path == "" {
			return nil, false
		}
		a := &module.Artifact{Kind: m.Kind(), Path: path, Dir: m.Kind() == module.KindScreenshot}
		return a, a.Exists()
	})
}
