package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/vapkit/proctor/internal/archive"
	"github.com/vapkit/proctor/internal/audit"
	"github.com/vapkit/proctor/internal/evaluate"
	"github.com/vapkit/proctor/internal/model"
	"github.com/vapkit/proctor/internal/report"
	"github.com/vapkit/proctor/internal/rules"
	"github.com/vapkit/proctor/internal/session"
	"github.com/vapkit/proctor/internal/trace"
)

// Config holds full daemon configuration.
type Config struct {
	RulesPath    string
	Inbox        string
	Outbox       string
	AuditPath    string
	ArchivePath  string
	PollMode     bool
	PollInterval time.Duration
}

// Daemon watches the inbox and evaluates dropped trace files.
type Daemon struct {
	cfg       Config
	rules     *rules.RuleSet
	rulesHash string
	auditLog  *audit.Log
	store     *archive.Store
	logger    *zap.Logger
}

// New creates a daemon with loaded rules and opened sinks.
func New(cfg Config, logger *zap.Logger) (*Daemon, error) {
	if cfg.Inbox == "" || cfg.Outbox == "" {
		return nil, fmt.Errorf("inbox and outbox directories are required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	rs, hash, err := rules.LoadWithHash(cfg.RulesPath)
	if err != nil {
		return nil, err
	}
	// Fail at startup, not per trace, when no verdict will be computable.
	if _, ok := rs.PassThreshold(); !ok {
		return nil, &session.MissingThresholdError{TestID: rs.TestID}
	}

	d := &Daemon{
		cfg:       cfg,
		rules:     rs,
		rulesHash: hash,
		logger:    logger,
	}

	if cfg.AuditPath != "" {
		d.auditLog, err = audit.Open(cfg.AuditPath)
		if err != nil {
			return nil, err
		}
	}
	if cfg.ArchivePath != "" {
		d.store, err = archive.Open(cfg.ArchivePath)
		if err != nil {
			d.closeSinks()
			return nil, err
		}
	}

	return d, nil
}

// Run processes existing inbox files, then watches for new ones.
// Blocks until ctx is cancelled.
func (d *Daemon) Run(ctx context.Context) error {
	defer d.closeSinks()

	for _, dir := range []string{d.cfg.Inbox, d.cfg.Outbox} {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	d.logger.Info("watch daemon started",
		zap.String("test_id", d.rules.TestID),
		zap.String("inbox", d.cfg.Inbox),
		zap.String("outbox", d.cfg.Outbox),
		zap.Bool("poll_mode", d.cfg.PollMode))

	if err := ScanExisting(d.cfg.Inbox, d.handleTrace); err != nil {
		return fmt.Errorf("scan inbox: %w", err)
	}

	if d.cfg.PollMode {
		return NewPollWatcher(d.cfg.Inbox, d.handleTrace, d.cfg.PollInterval).Run(ctx)
	}
	return NewInboxWatcher(d.cfg.Inbox, d.handleTrace).Run(ctx)
}

// handleTrace evaluates one dropped trace file end to end.
func (d *Daemon) handleTrace(path string) {
	logger := d.logger.With(zap.String("trace", filepath.Base(path)))

	doc, err := trace.Load(path)
	if err != nil {
		logger.Error("trace rejected", zap.Error(err))
		return
	}

	rep, sess, err := evaluate.Run(d.rules, doc, evaluate.Options{
		RulesHash: d.rulesHash,
		AuditLog:  d.auditLog,
		Observer:  &zapObserver{logger: logger},
	})
	if err != nil {
		logger.Error("evaluation failed", zap.Error(err))
		return
	}

	if err := d.writeReport(path, sess.ID(), rep); err != nil {
		logger.Error("write report", zap.Error(err))
		return
	}

	if d.store != nil {
		if err := d.store.Save(sess.ID(), rep, d.rulesHash); err != nil {
			logger.Error("archive report", zap.Error(err))
		}
	}

	logger.Info("trace evaluated",
		zap.String("session_id", sess.ID()),
		zap.Int("final_score", rep.FinalScore),
		zap.String("status", string(rep.Status)),
		zap.Int("violations", len(rep.Violations)))
}

// writeReport atomically writes the JSON report next to the trace's
// name in the outbox.
func (d *Daemon) writeReport(tracePath, sessionID string, rep model.Report) error {
	out, err := report.FormatJSON(rep)
	if err != nil {
		return err
	}

	base := strings.TrimSuffix(filepath.Base(tracePath), filepath.Ext(tracePath))
	dst := filepath.Join(d.cfg.Outbox, base+".report.json")
	tmp := dst + ".tmp"

	if err := os.WriteFile(tmp, []byte(out+"\n"), 0600); err != nil {
		return fmt.Errorf("write temp report: %w", err)
	}
	if err := os.Rename(tmp, dst); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename report: %w", err)
	}
	return nil
}

func (d *Daemon) closeSinks() {
	if d.auditLog != nil {
		_ = d.auditLog.Close()
	}
	if d.store != nil {
		_ = d.store.Close()
	}
}

// zapObserver surfaces evaluation events through structured logging.
type zapObserver struct {
	logger *zap.Logger
}

func (o *zapObserver) ActionObserved(action model.Action) {
	o.logger.Debug("observing action", zap.String("action_type", action.Type))
}

func (o *zapObserver) ViolationDetected(v model.Violation, score int) {
	o.logger.Warn("violation",
		zap.String("constraint_id", v.ConstraintID),
		zap.String("message", v.Message),
		zap.Int("penalty", v.Penalty),
		zap.Int("score", score))
}
