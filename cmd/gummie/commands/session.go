package commands

import (
	"context"
	"log/slog"
	"os"

	"gummiebot/internal/telemetry"
	"gummiebot/lib/gumtree"
	"gummiebot/lib/history"
	"gummiebot/lib/restyutil"

	"github.com/jedib0t/go-pretty/v6/table"
)

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(os.Stdout)
	return t
}

func newSession() (*gumtree.Session, error) {
	var output restyutil.InstrumentOutput
	if cfg.DumpDir != "" {
		fsOutput, err := restyutil.NewFilesystemOutput(cfg.DumpDir)
		if err != nil {
			return nil, err
		}
		output = fsOutput
	}

	client, err := gumtree.NewRestyHTTP(gumtree.RestyOptions{
		BaseUrl:           cfg.BaseUrl,
		RequestsPerSecond: cfg.RequestsPerSecond,
		Timeout:           cfg.Timeout(),
		CloudflareBypass:  true,
		Output:            output,
	})
	if err != nil {
		return nil, err
	}

	return gumtree.NewSession(client, telemetry.SlogAPI{}, gumtree.Options{
		SuggestionThreshold: cfg.SuggestionThreshold,
	}), nil
}

func loginSession(ctx context.Context) (*gumtree.Session, error) {
	username, password, err := resolveCredentials(cfg, os.Getenv, promptStdin)
	if err != nil {
		return nil, err
	}
	session, err := newSession()
	if err != nil {
		return nil, err
	}

	slog.Info("logging in", "username", username)
	err = session.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}
	return session, nil
}

// recorder stores attempt outcomes in the history database, it does nothing
// when history is disabled.
type recorder struct {
	store *history.Store
}

func openRecorder() (recorder, error) {
	if !cfg.HistoryEnabled() {
		return recorder{}, nil
	}
	store, err := history.Open(cfg.HistoryDb)
	if err != nil {
		return recorder{}, err
	}
	return recorder{store: &store}, nil
}

func (r recorder) record(ctx context.Context, action history.Action, subject string, success bool, err error) {
	if r.store == nil {
		return
	}
	_, dberr := r.store.Record(ctx, action, subject, success, err)
	if dberr != nil {
		slog.Warn("failed to record history", "action", action, "subject", subject, "err", dberr)
	}
}

func (r recorder) Close() {
	if r.store == nil {
		return
	}
	err := r.store.Close()
	if err != nil {
		slog.Warn("failed to close history", "err", err)
	}
}
