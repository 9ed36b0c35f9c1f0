package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ramonehamilton/EDH-Tracker/internal/scheduler"
	"github.com/ramonehamilton/EDH-Tracker/internal/storage"
)

// Snapshots returns a snapshot manager when the store is SQLite.
func (a *App) Snapshots() (*storage.SnapshotManager, bool) {
	svc, ok := a.Store.(*storage.Service)
	if !ok {
		return nil, false
	}
	m := a.Config.Maintenance
	return storage.NewSnapshotManager(svc.DB(), m.SnapshotDir, m.SnapshotKeep), true
}

// MaintenanceJobs builds the background schedulers enabled in the config.
// They are returned unstarted.
func (a *App) MaintenanceJobs() ([]*scheduler.Scheduler, error) {
	var jobs []*scheduler.Scheduler

	if interval := a.Config.GetReconcileInterval(); interval > 0 {
		logger := a.Logger.Named("reconcile")
		job, err := scheduler.New(func(ctx context.Context) error {
			report, err := a.Friends.Reconcile(ctx, false)
			if err != nil {
				return err
			}
			logger.Info("friend graph reconciled",
				zap.Int("profiles", report.ProfilesScanned),
				zap.Int("friends_removed", report.FriendsRemoved),
				zap.Int("requests_removed", report.RequestsRemoved))
			return nil
		}, scheduler.Config{Name: "reconcile", Interval: interval}, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create reconcile job: %w", err)
		}
		jobs = append(jobs, job)
	}

	if interval := a.Config.GetSnapshotInterval(); interval > 0 {
		snapshots, ok := a.Snapshots()
		if !ok {
			a.Logger.Debug("snapshots skipped for non-sqlite backend",
				zap.String("backend", a.Config.Storage.Backend))
			return jobs, nil
		}

		logger := a.Logger.Named("snapshots")
		job, err := scheduler.New(func(ctx context.Context) error {
			info, err := snapshots.Snapshot(ctx)
			if err != nil {
				return err
			}
			logger.Info("snapshot written",
				zap.String("path", info.Path),
				zap.Int64("bytes", info.Size))
			return nil
		}, scheduler.Config{Name: "snapshots", Interval: interval}, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create snapshot job: %w", err)
		}
		jobs = append(jobs, job)
	}

	return jobs, nil
}
