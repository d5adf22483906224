package export

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	ferrors "git.home.luguber.info/inful/sitecfg/internal/foundation/errors"
	"git.home.luguber.info/inful/sitecfg/internal/logfields"
)

// StageDir returns the sibling staging directory used for out.
func StageDir(out string) string { return filepath.Clean(out) + "_stage" }

// beginStaging creates a fresh <out>_stage sibling. A stage left behind by
// an interrupted run is discarded.
func (r *run) beginStaging() error {
	stage := StageDir(r.opts.OutDir)
	if err := os.RemoveAll(stage); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to clear staging directory").
			WithContext(ferrors.ContextTarget, stage).Build()
	}
	if err := os.MkdirAll(stage, 0o750); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to create staging directory").
			WithContext(ferrors.ContextTarget, stage).Build()
	}
	r.stageDir = stage
	r.logger.Debug("Initialized staging directory", slog.String("staging", stage), logfields.Path(r.opts.OutDir))
	return nil
}

// finalizeStaging promotes the stage to the output location:
//  1. Move the existing output (if any) to <out>.prev, replacing an old backup.
//  2. Rename the stage to the output.
//  3. Remove the backup, best-effort.
//
// If step 2 fails the backup is moved back.
func (r *run) finalizeStaging() error {
	if r.stageDir == "" {
		return ferrors.InternalError("no staging directory initialized").Build()
	}
	if _, err := os.Stat(r.stageDir); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "staging directory missing").
			WithContext(ferrors.ContextTarget, r.stageDir).Build()
	}

	out := filepath.Clean(r.opts.OutDir)
	prev := out + ".prev"
	if _, err := os.Stat(prev); err == nil {
		for i := 0; i < 3; i++ {
			if err := os.RemoveAll(prev); err == nil {
				break
			}
			if i < 2 {
				time.Sleep(100 * time.Millisecond)
			}
		}
	}
	if err := os.MkdirAll(filepath.Dir(out), 0o750); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to create output parent").
			WithContext(ferrors.ContextTarget, out).Build()
	}

	hadPrev := false
	if _, err := os.Stat(out); err == nil {
		if err := os.Rename(out, prev); err != nil {
			return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to back up existing output").
				WithContext(ferrors.ContextTarget, out).Build()
		}
		hadPrev = true
	}
	if err := os.Rename(r.stageDir, out); err != nil {
		if hadPrev {
			if rerr := os.Rename(prev, out); rerr != nil {
				err = fmt.Errorf("%w (restoring previous output: %v)", err, rerr)
			}
		}
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to promote staging directory").
			WithContext(ferrors.ContextTarget, out).Build()
	}
	r.stageDir = ""

	if hadPrev {
		if err := os.RemoveAll(prev); err != nil {
			r.logger.Warn("Failed to remove previous output", logfields.Path(prev), logfields.Error(err))
		}
	}
	r.logger.Debug("Promoted staging directory", logfields.Path(out))
	return nil
}

// abortStaging removes the stage after a failed run so nothing is orphaned.
func (r *run) abortStaging() {
	if r.stageDir == "" {
		return
	}
	dir := r.stageDir
	r.stageDir = "" // prevent double cleanup
	if err := os.RemoveAll(dir); err != nil {
		r.logger.Warn("Failed to remove staging directory after abort", slog.String("staging", dir), logfields.Error(err))
	} else {
		r.logger.Debug("Removed staging directory after abort", slog.String("staging", dir))
	}
}
