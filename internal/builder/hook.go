package builder

import (
	"context"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"

	"git.home.luguber.info/inful/pluginpack/internal/errors"
)

// hookName is the optional executable plugin authors drop at the tree root
// to generate files before validation runs.
const hookName = "pre_build_hook"

// runPreBuildHook executes the hook when present and executable. Hook
// output goes to stderr so it never mixes with pipeline progress.
func runPreBuildHook(ctx context.Context, st *state) error {
	if st.opts.SkipHook {
		return nil
	}
	path := filepath.Join(st.tree.Root, hookName)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() || info.Mode().Perm()&0o111 == 0 {
		return nil
	}

	slog.Info("Running pre-build hook", "hook", path)
	cmd := exec.CommandContext(ctx, path)
	cmd.Dir = st.tree.Root
	cmd.Stdout = os.Stderr
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return errors.HookFailed(path, err)
	}
	return nil
}
