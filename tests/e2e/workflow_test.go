package e2e

import (
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

// findBinary returns the habitquest binary from HABITQUEST_BIN_DIR or ../../bin.
func findBinary(t *testing.T) string {
	t.Helper()
	binDir := os.Getenv("HABITQUEST_BIN_DIR")
	if binDir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			t.Fatalf("Failed to get cwd: %v", err)
		}
		binDir = filepath.Join(cwd, "..", "..", "bin")
	}
	binDir, _ = filepath.Abs(binDir)

	cliPath := filepath.Join(binDir, "habitquest")
	if _, err := os.Stat(cliPath); os.IsNotExist(err) {
		t.Skipf("CLI binary not found at %s, build it first or set HABITQUEST_BIN_DIR", cliPath)
	}
	return cliPath
}

// isolatedEnv strips any habitquest settings from the environment and points
// the config dir at configDir.
func isolatedEnv(configDir string, extra ...string) []string {
	var env []string
	for _, e := range os.Environ() {
		if strings.HasPrefix(e, "HABITQUEST_") || strings.HasPrefix(e, "HOME=") || strings.HasPrefix(e, "XDG_CONFIG_HOME=") {
			continue
		}
		env = append(env, e)
	}
	env = append(env,
		"HOME="+configDir,
		"XDG_CONFIG_HOME="+configDir,
		"HABITQUEST_CONFIG_DIR="+configDir,
		"NO_COLOR=1",
	)
	return append(env, extra...)
}

func TestEndToEndWorkflow(t *testing.T) {
	cliPath := findBinary(t)

	backends := []string{"sqlite", "json"}
	for _, backend := range backends {
		t.Run(backend, func(t *testing.T) {
			tempDir := t.TempDir()
			env := isolatedEnv(tempDir, "HABITQUEST_STORAGE_BACKEND="+backend)
			if backend == "json" {
				env = append(env, "HABITQUEST_STORAGE_PATH=habitquest.json")
			}

			runCmd(t, cliPath, env, "init")
			runCmd(t, cliPath, env, "signin", "e2e@example.com", "--name", "E2E")

			out := runCmd(t, cliPath, env, "habit", "add", "Drink Water", "--xp", "10")
			assertContains(t, out, `Added habit "Drink Water"`)

			out = runCmd(t, cliPath, env, "check", "Drink Water")
			assertContains(t, out, "completed")
			assertContains(t, out, "Achievement unlocked")
			runCmd(t, cliPath, env, "habit", "from-template", "read")

			out = runCmd(t, cliPath, env, "progress")
			assertContains(t, out, "Level 2")

			out = runCmd(t, cliPath, env, "achievements", "list")
			assertContains(t, out, "unlocked")

			exportPath := filepath.Join(tempDir, "export.json")
			runCmd(t, cliPath, env, "export", "-o", exportPath, "--xlsx", filepath.Join(tempDir, "report.xlsx"))

			out = runCmd(t, cliPath, env, "import", exportPath, "--merge")
			assertContains(t, out, "Merged data")

			out = runCmd(t, cliPath, env, "validate")
			assertContains(t, out, "No conflicts detected.")

			out = runCmd(t, cliPath, env, "backup", "list")
			assertContains(t, out, "Available backups")

			runCmd(t, cliPath, env, "signout")
			cmd := exec.Command(cliPath, "habit", "list")
			cmd.Env = env
			if out, err := cmd.CombinedOutput(); err == nil {
				t.Fatalf("habit list succeeded after signout: %s", out)
			}
		})
	}
}

func TestLockedDataFile(t *testing.T) {
	cliPath := findBinary(t)
	tempDir := t.TempDir()
	env := isolatedEnv(tempDir)

	runCmd(t, cliPath, env, "init")

	// the test process is alive, so its pid marks the lock as held
	lockPath := filepath.Join(tempDir, "habitquest.lock")
	if err := os.WriteFile(lockPath, []byte(strconv.Itoa(os.Getpid())), 0600); err != nil {
		t.Fatalf("Failed to write lock file: %v", err)
	}

	cmd := exec.Command(cliPath, "signin", "e2e@example.com")
	cmd.Env = env
	out, err := cmd.CombinedOutput()
	if err == nil {
		t.Fatalf("signin succeeded while locked: %s", out)
	}
	assertContains(t, string(out), "in use")

	if err := os.Remove(lockPath); err != nil {
		t.Fatalf("Failed to remove lock file: %v", err)
	}
	runCmd(t, cliPath, env, "signin", "e2e@example.com")
}

func runCmd(t *testing.T, path string, env []string, args ...string) string {
	t.Helper()
	cmd := exec.Command(path, args...)
	cmd.Env = env
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("Command %s %v failed: %v\nOutput: %s", path, args, err, out)
	}
	return string(out)
}

func assertContains(t *testing.T, got, want string) {
	t.Helper()
	if !strings.Contains(got, want) {
		t.Errorf("output does not contain %q:\n%s", want, got)
	}
}
