package hub

import (
	"bufio"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	sshOriginPattern   = regexp.MustCompile(`^git@([^:]+):(.+?)(\.git)?$`)
	httpsOriginPattern = regexp.MustCompile(`^https?://([^/]+)/(.+?)(\.git)?$`)
)

// normalizeRepoID derives a stable repo_id for path by probing, in order,
// a git origin URL, a package descriptor name, then the local directory
// name (§4.6 "Repo-ID normalization").
func normalizeRepoID(path string) string {
	if origin := gitOriginURL(path); origin != "" {
		if id := normalizeOriginURL(origin); id != "" {
			return id
		}
	}
	if name := packageDescriptorName(path); name != "" {
		return "package/" + name
	}
	return "local/" + filepath.Base(filepath.Clean(path))
}

// normalizeOriginURL maps `git@host:org/name(.git)?` and
// `https://host/org/name(.git)?` to `host/org/name`.
func normalizeOriginURL(origin string) string {
	origin = strings.TrimSpace(origin)
	if m := sshOriginPattern.FindStringSubmatch(origin); m != nil {
		return m[1] + "/" + m[2]
	}
	if m := httpsOriginPattern.FindStringSubmatch(origin); m != nil {
		return m[1] + "/" + m[2]
	}
	return ""
}

// gitOriginURL shells out to git for the origin remote, the way the
// teacher's internal/cmd and internal/diff packages read git state: a
// short-lived exec.Command rather than parsing .git/config directly.
func gitOriginURL(path string) string {
	cmd := exec.Command("git", "remote", "get-url", "origin")
	cmd.Dir = path
	out, err := cmd.Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}

// packageDescriptorName reads the module path declared in path's go.mod and
// returns its last segment, or "" if there is no go.mod or it declares no
// module. Other descriptors (package.json, pyproject.toml) are not read.
func packageDescriptorName(path string) string {
	if mod := readGoModuleName(filepath.Join(path, "go.mod")); mod != "" {
		parts := strings.Split(mod, "/")
		return parts[len(parts)-1]
	}
	return ""
}

// readGoModuleName extracts the module path from a go.mod's "module" line.
func readGoModuleName(goModPath string) string {
	f, err := os.Open(goModPath)
	if err != nil {
		return ""
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, "module ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "module "))
		}
	}
	return ""
}
