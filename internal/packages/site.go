package packages

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// DefaultPython is the interpreter queried for site directories.
const DefaultPython = "python3"

// sitePackagesScript prints the interpreter's site directories, global first.
const sitePackagesScript = `import site, sys
paths = []
try:
    paths.extend(site.getsitepackages())
except AttributeError:
    pass
try:
    paths.append(site.getusersitepackages())
except AttributeError:
    pass
paths.extend(p for p in sys.path if p.endswith(("site-packages", "dist-packages")))
print("\n".join(paths))
`

// SitePackages asks the python interpreter for its site directories.
// Duplicates are removed, preserving first occurrence.
func SitePackages(ctx context.Context, python string) ([]string, error) {
	if python == "" {
		python = DefaultPython
	}
	out, err := exec.CommandContext(ctx, python, "-c", sitePackagesScript).Output()
	if err != nil {
		return nil, fmt.Errorf("failed to query site directories from %s: %w", python, err)
	}
	return parseSiteDirs(string(out)), nil
}

func parseSiteDirs(out string) []string {
	seen := make(map[string]bool)
	var dirs []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || seen[line] {
			continue
		}
		seen[line] = true
		dirs = append(dirs, line)
	}
	return dirs
}
