package grammar

import (
	"regexp"
	"strings"

	"golang.org/x/mod/semver"

	"github.com/tordrt/ddlkit/internal/schema"
)

var versionPattern = regexp.MustCompile(`^\d+(\.\d+){0,2}`)

// canonicalVersion turns a server version such as "8.0.36" or
// "10.11.6-MariaDB-1" into a semver string, or "" when none can be read.
func canonicalVersion(version string) string {
	m := versionPattern.FindString(strings.TrimPrefix(strings.TrimSpace(version), "v"))
	if m == "" {
		return ""
	}
	return "v" + m
}

// serverVersion returns the connection's reported server version.
func serverVersion(conn schema.Connection) string {
	v, _ := conn.Config("version").(string)
	return v
}

// versionAtLeast reports whether version >= minimum. An unknown version is
// treated as current.
func versionAtLeast(version, minimum string) bool {
	v := canonicalVersion(version)
	if v == "" {
		return true
	}
	return semver.Compare(v, "v"+minimum) >= 0
}

func isMariaDB(conn schema.Connection) bool {
	if v, ok := conn.Config("mariadb").(bool); ok {
		return v
	}
	return strings.Contains(strings.ToLower(serverVersion(conn)), "mariadb")
}
