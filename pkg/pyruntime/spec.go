package pyruntime

import (
	"regexp"
	"strings"

	"golang.org/x/mod/semver"

	"github.com/matzehuels/setup-pdm/pkg/errors"
)

// Spec is a parsed Python version specifier. All clauses must match.
type Spec struct {
	raw     string
	clauses []clause
	dev     bool // "-dev" suffix: prereleases of the named version are wanted
}

type clause struct {
	op      string // "==", "!=", ">=", "<=", ">", "<"
	version string // canonical semver, e.g. "v3.11.0"
	prefix  string // "v3" or "v3.11" for wildcard equality; empty for exact
}

var (
	opRE      = regexp.MustCompile(`^(~=|===|==|!=|>=|<=|>|<)?\s*(.+)$`)
	numberRE  = regexp.MustCompile(`^(\d+)(?:\.(\d+|x|X|\*))?(?:\.(\d+|x|X|\*))?$`)
	pyPreRE   = regexp.MustCompile(`^(\d+\.\d+\.\d+)(a|b|rc)(\d+)$`)
	splitSpec = regexp.MustCompile(`[,\s]+`)
	opSpaceRE = regexp.MustCompile(`(~=|===|==|!=|>=|<=|>|<)\s+`)
)

// ParseSpec parses a version specifier. Clauses are separated by commas or
// whitespace; bare versions are equality clauses and a partial version
// ("3", "3.11", "3.11.x") matches every release with that prefix.
func ParseSpec(s string) (*Spec, error) {
	raw := strings.TrimSpace(s)
	spec := &Spec{raw: raw}
	body := raw
	if strings.HasSuffix(body, "-dev") {
		spec.dev = true
		body = strings.TrimSuffix(body, "-dev")
	}
	body = opSpaceRE.ReplaceAllString(body, "$1")
	for _, part := range splitSpec.Split(body, -1) {
		if part == "" {
			continue
		}
		cs, err := parseClause(part)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidVersion, err, "invalid python version spec %q", raw)
		}
		spec.clauses = append(spec.clauses, cs...)
	}
	if len(spec.clauses) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidVersion, "empty python version spec")
	}
	return spec, nil
}

func parseClause(part string) ([]clause, error) {
	m := opRE.FindStringSubmatch(part)
	op, num := m[1], m[2]
	n := numberRE.FindStringSubmatch(num)
	if n == nil {
		return nil, errors.New(errors.ErrCodeInvalidVersion, "unsupported version %q", num)
	}

	// Collect numeric components up to the first wildcard or gap.
	var nums []string
	wildcard := false
	for _, c := range n[1:] {
		if c == "" {
			break
		}
		if c == "x" || c == "X" || c == "*" {
			wildcard = true
			break
		}
		nums = append(nums, c)
	}
	full := canonical(nums)
	partial := len(nums) < 3

	switch op {
	case "", "==", "===":
		if partial {
			return []clause{{op: "==", prefix: prefixOf(nums)}}, nil
		}
		return []clause{{op: "==", version: full}}, nil
	case "!=":
		if partial {
			return []clause{{op: "!=", prefix: prefixOf(nums)}}, nil
		}
		return []clause{{op: "!=", version: full}}, nil
	case "~=":
		// ~=3.10 means >=3.10, ==3.*; ~=3.10.2 means >=3.10.2, ==3.10.*.
		if wildcard || len(nums) < 2 {
			return nil, errors.New(errors.ErrCodeInvalidVersion, "~= needs at least MAJOR.MINOR: %q", part)
		}
		return []clause{
			{op: ">=", version: full},
			{op: "==", prefix: prefixOf(nums[:len(nums)-1])},
		}, nil
	default:
		if wildcard {
			return nil, errors.New(errors.ErrCodeInvalidVersion, "wildcards are not allowed with %s", op)
		}
		return []clause{{op: op, version: full}}, nil
	}
}

// canonical pads nums to MAJOR.MINOR.PATCH.
func canonical(nums []string) string {
	parts := append([]string{}, nums...)
	for len(parts) < 3 {
		parts = append(parts, "0")
	}
	return "v" + strings.Join(parts, ".")
}

func prefixOf(nums []string) string {
	return "v" + strings.Join(nums, ".")
}

// String returns the spec as written.
func (s *Spec) String() string { return s.raw }

// Match reports whether version satisfies the spec. Prereleases match only
// when allowPrereleases is set or the spec ends in "-dev".
func (s *Spec) Match(version string, allowPrereleases bool) bool {
	v, ok := toSemver(version)
	if !ok {
		return false
	}
	if semver.Prerelease(v) != "" && !allowPrereleases && !s.dev {
		return false
	}
	for _, c := range s.clauses {
		if !c.match(v) {
			return false
		}
	}
	return true
}

func (c clause) match(v string) bool {
	if c.prefix != "" {
		var got string
		if strings.Count(c.prefix, ".") == 0 {
			got = semver.Major(v)
		} else {
			got = semver.MajorMinor(v)
		}
		if c.op == "!=" {
			return got != c.prefix
		}
		return got == c.prefix
	}

	cmp := semver.Compare(v, c.version)
	switch c.op {
	case "==":
		return cmp == 0
	case "!=":
		return cmp != 0
	case ">=":
		return cmp >= 0
	case "<=":
		return cmp <= 0
	case ">":
		return cmp > 0
	case "<":
		return cmp < 0
	}
	return false
}

// toSemver converts a Python version string ("3.11.2", "3.13.0rc1",
// "3.13.0-rc.1") to canonical semver.
func toSemver(version string) (string, bool) {
	version = strings.TrimSpace(version)
	if m := pyPreRE.FindStringSubmatch(version); m != nil {
		label := map[string]string{"a": "alpha", "b": "beta", "rc": "rc"}[m[2]]
		version = m[1] + "-" + label + "." + m[3]
	}
	v := "v" + version
	if !semver.IsValid(v) {
		return "", false
	}
	return semver.Canonical(v), true
}

// NormalizeVersion returns version in the MAJOR.MINOR.PATCH[-pre] form used
// by the tool cache, or "" if it is not a version.
func NormalizeVersion(version string) string {
	v, ok := toSemver(version)
	if !ok {
		return ""
	}
	return strings.TrimPrefix(v, "v")
}
