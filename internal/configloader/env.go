package configloader

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/yaklabco/pyextent/pkg/config"
)

// envVarPrefix is the prefix for all pyextent environment variables.
const envVarPrefix = "PYEXTENT_"

// envVar describes one environment override.
type envVar struct {
	help  string
	apply func(cfg *config.Config, value string) error
}

func stringVar(help string, set func(*config.Config, string)) envVar {
	return envVar{help: help, apply: func(cfg *config.Config, value string) error {
		set(cfg, value)
		return nil
	}}
}

func boolVar(help string, set func(*config.Config, bool)) envVar {
	return envVar{help: help, apply: func(cfg *config.Config, value string) error {
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean %q (expected true/false/1/0)", value)
		}
		set(cfg, b)
		return nil
	}}
}

func intVar(help string, set func(*config.Config, int64)) envVar {
	return envVar{help: help, apply: func(cfg *config.Config, value string) error {
		i, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid integer %q", value)
		}
		set(cfg, i)
		return nil
	}}
}

func sliceVar(help string, set func(*config.Config, []string)) envVar {
	return envVar{help: help, apply: func(cfg *config.Config, value string) error {
		set(cfg, parseSliceValue(value))
		return nil
	}}
}

// envVars maps environment variable names (without prefix) to overrides.
//
//nolint:gochecknoglobals // Read-only lookup table.
var envVars = map[string]envVar{
	"FORMAT": stringVar("Output format: text or json",
		func(c *config.Config, v string) { c.Format = config.OutputFormat(v) }),
	"JOBS": intVar("Number of parallel workers (0 = auto)",
		func(c *config.Config, v int64) { c.Jobs = int(v) }),
	"MAX_FILE_SIZE": intVar("Largest file parsed, in bytes",
		func(c *config.Config, v int64) { c.MaxFileSize = v }),
	"IGNORE": sliceVar("Comma-separated list of ignore patterns",
		func(c *config.Config, v []string) { c.Ignore = v }),
	"MARKDOWN": boolVar("Resolve Python blocks in Markdown files: true or false",
		func(c *config.Config, v bool) { c.Markdown.Enabled = v }),
	"DETECT_UNTAGGED": boolVar("Classify untagged Markdown code blocks: true or false",
		func(c *config.Config, v bool) { c.Markdown.DetectUntagged = v }),
	"KINDS": sliceVar("Comma-separated node kinds to resolve",
		func(c *config.Config, v []string) { c.Resolve.Kinds = v }),
	"LINE_NUMBERS": boolVar("Prefix extents with line numbers: true or false",
		func(c *config.Config, v bool) { c.Resolve.LineNumbers = v }),
	"STRICT": boolVar("Count approximate extents as failures: true or false",
		func(c *config.Config, v bool) { c.Resolve.Strict = v }),
	"TRACE_MAX_LINE_LEN": intVar("Trace truncation length for repeated lines",
		func(c *config.Config, v int64) { c.Trace.MaxLineLen = int(v) }),
	"TRACE_BULLET": stringVar("Trace line prefix",
		func(c *config.Config, v string) { c.Trace.Bullet = v }),
	"TRACE_DEDUP": boolVar("Abbreviate repeated trace text: true or false",
		func(c *config.Config, v bool) { c.Trace.Dedup = v }),
}

// LoadFromEnv applies environment variable overrides to the configuration.
// Empty variables are ignored.
func LoadFromEnv(cfg *config.Config) error {
	if cfg == nil {
		return nil
	}

	for _, suffix := range envVarSuffixes() {
		name := envVarPrefix + suffix
		value := os.Getenv(name)
		if value == "" {
			continue
		}
		if err := envVars[suffix].apply(cfg, value); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}

	return nil
}

// envVarSuffixes returns the suffixes sorted, so the first failure reported
// is stable.
func envVarSuffixes() []string {
	suffixes := make([]string, 0, len(envVars))
	for suffix := range envVars {
		suffixes = append(suffixes, suffix)
	}
	sort.Strings(suffixes)
	return suffixes
}

// parseSliceValue parses a comma-separated string into a slice.
func parseSliceValue(value string) []string {
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// ListEnvVars returns all supported environment variables with their descriptions.
func ListEnvVars() map[string]string {
	out := make(map[string]string, len(envVars))
	for suffix, v := range envVars {
		out[envVarPrefix+suffix] = v.help
	}
	return out
}
