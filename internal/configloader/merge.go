package configloader

import "github.com/yaklabco/pyextent/pkg/config"

// merge combines two configurations, with override taking precedence over base.
//   - Scalars: override wins when non-zero
//   - Booleans: override wins when true
//   - Slices: override replaces base when non-nil
//
// Config files are layered by decoding over the running result instead, so
// they can also switch settings off.
func merge(base, override *config.Config) *config.Config {
	if base == nil {
		return override
	}
	if override == nil {
		return base
	}

	result := *base

	if override.Format != "" {
		result.Format = override.Format
	}
	if override.Jobs != 0 {
		result.Jobs = override.Jobs
	}
	if override.MaxFileSize != 0 {
		result.MaxFileSize = override.MaxFileSize
	}
	if override.Ignore != nil {
		result.Ignore = override.Ignore
	}

	if override.Markdown.Enabled {
		result.Markdown.Enabled = true
	}
	if override.Markdown.DetectUntagged {
		result.Markdown.DetectUntagged = true
	}

	if override.Resolve.Kinds != nil {
		result.Resolve.Kinds = override.Resolve.Kinds
	}
	if override.Resolve.LineNumbers {
		result.Resolve.LineNumbers = true
	}
	if override.Resolve.Strict {
		result.Resolve.Strict = true
	}

	if override.Trace.MaxLineLen != 0 {
		result.Trace.MaxLineLen = override.Trace.MaxLineLen
	}
	if override.Trace.Bullet != "" {
		result.Trace.Bullet = override.Trace.Bullet
	}
	if override.Trace.Dedup {
		result.Trace.Dedup = true
	}

	// CLI-only fields always come from the override.
	result.Line = override.Line
	result.Col = override.Col
	result.Output = override.Output
	result.Watch = override.Watch

	return &result
}
