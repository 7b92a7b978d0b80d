package config

import (
	"github.com/danmuck/pngctl/internal/png"
	"github.com/danmuck/pngctl/internal/source"
)

func (c Config) SourceOptions() source.Options {
	opts := source.DefaultOptions()
	opts.Timeout = c.Fetch.Timeout
	opts.UserAgent = c.Fetch.UserAgent
	opts.Limits = png.Limits{MaxInputBytes: c.Fetch.MaxBytes}
	opts.FileMode = c.Output.FileMode
	return opts
}

func (c Config) ServerLimits() png.Limits {
	return png.Limits{MaxInputBytes: c.Server.MaxBodyBytes}
}
