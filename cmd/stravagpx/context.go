package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/oauth2"

	"stravagpx/internal/auth"
	"stravagpx/internal/config"
	"stravagpx/internal/logging"
	"stravagpx/internal/strava"
)

// endpointFlags override the Strava hosts; they are hidden and exist for
// testing against local servers.
type endpointFlags struct {
	api   string
	web   string
	oauth string
}

type commandContext struct {
	configFlag *string
	endpoints  *endpointFlags
}

func newCommandContext(configFlag *string, endpoints *endpointFlags) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		endpoints:  endpoints,
	}
}

func (c *commandContext) rawConfigPath() string {
	if c.configFlag == nil || strings.TrimSpace(*c.configFlag) == "" {
		return config.DefaultConfigPath
	}
	return strings.TrimSpace(*c.configFlag)
}

// configPath resolves the --config flag. The file must exist, be a regular
// file, and be writable, because the export records progress in it.
func (c *commandContext) configPath() (string, error) {
	path, err := config.ExpandPath(c.rawConfigPath())
	if err != nil {
		return "", fmt.Errorf("resolve config path: %w", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("config file %s does not exist (create one with `stravagpx config init`)", path)
		}
		return "", fmt.Errorf("stat config file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("config path %s is not a regular file", path)
	}
	file, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return "", fmt.Errorf("config file %s is not writable: %w", path, err)
	}
	_ = file.Close()
	return path, nil
}

func (c *commandContext) clientOptions() []strava.Option {
	var opts []strava.Option
	if c.endpoints == nil {
		return opts
	}
	if c.endpoints.api != "" {
		opts = append(opts, strava.WithAPIBaseURL(c.endpoints.api))
	}
	if c.endpoints.web != "" {
		opts = append(opts, strava.WithWebBaseURL(c.endpoints.web))
	}
	return opts
}

func (c *commandContext) authOptions() []auth.Option {
	if c.endpoints == nil || strings.TrimSpace(c.endpoints.oauth) == "" {
		return nil
	}
	base := strings.TrimRight(strings.TrimSpace(c.endpoints.oauth), "/")
	return []auth.Option{auth.WithEndpoint(oauth2.Endpoint{
		AuthURL:   base + "/oauth/authorize",
		TokenURL:  base + "/oauth/token",
		AuthStyle: oauth2.AuthStyleInParams,
	})}
}

func newLogger(settings config.Logging, w io.Writer) (*slog.Logger, error) {
	logger, err := logging.New(logging.Options{
		Level:  settings.Level,
		Format: settings.Format,
		Writer: w,
	})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return logger, nil
}
