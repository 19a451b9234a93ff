// Package config loads and persists warpdesk's logical state — a server's
// client allow-list and remembered placements, or a client's own Cid and
// remembered placement — independent of on-disk format, via
// github.com/spf13/viper, mirroring the retrieval pack's own
// config.Load()/config.Get() convention for a KVM-style tool.
package config

import (
	"errors"
	"os"

	"github.com/spf13/viper"

	"github.com/warpdesk/warpdesk/ids"
	"github.com/warpdesk/warpdesk/wderrors"
)

// Placement is a remembered display rectangle, keyed by the client's own
// chosen display identifier so it round-trips across restarts even if the
// OS re-enumerates monitors in a different order.
type Placement struct {
	DisplayID   uint32  `mapstructure:"display_id"`
	X           int32   `mapstructure:"x"`
	Y           int32   `mapstructure:"y"`
	Width       int32   `mapstructure:"width"`
	Height      int32   `mapstructure:"height"`
	IsPrimary   bool    `mapstructure:"is_primary"`
	ScaleFactor float32 `mapstructure:"scale_factor"`
	Rotation    float32 `mapstructure:"rotation"`
	Frequency   float32 `mapstructure:"frequency"`
}

// ClientConfig is the client's persisted logical state (§6 "Persistent
// state: Client: its Cid; optionally, a remembered placement").
type ClientConfig struct {
	Cid        uint32      `mapstructure:"cid"`
	Placements []Placement `mapstructure:"placements"`
}

// ServerConfig is the server's persisted logical state (§6 "Server: an
// allow-list of Cid values; optionally, a full placement spec for each
// allowed client's displays").
type ServerConfig struct {
	AllowList []uint32             `mapstructure:"allow_list"`
	Placement map[uint32][]Placement `mapstructure:"placements"`
}

// LoadClient reads a client config from path. A missing file is not an
// error — it is treated as a fresh client with no remembered placement,
// matching the retrieval pack's own config.Load() semantics of tolerating
// a first run.
func LoadClient(path string) (ClientConfig, error) {
	v := newViper(path)
	var cfg ClientConfig
	if err := v.ReadInConfig(); err != nil {
		if isNotFound(err) {
			return cfg, nil
		}
		return cfg, wderrors.Wrap(wderrors.ConfigInvalid, "reading client config", err)
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, wderrors.Wrap(wderrors.ConfigInvalid, "parsing client config", err)
	}
	return cfg, nil
}

// SaveClient persists cfg to path.
func SaveClient(path string, cfg ClientConfig) error {
	v := newViper(path)
	v.Set("cid", cfg.Cid)
	v.Set("placements", cfg.Placements)
	if err := v.WriteConfigAs(path); err != nil {
		return wderrors.Wrap(wderrors.ConfigInvalid, "writing client config", err)
	}
	return nil
}

// LoadServer reads a server config from path. Unlike the client config, an
// absent or empty allow-list is fatal (§7 ConfigInvalid): a server with no
// allow-list can authorise nobody.
func LoadServer(path string) (ServerConfig, error) {
	v := newViper(path)
	var cfg ServerConfig
	if err := v.ReadInConfig(); err != nil {
		return cfg, wderrors.Wrap(wderrors.ConfigInvalid, "reading server config", err)
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, wderrors.Wrap(wderrors.ConfigInvalid, "parsing server config", err)
	}
	if len(cfg.AllowList) == 0 {
		return cfg, wderrors.New(wderrors.ConfigInvalid, "server allow-list is empty")
	}
	return cfg, nil
}

// SaveServer persists cfg to path.
func SaveServer(path string, cfg ServerConfig) error {
	v := newViper(path)
	v.Set("allow_list", cfg.AllowList)
	v.Set("placements", cfg.Placement)
	if err := v.WriteConfigAs(path); err != nil {
		return wderrors.Wrap(wderrors.ConfigInvalid, "writing server config", err)
	}
	return nil
}

// AllowListSet returns cfg's allow-list as a lookup set.
func (cfg ServerConfig) AllowListSet() map[ids.Cid]struct{} {
	out := make(map[ids.Cid]struct{}, len(cfg.AllowList))
	for _, c := range cfg.AllowList {
		out[ids.Cid(c)] = struct{}{}
	}
	return out
}

// RememberedPlacement returns the placements previously recorded for cid,
// if any, used by the handshake's desync check.
func (cfg ServerConfig) RememberedPlacement(cid ids.Cid) ([]Placement, bool) {
	p, ok := cfg.Placement[uint32(cid)]
	return p, ok
}

func newViper(path string) *viper.Viper {
	v := viper.New()
	v.SetConfigFile(path)
	return v
}

func isNotFound(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) {
		return true
	}
	return os.IsNotExist(err)
}
