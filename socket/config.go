/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package socket

import (
	"fmt"

	libval "github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/viper"
)

// Config is the validate-then-apply configuration surface for Init,
// loadable from any source viper supports (file, env, remote) via
// LoadConfig, or constructed directly with DefaultConfig.
type Config struct {
	MaxSockets      int  `mapstructure:"max_sockets" validate:"required,gt=0"`
	BufferSize      int  `mapstructure:"buffer_size" validate:"required,gt=0"`
	DefaultBlocking bool `mapstructure:"default_blocking"`
	DefaultNoDelay  bool `mapstructure:"default_no_delay"`

	// Registerer receives the socket/metrics collectors on Init. A nil
	// Registerer disables metrics without failing Init.
	Registerer prometheus.Registerer `mapstructure:"-"`

	// Logger backs every component's log output. A nil Logger is replaced
	// by a discard logger at Init.
	Logger Logger `mapstructure:"-"`
}

// DefaultConfig returns a Config with the module's baseline sizing: 4096
// sockets, 32KiB buffers per record, non-blocking descriptors, and
// TCP_NODELAY enabled by default.
func DefaultConfig() *Config {
	return &Config{
		MaxSockets:      4096,
		BufferSize:      DefaultBufferSize,
		DefaultBlocking: false,
		DefaultNoDelay:  true,
	}
}

// LoadConfig reads configuration from v, starting from DefaultConfig's
// values so unset keys keep their default, then validates the result.
func LoadConfig(v *viper.Viper) (*Config, error) {
	cfg := DefaultConfig()

	v.SetDefault("max_sockets", cfg.MaxSockets)
	v.SetDefault("buffer_size", cfg.BufferSize)
	v.SetDefault("default_blocking", cfg.DefaultBlocking)
	v.SetDefault("default_no_delay", cfg.DefaultNoDelay)

	if err := v.Unmarshal(cfg); err != nil {
		return nil, NewError(ErrorParamsInvalid, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate runs struct-tag validation over cfg, matching the teacher's
// validate-then-apply config pattern.
func (c *Config) Validate() error {
	if er := libval.New().Struct(c); er != nil {
		if _, ok := er.(*libval.InvalidValidationError); ok {
			return NewError(ErrorParamsInvalid, er)
		}
		for _, e := range er.(libval.ValidationErrors) {
			return NewError(ErrorParamsInvalid, fmt.Errorf("config field %q fails constraint %q", e.Namespace(), e.ActualTag()))
		}
	}
	return nil
}

// SlotFlags resolves the flag bitmask a freshly opened descriptor should
// start with, derived from DefaultBlocking/DefaultNoDelay.
func (c *Config) SlotFlags() Flag {
	var f Flag
	if c.DefaultBlocking {
		f = f.Set(FlagBlocking)
	}
	if c.DefaultNoDelay {
		f = f.Set(FlagTCPNoDelay)
	}
	return f
}
