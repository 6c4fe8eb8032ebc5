/*
 * Copyright 2015 Canonical Ltd.
 *
 * This file is part of mmsbridge.
 *
 * mmsbridge is free software; you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation; version 3.
 *
 * mmsbridge is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <http://www.gnu.org/licenses/>.
 */

package policy

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/ubports/mmsbridge/storage"
)

const (
	keySendFlags    = "SEND_FLAGS"
	keyAutoDownload = "AUTOMATIC_DOWNLOAD"
)

// EnvFileSource reads identity scoped configuration from env-format
// files. With an empty Dir the files live in the xdg config directory
// under mmsbridge/imsi/<identity>/mms.env.
type EnvFileSource struct {
	Dir string
}

func (s EnvFileSource) Load(identity string) (Config, error) {
	// Automatic download defaults on for identities with no stored
	// configuration.
	cfg := Config{AutoDownload: true}

	path, err := s.configPath(identity)
	if err != nil {
		return cfg, nil
	}
	values, err := godotenv.Read(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}
	if v, ok := values[keySendFlags]; ok {
		flags, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid %s value %q for identity %s", keySendFlags, v, identity)
		}
		cfg.SendFlags = flags
	}
	if v, ok := values[keyAutoDownload]; ok {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid %s value %q for identity %s", keyAutoDownload, v, identity)
		}
		cfg.AutoDownload = enabled
	}
	return cfg, nil
}

func (s EnvFileSource) configPath(identity string) (string, error) {
	if s.Dir != "" {
		return filepath.Join(s.Dir, identity, "mms.env"), nil
	}
	return storage.IdentityConfigPath(identity)
}
