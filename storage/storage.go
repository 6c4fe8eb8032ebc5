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

package storage

import (
	"path"
	"strconv"

	"launchpad.net/go-xdg"
)

const SUBPATH = "mmsbridge"

// PartStore places message part files under the xdg data directory,
// keyed by event id and content id.
type PartStore struct{}

func (PartStore) PartPath(eventID int64, contentID string) (string, error) {
	return xdg.Data.Ensure(path.Join(SUBPATH, "parts", strconv.FormatInt(eventID, 10), contentID))
}

// DatabasePath returns the history database location, creating the
// directory when needed.
func DatabasePath() (string, error) {
	return xdg.Data.Ensure(path.Join(SUBPATH, "history.db"))
}

// IdentityConfigPath locates the env-format configuration file for an
// identity scoped namespace. An error means no stored configuration.
func IdentityConfigPath(identity string) (string, error) {
	return xdg.Config.Find(path.Join(SUBPATH, "imsi", identity, "mms.env"))
}
