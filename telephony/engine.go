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

package telephony

import (
	"log"
	"strconv"

	"launchpad.net/go-dbus"
)

// Part references MMS content on disk as exchanged with the engine.
type Part struct {
	ContentID   string
	ContentType string
	FilePath    string
}

// DispatchResult carries the outcome of an asynchronous SendMessage
// call back into the event loop.
type DispatchResult struct {
	Handle string
	Token  string
	Err    error
}

// DBusEngine issues calls to the MMS engine daemon on the system bus.
// SendMessage outcomes are delivered on Finished; Cancel is fire and
// forget.
type DBusEngine struct {
	conn     *dbus.Connection
	Finished chan DispatchResult
}

func NewDBusEngine(conn *dbus.Connection) *DBusEngine {
	return &DBusEngine{conn: conn, Finished: make(chan DispatchResult)}
}

func (e *DBusEngine) SendMessage(handle string, rowID int64, to, cc, bcc []string, subject string, flags int, parts []Part) {
	go func() {
		call := dbus.NewMethodCallMessage(ENGINE_DBUS_NAME, ENGINE_DBUS_PATH, ENGINE_DBUS_IFACE, SEND_MESSAGE)
		call.AppendArgs(strconv.FormatInt(rowID, 10), "", to, cc, bcc, subject, uint32(flags), partArgs(parts))
		reply, err := e.conn.SendWithReply(call)
		if err != nil {
			e.Finished <- DispatchResult{Handle: handle, Err: err}
			return
		}
		if reply.Type == dbus.TypeError {
			e.Finished <- DispatchResult{Handle: handle, Err: reply.AsError()}
			return
		}
		var token string
		if err := reply.Args(&token); err != nil {
			e.Finished <- DispatchResult{Handle: handle, Err: err}
			return
		}
		e.Finished <- DispatchResult{Handle: handle, Token: token}
	}()
}

func (e *DBusEngine) Cancel(rowID int64) {
	go func() {
		call := dbus.NewMethodCallMessage(ENGINE_DBUS_NAME, ENGINE_DBUS_PATH, ENGINE_DBUS_IFACE, CANCEL)
		call.AppendArgs(strconv.FormatInt(rowID, 10))
		// Best effort; the reply is not interesting.
		if _, err := e.conn.SendWithReply(call); err != nil {
			log.Print("Cannot send cancel for ", rowID, ": ", err)
		}
	}()
}

// partArgs flattens parts for the wire as (id, type, path) triplets.
func partArgs(parts []Part) [][]string {
	args := make([][]string, 0, len(parts))
	for _, p := range parts {
		args = append(args, []string{p.ContentID, p.ContentType, p.FilePath})
	}
	return args
}

// wireParts is the inverse of partArgs for incoming callbacks.
func wireParts(args [][]string) []Part {
	parts := make([]Part, 0, len(args))
	for _, a := range args {
		if len(a) != 3 {
			log.Print("Skipping malformed part tuple with ", len(a), " fields")
			continue
		}
		parts = append(parts, Part{ContentID: a[0], ContentType: a[1], FilePath: a[2]})
	}
	return parts
}
