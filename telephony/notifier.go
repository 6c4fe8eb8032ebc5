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

	"github.com/ubports/mmsbridge/history"
	"launchpad.net/go-dbus"
)

// DBusNotifier presents user visible alerts through the freedesktop
// notification service on the session bus.
type DBusNotifier struct {
	conn *dbus.Connection
}

func NewDBusNotifier(conn *dbus.Connection) *DBusNotifier {
	return &DBusNotifier{conn: conn}
}

func (n *DBusNotifier) Present(event *history.Event, displayUID string, kind history.ChatType) {
	var body string
	switch {
	case event.Status == history.StatusManualNotification:
		body = "Multimedia message waiting for download"
	case event.Status.Failed():
		body = "Problem with multimedia message"
	case event.Subject != "":
		body = event.Subject
	default:
		body = event.FreeText
	}

	category := "x-ubports.mms.received"
	if event.Status.Failed() {
		category = "x-ubports.mms.error"
	}
	hints := map[string]dbus.Variant{
		"category":  dbus.Variant{Value: category},
		"chat-type": dbus.Variant{Value: int32(kind)},
	}

	call := dbus.NewMethodCallMessage(NOTIFICATIONS_DBUS_NAME, NOTIFICATIONS_DBUS_PATH, NOTIFICATIONS_DBUS_IFACE, NOTIFY)
	call.AppendArgs("mmsbridge", uint32(0), "", displayUID, body, []string{}, hints, int32(-1))
	reply, err := n.conn.SendWithReply(call)
	if err != nil {
		log.Print("Cannot present notification: ", err)
		return
	}
	if reply.Type == dbus.TypeError {
		log.Print("Notification reply error: ", reply.AsError())
	}
}
