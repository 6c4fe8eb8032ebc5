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

const (
	ENGINE_DBUS_NAME  = "org.ofono.mms.Engine"
	ENGINE_DBUS_PATH  = "/org/ofono/mms/Engine"
	ENGINE_DBUS_IFACE = "org.ofono.mms.Engine"

	AGENT_DBUS_NAME  = "org.ofono.mms.HistoryAgent"
	AGENT_DBUS_PATH  = "/org/ofono/mms/HistoryAgent"
	AGENT_DBUS_IFACE = "org.ofono.mms.HistoryAgent"

	NOTIFICATIONS_DBUS_NAME  = "org.freedesktop.Notifications"
	NOTIFICATIONS_DBUS_PATH  = "/org/freedesktop/Notifications"
	NOTIFICATIONS_DBUS_IFACE = "org.freedesktop.Notifications"
)

const (
	MESSAGE_NOTIFICATION          = "MessageNotification"
	MESSAGE_RECEIVE_STATE_CHANGED = "MessageReceiveStateChanged"
	MESSAGE_RECEIVED              = "MessageReceived"
	MESSAGE_SEND_STATE_CHANGED    = "MessageSendStateChanged"
	MESSAGE_SENT                  = "MessageSent"
	DELIVERY_REPORT               = "DeliveryReport"
	READ_REPORT                   = "ReadReport"
	SEND_MESSAGE                  = "SendMessage"
	CANCEL                        = "Cancel"
	NOTIFY                        = "Notify"
)
