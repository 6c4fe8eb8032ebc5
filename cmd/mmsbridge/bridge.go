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

package main

import (
	"github.com/ubports/mmsbridge/handler"
	"github.com/ubports/mmsbridge/telephony"
)

// Bridge serializes every source of lifecycle events onto one loop so
// the handler never races with itself: agent method calls, engine
// dispatch completions and policy observable updates.
type Bridge struct {
	handler *handler.Handler
	agent   *telephony.Agent
	engine  *telephony.DBusEngine

	// Policy receives closures that mutate the policy observer.
	Policy chan func()
}

func NewBridge(h *handler.Handler, agent *telephony.Agent, engine *telephony.DBusEngine) *Bridge {
	return &Bridge{
		handler: h,
		agent:   agent,
		engine:  engine,
		Policy:  make(chan func(), 16),
	}
}

func (b *Bridge) Run() {
	for {
		select {
		case notification := <-b.agent.Notifications:
			notification.Reply <- b.handler.MessageNotification(
				notification.Identity, notification.From, notification.Subject,
				notification.Expiry, notification.PushData)
		case change := <-b.agent.ReceiveStateChanges:
			b.handler.MessageReceiveStateChanged(change.Token, change.State)
		case incoming := <-b.agent.Received:
			b.handler.MessageReceived(incoming.Token, incoming.MmsID, incoming.From,
				incoming.To, incoming.Cc, incoming.Subject, incoming.Date,
				incoming.ReadReport, incoming.Parts)
		case change := <-b.agent.SendStateChanges:
			b.handler.MessageSendStateChanged(change.Token, change.State)
		case confirmation := <-b.agent.Sent:
			b.handler.MessageSent(confirmation.Token, confirmation.MmsID)
		case report := <-b.agent.DeliveryReports:
			b.handler.DeliveryReport(report.MmsID, report.Recipient, report.Status)
		case report := <-b.agent.ReadReports:
			b.handler.ReadReport(report.MmsID, report.Recipient, report.Status)
		case request := <-b.agent.SendRequests:
			request.Reply <- b.handler.SendMessage(
				request.To, request.Cc, request.Bcc, request.Subject, request.Parts)
		case result := <-b.engine.Finished:
			b.handler.CompleteDispatch(result.Handle, result.Token, result.Err)
		case update := <-b.Policy:
			update()
		}
	}
}
