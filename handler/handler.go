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

// Package handler coordinates the MMS message lifecycle between the
// telephony engine and the history store. All entry points must run on
// a single loop; the handler does no locking of its own.
package handler

import (
	"encoding/base64"
	"log"
	"strconv"
	"time"

	"github.com/ubports/mmsbridge/history"
	"github.com/ubports/mmsbridge/policy"
	"github.com/ubports/mmsbridge/telephony"
)

// PartStore places message part files and yields their final path.
type PartStore interface {
	PartPath(eventID int64, contentID string) (string, error)
}

// Engine is the transport side of the bridge. SendMessage is
// asynchronous; the result arrives later through CompleteDispatch.
type Engine interface {
	SendMessage(handle string, rowID int64, to, cc, bcc []string, subject string, flags int, parts []telephony.Part)
	Cancel(rowID int64)
}

// Notifier presents user visible alerts for terminal message states.
type Notifier interface {
	Present(event *history.Event, displayUID string, kind history.ChatType)
}

type Handler struct {
	store    history.Store
	groups   history.GroupResolver
	engine   Engine
	notifier Notifier
	policy   policy.Provider
	parts    PartStore
	localUID string

	active  activeSet
	pending map[string]int64
}

func New(store history.Store, groups history.GroupResolver, engine Engine, notifier Notifier, provider policy.Provider, parts PartStore, localUID string) *Handler {
	return &Handler{
		store:    store,
		groups:   groups,
		engine:   engine,
		notifier: notifier,
		policy:   provider,
		parts:    parts,
		localUID: localUID,
		active:   newActiveSet(),
		pending:  make(map[string]int64),
	}
}

// MessageNotification records an m-notification.ind push. The returned
// token tells the engine to start the download; an empty token defers
// to manual download.
func (h *Handler) MessageNotification(identity, from, subject string, expiry uint32, pushData []byte) string {
	event := history.NewEvent(history.Inbound)
	event.LocalUID = h.localUID
	event.RemoteUID = from
	event.Subject = subject
	event.SetExtra(history.PropNotificationIdentity, identity)
	event.SetExtra(history.PropExpiry, strconv.FormatUint(uint64(expiry), 10))
	event.SetExtra(history.PropPushData, base64.StdEncoding.EncodeToString(pushData))

	manual := h.policy.SendProhibited() || !h.policy.Config().AutoDownload
	if manual {
		event.Status = history.StatusManualNotification
	} else {
		event.Status = history.StatusWaiting
	}

	groupID, err := h.groups.GroupFor(event.LocalUID, event.RemoteUID)
	if err != nil {
		log.Printf("Cannot resolve group for %s, message dropped: %v", from, err)
		return ""
	}
	event.GroupID = groupID
	if err := h.store.Add(event); err != nil {
		log.Printf("Cannot store notification from %s, message dropped: %v", from, err)
		return ""
	}
	if manual {
		h.notifier.Present(event, from, history.ChatP2P)
		return ""
	}
	h.active.Add(event.ID)
	return formatToken(event.ID)
}

// MessageReceiveStateChanged tracks download progress for an inbound
// event.
func (h *Handler) MessageReceiveStateChanged(token string, state int32) {
	id, err := parseToken(token)
	if err != nil {
		log.Printf("Ignoring receive state change with bad token %q: %v", token, err)
		return
	}
	event, err := h.store.Get(id)
	if err != nil {
		log.Printf("Ignoring receive state change for unknown event %d: %v", id, err)
		h.active.Remove(id)
		return
	}

	var status history.Status
	switch state {
	case ReceiveStateDeferred:
		status = history.StatusWaiting
	case ReceiveStateReceiving, ReceiveStateDecoding:
		status = history.StatusDownloading
	case ReceiveStateNoSpace, ReceiveStateError:
		// Manual notifications stay downloadable on transient
		// engine failures.
		if event.Status == history.StatusManualNotification {
			return
		}
		status = history.StatusTemporarilyFailed
	case ReceiveStateGarbage:
		status = history.StatusPermanentlyFailed
	default:
		log.Printf("Ignoring unknown receive state %d for event %d", state, id)
		return
	}
	if status == event.Status {
		return
	}
	event.Status = status
	if err := h.store.Update(event); err != nil {
		log.Printf("Cannot update event %d: %v", id, err)
	}
	if status != history.StatusWaiting && status != history.StatusDownloading {
		h.active.Remove(id)
		h.notifier.Present(event, event.RemoteUID, history.ChatP2P)
	}
}

// MessageReceived finalizes a download, storing the part files and the
// full message metadata.
func (h *Handler) MessageReceived(token, mmsID, from string, to, cc []string, subject string, date uint32, readReport bool, parts []telephony.Part) {
	var event *history.Event
	if id, err := parseToken(token); err == nil {
		h.active.Remove(id)
		event, err = h.store.Get(id)
		if err != nil {
			log.Printf("No event %d for received message, creating a fresh one: %v", id, err)
			event = nil
		}
	}
	var oldRemote string
	if event == nil {
		event = history.NewEvent(history.Inbound)
		event.LocalUID = h.localUID
		groupID, err := h.groups.GroupFor(event.LocalUID, from)
		if err != nil {
			log.Printf("Cannot resolve group for %s, message dropped: %v", from, err)
			return
		}
		event.GroupID = groupID
		event.RemoteUID = from
		oldRemote = from
	} else {
		oldRemote = event.RemoteUID
	}

	event.Subject = subject
	event.StartTime = time.Unix(int64(date), 0)
	event.MmsID = mmsID
	event.To = to
	event.Cc = cc
	event.ReportRead = readReport
	event.Status = history.StatusReceived
	event.ClearExtra(history.PropNotificationIdentity, history.PropExpiry, history.PropPushData)

	// The push notification only carries the transport address; the
	// decoded message has the real sender, which may land the event
	// in a different conversation.
	if oldRemote != from {
		event.RemoteUID = from
		newGroup, err := h.groups.GroupFor(event.LocalUID, from)
		if err != nil {
			log.Printf("Cannot re-resolve group for %s: %v", from, err)
		} else if newGroup != event.GroupID {
			if err := h.store.Move(event, newGroup); err != nil {
				log.Printf("Cannot move event %d to group %d: %v", event.ID, newGroup, err)
			}
			event.GroupID = newGroup
		}
	}

	if event.ID < 0 {
		if err := h.store.Add(event); err != nil {
			log.Printf("Cannot store message from %s, message dropped: %v", from, err)
			return
		}
	}

	copied, text, copyErr := h.copyPartFiles(parts, event.ID)
	if copyErr == nil {
		event.Parts = copied
		event.FreeText = text
		copyErr = h.store.Update(event)
	}
	if copyErr != nil {
		removePartFiles(copied)
		// Re-fetch so the failure marker lands on stored state, not
		// on the half applied update.
		stored, err := h.store.Get(event.ID)
		if err != nil {
			log.Printf("Cannot fetch event %d: %v", event.ID, err)
			return
		}
		stored.Status = history.StatusTemporarilyFailed
		if err := h.store.Update(stored); err != nil {
			log.Printf("Cannot update event %d: %v", event.ID, err)
		}
		h.notifier.Present(stored, from, history.ChatP2P)
		return
	}
	h.notifier.Present(event, from, history.ChatP2P)
}

// MessageSendStateChanged tracks transport progress for an outbound
// event.
func (h *Handler) MessageSendStateChanged(token string, state int32) {
	id, err := parseToken(token)
	if err != nil {
		log.Printf("Ignoring send state change with bad token %q: %v", token, err)
		return
	}
	event, err := h.store.Get(id)
	if err != nil {
		log.Printf("Ignoring send state change for unknown event %d: %v", id, err)
		h.active.Remove(id)
		return
	}

	var status history.Status
	switch state {
	case SendStateEncoding, SendStateSending, SendStateDeferred:
		status = history.StatusSending
	case SendStateTooBig, SendStateNoSpace, SendStateError:
		status = history.StatusTemporarilyFailed
	case SendStateRefused:
		status = history.StatusPermanentlyFailed
	default:
		log.Printf("Ignoring unknown send state %d for event %d", state, id)
		return
	}
	if status == event.Status {
		return
	}
	event.Status = status
	if err := h.store.Update(event); err != nil {
		log.Printf("Cannot update event %d: %v", id, err)
	}
	if status != history.StatusSending {
		h.active.Remove(id)
		h.notifier.Present(event, event.RemoteUID, history.ChatP2P)
	}
}

// MessageSent marks an outbound event as accepted by the message
// center and records the id delivery reports will refer to.
func (h *Handler) MessageSent(token, mmsID string) {
	id, err := parseToken(token)
	if err != nil {
		log.Printf("Ignoring sent confirmation with bad token %q: %v", token, err)
		return
	}
	h.active.Remove(id)
	event, err := h.store.Get(id)
	if err != nil {
		log.Printf("Ignoring sent confirmation for unknown event %d: %v", id, err)
		return
	}
	event.Status = history.StatusSent
	event.MmsID = mmsID
	if err := h.store.Update(event); err != nil {
		log.Printf("Cannot update event %d: %v", id, err)
	}
}

// DeliveryReport records the recipient side outcome of a sent message.
func (h *Handler) DeliveryReport(mmsID, recipient string, status int32) {
	event, err := h.store.GetByMmsID(mmsID)
	if err != nil {
		log.Printf("Ignoring delivery report for unknown message %q: %v", mmsID, err)
		return
	}
	switch status {
	case DeliveryStateRetrieved:
		event.Status = history.StatusDelivered
	case DeliveryStateExpired, DeliveryStateRejected, DeliveryStateUnrecognized:
		event.Status = history.StatusTemporarilyFailed
	default:
		// No matching status; leave unchanged.
		return
	}
	if err := h.store.Update(event); err != nil {
		log.Printf("Cannot update event %d: %v", event.ID, err)
	}
}

// ReadReport records whether a recipient read or discarded a sent
// message.
func (h *Handler) ReadReport(mmsID, recipient string, status int32) {
	event, err := h.store.GetByMmsID(mmsID)
	if err != nil {
		log.Printf("Ignoring read report for unknown message %q: %v", mmsID, err)
		return
	}
	if status == 0 {
		event.ReadStatus = history.ReadStatusRead
	} else {
		event.ReadStatus = history.ReadStatusDeleted
	}
	if err := h.store.Update(event); err != nil {
		log.Printf("Cannot update event %d: %v", event.ID, err)
	}
}

// SendMessage stores an outbound message and dispatches it. Returns
// the event id, or -1 when the message cannot be accepted.
func (h *Handler) SendMessage(to, cc, bcc []string, subject string, parts []telephony.Part) int64 {
	if len(to) == 0 {
		log.Print("Refusing to send MMS without a recipient")
		return -1
	}
	if len(to)+len(cc)+len(bcc) > 1 {
		log.Print("Refusing to send MMS, group conversations are not supported")
		return -1
	}

	event := history.NewEvent(history.Outbound)
	event.LocalUID = h.localUID
	event.RemoteUID = history.NormalizePhoneNumber(to[0])
	event.To = history.NormalizePhoneNumbers(to)
	event.Cc = history.NormalizePhoneNumbers(cc)
	event.Bcc = history.NormalizePhoneNumbers(bcc)
	event.Subject = subject
	event.Status = history.StatusSending
	event.IsRead = true

	groupID, err := h.groups.GroupFor(event.LocalUID, event.RemoteUID)
	if err != nil {
		log.Printf("Cannot resolve group for %s: %v", event.RemoteUID, err)
		return -1
	}
	event.GroupID = groupID
	if err := h.store.Add(event); err != nil {
		log.Printf("Cannot store outbound message to %s: %v", event.RemoteUID, err)
		return -1
	}

	copied, text, copyErr := h.copyPartFiles(parts, event.ID)
	if copyErr == nil {
		event.Parts = copied
		event.FreeText = text
		copyErr = h.store.Update(event)
	}
	switch {
	case copyErr != nil:
		removePartFiles(copied)
		stored, err := h.store.Get(event.ID)
		if err != nil {
			log.Printf("Cannot fetch event %d: %v", event.ID, err)
			return event.ID
		}
		stored.Status = history.StatusPermanentlyFailed
		if err := h.store.Update(stored); err != nil {
			log.Printf("Cannot update event %d: %v", event.ID, err)
		}
		event = stored
	case h.policy.SendProhibited():
		log.Print("Refusing to send MMS due to data roaming restrictions")
		event.Status = history.StatusTemporarilyFailed
		if err := h.store.Update(event); err != nil {
			log.Printf("Cannot update event %d: %v", event.ID, err)
		}
	default:
		h.beginDispatch(event)
	}
	if event.Status.Failed() {
		h.notifier.Present(event, event.RemoteUID, history.ChatP2P)
	}
	return event.ID
}

// SendMessageFromEvent retries a stored outbound message, typically
// one that failed or was held back while roaming.
func (h *Handler) SendMessageFromEvent(eventID int64) {
	event, err := h.store.Get(eventID)
	if err != nil {
		log.Printf("Cannot retry event %d: %v", eventID, err)
		return
	}
	if event.Direction != history.Outbound {
		log.Printf("Cannot retry event %d, not an outbound message", eventID)
		return
	}
	if event.Recipients() < 1 {
		log.Printf("Cannot retry event %d, no recipients", eventID)
		return
	}
	if len(event.Parts) < 1 {
		log.Printf("Cannot retry event %d, no message parts", eventID)
		return
	}
	if event.Status != history.StatusSending {
		event.Status = history.StatusSending
		if err := h.store.Update(event); err != nil {
			log.Printf("Cannot update event %d: %v", eventID, err)
		}
	}
	h.beginDispatch(event)
}
