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

package handler

import (
	"log"

	"github.com/google/uuid"
	"github.com/ubports/mmsbridge/history"
	"github.com/ubports/mmsbridge/telephony"
)

// beginDispatch hands an outbound event to the engine. The dispatch
// handle maps the asynchronous completion back to the event, since the
// engine token only exists once the engine accepts the message.
func (h *Handler) beginDispatch(event *history.Event) {
	handle := uuid.New().String()
	h.pending[handle] = event.ID
	h.active.Add(event.ID)

	parts := make([]telephony.Part, 0, len(event.Parts))
	for _, p := range event.Parts {
		parts = append(parts, telephony.Part{
			ContentID:   p.ContentID,
			ContentType: p.ContentType,
			FilePath:    p.Path,
		})
	}
	h.engine.SendMessage(handle, event.ID, event.To, event.Cc, event.Bcc, event.Subject, h.policy.Config().SendFlags, parts)
}

// CompleteDispatch resolves a pending engine handoff. Must run on the
// coordinator loop, like every other entry point.
func (h *Handler) CompleteDispatch(handle, token string, dispatchErr error) {
	id, ok := h.pending[handle]
	if !ok {
		log.Print("Ignoring dispatch completion for unknown handle ", handle)
		return
	}
	delete(h.pending, handle)

	event, err := h.store.Get(id)
	if err != nil {
		log.Printf("Cannot fetch event %d after dispatch: %v", id, err)
		h.active.Remove(id)
		return
	}
	if dispatchErr != nil {
		log.Printf("Cannot send message %d: %v", id, dispatchErr)
		event.Status = history.StatusTemporarilyFailed
		h.active.Remove(id)
		if err := h.store.Update(event); err != nil {
			log.Printf("Cannot update event %d: %v", id, err)
		}
		h.notifier.Present(event, event.RemoteUID, history.ChatP2P)
		return
	}
	event.SetExtra(history.PropSendToken, token)
	if err := h.store.Update(event); err != nil {
		log.Printf("Cannot update event %d: %v", id, err)
	}
}

// CancelActiveEvents asks the engine to abort everything in flight.
// Wired to the policy gate's permitted to prohibited transition.
func (h *Handler) CancelActiveEvents() {
	ids := h.active.Snapshot()
	if len(ids) == 0 {
		return
	}
	log.Printf("Cancelling %d active MMS events due to roaming restrictions", len(ids))
	for _, id := range ids {
		h.engine.Cancel(id)
	}
	h.active.Clear()
}
