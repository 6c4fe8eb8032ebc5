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

import "strconv"

// Receive state codes reported by the engine.
const (
	ReceiveStateReceiving int32 = iota
	ReceiveStateDeferred
	ReceiveStateNoSpace
	ReceiveStateDecoding
	ReceiveStateError
	ReceiveStateGarbage
)

// Send state codes reported by the engine.
const (
	SendStateEncoding int32 = iota
	SendStateTooBig
	SendStateSending
	SendStateDeferred
	SendStateNoSpace
	SendStateError
	SendStateRefused
)

// Delivery report status codes.
const (
	DeliveryStateIndeterminate int32 = iota
	DeliveryStateExpired
	DeliveryStateRetrieved
	DeliveryStateRejected
	DeliveryStateDeferred
	DeliveryStateUnrecognized
	DeliveryStateForwarded
)

// Tokens handed to the engine are the decimal history row id.
func parseToken(token string) (int64, error) {
	return strconv.ParseInt(token, 10, 64)
}

func formatToken(id int64) string {
	return strconv.FormatInt(id, 10)
}
