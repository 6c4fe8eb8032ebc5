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
	"log"

	"launchpad.net/go-dbus"

	"github.com/ubports/mmsbridge/policy"
)

const (
	OFONO_SENDER                   = "org.ofono"
	NETWORK_REGISTRATION_INTERFACE = "org.ofono.NetworkRegistration"
	CONNECTION_MANAGER_INTERFACE   = "org.ofono.ConnectionManager"
	SIM_MANAGER_INTERFACE          = "org.ofono.SimManager"
)

func connectToPropertySignal(conn *dbus.Connection, inter string) (*dbus.SignalWatch, error) {
	// No path filter: any modem's properties feed the same policy.
	w, err := conn.WatchSignal(&dbus.MatchRule{
		Type:      dbus.TypeSignal,
		Sender:    OFONO_SENDER,
		Interface: inter,
		Member:    "PropertyChanged"})
	return w, err
}

// watchObservables feeds cellular state changes to the policy observer
// through the bridge loop, keeping policy mutations serialized with
// message handling.
func watchObservables(conn *dbus.Connection, bridge *Bridge, observer *policy.Observer) error {
	networkSignal, err := connectToPropertySignal(conn, NETWORK_REGISTRATION_INTERFACE)
	if err != nil {
		return err
	}
	connectionSignal, err := connectToPropertySignal(conn, CONNECTION_MANAGER_INTERFACE)
	if err != nil {
		return err
	}
	simSignal, err := connectToPropertySignal(conn, SIM_MANAGER_INTERFACE)
	if err != nil {
		return err
	}

	go func() {
		var propName string
		var propValue dbus.Variant
	watchloop:
		for {
			select {
			case msg, ok := <-networkSignal.C:
				if !ok {
					networkSignal.C = nil
					continue watchloop
				}
				if err := msg.Args(&propName, &propValue); err != nil {
					log.Printf("Cannot interpret NetworkRegistration property change: %s", err)
					continue watchloop
				}
				if propName != "Status" {
					continue watchloop
				}
				if status, ok := propValue.Value.(string); ok {
					bridge.Policy <- func() { observer.SetCellularStatus(status) }
				}
			case msg, ok := <-connectionSignal.C:
				if !ok {
					connectionSignal.C = nil
					continue watchloop
				}
				if err := msg.Args(&propName, &propValue); err != nil {
					log.Printf("Cannot interpret ConnectionManager property change: %s", err)
					continue watchloop
				}
				switch propName {
				case "RoamingAllowed":
					if allowed, ok := propValue.Value.(bool); ok {
						bridge.Policy <- func() { observer.SetRoamingAllowed(allowed) }
					}
				case "AskRoaming":
					if ask, ok := propValue.Value.(bool); ok {
						bridge.Policy <- func() { observer.SetAskRoaming(ask) }
					}
				}
			case msg, ok := <-simSignal.C:
				if !ok {
					simSignal.C = nil
					continue watchloop
				}
				if err := msg.Args(&propName, &propValue); err != nil {
					log.Printf("Cannot interpret Sim property change: %s", err)
					continue watchloop
				}
				if propName != "SubscriberIdentity" {
					continue watchloop
				}
				if identity, ok := propValue.Value.(string); ok {
					bridge.Policy <- func() { observer.SetSubscriberIdentity(identity) }
				}
			}
		}
	}()
	return nil
}
