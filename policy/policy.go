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

import "log"

// Config is the identity scoped messaging configuration. The zero
// value stands for "no identity": flags cleared and automatic download
// off, which gates incoming messages to manual download.
type Config struct {
	SendFlags    int
	AutoDownload bool
}

// Provider is what the lifecycle coordinator needs from policy: a
// synchronous send gate and the active identity's configuration.
type Provider interface {
	SendProhibited() bool
	Config() Config
}

// Source loads the configuration stored for an identity.
type Source interface {
	Load(identity string) (Config, error)
}

// Observer derives the policy state from cellular observables. It is
// not safe for concurrent use; feed it from the same loop that runs
// the coordinator.
type Observer struct {
	source Source

	cellularStatus string
	roamingAllowed bool
	askRoaming     bool
	identity       string

	cfg     Config
	haveCfg bool

	onProhibited func()
}

func NewObserver(source Source) *Observer {
	return &Observer{source: source}
}

// OnSendProhibited registers the callback fired when the gate
// transitions from permitted to prohibited.
func (o *Observer) OnSendProhibited(fn func()) {
	o.onProhibited = fn
}

// SendProhibited evaluates the gate from the latest observable values.
// Roaming with "always ask" counts as prohibited.
func (o *Observer) SendProhibited() bool {
	if o.cellularStatus != "roaming" {
		return false
	}
	return !o.roamingAllowed || o.askRoaming
}

func (o *Observer) Config() Config {
	if !o.haveCfg {
		return Config{}
	}
	return o.cfg
}

func (o *Observer) SetCellularStatus(status string) {
	o.observe(func() { o.cellularStatus = status })
}

func (o *Observer) SetRoamingAllowed(allowed bool) {
	o.observe(func() { o.roamingAllowed = allowed })
}

func (o *Observer) SetAskRoaming(ask bool) {
	o.observe(func() { o.askRoaming = ask })
}

func (o *Observer) observe(change func()) {
	was := o.SendProhibited()
	change()
	if !was && o.SendProhibited() && o.onProhibited != nil {
		o.onProhibited()
	}
}

// SetSubscriberIdentity discards the cached configuration and reloads
// it for the new identity. An empty identity leaves it unset.
func (o *Observer) SetSubscriberIdentity(identity string) {
	o.identity = identity
	o.cfg = Config{}
	o.haveCfg = false
	if identity == "" {
		return
	}
	cfg, err := o.source.Load(identity)
	if err != nil {
		log.Printf("Cannot load messaging config for identity %s: %v", identity, err)
		return
	}
	o.cfg = cfg
	o.haveCfg = true
}
