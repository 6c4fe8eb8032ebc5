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

import (
	"errors"
	"testing"

	. "launchpad.net/gocheck"
)

func Test(t *testing.T) { TestingT(t) }

type mapSource struct {
	configs map[string]Config
}

func (s mapSource) Load(identity string) (Config, error) {
	cfg, ok := s.configs[identity]
	if !ok {
		return Config{}, errors.New("no config")
	}
	return cfg, nil
}

type ObserverSuite struct {
	source   mapSource
	observer *Observer
}

var _ = Suite(&ObserverSuite{})

func (s *ObserverSuite) SetUpTest(c *C) {
	s.source = mapSource{configs: map[string]Config{
		"sim-a": {SendFlags: 2, AutoDownload: true},
		"sim-b": {SendFlags: 0, AutoDownload: false},
	}}
	s.observer = NewObserver(s.source)
}

func (s *ObserverSuite) TestGate(c *C) {
	c.Check(s.observer.SendProhibited(), Equals, false)

	s.observer.SetCellularStatus("registered")
	s.observer.SetRoamingAllowed(false)
	c.Check(s.observer.SendProhibited(), Equals, false)

	s.observer.SetCellularStatus("roaming")
	c.Check(s.observer.SendProhibited(), Equals, true)

	s.observer.SetRoamingAllowed(true)
	c.Check(s.observer.SendProhibited(), Equals, false)

	s.observer.SetAskRoaming(true)
	c.Check(s.observer.SendProhibited(), Equals, true)
}

func (s *ObserverSuite) TestProhibitedFiresOnTransitionOnly(c *C) {
	fired := 0
	s.observer.OnSendProhibited(func() { fired++ })

	s.observer.SetRoamingAllowed(false)
	c.Check(fired, Equals, 0)

	s.observer.SetCellularStatus("roaming")
	c.Check(fired, Equals, 1)

	// Already prohibited, no second callback.
	s.observer.SetAskRoaming(true)
	c.Check(fired, Equals, 1)

	s.observer.SetCellularStatus("registered")
	s.observer.SetCellularStatus("roaming")
	c.Check(fired, Equals, 2)
}

func (s *ObserverSuite) TestIdentitySwitch(c *C) {
	s.observer.SetSubscriberIdentity("sim-a")
	c.Check(s.observer.Config(), Equals, Config{SendFlags: 2, AutoDownload: true})

	s.observer.SetSubscriberIdentity("sim-b")
	c.Check(s.observer.Config(), Equals, Config{SendFlags: 0, AutoDownload: false})

	s.observer.SetSubscriberIdentity("")
	c.Check(s.observer.Config(), Equals, Config{})
}

func (s *ObserverSuite) TestIdentityLoadFailureLeavesUnset(c *C) {
	s.observer.SetSubscriberIdentity("sim-a")
	s.observer.SetSubscriberIdentity("sim-unknown")
	c.Check(s.observer.Config(), Equals, Config{})
}
