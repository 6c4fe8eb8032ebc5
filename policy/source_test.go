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
	"io/ioutil"
	"os"
	"path/filepath"

	. "launchpad.net/gocheck"
)

type SourceSuite struct {
	dir    string
	source EnvFileSource
}

var _ = Suite(&SourceSuite{})

func (s *SourceSuite) SetUpTest(c *C) {
	s.dir = c.MkDir()
	s.source = EnvFileSource{Dir: s.dir}
}

func (s *SourceSuite) writeConfig(c *C, identity, body string) {
	dir := filepath.Join(s.dir, identity)
	c.Assert(os.MkdirAll(dir, 0755), IsNil)
	c.Assert(ioutil.WriteFile(filepath.Join(dir, "mms.env"), []byte(body), 0644), IsNil)
}

func (s *SourceSuite) TestLoad(c *C) {
	s.writeConfig(c, "310150123456789", "SEND_FLAGS=3\nAUTOMATIC_DOWNLOAD=false\n")
	cfg, err := s.source.Load("310150123456789")
	c.Assert(err, IsNil)
	c.Check(cfg, Equals, Config{SendFlags: 3, AutoDownload: false})
}

func (s *SourceSuite) TestLoadDefaults(c *C) {
	cfg, err := s.source.Load("310150123456789")
	c.Assert(err, IsNil)
	c.Check(cfg, Equals, Config{AutoDownload: true})
}

func (s *SourceSuite) TestLoadPartial(c *C) {
	s.writeConfig(c, "310150123456789", "SEND_FLAGS=1\n")
	cfg, err := s.source.Load("310150123456789")
	c.Assert(err, IsNil)
	c.Check(cfg, Equals, Config{SendFlags: 1, AutoDownload: true})
}

func (s *SourceSuite) TestLoadInvalidValues(c *C) {
	s.writeConfig(c, "310150123456789", "SEND_FLAGS=lots\n")
	_, err := s.source.Load("310150123456789")
	c.Check(err, NotNil)

	s.writeConfig(c, "310150123456789", "AUTOMATIC_DOWNLOAD=maybe\n")
	_, err = s.source.Load("310150123456789")
	c.Check(err, NotNil)
}
