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
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/ubports/mmsbridge/telephony"
	. "launchpad.net/gocheck"
)

type PartsSuite struct{}

var _ = Suite(&PartsSuite{})

func (s *PartsSuite) TestCopyPartFile(c *C) {
	src := filepath.Join(c.MkDir(), "src")
	dest := filepath.Join(c.MkDir(), "dest")
	c.Assert(ioutil.WriteFile(src, []byte("payload"), 0644), IsNil)

	c.Assert(copyPartFile(src, dest), IsNil)
	body, err := ioutil.ReadFile(dest)
	c.Assert(err, IsNil)
	c.Check(string(body), Equals, "payload")
}

func (s *PartsSuite) TestCopyPartFileMissingSource(c *C) {
	dest := filepath.Join(c.MkDir(), "dest")
	err := copyPartFile(filepath.Join(c.MkDir(), "nope"), dest)
	c.Assert(err, NotNil)
	_, err = os.Stat(dest)
	c.Check(os.IsNotExist(err), Equals, true)
}

func (s *PartsSuite) TestCopyPartFilesText(c *C) {
	h := &Handler{parts: dirPartStore{dir: c.MkDir()}}

	srcDir := c.MkDir()
	write := func(name, body string) string {
		path := filepath.Join(srcDir, name)
		c.Assert(ioutil.WriteFile(path, []byte(body), 0644), IsNil)
		return path
	}
	parts := []telephony.Part{
		{ContentID: "a.txt", ContentType: "text/plain;charset=utf-8", FilePath: write("a.txt", "first\n")},
		{ContentID: "b.jpg", ContentType: "image/jpeg", FilePath: write("b.jpg", "binary")},
		{ContentID: "c.txt", ContentType: "text/plain", FilePath: write("c.txt", "  ")},
		{ContentID: "d.txt", ContentType: "text/plain", FilePath: write("d.txt", "second")},
	}

	copied, text, err := h.copyPartFiles(parts, 7)
	c.Assert(err, IsNil)
	c.Assert(copied, HasLen, 4)
	c.Check(text, Equals, "first\nsecond")
	for _, p := range copied {
		_, err := os.Stat(p.Path)
		c.Check(err, IsNil)
	}
}

func (s *PartsSuite) TestCopyPartFilesReturnsCopiedOnError(c *C) {
	h := &Handler{parts: dirPartStore{dir: c.MkDir()}}

	src := filepath.Join(c.MkDir(), "a.txt")
	c.Assert(ioutil.WriteFile(src, []byte("ok"), 0644), IsNil)
	parts := []telephony.Part{
		{ContentID: "a.txt", ContentType: "text/plain", FilePath: src},
		{ContentID: "b.txt", ContentType: "text/plain", FilePath: filepath.Join(c.MkDir(), "missing")},
	}

	copied, _, err := h.copyPartFiles(parts, 7)
	c.Assert(err, NotNil)
	c.Assert(copied, HasLen, 1)
	removePartFiles(copied)
	_, statErr := os.Stat(copied[0].Path)
	c.Check(os.IsNotExist(statErr), Equals, true)
}

type ActiveSetSuite struct{}

var _ = Suite(&ActiveSetSuite{})

func (s *ActiveSetSuite) TestAddRemove(c *C) {
	set := newActiveSet()
	set.Add(1)
	set.Add(2)
	set.Add(1)
	c.Check(set.Len(), Equals, 2)
	c.Check(set.Contains(1), Equals, true)

	set.Remove(1)
	set.Remove(1)
	c.Check(set.Contains(1), Equals, false)
	c.Check(set.Len(), Equals, 1)

	snapshot := set.Snapshot()
	c.Check(snapshot, DeepEquals, []int64{2})

	set.Clear()
	c.Check(set.Len(), Equals, 0)
}
