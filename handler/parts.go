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
	"io"
	"io/ioutil"
	"log"
	"os"
	"strings"

	"github.com/ubports/mmsbridge/history"
	"github.com/ubports/mmsbridge/telephony"
)

// copyPartFiles copies every engine part file into the part store and
// returns the stored parts along with the concatenated plain text
// bodies. On error the parts copied so far are returned so the caller
// can remove them.
func (h *Handler) copyPartFiles(parts []telephony.Part, eventID int64) ([]history.Part, string, error) {
	var copied []history.Part
	var texts []string
	for _, p := range parts {
		dest, err := h.parts.PartPath(eventID, p.ContentID)
		if err != nil {
			log.Printf("Failed copying message part %s: %v", p.ContentID, err)
			return copied, "", err
		}
		if err := copyPartFile(p.FilePath, dest); err != nil {
			log.Printf("Failed copying message part %s: %v", p.ContentID, err)
			return copied, "", err
		}
		copied = append(copied, history.Part{
			ContentID:   p.ContentID,
			ContentType: p.ContentType,
			Path:        dest,
		})
		if strings.HasPrefix(p.ContentType, "text/plain") {
			body, err := ioutil.ReadFile(dest)
			if err != nil {
				log.Printf("Failed copying message part %s: %v", p.ContentID, err)
				return copied, "", err
			}
			if text := strings.TrimSpace(string(body)); text != "" {
				texts = append(texts, text)
			}
		}
	}
	return copied, strings.Join(texts, "\n"), nil
}

// copyPartFile hard links when the part store shares a filesystem with
// the engine spool, falling back to a byte copy.
func copyPartFile(src, dest string) error {
	if err := os.Link(src, dest); err == nil {
		return nil
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dest)
		return err
	}
	return out.Close()
}

func removePartFiles(parts []history.Part) {
	for _, p := range parts {
		if err := os.Remove(p.Path); err != nil {
			log.Printf("Cannot remove part file %s: %v", p.Path, err)
		}
	}
}
