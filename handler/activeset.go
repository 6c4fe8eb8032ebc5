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

// activeSet tracks the event ids with a download or send still in
// flight. Mutated only from the coordinator loop.
type activeSet struct {
	ids map[int64]struct{}
}

func newActiveSet() activeSet {
	return activeSet{ids: make(map[int64]struct{})}
}

func (s activeSet) Add(id int64) {
	s.ids[id] = struct{}{}
}

func (s activeSet) Remove(id int64) {
	delete(s.ids, id)
}

func (s activeSet) Contains(id int64) bool {
	_, ok := s.ids[id]
	return ok
}

func (s activeSet) Len() int {
	return len(s.ids)
}

func (s activeSet) Snapshot() []int64 {
	ids := make([]int64, 0, len(s.ids))
	for id := range s.ids {
		ids = append(ids, id)
	}
	return ids
}

func (s activeSet) Clear() {
	for id := range s.ids {
		delete(s.ids, id)
	}
}
