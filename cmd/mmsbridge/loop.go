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
	"os"
	"os/signal"
	"syscall"
)

type Mainloop struct {
	sigchan  chan os.Signal
	termchan chan int
	Bindings map[os.Signal]func()
}

// Start blocks dispatching signals until Stop is called. Call it at
// the bottom of main().
func (m *Mainloop) Start() {
	sigs := make([]os.Signal, 0, len(m.Bindings))
	for s := range m.Bindings {
		sigs = append(sigs, s)
	}
	signal.Notify(m.sigchan, sigs...)
L:
	for {
		select {
		case sig := <-m.sigchan:
			log.Print("Received ", sig)
			m.Bindings[sig]()
		case <-m.termchan:
			break L
		}
	}
}

func (m *Mainloop) Stop() {
	go func() { m.termchan <- 1 }()
}

func HupHandler() {
	syscall.Exit(1)
}

func IntHandler() {
	syscall.Exit(1)
}
