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
	"syscall"

	flags "github.com/jessevdk/go-flags"
	"launchpad.net/go-dbus"

	"github.com/ubports/mmsbridge/handler"
	"github.com/ubports/mmsbridge/history"
	"github.com/ubports/mmsbridge/policy"
	"github.com/ubports/mmsbridge/storage"
	"github.com/ubports/mmsbridge/telephony"
)

func main() {
	var args struct {
		// Database overrides the xdg data directory default.
		Database string `long:"database" description:"path to the history database"`
		// Account is the local uid recorded on stored events.
		Account string `long:"account" description:"local account uid" default:"ofono/ofono/account0"`
	}
	parser := flags.NewParser(&args, flags.Default)
	if _, err := parser.Parse(); err != nil {
		os.Exit(1)
	}

	connSession, err := dbus.Connect(dbus.SessionBus)
	if err != nil {
		log.Fatal("Connection error: ", err)
	}
	log.Print("Using session bus on ", connSession.UniqueName)

	conn, err := dbus.Connect(dbus.SystemBus)
	if err != nil {
		log.Fatal("Connection error: ", err)
	}
	log.Print("Using system bus on ", conn.UniqueName)

	dbPath := args.Database
	if dbPath == "" {
		if dbPath, err = storage.DatabasePath(); err != nil {
			log.Fatal("Cannot determine database path: ", err)
		}
	}
	store, err := history.OpenSQLite(dbPath)
	if err != nil {
		log.Fatal("Cannot open history database: ", err)
	}
	defer store.Close()
	log.Print("Using history database at ", dbPath)

	observer := policy.NewObserver(policy.EnvFileSource{})
	engine := telephony.NewDBusEngine(conn)
	notifier := telephony.NewDBusNotifier(connSession)
	h := handler.New(store, store, engine, notifier, observer, storage.PartStore{}, args.Account)
	observer.OnSendProhibited(h.CancelActiveEvents)

	agent := telephony.NewAgent(conn)
	if err := agent.Register(); err != nil {
		log.Fatal(err)
	}
	defer agent.Unregister()

	bridge := NewBridge(h, agent, engine)
	go bridge.Run()

	if err := watchObservables(conn, bridge, observer); err != nil {
		log.Fatal("Cannot watch cellular state: ", err)
	}

	m := Mainloop{
		sigchan:  make(chan os.Signal, 1),
		termchan: make(chan int),
		Bindings: make(map[os.Signal]func())}

	m.Bindings[syscall.SIGHUP] = func() { m.Stop(); HupHandler() }
	m.Bindings[syscall.SIGINT] = func() { m.Stop(); IntHandler() }
	m.Start()
}
