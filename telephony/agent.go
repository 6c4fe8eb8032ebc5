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

package telephony

import (
	"fmt"
	"log"
	"sync"

	"launchpad.net/go-dbus"
)

// Notification is a pushed m-notification.ind. The reply carries the
// token handed back to the engine, or an empty string.
type Notification struct {
	Identity string
	From     string
	Subject  string
	Expiry   uint32
	PushData []byte
	Reply    chan string
}

// StateChange reports receive or send progress for a known token.
type StateChange struct {
	Token string
	State int32
}

// IncomingMessage is the fully retrieved message content.
type IncomingMessage struct {
	Token      string
	MmsID      string
	From       string
	To         []string
	Cc         []string
	Subject    string
	Date       uint32
	Priority   int32
	Class      string
	ReadReport bool
	Parts      []Part
}

// SentConfirmation acknowledges a dispatched message.
type SentConfirmation struct {
	Token string
	MmsID string
}

// Report is a delivery or read report, keyed by the engine assigned
// message id rather than a token.
type Report struct {
	Identity  string
	MmsID     string
	Recipient string
	Status    int32
}

// SendRequest asks for a new outgoing message. The reply carries the
// history row id, or -1.
type SendRequest struct {
	To      []string
	Cc      []string
	Bcc     []string
	Subject string
	Parts   []Part
	Reply   chan int64
}

// Agent exports the history bridge callback surface on the bus. Every
// decoded method call is delivered on its typed channel; the consumer
// owns ordering.
type Agent struct {
	conn       *dbus.Connection
	msgChan    chan *dbus.Message
	Registered bool
	m          sync.Mutex

	Notifications       chan Notification
	ReceiveStateChanges chan StateChange
	Received            chan IncomingMessage
	SendStateChanges    chan StateChange
	Sent                chan SentConfirmation
	DeliveryReports     chan Report
	ReadReports         chan Report
	SendRequests        chan SendRequest
}

func NewAgent(conn *dbus.Connection) *Agent {
	return &Agent{
		conn:                conn,
		Notifications:       make(chan Notification),
		ReceiveStateChanges: make(chan StateChange),
		Received:            make(chan IncomingMessage),
		SendStateChanges:    make(chan StateChange),
		Sent:                make(chan SentConfirmation),
		DeliveryReports:     make(chan Report),
		ReadReports:         make(chan Report),
		SendRequests:        make(chan SendRequest),
	}
}

func (agent *Agent) Register() error {
	agent.m.Lock()
	defer agent.m.Unlock()
	if agent.Registered {
		log.Print("Agent already registered on ", AGENT_DBUS_PATH)
		return nil
	}
	name := agent.conn.RequestName(AGENT_DBUS_NAME, dbus.NameFlagDoNotQueue)
	if err := <-name.C; err != nil {
		return fmt.Errorf("could not acquire name %s: %w", AGENT_DBUS_NAME, err)
	}
	log.Printf("Registered %s on bus as %s", agent.conn.UniqueName, name.Name)

	agent.Registered = true
	agent.msgChan = make(chan *dbus.Message)
	go agent.watchDBusMethodCalls()
	agent.conn.RegisterObjectPath(AGENT_DBUS_PATH, agent.msgChan)
	return nil
}

func (agent *Agent) Unregister() {
	agent.m.Lock()
	defer agent.m.Unlock()
	if !agent.Registered {
		return
	}
	agent.Registered = false
	agent.conn.UnregisterObjectPath(AGENT_DBUS_PATH)
	close(agent.msgChan)
	agent.msgChan = nil
}

func (agent *Agent) watchDBusMethodCalls() {
	for msg := range agent.msgChan {
		var reply *dbus.Message
		if msg.Interface != AGENT_DBUS_IFACE {
			log.Println("Received unknown method call on", msg.Interface, msg.Member)
			reply = dbus.NewErrorMessage(msg, "org.freedesktop.DBus.Error.UnknownMethod", "Unknown method")
			if err := agent.conn.Send(reply); err != nil {
				log.Print("Could not send reply: ", err)
			}
			continue
		}
		switch msg.Member {
		case MESSAGE_NOTIFICATION:
			reply = agent.messageNotification(msg)
		case MESSAGE_RECEIVE_STATE_CHANGED:
			reply = agent.stateChanged(msg, agent.ReceiveStateChanges)
		case MESSAGE_RECEIVED:
			reply = agent.messageReceived(msg)
		case MESSAGE_SEND_STATE_CHANGED:
			reply = agent.stateChanged(msg, agent.SendStateChanges)
		case MESSAGE_SENT:
			reply = agent.messageSent(msg)
		case DELIVERY_REPORT:
			reply = agent.report(msg, agent.DeliveryReports)
		case READ_REPORT:
			reply = agent.report(msg, agent.ReadReports)
		case SEND_MESSAGE:
			reply = agent.sendMessage(msg)
		default:
			log.Println("Received unknown method call on", msg.Interface, msg.Member)
			reply = dbus.NewErrorMessage(msg, "org.freedesktop.DBus.Error.UnknownMethod", "Unknown method")
		}
		if err := agent.conn.Send(reply); err != nil {
			log.Print("Could not send reply: ", err)
		}
	}
}

func (agent *Agent) messageNotification(msg *dbus.Message) *dbus.Message {
	notification := Notification{Reply: make(chan string, 1)}
	if err := msg.Args(&notification.Identity, &notification.From, &notification.Subject,
		&notification.Expiry, &notification.PushData); err != nil {
		log.Print("Error in received MessageNotification() method call: ", err)
		return dbus.NewErrorMessage(msg, "org.freedesktop.DBus.Error", "FormatError")
	}
	agent.Notifications <- notification
	token := <-notification.Reply
	reply := dbus.NewMethodReturnMessage(msg)
	reply.AppendArgs(token)
	return reply
}

func (agent *Agent) stateChanged(msg *dbus.Message, out chan StateChange) *dbus.Message {
	var change StateChange
	if err := msg.Args(&change.Token, &change.State); err != nil {
		log.Printf("Error in received %s() method call: %v", msg.Member, err)
		return dbus.NewErrorMessage(msg, "org.freedesktop.DBus.Error", "FormatError")
	}
	out <- change
	return dbus.NewMethodReturnMessage(msg)
}

func (agent *Agent) messageReceived(msg *dbus.Message) *dbus.Message {
	var incoming IncomingMessage
	var parts [][]string
	if err := msg.Args(&incoming.Token, &incoming.MmsID, &incoming.From,
		&incoming.To, &incoming.Cc, &incoming.Subject, &incoming.Date,
		&incoming.Priority, &incoming.Class, &incoming.ReadReport, &parts); err != nil {
		log.Print("Error in received MessageReceived() method call: ", err)
		return dbus.NewErrorMessage(msg, "org.freedesktop.DBus.Error", "FormatError")
	}
	incoming.Parts = wireParts(parts)
	agent.Received <- incoming
	return dbus.NewMethodReturnMessage(msg)
}

func (agent *Agent) messageSent(msg *dbus.Message) *dbus.Message {
	var confirmation SentConfirmation
	if err := msg.Args(&confirmation.Token, &confirmation.MmsID); err != nil {
		log.Print("Error in received MessageSent() method call: ", err)
		return dbus.NewErrorMessage(msg, "org.freedesktop.DBus.Error", "FormatError")
	}
	agent.Sent <- confirmation
	return dbus.NewMethodReturnMessage(msg)
}

func (agent *Agent) report(msg *dbus.Message, out chan Report) *dbus.Message {
	var report Report
	if err := msg.Args(&report.Identity, &report.MmsID, &report.Recipient, &report.Status); err != nil {
		log.Printf("Error in received %s() method call: %v", msg.Member, err)
		return dbus.NewErrorMessage(msg, "org.freedesktop.DBus.Error", "FormatError")
	}
	out <- report
	return dbus.NewMethodReturnMessage(msg)
}

func (agent *Agent) sendMessage(msg *dbus.Message) *dbus.Message {
	request := SendRequest{Reply: make(chan int64, 1)}
	var parts [][]string
	if err := msg.Args(&request.To, &request.Cc, &request.Bcc, &request.Subject, &parts); err != nil {
		log.Print("Error in received SendMessage() method call: ", err)
		return dbus.NewErrorMessage(msg, "org.freedesktop.DBus.Error", "FormatError")
	}
	request.Parts = wireParts(parts)
	agent.SendRequests <- request
	id := <-request.Reply
	reply := dbus.NewMethodReturnMessage(msg)
	reply.AppendArgs(id)
	return reply
}
