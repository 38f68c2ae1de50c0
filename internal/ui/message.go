package ui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the picker (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgContextDone MsgKind = iota
)

// contextDoneMsg is the constructor for [MsgContextDone]
func contextDoneMsg(err error) Msg {
	return Msg{kind: MsgContextDone, data: err}
}
