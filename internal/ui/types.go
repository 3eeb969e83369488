package ui

// View represents different UI views
type View int

const (
	ViewQuery View = iota
	ViewHelp
)
