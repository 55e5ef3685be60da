package types

type Appearance string

const (
	Dark  Appearance = "dark"
	Light Appearance = "light"
)

// Valid reports whether a is one of the supported appearance modes.
func (a Appearance) Valid() bool {
	return a == Dark || a == Light
}

type State int

const (
	Idle State = iota
	InProgress
	Done
	Failed
)

// Status is what the sidebar status line shows. Color is a tcell color name.
type Status struct {
	State State
	Text  string
	Color string
}

type KeyBinding struct {
	Key         string
	Description string
}

type SavedApp struct {
	Name       string
	Prompt     string
	SourceCode string
}
