package console

/*
group all status console related functions here

The console carries operator-facing messages: power transitions, session
starts, committed switch changes. The teleprinter session itself never
goes through it.

Two implementations:
	- Simple: one line per message on any io.Writer (stderr by default)
	- Panel: the status view of the gocui front panel
*/

// Console receives status messages.
type Console interface {
	WriteConsole(msg string) error
}
