// Package device forwards robot commands to the companion application that
// drives the Ohbot hardware.
//
// Every command is a short tuple of strings whose first element is the
// operation code. Commands are fire-and-forget: the companion never answers,
// and the [Forwarder] paces the caller with a fixed delay after each send so
// that a tight block loop cannot flood the channel.
package device

import "encoding/json"

// Op is a device operation code.
type Op string

const (
	OpSetMotor     Op = "MM"
	OpChangeMotor  Op = "MC"
	OpMotorSpeed   Op = "MS"
	OpNamedColour  Op = "CC"
	OpChannelLevel Op = "CE"
	OpReset        Op = "R"
)

// Command is one message for the device channel.
type Command struct {
	Op   Op
	Args []string
}

// SetMotor moves motor to an absolute position.
func SetMotor(motor, position string) Command {
	return Command{Op: OpSetMotor, Args: []string{motor, position}}
}

// ChangeMotor moves motor by a relative delta.
func ChangeMotor(motor, delta string) Command {
	return Command{Op: OpChangeMotor, Args: []string{motor, delta}}
}

// MotorSpeed sets the speed of motor.
func MotorSpeed(motor, speed string) Command {
	return Command{Op: OpMotorSpeed, Args: []string{motor, speed}}
}

// NamedColour sets the eye colour by name. It is the only two-element command.
func NamedColour(colour string) Command {
	return Command{Op: OpNamedColour, Args: []string{colour}}
}

// ChannelLevel sets a single RGB channel of the eye colour.
func ChannelLevel(channel, value string) Command {
	return Command{Op: OpChannelLevel, Args: []string{channel, value}}
}

// Reset stops the robot and returns every motor to rest.
func Reset() Command {
	return Command{Op: OpReset, Args: []string{"", ""}}
}

// Tuple returns the wire form of c: the op code followed by its arguments.
func (c Command) Tuple() []string {
	t := make([]string, 0, len(c.Args)+1)
	t = append(t, string(c.Op))
	return append(t, c.Args...)
}

// MarshalJSON encodes c as a JSON array of strings.
func (c Command) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Tuple())
}

// String returns the tuple joined for logging.
func (c Command) String() string {
	b, _ := json.Marshal(c.Tuple())
	return string(b)
}
