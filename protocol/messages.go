package protocol

import "math"

// ActuatorCommand is the desired output on the four thruster axes. Each
// axis is meaningful in [-1, 1]; the zero value is idle.
type ActuatorCommand struct {
	ForwardLeft  float32
	ForwardRight float32
	Strafe       float32
	Vertical     float32
}

// Clamp saturates every axis to [-1, 1] independently. NaN becomes 0.
func (c ActuatorCommand) Clamp() ActuatorCommand {
	return ActuatorCommand{
		ForwardLeft:  clampAxis(c.ForwardLeft),
		ForwardRight: clampAxis(c.ForwardRight),
		Strafe:       clampAxis(c.Strafe),
		Vertical:     clampAxis(c.Vertical),
	}
}

// Axes returns the axes in wire order
func (c ActuatorCommand) Axes() [4]float32 {
	return [4]float32{c.ForwardLeft, c.ForwardRight, c.Strafe, c.Vertical}
}

func clampAxis(v float32) float32 {
	switch {
	case math.IsNaN(float64(v)):
		return 0
	case v < -1:
		return -1
	case v > 1:
		return 1
	}
	return v
}

// Message tags on the wire
const (
	TagCommand   = 0
	TagHeartbeat = 1

	TagReady        = 0
	TagSensorStream = 1
	TagLogText      = 2
	TagFaultNotice  = 3
	TagAccepted     = 4
	TagFrameOverrun = 5
	TagRejected     = 6
)

// Message is anything that can be framed
type Message interface {
	// Tag returns the wire discriminant
	Tag() byte

	// encodeFields writes everything after the tag
	encodeFields(w *crcOutput)
}

// RemoteMessage is a host->device message: Command or Heartbeat
type RemoteMessage interface {
	Message
	remoteMessage()
}

// DeviceMessage is a device->host message
type DeviceMessage interface {
	Message
	deviceMessage()
}

// Command sets the desired actuator output
type Command struct {
	ActuatorCommand
}

// Heartbeat keeps the remote link alive without changing the command
type Heartbeat struct{}

// Ready is sent once after boot
type Ready struct{}

// SensorStream carries raw sensor samples
type SensorStream struct {
	Data []byte
}

// LogText carries a diagnostic line
type LogText struct {
	Text string
}

// FaultNotice reports an unrecovered firmware fault
type FaultNotice struct{}

// Accepted acknowledges a decoded frame
type Accepted struct{}

// FrameOverrun reports that the receive buffer overran before a terminator
type FrameOverrun struct{}

// Rejected reports a frame that failed to decode or verify
type Rejected struct {
	Err FrameError
}

func (Command) Tag() byte      { return TagCommand }
func (Heartbeat) Tag() byte    { return TagHeartbeat }
func (Ready) Tag() byte        { return TagReady }
func (SensorStream) Tag() byte { return TagSensorStream }
func (LogText) Tag() byte      { return TagLogText }
func (FaultNotice) Tag() byte  { return TagFaultNotice }
func (Accepted) Tag() byte     { return TagAccepted }
func (FrameOverrun) Tag() byte { return TagFrameOverrun }
func (Rejected) Tag() byte     { return TagRejected }

func (Command) remoteMessage()   {}
func (Heartbeat) remoteMessage() {}

func (Ready) deviceMessage()        {}
func (SensorStream) deviceMessage() {}
func (LogText) deviceMessage()      {}
func (FaultNotice) deviceMessage()  {}
func (Accepted) deviceMessage()     {}
func (FrameOverrun) deviceMessage() {}
func (Rejected) deviceMessage()     {}

func (m Command) encodeFields(w *crcOutput) {
	for _, v := range m.Axes() {
		w.outputFloat32(v)
	}
}

func (Heartbeat) encodeFields(*crcOutput)    {}
func (Ready) encodeFields(*crcOutput)        {}
func (FaultNotice) encodeFields(*crcOutput)  {}
func (Accepted) encodeFields(*crcOutput)     {}
func (FrameOverrun) encodeFields(*crcOutput) {}

func (m SensorStream) encodeFields(w *crcOutput) {
	w.outputUvarint(uint32(len(m.Data)))
	w.Output(m.Data)
}

func (m LogText) encodeFields(w *crcOutput) {
	w.outputUvarint(uint32(len(m.Text)))
	w.outputString(m.Text)
}

func (m Rejected) encodeFields(w *crcOutput) {
	w.outputByte(byte(m.Err.Kind))
	if m.Err.Kind == KindChecksumMismatch {
		w.outputUint16(m.Err.Computed)
		w.outputUint16(m.Err.Expected)
	}
}

func putFloat32(b []byte, v float32) {
	bits := math.Float32bits(v)
	b[0] = byte(bits)
	b[1] = byte(bits >> 8)
	b[2] = byte(bits >> 16)
	b[3] = byte(bits >> 24)
}

func getFloat32(b []byte) float32 {
	return math.Float32frombits(uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24)
}
