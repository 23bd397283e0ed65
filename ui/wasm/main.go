//go:build js && wasm

package main

import (
	"encoding/hex"
	"fmt"
	"syscall/js"

	"thrustctl/protocol"
)

func main() {
	// Export functions to JavaScript
	js.Global().Set("thrustctlWasm", js.ValueOf(map[string]interface{}{
		"checksum":        js.FuncOf(checksumWrapper),
		"encodeCommand":   js.FuncOf(encodeCommandWrapper),
		"encodeHeartbeat": js.FuncOf(encodeHeartbeatWrapper),
		"decodeRemote":    js.FuncOf(decodeRemoteWrapper),
		"decodeDevice":    js.FuncOf(decodeDeviceWrapper),
	}))

	// Keep the program running
	select {}
}

// checksumWrapper calculates the frame checksum
// Args: hexString (string)
// Returns: number (uint16)
func checksumWrapper(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf(0)
	}

	data, err := hex.DecodeString(args[0].String())
	if err != nil {
		return js.ValueOf(0)
	}

	return js.ValueOf(int(protocol.Checksum(data)))
}

// encodeCommandWrapper frames an actuator command
// Args: forwardLeft, forwardRight, strafe, vertical (numbers)
// Returns: hex string of the complete frame
func encodeCommandWrapper(this js.Value, args []js.Value) interface{} {
	if len(args) < 4 {
		return js.ValueOf("error: need 4 axis values")
	}

	cmd := protocol.ActuatorCommand{
		ForwardLeft:  float32(args[0].Float()),
		ForwardRight: float32(args[1].Float()),
		Strafe:       float32(args[2].Float()),
		Vertical:     float32(args[3].Float()),
	}
	return encodeFrame(protocol.Command{ActuatorCommand: cmd})
}

// encodeHeartbeatWrapper frames a heartbeat
// Returns: hex string of the complete frame
func encodeHeartbeatWrapper(this js.Value, args []js.Value) interface{} {
	return encodeFrame(protocol.Heartbeat{})
}

func encodeFrame(msg protocol.Message) js.Value {
	frame, err := protocol.EncodeFrame(msg, make([]byte, protocol.DeviceFrameMax))
	if err != nil {
		return js.ValueOf("error: " + err.Error())
	}
	return js.ValueOf(hex.EncodeToString(frame))
}

// decodeRemoteWrapper decodes one host->device frame
// Args: hexString (string), terminator included
// Returns: {type, fields, error}
func decodeRemoteWrapper(this js.Value, args []js.Value) interface{} {
	frame, errMsg := frameArg(args)
	if errMsg != "" {
		return makeDecodeResult("", nil, errMsg)
	}

	msg, err := protocol.DecodeRemote(frame)
	if err != nil {
		return makeDecodeResult("", nil, err.Error())
	}

	switch m := msg.(type) {
	case protocol.Command:
		return makeDecodeResult("Command", map[string]interface{}{
			"forwardLeft":  m.ForwardLeft,
			"forwardRight": m.ForwardRight,
			"strafe":       m.Strafe,
			"vertical":     m.Vertical,
		}, "")
	default:
		return makeDecodeResult(typeName(msg), nil, "")
	}
}

// decodeDeviceWrapper decodes one device->host frame
// Args: hexString (string), terminator included
// Returns: {type, fields, error}
func decodeDeviceWrapper(this js.Value, args []js.Value) interface{} {
	frame, errMsg := frameArg(args)
	if errMsg != "" {
		return makeDecodeResult("", nil, errMsg)
	}

	msg, err := protocol.DecodeDevice(frame)
	if err != nil {
		return makeDecodeResult("", nil, err.Error())
	}

	switch m := msg.(type) {
	case protocol.SensorStream:
		return makeDecodeResult("SensorStream", map[string]interface{}{
			"data": hex.EncodeToString(m.Data),
		}, "")
	case protocol.LogText:
		return makeDecodeResult("LogText", map[string]interface{}{"text": m.Text}, "")
	case protocol.Rejected:
		return makeDecodeResult("Rejected", map[string]interface{}{
			"kind":     m.Err.Kind.String(),
			"computed": int(m.Err.Computed),
			"expected": int(m.Err.Expected),
		}, "")
	default:
		return makeDecodeResult(typeName(msg), nil, "")
	}
}

func frameArg(args []js.Value) ([]byte, string) {
	if len(args) < 1 {
		return nil, "missing hex string argument"
	}
	data, err := hex.DecodeString(args[0].String())
	if err != nil {
		return nil, "invalid hex string: " + err.Error()
	}
	return data, ""
}

func typeName(msg protocol.Message) string {
	// protocol.Ready -> Ready
	name := fmt.Sprintf("%T", msg)
	for i := len(name) - 1; i >= 0; i-- {
		if name[i] == '.' {
			return name[i+1:]
		}
	}
	return name
}

func makeDecodeResult(msgType string, fields map[string]interface{}, errMsg string) js.Value {
	result := make(map[string]interface{})
	result["type"] = msgType
	if fields == nil {
		fields = map[string]interface{}{}
	}
	result["fields"] = fields
	if errMsg != "" {
		result["error"] = errMsg
	}
	return js.ValueOf(result)
}
